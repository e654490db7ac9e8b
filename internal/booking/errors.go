package booking

import "errors"

var (
	// ErrDayOff means the staff member has a recurring day off on the date.
	ErrDayOff = errors.New("staff member is not working that day")

	// ErrTimeConflict means the slot collides with an existing non-terminal
	// appointment that already existed when the client picked the slot.
	ErrTimeConflict = errors.New("slot conflicts with an existing appointment")

	// ErrStaleSlot means the slot was taken between slot selection and
	// submission; the UI should say "just booked by someone else".
	ErrStaleSlot = errors.New("slot was just booked by another client")

	// ErrInvalidRequest covers malformed or incomplete booking payloads.
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrNotFound means the appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrInvalidTransition means the requested status change is not legal
	// from the appointment's current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)
