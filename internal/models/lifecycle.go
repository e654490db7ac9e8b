package models

// lifecycle.go defines the appointment status state machine. Only statuses
// reachable through this machine count as conflicts in availability checks;
// terminal statuses permanently release the staff member's time.

// statusTransitions maps each status to the statuses it may move to.
// Cancellation and no-show are reachable from every non-terminal status.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:      {StatusArrived, StatusCancelled, StatusNoShow},
	StatusArrived:        {StatusServiceStarted, StatusCancelled, StatusNoShow},
	StatusServiceStarted: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted:      {},
	StatusCancelled:      {},
	StatusNoShow:         {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to AppointmentStatus) bool {
	allowed, ok := statusTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether the status is a known lifecycle state.
func ValidStatus(s AppointmentStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}
