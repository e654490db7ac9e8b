// Package availability decides whether a staff member can take a booking.
package availability

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"glowsalon/internal/models"
	"glowsalon/internal/slots"
)

// Reason explains why a slot is unavailable.
type Reason string

const (
	ReasonDayOff       Reason = "day_off"
	ReasonConflict     Reason = "conflict"
	ReasonInvalidInput Reason = "invalid_input"
	ReasonError        Reason = "error"
)

// Result is the outcome of an availability check. It is computed
// synchronously and never persisted.
type Result struct {
	Available bool
	Reason    Reason
	// Conflicting is the appointment that caused ReasonConflict, when any.
	Conflicting *models.Appointment
}

// AppointmentSource lists appointments where the staff member occupies time,
// either as the primary provider or through an additional service.
type AppointmentSource interface {
	ListByStaff(ctx context.Context, staffID string) ([]models.Appointment, error)
}

// DayOffSource lists recurring day-off records for a staff member.
type DayOffSource interface {
	ListDayOffsByStaff(ctx context.Context, staffID string) ([]models.DayOff, error)
}

// Evaluator runs the staff-availability predicate: day-off schedule first,
// then overlap against every non-terminal appointment. Lead time is not
// checked here; that is the slot generator's concern.
type Evaluator struct {
	store   AppointmentSource
	dayOffs DayOffSource
	logger  *zerolog.Logger
}

func NewEvaluator(store AppointmentSource, dayOffs DayOffSource, logger *zerolog.Logger) *Evaluator {
	return &Evaluator{store: store, dayOffs: dayOffs, logger: logger}
}

// IsAvailable reports whether the staff member is free for the window
// starting at clock (HH:MM) on date, lasting durationMinutes.
//
// Malformed input and store failures never panic or propagate: the check
// fails closed (unavailable) and the condition is logged for operators.
func (e *Evaluator) IsAvailable(ctx context.Context, staffID string, date time.Time, clock string, durationMinutes int) Result {
	if durationMinutes <= 0 {
		e.logger.Warn().Str("staff_id", staffID).Int("duration", durationMinutes).
			Msg("availability check with non-positive duration")
		return Result{Available: false, Reason: ReasonInvalidInput}
	}

	slot, err := slots.ParseClock(clock)
	if err != nil {
		e.logger.Warn().Err(err).Str("staff_id", staffID).Str("time", clock).
			Msg("availability check with malformed time")
		return Result{Available: false, Reason: ReasonInvalidInput}
	}

	// Day-off check ignores time-of-day entirely.
	offs, err := e.dayOffs.ListDayOffsByStaff(ctx, staffID)
	if err != nil {
		e.logger.Error().Err(err).Str("staff_id", staffID).Msg("load day-off schedule")
		return Result{Available: false, Reason: ReasonError}
	}
	for i := range offs {
		if offs[i].BlocksDate(date) {
			return Result{Available: false, Reason: ReasonDayOff}
		}
	}

	start := slot.At(date)
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	appts, err := e.store.ListByStaff(ctx, staffID)
	if err != nil {
		e.logger.Error().Err(err).Str("staff_id", staffID).Msg("load appointments")
		return Result{Available: false, Reason: ReasonError}
	}

	for i := range appts {
		appt := &appts[i]
		if !appt.Blocks() {
			continue
		}
		for _, w := range appt.StaffWindows(staffID) {
			if Overlaps(start, end, w[0], w[1]) {
				return Result{Available: false, Reason: ReasonConflict, Conflicting: appt}
			}
		}
	}

	return Result{Available: true}
}

// Overlaps reports whether [start, end) collides with [existingStart,
// existingEnd): the candidate starts inside the existing window, ends inside
// it, or fully contains it.
func Overlaps(start, end, existingStart, existingEnd time.Time) bool {
	if !start.Before(existingStart) && start.Before(existingEnd) {
		return true // start ∈ [existingStart, existingEnd)
	}
	if end.After(existingStart) && !end.After(existingEnd) {
		return true // end ∈ (existingStart, existingEnd]
	}
	if !start.After(existingStart) && !end.Before(existingEnd) {
		return true // candidate contains the existing window
	}
	return false
}
