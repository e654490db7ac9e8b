package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"glowsalon/internal/events"
	"glowsalon/internal/metrics"
	"glowsalon/internal/models"
)

// Lifecycle applies status transitions to stored appointments. Appointments
// are never deleted; once a terminal status is reached the record stays for
// history but stops blocking the staff member's calendar.
type Lifecycle struct {
	store   Store
	bus     *events.EventBus
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewLifecycle(store Store, bus *events.EventBus, m *metrics.Metrics, logger *zerolog.Logger) *Lifecycle {
	return &Lifecycle{store: store, bus: bus, metrics: m, logger: logger}
}

// Transition moves the appointment to a new status if the lifecycle allows
// it. Returns ErrInvalidTransition otherwise.
func (l *Lifecycle) Transition(ctx context.Context, id string, to models.AppointmentStatus) (*models.Appointment, error) {
	if !models.ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	appt, err := l.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt == nil {
		return nil, ErrNotFound
	}

	if !models.CanTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}

	updated, err := l.store.UpdateAppointmentStatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	l.metrics.IncTransition(string(to))
	l.logger.Info().Str("appointment_id", id).
		Str("from", string(appt.Status)).Str("to", string(to)).
		Msg("appointment status changed")

	if l.bus != nil {
		l.bus.Publish(events.Event{
			Type:          events.TypeStatusChanged,
			AppointmentID: id,
			StaffID:       updated.StaffID,
		})
	}

	return updated, nil
}
