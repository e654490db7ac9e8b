// Package reminders notifies clients about next-day appointments.
package reminders

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"glowsalon/internal/models"
)

// Source lists the appointments of a calendar day.
type Source interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
}

// Notifier delivers one reminder. Delivery transport (SMS, email, push) is
// the caller's concern.
type Notifier interface {
	Notify(ctx context.Context, appt models.Appointment) error
}

// Service runs a daily pass over tomorrow's appointments and sends a
// reminder for each one that is still on the calendar.
type Service struct {
	source   Source
	notifier Notifier
	hour     int // local hour of day to run at
	logger   *zerolog.Logger
}

func NewService(source Source, notifier Notifier, hour int, logger *zerolog.Logger) *Service {
	if hour < 0 || hour > 23 {
		hour = 9
	}
	return &Service{source: source, notifier: notifier, hour: hour, logger: logger}
}

// Start waits until the next run hour, then runs every 24h until the context
// is cancelled.
func (s *Service) Start(ctx context.Context) {
	timer := time.NewTimer(timeUntilNextHour(s.hour))
	defer timer.Stop()

	s.logger.Info().Int("hour", s.hour).Msg("reminder service started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder service stopped")
			return
		case <-timer.C:
			s.RemindTomorrow(ctx)
			timer.Reset(24 * time.Hour)
		}
	}
}

// RemindTomorrow sends a reminder for every appointment tomorrow that still
// blocks the calendar. Cancelled and finished visits are skipped.
func (s *Service) RemindTomorrow(ctx context.Context) {
	tomorrow := time.Now().AddDate(0, 0, 1)

	appts, err := s.source.ListByDate(ctx, tomorrow)
	if err != nil {
		s.logger.Error().Err(err).Msg("reminder: list appointments")
		return
	}

	sent := 0
	for _, appt := range appts {
		if !appt.Blocks() {
			continue
		}
		if err := s.notifier.Notify(ctx, appt); err != nil {
			s.logger.Warn().Err(err).Str("appointment_id", appt.ID).Msg("reminder delivery failed")
			continue
		}
		sent++
	}

	s.logger.Info().Int("sent", sent).Int("total", len(appts)).Msg("reminder pass complete")
}

func timeUntilNextHour(hour int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// LogNotifier is the default Notifier: it records the reminder in the
// service log. Useful until a real delivery channel is wired up.
type LogNotifier struct {
	Logger *zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, appt models.Appointment) error {
	n.Logger.Info().Str("appointment_id", appt.ID).Str("client_id", appt.ClientID).
		Time("start", appt.Date).Str("reference", appt.BookingReference).
		Msg("appointment reminder")
	return nil
}
