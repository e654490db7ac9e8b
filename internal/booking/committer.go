// Package booking is the admission point for new appointments and the owner
// of the status lifecycle.
package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"glowsalon/internal/availability"
	"glowsalon/internal/events"
	"glowsalon/internal/metrics"
	"glowsalon/internal/models"
	"glowsalon/internal/slots"
)

// Store is the appointment persistence the committer writes through.
type Store interface {
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	FindAppointment(ctx context.Context, staffID string, start time.Time, clientID string) (*models.Appointment, error)
	InsertAppointment(ctx context.Context, appt *models.Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error)
}

// Checker re-runs the availability predicate against fresh store state.
type Checker interface {
	IsAvailable(ctx context.Context, staffID string, date time.Time, clock string, durationMinutes int) availability.Result
}

// Request is a booking submission. SelectedAt is when the client was shown
// the slot; it separates "slot already booked" races from plain conflicts.
type Request struct {
	StaffID         string
	ServiceID       string
	LocationID      string
	ClientID        string
	Date            time.Time // calendar day, salon-local
	Time            string    // HH:MM
	DurationMinutes int
	SelectedAt      time.Time
}

// Committer performs the authoritative commit-time availability check and
// persists the appointment. Commits are serialized per staff member so two
// concurrent submissions for the same slot cannot both pass the check.
type Committer struct {
	store   Store
	checker Checker
	bus     *events.EventBus
	metrics *metrics.Metrics
	logger  *zerolog.Logger

	mu        sync.Mutex
	staffLock map[string]*sync.Mutex
}

func NewCommitter(store Store, checker Checker, bus *events.EventBus, m *metrics.Metrics, logger *zerolog.Logger) *Committer {
	return &Committer{
		store:     store,
		checker:   checker,
		bus:       bus,
		metrics:   m,
		logger:    logger,
		staffLock: make(map[string]*sync.Mutex),
	}
}

// Commit validates the request against the current store state and inserts
// the appointment with status confirmed and a generated booking reference.
//
// Re-submitting an already committed request (same staff, start time and
// client) returns the existing appointment instead of creating a duplicate.
func (c *Committer) Commit(ctx context.Context, req Request) (*models.Appointment, error) {
	start, err := c.validate(&req)
	if err != nil {
		c.metrics.IncCommit("invalid")
		return nil, err
	}

	lock := c.lockFor(req.StaffID)
	lock.Lock()
	defer lock.Unlock()

	began := time.Now()
	defer func() {
		c.metrics.ObserveCommitDuration(time.Since(began).Seconds())
	}()

	// Idempotent retry: detection is by (staff, start, client), not by
	// object identity.
	existing, err := c.store.FindAppointment(ctx, req.StaffID, start, req.ClientID)
	if err != nil {
		c.metrics.IncCommit("error")
		return nil, fmt.Errorf("check duplicate submission: %w", err)
	}
	if existing != nil {
		c.logger.Info().Str("appointment_id", existing.ID).Str("staff_id", req.StaffID).
			Msg("duplicate submission; returning existing appointment")
		c.metrics.IncCommit("duplicate")
		return existing, nil
	}

	// The authoritative re-check. The checker reads the store directly, so
	// any booking committed since slot selection is visible here.
	res := c.checker.IsAvailable(ctx, req.StaffID, req.Date, req.Time, req.DurationMinutes)
	if !res.Available {
		return nil, c.rejection(&req, res)
	}

	now := time.Now()
	appt := &models.Appointment{
		ID:               uuid.New().String(),
		StaffID:          req.StaffID,
		LocationID:       req.LocationID,
		ServiceID:        req.ServiceID,
		ClientID:         req.ClientID,
		Date:             start,
		DurationMinutes:  req.DurationMinutes,
		Status:           models.StatusConfirmed,
		BookingReference: newBookingReference(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := c.store.InsertAppointment(ctx, appt); err != nil {
		c.metrics.IncCommit("error")
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	c.metrics.IncCommit("confirmed")
	c.logger.Info().Str("appointment_id", appt.ID).Str("staff_id", appt.StaffID).
		Str("reference", appt.BookingReference).Time("start", start).
		Msg("booking committed")

	if c.bus != nil {
		c.bus.Publish(events.Event{
			Type:          events.TypeBookingCreated,
			AppointmentID: appt.ID,
			StaffID:       appt.StaffID,
		})
	}

	return appt, nil
}

func (c *Committer) validate(req *Request) (time.Time, error) {
	if req.StaffID == "" || req.ClientID == "" || req.LocationID == "" {
		return time.Time{}, fmt.Errorf("%w: staff, client and location are required", ErrInvalidRequest)
	}
	if req.DurationMinutes <= 0 {
		return time.Time{}, fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}
	slot, err := slots.ParseClock(req.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return slot.At(req.Date), nil
}

func (c *Committer) rejection(req *Request, res availability.Result) error {
	switch res.Reason {
	case availability.ReasonDayOff:
		c.metrics.IncCommit("day_off")
		return ErrDayOff
	case availability.ReasonConflict:
		// A conflicting appointment created after the client picked the
		// slot is a lost race, not a planning error.
		if res.Conflicting != nil && !req.SelectedAt.IsZero() && res.Conflicting.CreatedAt.After(req.SelectedAt) {
			c.metrics.IncCommit("stale_slot")
			return ErrStaleSlot
		}
		c.metrics.IncCommit("conflict")
		return ErrTimeConflict
	default:
		c.metrics.IncCommit("invalid")
		return fmt.Errorf("%w: availability check failed (%s)", ErrInvalidRequest, res.Reason)
	}
}

func (c *Committer) lockFor(staffID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.staffLock[staffID]
	if !ok {
		lock = &sync.Mutex{}
		c.staffLock[staffID] = lock
	}
	return lock
}

func newBookingReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "GS-" + raw[:8]
}
