// Package reflection expands a single-location appointment list so that time
// a staff member spends in other locations shows up as blocked.
package reflection

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"glowsalon/internal/models"
)

// Entry is one row of a location calendar. It is either a real appointment
// or a reflection: a non-persisted copy shown only to represent staff
// unavailability. Reflections are never editable; mutations must resolve to
// the original through OriginalID first.
type Entry struct {
	Appointment models.Appointment `json:"appointment"`
	Reflected   bool               `json:"reflected"`
	OriginalID  string             `json:"original_id,omitempty"`
}

// TargetID returns the appointment id any mutation must be applied to.
func (e *Entry) TargetID() string {
	if e.Reflected {
		return e.OriginalID
	}
	return e.Appointment.ID
}

// Directory is the slice of the staff directory the reflector needs.
type Directory interface {
	GetStaff(ctx context.Context, staffID string) (*models.StaffMember, error)
}

// Reflector merges a location's own appointments with reflections of
// bookings the same staff hold elsewhere. A home-service booking blocks the
// staff member's physical-location calendars and a physical booking blocks
// their home-service calendar.
type Reflector struct {
	homeLocation string
	logger       *zerolog.Logger
}

func NewReflector(homeLocation string, logger *zerolog.Logger) *Reflector {
	if homeLocation == "" {
		homeLocation = models.HomeServiceLocation
	}
	return &Reflector{homeLocation: homeLocation, logger: logger}
}

// Reflect returns the entries to show for viewedLocation: every appointment
// at that location as a real entry, plus reflected copies of appointments
// elsewhere whose staff member is eligible to work at viewedLocation.
// Originals sort before their reflections at the same start time.
func (r *Reflector) Reflect(ctx context.Context, appts []models.Appointment, dir Directory, viewedLocation string) []Entry {
	entries := make([]Entry, 0, len(appts))

	for i := range appts {
		appt := appts[i]

		if appt.LocationID == viewedLocation {
			entries = append(entries, Entry{Appointment: appt})
			continue
		}

		// Only time still occupying the calendar is worth reflecting.
		if !appt.Blocks() {
			continue
		}

		if !r.shouldReflect(ctx, &appt, dir, viewedLocation) {
			continue
		}

		copy := appt
		entries = append(entries, Entry{
			Appointment: copy,
			Reflected:   true,
			OriginalID:  appt.ID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if !a.Appointment.Date.Equal(b.Appointment.Date) {
			return a.Appointment.Date.Before(b.Appointment.Date)
		}
		if a.Reflected != b.Reflected {
			return !a.Reflected // original before its reflection
		}
		return a.Appointment.ID < b.Appointment.ID
	})

	return entries
}

func (r *Reflector) shouldReflect(ctx context.Context, appt *models.Appointment, dir Directory, viewedLocation string) bool {
	viewingHome := viewedLocation == r.homeLocation
	apptAtHome := appt.LocationID == r.homeLocation

	// Reflection only crosses the home-service boundary; two physical
	// locations do not mirror each other's calendars.
	if viewingHome == apptAtHome {
		return false
	}

	staff, err := dir.GetStaff(ctx, appt.StaffID)
	if err != nil {
		r.logger.Warn().Err(err).Str("staff_id", appt.StaffID).Str("appointment_id", appt.ID).
			Msg("staff lookup failed; skipping reflection")
		return false
	}
	if staff == nil {
		return false
	}

	if viewingHome {
		// Physical booking into the home-service view.
		return staff.HomeServiceCapable
	}
	// Home-service booking into a physical view.
	return staff.WorksAt(viewedLocation)
}
