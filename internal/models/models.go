package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending        AppointmentStatus = "pending"
	StatusConfirmed      AppointmentStatus = "confirmed"
	StatusArrived        AppointmentStatus = "arrived"
	StatusServiceStarted AppointmentStatus = "service_started"
	StatusCompleted      AppointmentStatus = "completed"
	StatusCancelled      AppointmentStatus = "cancelled"
	StatusNoShow         AppointmentStatus = "no_show"
)

// BlockingStatuses are the statuses that occupy a staff member's calendar.
var BlockingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusArrived,
	StatusServiceStarted,
}

// TerminalStatuses are final states; appointments in them never block time.
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// Time format constants.
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// HomeServiceLocation is the virtual location id for home-service visits.
const HomeServiceLocation = "home_service"

// AdditionalService is a sub-booking attached to an appointment. It occupies
// its own staff member's time independently of the parent appointment.
type AdditionalService struct {
	StaffID         string    `json:"staff_id"`
	ServiceID       string    `json:"service_id"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Window returns the half-open time interval occupied by the sub-booking.
func (s *AdditionalService) Window() (time.Time, time.Time) {
	return s.Date, s.Date.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Appointment is a booked service visit in salon-local time.
type Appointment struct {
	ID                 string              `json:"id"`
	StaffID            string              `json:"staff_id"`
	LocationID         string              `json:"location_id"`
	ServiceID          string              `json:"service_id"`
	ClientID           string              `json:"client_id"`
	Date               time.Time           `json:"date"`
	DurationMinutes    int                 `json:"duration_minutes"`
	Status             AppointmentStatus   `json:"status"`
	BookingReference   string              `json:"booking_reference,omitempty"`
	AdditionalServices []AdditionalService `json:"additional_services,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// Window returns the half-open interval [date, date+duration).
func (a *Appointment) Window() (time.Time, time.Time) {
	return a.Date, a.Date.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Blocks reports whether the appointment still occupies calendar time.
func (a *Appointment) Blocks() bool {
	return !a.IsTerminal()
}

// IsTerminal reports whether the appointment reached a final state.
func (a *Appointment) IsTerminal() bool {
	for _, s := range TerminalStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// StaffWindows returns every interval the given staff member occupies in the
// appointment, whether as the primary provider or via an additional service.
func (a *Appointment) StaffWindows(staffID string) [][2]time.Time {
	var windows [][2]time.Time
	if a.StaffID == staffID {
		start, end := a.Window()
		windows = append(windows, [2]time.Time{start, end})
	}
	for i := range a.AdditionalServices {
		if a.AdditionalServices[i].StaffID == staffID {
			start, end := a.AdditionalServices[i].Window()
			windows = append(windows, [2]time.Time{start, end})
		}
	}
	return windows
}

// JobRole classifies staff for booking purposes.
type JobRole string

const (
	RoleStylist      JobRole = "stylist"
	RoleReceptionist JobRole = "receptionist"
	RoleManager      JobRole = "manager"
	RoleAdmin        JobRole = "admin"
)

// ClientFacing reports whether the role serves clients directly.
func (r JobRole) ClientFacing() bool {
	return r == RoleStylist
}

// StaffStatus is the employment status of a staff member.
type StaffStatus string

const (
	StaffActive   StaffStatus = "Active"
	StaffInactive StaffStatus = "Inactive"
	StaffOnLeave  StaffStatus = "OnLeave"
)

// StaffMember is a read-only view of a staff directory record.
type StaffMember struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Locations          []string    `json:"locations"`
	HomeServiceCapable bool        `json:"home_service_capable"`
	JobRole            JobRole     `json:"job_role"`
	Status             StaffStatus `json:"status"`
}

// Bookable reports whether the staff member participates in availability
// checks: active and in a client-facing role.
func (s *StaffMember) Bookable() bool {
	return s.Status == StaffActive && s.JobRole.ClientFacing()
}

// WorksAt reports whether the staff member is assigned to the location.
func (s *StaffMember) WorksAt(locationID string) bool {
	for _, loc := range s.Locations {
		if loc == locationID {
			return true
		}
	}
	return false
}

// DayOff is a per-staff recurring weekday unavailability record.
type DayOff struct {
	ID          int64        `json:"id"`
	StaffID     string       `json:"staff_id"`
	Weekday     time.Weekday `json:"weekday"`
	IsDayOff    bool         `json:"is_day_off"`
	IsRecurring bool         `json:"is_recurring"`
}

// BlocksDate reports whether the record makes the whole date unavailable.
func (d *DayOff) BlocksDate(date time.Time) bool {
	return d.IsDayOff && d.IsRecurring && d.Weekday == date.Weekday()
}
