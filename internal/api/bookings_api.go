package api

import (
	"errors"
	"net/http"
	"time"

	"glowsalon/internal/booking"
	"glowsalon/internal/models"
)

type createBookingRequest struct {
	StaffID         string `json:"staff_id"`
	ServiceID       string `json:"service_id"`
	LocationID      string `json:"location_id"`
	ClientID        string `json:"client_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	SelectedAt      string `json:"selected_at,omitempty"` // RFC3339, when the slot was shown
}

type bookingResponse struct {
	AppointmentID    string `json:"appointment_id"`
	BookingReference string `json:"booking_reference"`
	Status           string `json:"status"`
	Start            string `json:"start"`
}

// handleCreateBooking runs the commit-time availability check and persists
// the appointment. Conflicts answer 409 with a code telling the client
// whether to re-pick a slot (stale_slot) or a different time (time_conflict).
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncHTTP("bookings")

	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var selectedAt time.Time
	if req.SelectedAt != "" {
		selectedAt, err = time.Parse(time.RFC3339, req.SelectedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "selected_at must be RFC3339")
			return
		}
	}

	received := time.Now()
	appt, err := s.committer.Commit(r.Context(), booking.Request{
		StaffID:         req.StaffID,
		ServiceID:       req.ServiceID,
		LocationID:      req.LocationID,
		ClientID:        req.ClientID,
		Date:            date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		SelectedAt:      selectedAt,
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}

	// A replayed submission returns the appointment committed earlier.
	status := http.StatusCreated
	if appt.CreatedAt.Before(received) {
		status = http.StatusOK
	}

	writeJSON(w, status, bookingResponse{
		AppointmentID:    appt.ID,
		BookingReference: appt.BookingReference,
		Status:           string(appt.Status),
		Start:            appt.Date.Format(time.RFC3339),
	})
}

func (s *HTTPServer) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrDayOff):
		writeErrorCode(w, http.StatusConflict, "day_off", "staff member does not work that day")
	case errors.Is(err, booking.ErrStaleSlot):
		writeErrorCode(w, http.StatusConflict, "stale_slot", "slot was booked while you were choosing; please pick again")
	case errors.Is(err, booking.ErrTimeConflict):
		writeErrorCode(w, http.StatusConflict, "time_conflict", "staff member is already booked at that time")
	default:
		s.logger.Error().Err(err).Msg("booking commit failed")
		writeError(w, http.StatusInternalServerError, "booking failed")
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type appointmentResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	UpdatedAt     string `json:"updated_at"`
}

// handleUpdateStatus moves an appointment through its lifecycle.
func (s *HTTPServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncHTTP("appointment_status")

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "appointment id is required")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := s.lifecycle.Transition(r.Context(), id, models.AppointmentStatus(req.Status))
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
		return
	case errors.Is(err, booking.ErrInvalidTransition):
		writeErrorCode(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
		return
	case errors.Is(err, booking.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.logger.Error().Err(err).Str("appointment_id", id).Msg("status transition failed")
		writeError(w, http.StatusInternalServerError, "status update failed")
		return
	}

	writeJSON(w, http.StatusOK, appointmentResponse{
		AppointmentID: appt.ID,
		Status:        string(appt.Status),
		UpdatedAt:     appt.UpdatedAt.Format(time.RFC3339),
	})
}
