package api

import (
	"net/http"

	"glowsalon/internal/reflection"
)

type calendarResponse struct {
	LocationID string             `json:"location_id"`
	Date       string             `json:"date"`
	Entries    []reflection.Entry `json:"entries"`
}

// handleCalendar returns a location's calendar for a day: its own
// appointments plus reflected entries for time the same staff are booked
// elsewhere.
func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncHTTP("calendar")

	locationID := r.URL.Query().Get("location_id")
	if locationID == "" {
		writeError(w, http.StatusBadRequest, "location_id is required")
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	appts, err := s.store.ListByDate(r.Context(), date)
	if err != nil {
		s.logger.Error().Err(err).Str("location_id", locationID).Msg("appointment listing failed")
		writeError(w, http.StatusInternalServerError, "appointment lookup failed")
		return
	}

	entries := s.reflector.Reflect(r.Context(), appts, s.directory, locationID)
	if entries == nil {
		entries = []reflection.Entry{}
	}

	writeJSON(w, http.StatusOK, calendarResponse{
		LocationID: locationID,
		Date:       date.Format("2006-01-02"),
		Entries:    entries,
	})
}
