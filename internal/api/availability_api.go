package api

import (
	"net/http"

	"glowsalon/internal/models"
)

type availabilityRequest struct {
	StaffID         string `json:"staff_id,omitempty"`
	LocationID      string `json:"location_id,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type staffAvailability struct {
	StaffID   string `json:"staff_id"`
	Name      string `json:"name,omitempty"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type availabilityResponse struct {
	Date    string              `json:"date"`
	Time    string              `json:"time"`
	Results []staffAvailability `json:"results"`
}

// handleAvailability checks one staff member, or every bookable staff member
// at a location, for a concrete date and time.
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncHTTP("availability")

	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StaffID == "" && req.LocationID == "" {
		writeError(w, http.StatusBadRequest, "staff_id or location_id is required")
		return
	}
	if req.DurationMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "duration_minutes must be positive")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	resp := availabilityResponse{Date: req.Date, Time: req.Time}

	if req.StaffID != "" {
		res := s.evaluator.IsAvailable(r.Context(), req.StaffID, date, req.Time, req.DurationMinutes)
		entry := staffAvailability{StaffID: req.StaffID, Available: res.Available}
		if !res.Available {
			entry.Reason = string(res.Reason)
		}
		resp.Results = append(resp.Results, entry)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var staff []models.StaffMember
	if req.LocationID == models.HomeServiceLocation {
		staff, err = s.directory.ListActiveWithHomeService(r.Context())
	} else {
		staff, err = s.directory.ListActiveByLocation(r.Context(), req.LocationID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("location_id", req.LocationID).Msg("staff listing failed")
		writeError(w, http.StatusInternalServerError, "staff lookup failed")
		return
	}

	for _, member := range staff {
		res := s.evaluator.IsAvailable(r.Context(), member.ID, date, req.Time, req.DurationMinutes)
		entry := staffAvailability{StaffID: member.ID, Name: member.Name, Available: res.Available}
		if !res.Available {
			entry.Reason = string(res.Reason)
		}
		resp.Results = append(resp.Results, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}
