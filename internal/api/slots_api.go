package api

import (
	"fmt"
	"net/http"
	"strconv"

	"glowsalon/internal/cache"
)

type slotsResponse struct {
	Date    string           `json:"date"`
	StaffID string           `json:"staff_id,omitempty"`
	Slots   []cache.SlotView `json:"slots"`
}

// handleSlots returns the bookable slots for a date. With staff_id the slots
// are decorated with that staff member's availability; without it the raw
// grid is returned.
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	s.metrics.IncHTTP("slots")

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	duration := 15
	if v := r.URL.Query().Get("duration"); v != "" {
		duration, err = strconv.Atoi(v)
		if err != nil || duration <= 0 {
			writeError(w, http.StatusBadRequest, "duration must be a positive number of minutes")
			return
		}
	}

	staffID := r.URL.Query().Get("staff_id")
	resp := slotsResponse{Date: date.Format("2006-01-02"), StaffID: staffID}

	if staffID == "" {
		for _, slot := range s.generator.Generate(date, s.now()) {
			resp.Slots = append(resp.Slots, cache.SlotView{
				Label: slot.Label(), Clock: slot.Clock(), Available: true,
			})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	// Duration changes which slots fit, so it is part of the cache identity.
	// The keyed segment stays under the staff prefix so invalidation by staff
	// still catches it.
	cacheKey := fmt.Sprintf("%s:%d", staffID, duration)
	if views, ok := s.snapshot.Get(r.Context(), cacheKey, date); ok {
		resp.Slots = views
		writeJSON(w, http.StatusOK, resp)
		return
	}

	for _, slot := range s.generator.Generate(date, s.now()) {
		res := s.evaluator.IsAvailable(r.Context(), staffID, date, slot.Clock(), duration)
		view := cache.SlotView{
			Label:     slot.Label(),
			Clock:     slot.Clock(),
			Available: res.Available,
			Reason:    string(res.Reason),
		}
		if res.Available {
			view.Reason = ""
		}
		resp.Slots = append(resp.Slots, view)
	}

	s.snapshot.Set(r.Context(), cacheKey, date, resp.Slots)
	writeJSON(w, http.StatusOK, resp)
}
