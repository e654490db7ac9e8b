// Package api is the HTTP surface for the scheduling core, serving both the
// client booking flow and the staff calendar.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"glowsalon/internal/availability"
	"glowsalon/internal/booking"
	"glowsalon/internal/cache"
	"glowsalon/internal/metrics"
	"glowsalon/internal/models"
	"glowsalon/internal/reflection"
	"glowsalon/internal/slots"
)

// Store is the read side of the appointment store the API needs.
type Store interface {
	ListByStaff(ctx context.Context, staffID string) ([]models.Appointment, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error)
}

// Directory is the staff directory slice consumed by the API.
type Directory interface {
	GetStaff(ctx context.Context, staffID string) (*models.StaffMember, error)
	ListActiveByLocation(ctx context.Context, locationID string) ([]models.StaffMember, error)
	ListActiveWithHomeService(ctx context.Context) ([]models.StaffMember, error)
}

// Evaluator runs the staff-availability predicate.
type Evaluator interface {
	IsAvailable(ctx context.Context, staffID string, date time.Time, clock string, durationMinutes int) availability.Result
}

// Committer is the booking admission point.
type Committer interface {
	Commit(ctx context.Context, req booking.Request) (*models.Appointment, error)
}

// Lifecycle applies appointment status transitions.
type Lifecycle interface {
	Transition(ctx context.Context, id string, to models.AppointmentStatus) (*models.Appointment, error)
}

// HTTPServer wires the scheduling components to HTTP handlers.
type HTTPServer struct {
	generator *slots.Generator
	evaluator Evaluator
	reflector *reflection.Reflector
	committer Committer
	lifecycle Lifecycle
	store     Store
	directory Directory
	snapshot  *cache.Snapshot
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	limiter   *rate.Limiter

	// now is swappable for tests.
	now func() time.Time
}

type Options struct {
	Generator *slots.Generator
	Evaluator Evaluator
	Reflector *reflection.Reflector
	Committer Committer
	Lifecycle Lifecycle
	Store     Store
	Directory Directory
	Snapshot  *cache.Snapshot
	Metrics   *metrics.Metrics
	Logger    *zerolog.Logger
	RateLimit rate.Limit
	RateBurst int
}

func NewHTTPServer(opts Options) *HTTPServer {
	limit := opts.RateLimit
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 20
	}

	return &HTTPServer{
		generator: opts.Generator,
		evaluator: opts.Evaluator,
		reflector: opts.Reflector,
		committer: opts.Committer,
		lifecycle: opts.Lifecycle,
		store:     opts.Store,
		directory: opts.Directory,
		snapshot:  opts.Snapshot,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		limiter:   rate.NewLimiter(limit, burst),
		now:       time.Now,
	}
}

// Router returns the HTTP routes for the scheduling API.
func (s *HTTPServer) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/slots", s.handleSlots)
	mux.HandleFunc("POST /api/availability", s.handleAvailability)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("POST /api/bookings", s.rateLimited(s.handleCreateBooking))
	mux.HandleFunc("PATCH /api/appointments/{id}/status", s.handleUpdateStatus)
	return mux
}

// rateLimited rejects requests beyond the configured booking rate.
func (s *HTTPServer) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many booking requests; retry shortly")
			return
		}
		next(w, r)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(models.DateFormat, s, time.Local)
}
