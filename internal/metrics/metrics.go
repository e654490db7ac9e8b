// Package metrics exposes Prometheus metrics for the scheduling core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for scheduling operations.
type Metrics struct {
	// AvailabilityChecks counts evaluator runs by outcome.
	AvailabilityChecks *prometheus.CounterVec

	// CommitsTotal counts booking commit attempts by outcome.
	CommitsTotal *prometheus.CounterVec

	// CommitDuration is the time spent inside the commit critical section.
	CommitDuration prometheus.Histogram

	// StatusTransitions counts lifecycle transitions by target status.
	StatusTransitions *prometheus.CounterVec

	// CacheRefreshes counts availability snapshot refresh cycles.
	CacheRefreshes prometheus.Counter

	// CacheLookups counts snapshot cache lookups by result.
	CacheLookups *prometheus.CounterVec

	// HTTPRequests counts API requests by handler.
	HTTPRequests *prometheus.CounterVec
}

// New creates metrics registered on the given registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AvailabilityChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "availability_checks_total",
				Help:      "Total availability checks by outcome",
			},
			[]string{"outcome"},
		),

		CommitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_commits_total",
				Help:      "Total booking commit attempts by outcome",
			},
			[]string{"outcome"},
		),

		CommitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "booking_commit_duration_seconds",
				Help:      "Time spent validating and persisting a booking",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
			},
		),

		StatusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_transitions_total",
				Help:      "Total appointment status transitions by target status",
			},
			[]string{"to"},
		),

		CacheRefreshes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_refreshes_total",
				Help:      "Total availability snapshot refresh cycles",
			},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Total snapshot cache lookups by result",
			},
			[]string{"result"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total API requests by handler",
			},
			[]string{"handler"},
		),
	}
}

// IncAvailability records an availability check outcome.
func (m *Metrics) IncAvailability(outcome string) {
	if m == nil {
		return
	}
	m.AvailabilityChecks.WithLabelValues(outcome).Inc()
}

// IncCommit records a commit outcome.
func (m *Metrics) IncCommit(outcome string) {
	if m == nil {
		return
	}
	m.CommitsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCommitDuration records time spent in the commit path.
func (m *Metrics) ObserveCommitDuration(seconds float64) {
	if m == nil {
		return
	}
	m.CommitDuration.Observe(seconds)
}

// IncTransition records a lifecycle transition.
func (m *Metrics) IncTransition(to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(to).Inc()
}

// IncCacheRefresh records a snapshot refresh cycle.
func (m *Metrics) IncCacheRefresh() {
	if m == nil {
		return
	}
	m.CacheRefreshes.Inc()
}

// IncCacheLookup records a cache hit or miss.
func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// IncHTTP records a handled API request.
func (m *Metrics) IncHTTP(handler string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(handler).Inc()
}
