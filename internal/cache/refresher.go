package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"glowsalon/internal/events"
	"glowsalon/internal/metrics"
)

// Refresher keeps the availability snapshot loosely in sync with the
// appointment store. Commits made through this process invalidate the
// affected staff member immediately via the event bus; the periodic flush
// covers bookings written by anything else. Best-effort only.
type Refresher struct {
	snapshot *Snapshot
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

func NewRefresher(snapshot *Snapshot, bus *events.EventBus, interval time.Duration, m *metrics.Metrics, logger *zerolog.Logger) *Refresher {
	r := &Refresher{
		snapshot: snapshot,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}

	if bus != nil {
		invalidate := func(event events.Event) error {
			if event.StaffID != "" {
				r.snapshot.InvalidateStaff(context.Background(), event.StaffID)
			}
			return nil
		}
		bus.Subscribe(events.TypeBookingCreated, invalidate)
		bus.Subscribe(events.TypeStatusChanged, invalidate)
	}

	return r
}

// Start runs the periodic flush loop until the context is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	if !r.snapshot.Enabled() {
		r.logger.Info().Msg("availability snapshot cache disabled; refresher idle")
		return
	}

	interval := r.interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	r.logger.Info().Dur("interval", interval).Msg("availability refresher started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("availability refresher stopped")
			return
		case <-ticker.C:
			r.snapshot.Flush(ctx)
			r.metrics.IncCacheRefresh()
		}
	}
}
