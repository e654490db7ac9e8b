// Package cache keeps a best-effort redis snapshot of availability views.
// Only read paths consume it; the booking commit path always reads the
// appointment store directly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"glowsalon/internal/metrics"
)

const keyPrefix = "slots:"

// SlotView is one cached slot row for a staff member's day.
type SlotView struct {
	Label     string `json:"label"` // "9:00 AM"
	Clock     string `json:"clock"` // "09:00"
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Snapshot is a TTL cache of per-staff, per-day slot views. With no redis
// client configured every lookup is a miss and writes are no-ops.
type Snapshot struct {
	rdb     *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewSnapshot(rdb *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *zerolog.Logger) *Snapshot {
	return &Snapshot{rdb: rdb, ttl: ttl, metrics: m, logger: logger}
}

// Enabled reports whether a redis backend is configured.
func (s *Snapshot) Enabled() bool {
	return s.rdb != nil && s.ttl > 0
}

// Get returns the cached views for (staff, date), if present.
func (s *Snapshot) Get(ctx context.Context, staffID string, date time.Time) ([]SlotView, bool) {
	if !s.Enabled() {
		return nil, false
	}

	val, err := s.rdb.Get(ctx, s.key(staffID, date)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("snapshot cache read failed")
		}
		s.metrics.IncCacheLookup("miss")
		return nil, false
	}

	var views []SlotView
	if err := json.Unmarshal([]byte(val), &views); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot cache entry corrupt; dropping")
		s.metrics.IncCacheLookup("miss")
		return nil, false
	}

	s.metrics.IncCacheLookup("hit")
	return views, true
}

// Set stores the views for (staff, date) with the configured TTL.
func (s *Snapshot) Set(ctx context.Context, staffID string, date time.Time, views []SlotView) {
	if !s.Enabled() {
		return
	}

	data, err := json.Marshal(views)
	if err != nil {
		s.logger.Warn().Err(err).Msg("snapshot cache marshal failed")
		return
	}
	if err := s.rdb.Set(ctx, s.key(staffID, date), data, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot cache write failed")
	}
}

// InvalidateStaff drops every cached day for the staff member.
func (s *Snapshot) InvalidateStaff(ctx context.Context, staffID string) {
	s.deleteByPattern(ctx, keyPrefix+staffID+":*")
}

// Flush drops every snapshot entry.
func (s *Snapshot) Flush(ctx context.Context) {
	s.deleteByPattern(ctx, keyPrefix+"*")
}

func (s *Snapshot) deleteByPattern(ctx context.Context, pattern string) {
	if !s.Enabled() {
		return
	}

	iter := s.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("snapshot cache delete failed")
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot cache scan failed")
	}
}

func (s *Snapshot) key(staffID string, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, staffID, date.Format("2006-01-02"))
}
