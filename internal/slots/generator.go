// Package slots generates candidate booking times for a day.
package slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeSlot is a bookable (hour, minute) boundary within a day. Slots are
// generated fresh per query and never persisted.
type TimeSlot struct {
	Hour   int
	Minute int
}

// At places the slot on a concrete date in that date's location.
func (s TimeSlot) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), s.Hour, s.Minute, 0, 0, date.Location())
}

// Label returns the display form, e.g. "9:00 AM".
func (s TimeSlot) Label() string {
	ref := time.Date(2000, 1, 1, s.Hour, s.Minute, 0, 0, time.UTC)
	return ref.Format("3:04 PM")
}

// Clock returns the HH:MM form, e.g. "09:00".
func (s TimeSlot) Clock() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// Generator produces time slots between business open and close.
type Generator struct {
	open     TimeSlot
	close    TimeSlot
	interval time.Duration
	leadTime time.Duration
}

// NewGenerator builds a generator for the given business hours.
// open/close are HH:MM strings; interval is the slot step; leadTime is the
// minimum advance notice applied to same-day slots only.
func NewGenerator(open, close string, intervalMinutes int, leadTime time.Duration) (*Generator, error) {
	openSlot, err := ParseClock(open)
	if err != nil {
		return nil, fmt.Errorf("parse business open: %w", err)
	}
	closeSlot, err := ParseClock(close)
	if err != nil {
		return nil, fmt.Errorf("parse business close: %w", err)
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 15
	}
	return &Generator{
		open:     openSlot,
		close:    closeSlot,
		interval: time.Duration(intervalMinutes) * time.Minute,
		leadTime: leadTime,
	}, nil
}

// Generate returns every slot boundary between open and close inclusive.
// When date falls on the same calendar day as now, slots starting earlier
// than now+leadTime are excluded. Future dates are never lead-time filtered.
// An empty result for today means "no slots left today"; it is not an error.
func (g *Generator) Generate(date, now time.Time) []TimeSlot {
	openAt := g.open.At(date)
	closeAt := g.close.At(date)

	var result []TimeSlot
	for cursor := openAt; !cursor.After(closeAt); cursor = cursor.Add(g.interval) {
		// Compare full date-times so the lead-time window is correct for
		// slots near midnight, not just hour-of-day.
		if sameDay(date, now) && cursor.Before(now.Add(g.leadTime)) {
			continue
		}
		result = append(result, TimeSlot{Hour: cursor.Hour(), Minute: cursor.Minute()})
	}
	return result
}

// Labels returns the display labels for a slot sequence, in order.
func Labels(ts []TimeSlot) []string {
	labels := make([]string, len(ts))
	for i, s := range ts {
		labels[i] = s.Label()
	}
	return labels
}

// ParseClock parses an HH:MM string into a TimeSlot.
func ParseClock(clock string) (TimeSlot, error) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return TimeSlot{}, fmt.Errorf("invalid time format: %s", clock)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("invalid hour: %w", err)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("invalid minute: %w", err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeSlot{}, fmt.Errorf("time out of range: %s", clock)
	}

	return TimeSlot{Hour: hour, Minute: minute}, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
