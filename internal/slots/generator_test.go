package slots

import (
	"testing"
	"time"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator("09:00", "22:00", 15, 2*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestGenerateFullDay(t *testing.T) {
	g := newTestGenerator(t)

	// Future date: no lead-time filtering.
	date := time.Now().AddDate(0, 0, 7)
	now := time.Now()

	got := g.Generate(date, now)

	// 09:00 through 22:00 inclusive at 15-minute steps = 53 slots.
	if len(got) != 53 {
		t.Fatalf("expected 53 slots, got %d", len(got))
	}
	if got[0].Clock() != "09:00" {
		t.Errorf("expected first slot 09:00, got %s", got[0].Clock())
	}
	if got[len(got)-1].Clock() != "22:00" {
		t.Errorf("expected last slot 22:00, got %s", got[len(got)-1].Clock())
	}
}

func TestGenerateIdempotent(t *testing.T) {
	g := newTestGenerator(t)
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local)

	first := g.Generate(date, now)
	second := g.Generate(date, now)

	if len(first) != len(second) {
		t.Fatalf("repeated generation differs in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("slot %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestGenerateLeadTimeBoundary(t *testing.T) {
	g := newTestGenerator(t)
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		now       time.Time
		wantFirst string
	}{
		{
			// 08:00 + 2h = 10:00; the 10:00 slot itself is included.
			name:      "slot exactly two hours out is included",
			now:       time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local),
			wantFirst: "10:00",
		},
		{
			// 08:00:01 + 2h = 10:00:01; 10:00 is now one second short.
			name:      "slot one second short of lead time is excluded",
			now:       time.Date(2025, 6, 2, 8, 0, 1, 0, time.Local),
			wantFirst: "10:15",
		},
		{
			name:      "morning request keeps the full day",
			now:       time.Date(2025, 6, 2, 5, 0, 0, 0, time.Local),
			wantFirst: "09:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Generate(date, tt.now)
			if len(got) == 0 {
				t.Fatal("expected slots, got none")
			}
			if got[0].Clock() != tt.wantFirst {
				t.Errorf("expected first slot %s, got %s", tt.wantFirst, got[0].Clock())
			}
		})
	}
}

func TestGenerateNoSlotsLeftToday(t *testing.T) {
	g := newTestGenerator(t)
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)

	// 21:00 + 2h lead = 23:00, past close.
	now := time.Date(2025, 6, 2, 21, 0, 0, 0, time.Local)
	if got := g.Generate(date, now); len(got) != 0 {
		t.Errorf("expected no slots, got %d", len(got))
	}
}

func TestGenerateFutureDateIgnoresLeadTime(t *testing.T) {
	g := newTestGenerator(t)

	// Late evening: tomorrow's morning slots are within 2h of now on the
	// clock but must not be filtered.
	now := time.Date(2025, 6, 2, 23, 30, 0, 0, time.Local)
	tomorrow := time.Date(2025, 6, 3, 0, 0, 0, 0, time.Local)

	got := g.Generate(tomorrow, now)
	if len(got) != 53 {
		t.Fatalf("expected full day for future date, got %d slots", len(got))
	}
	if got[0].Clock() != "09:00" {
		t.Errorf("expected first slot 09:00, got %s", got[0].Clock())
	}
}

func TestTimeSlotLabel(t *testing.T) {
	tests := []struct {
		slot  TimeSlot
		label string
	}{
		{TimeSlot{9, 0}, "9:00 AM"},
		{TimeSlot{12, 15}, "12:15 PM"},
		{TimeSlot{22, 0}, "10:00 PM"},
		{TimeSlot{0, 30}, "12:30 AM"},
	}

	for _, tt := range tests {
		if got := tt.slot.Label(); got != tt.label {
			t.Errorf("slot %v: expected label %q, got %q", tt.slot, tt.label, got)
		}
	}
}

func TestParseClock(t *testing.T) {
	if _, err := ParseClock("9"); err == nil {
		t.Error("expected error for missing minutes")
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Error("expected error for out-of-range hour")
	}
	if _, err := ParseClock("ab:cd"); err == nil {
		t.Error("expected error for non-numeric time")
	}
	s, err := ParseClock("09:45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Hour != 9 || s.Minute != 45 {
		t.Errorf("expected 09:45, got %v", s)
	}
}
