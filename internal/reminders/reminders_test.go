package reminders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"glowsalon/internal/models"
)

type fakeSource struct {
	appts []models.Appointment
}

func (f *fakeSource) ListByDate(_ context.Context, _ time.Time) ([]models.Appointment, error) {
	return f.appts, nil
}

type recordingNotifier struct {
	got []string
}

func (n *recordingNotifier) Notify(_ context.Context, appt models.Appointment) error {
	n.got = append(n.got, appt.ID)
	return nil
}

func TestRemindTomorrowSkipsTerminal(t *testing.T) {
	start := time.Now().AddDate(0, 0, 1)
	source := &fakeSource{appts: []models.Appointment{
		{ID: "a1", ClientID: "c1", Date: start, DurationMinutes: 60, Status: models.StatusConfirmed},
		{ID: "a2", ClientID: "c2", Date: start, DurationMinutes: 60, Status: models.StatusCancelled},
		{ID: "a3", ClientID: "c3", Date: start, DurationMinutes: 60, Status: models.StatusPending},
		{ID: "a4", ClientID: "c4", Date: start, DurationMinutes: 60, Status: models.StatusNoShow},
	}}

	notifier := &recordingNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewService(source, notifier, 9, &logger)

	svc.RemindTomorrow(context.Background())

	assert.ElementsMatch(t, []string{"a1", "a3"}, notifier.got)
}

func TestTimeUntilNextHourIsPositive(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		d := timeUntilNextHour(hour)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 24*time.Hour)
	}
}
