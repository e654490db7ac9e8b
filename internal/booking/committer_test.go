package booking

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"glowsalon/internal/availability"
	"glowsalon/internal/events"
	"glowsalon/internal/models"
)

// memStore is an in-memory appointment store shared between the committer
// and the evaluator, so commit-time checks observe fresh inserts.
type memStore struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
}

func newMemStore() *memStore {
	return &memStore{appts: make(map[string]*models.Appointment)}
}

func (m *memStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appts[id]
	if !ok {
		return nil, nil
	}
	copy := *appt
	return &copy, nil
}

func (m *memStore) FindAppointment(ctx context.Context, staffID string, start time.Time, clientID string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, appt := range m.appts {
		if appt.StaffID == staffID && appt.ClientID == clientID && appt.Date.Equal(start) {
			copy := *appt
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *appt
	m.appts[appt.ID] = &copy
	return nil
}

func (m *memStore) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	appt.Status = status
	appt.UpdatedAt = time.Now()
	copy := *appt
	return &copy, nil
}

func (m *memStore) ListByStaff(ctx context.Context, staffID string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.appts {
		if len(appt.StaffWindows(staffID)) > 0 {
			out = append(out, *appt)
		}
	}
	return out, nil
}

type noDayOffs struct{}

func (noDayOffs) ListDayOffsByStaff(ctx context.Context, staffID string) ([]models.DayOff, error) {
	return nil, nil
}

func newTestCommitter(store *memStore) *Committer {
	logger := zerolog.New(io.Discard)
	eval := availability.NewEvaluator(store, noDayOffs{}, &logger)
	return NewCommitter(store, eval, events.NewEventBus(), nil, &logger)
}

func validRequest(selectedAt time.Time) Request {
	return Request{
		StaffID:         "amina",
		ServiceID:       "cut",
		LocationID:      "downtown",
		ClientID:        "client-1",
		Date:            time.Date(2025, 6, 9, 0, 0, 0, 0, time.Local),
		Time:            "10:00",
		DurationMinutes: 60,
		SelectedAt:      selectedAt,
	}
}

func TestCommitSuccess(t *testing.T) {
	store := newMemStore()
	committer := newTestCommitter(store)

	appt, err := committer.Commit(context.Background(), validRequest(time.Now()))
	assert.NoError(t, err)
	assert.NotNil(t, appt)
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.NotEmpty(t, appt.ID)
	assert.Regexp(t, `^GS-[0-9A-F]{8}$`, appt.BookingReference)

	stored, err := store.GetAppointment(context.Background(), appt.ID)
	assert.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestCommitValidation(t *testing.T) {
	store := newMemStore()
	committer := newTestCommitter(store)
	ctx := context.Background()

	t.Run("missing staff", func(t *testing.T) {
		req := validRequest(time.Now())
		req.StaffID = ""
		_, err := committer.Commit(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("bad time", func(t *testing.T) {
		req := validRequest(time.Now())
		req.Time = "25:99"
		_, err := committer.Commit(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("non-positive duration", func(t *testing.T) {
		req := validRequest(time.Now())
		req.DurationMinutes = 0
		_, err := committer.Commit(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestCommitConflictVsStaleSlot(t *testing.T) {
	store := newMemStore()
	committer := newTestCommitter(store)
	ctx := context.Background()

	// Existing appointment created long before anyone picked a slot.
	old := &models.Appointment{
		ID:              "a1",
		StaffID:         "amina",
		ClientID:        "client-0",
		Date:            time.Date(2025, 6, 9, 10, 0, 0, 0, time.Local),
		DurationMinutes: 60,
		Status:          models.StatusConfirmed,
		CreatedAt:       time.Now().Add(-24 * time.Hour),
	}
	assert.NoError(t, store.InsertAppointment(ctx, old))

	t.Run("pre-existing conflict", func(t *testing.T) {
		req := validRequest(time.Now())
		req.ClientID = "client-2"
		_, err := committer.Commit(ctx, req)
		assert.ErrorIs(t, err, ErrTimeConflict)
	})

	t.Run("race lost after slot selection", func(t *testing.T) {
		// The client picked the slot before the conflicting appointment
		// was created.
		req := validRequest(time.Now().Add(-48 * time.Hour))
		req.ClientID = "client-3"
		_, err := committer.Commit(ctx, req)
		assert.ErrorIs(t, err, ErrStaleSlot)
	})
}

func TestCommitDayOff(t *testing.T) {
	store := newMemStore()
	logger := zerolog.New(io.Discard)
	offs := &staticDayOffs{offs: []models.DayOff{
		{StaffID: "amina", Weekday: time.Monday, IsDayOff: true, IsRecurring: true},
	}}
	eval := availability.NewEvaluator(store, offs, &logger)
	committer := NewCommitter(store, eval, nil, nil, &logger)

	// 2025-06-09 is a Monday.
	_, err := committer.Commit(context.Background(), validRequest(time.Now()))
	assert.ErrorIs(t, err, ErrDayOff)
}

type staticDayOffs struct {
	offs []models.DayOff
}

func (s *staticDayOffs) ListDayOffsByStaff(ctx context.Context, staffID string) ([]models.DayOff, error) {
	return s.offs, nil
}

func TestCommitIdempotentRetry(t *testing.T) {
	store := newMemStore()
	committer := newTestCommitter(store)
	ctx := context.Background()

	req := validRequest(time.Now())
	first, err := committer.Commit(ctx, req)
	assert.NoError(t, err)

	second, err := committer.Commit(ctx, req)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.BookingReference, second.BookingReference)

	store.mu.Lock()
	count := len(store.appts)
	store.mu.Unlock()
	assert.Equal(t, 1, count, "retry must not create a duplicate")
}

func TestCommitRaceExactlyOneWins(t *testing.T) {
	store := newMemStore()
	committer := newTestCommitter(store)
	ctx := context.Background()

	// Both clients saw the slot as free at the same moment.
	selectedAt := time.Now()

	type outcome struct {
		appt *models.Appointment
		err  error
	}
	results := make(chan outcome, 2)

	var wg sync.WaitGroup
	for _, client := range []string{"client-a", "client-b"} {
		wg.Add(1)
		go func(clientID string) {
			defer wg.Done()
			req := validRequest(selectedAt)
			req.ClientID = clientID
			appt, err := committer.Commit(ctx, req)
			results <- outcome{appt, err}
		}(client)
	}
	wg.Wait()
	close(results)

	var wins, stale int
	for res := range results {
		switch {
		case res.err == nil:
			wins++
			assert.Equal(t, models.StatusConfirmed, res.appt.Status)
		case errors.Is(res.err, ErrStaleSlot):
			stale++
		default:
			t.Fatalf("unexpected error: %v", res.err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one commit must succeed")
	assert.Equal(t, 1, stale, "the loser must see a stale-slot rejection")
}

// mockStore is a testify mock for transition tests.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *mockStore) FindAppointment(ctx context.Context, staffID string, start time.Time, clientID string) (*models.Appointment, error) {
	args := m.Called(ctx, staffID, start, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *mockStore) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	return m.Called(ctx, appt).Error(0)
}

func (m *mockStore) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func TestLifecycleTransition(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("legal transition", func(t *testing.T) {
		store := new(mockStore)
		lc := NewLifecycle(store, events.NewEventBus(), nil, &logger)

		current := &models.Appointment{ID: "a1", StaffID: "amina", Status: models.StatusConfirmed}
		updated := &models.Appointment{ID: "a1", StaffID: "amina", Status: models.StatusArrived}
		store.On("GetAppointment", ctx, "a1").Return(current, nil).Once()
		store.On("UpdateAppointmentStatus", ctx, "a1", models.StatusArrived).Return(updated, nil).Once()

		got, err := lc.Transition(ctx, "a1", models.StatusArrived)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusArrived, got.Status)
		store.AssertExpectations(t)
	})

	t.Run("illegal transition never touches the store", func(t *testing.T) {
		store := new(mockStore)
		lc := NewLifecycle(store, nil, nil, &logger)

		current := &models.Appointment{ID: "a1", Status: models.StatusCompleted}
		store.On("GetAppointment", ctx, "a1").Return(current, nil).Once()

		_, err := lc.Transition(ctx, "a1", models.StatusConfirmed)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		store.AssertNotCalled(t, "UpdateAppointmentStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status", func(t *testing.T) {
		store := new(mockStore)
		lc := NewLifecycle(store, nil, nil, &logger)

		_, err := lc.Transition(ctx, "a1", models.AppointmentStatus("teleported"))
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("missing appointment", func(t *testing.T) {
		store := new(mockStore)
		lc := NewLifecycle(store, nil, nil, &logger)

		store.On("GetAppointment", ctx, "missing").Return(nil, nil).Once()
		_, err := lc.Transition(ctx, "missing", models.StatusCancelled)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
