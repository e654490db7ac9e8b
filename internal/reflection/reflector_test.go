package reflection

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"glowsalon/internal/models"
)

type fakeDirectory struct {
	staff map[string]*models.StaffMember
	err   error
}

func (f *fakeDirectory) GetStaff(ctx context.Context, staffID string) (*models.StaffMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.staff[staffID], nil
}

func newReflector() *Reflector {
	logger := zerolog.New(io.Discard)
	return NewReflector(models.HomeServiceLocation, &logger)
}

func appt(id, staffID, location string, at time.Time, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		ID:              id,
		StaffID:         staffID,
		LocationID:      location,
		Date:            at,
		DurationMinutes: 60,
		Status:          status,
	}
}

func TestReflectHomeIntoPhysical(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	dir := &fakeDirectory{staff: map[string]*models.StaffMember{
		"amina": {ID: "amina", Locations: []string{"downtown"}, HomeServiceCapable: true, JobRole: models.RoleStylist, Status: models.StaffActive},
		"bao":   {ID: "bao", Locations: []string{"uptown"}, HomeServiceCapable: true, JobRole: models.RoleStylist, Status: models.StaffActive},
	}}

	appts := []models.Appointment{
		appt("h1", "amina", models.HomeServiceLocation, at, models.StatusConfirmed),
		appt("h2", "bao", models.HomeServiceLocation, at, models.StatusConfirmed),
	}

	entries := newReflector().Reflect(context.Background(), appts, dir, "downtown")

	// Only amina works downtown; bao's home visit stays out.
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if !e.Reflected {
		t.Error("expected a reflected entry")
	}
	if e.OriginalID != "h1" {
		t.Errorf("expected original id h1, got %s", e.OriginalID)
	}
	if e.TargetID() != "h1" {
		t.Errorf("expected mutations to resolve to h1, got %s", e.TargetID())
	}
}

func TestReflectPhysicalIntoHome(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	dir := &fakeDirectory{staff: map[string]*models.StaffMember{
		"amina": {ID: "amina", Locations: []string{"downtown"}, HomeServiceCapable: true, JobRole: models.RoleStylist, Status: models.StaffActive},
		"cleo":  {ID: "cleo", Locations: []string{"downtown"}, HomeServiceCapable: false, JobRole: models.RoleStylist, Status: models.StaffActive},
	}}

	appts := []models.Appointment{
		appt("p1", "amina", "downtown", at, models.StatusConfirmed),
		appt("p2", "cleo", "downtown", at, models.StatusConfirmed),
	}

	entries := newReflector().Reflect(context.Background(), appts, dir, models.HomeServiceLocation)

	// Only home-service-capable staff appear in the home view.
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].OriginalID != "p1" {
		t.Errorf("expected p1 reflected, got %s", entries[0].OriginalID)
	}
}

func TestReflectNoCrossPhysicalMirroring(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	dir := &fakeDirectory{staff: map[string]*models.StaffMember{
		"amina": {ID: "amina", Locations: []string{"downtown", "uptown"}, JobRole: models.RoleStylist, Status: models.StaffActive},
	}}

	appts := []models.Appointment{
		appt("p1", "amina", "uptown", at, models.StatusConfirmed),
	}

	entries := newReflector().Reflect(context.Background(), appts, dir, "downtown")
	if len(entries) != 0 {
		t.Fatalf("physical-to-physical should not reflect, got %d entries", len(entries))
	}
}

func TestReflectSkipsTerminalAppointments(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	dir := &fakeDirectory{staff: map[string]*models.StaffMember{
		"amina": {ID: "amina", Locations: []string{"downtown"}, HomeServiceCapable: true, JobRole: models.RoleStylist, Status: models.StaffActive},
	}}

	appts := []models.Appointment{
		appt("h1", "amina", models.HomeServiceLocation, at, models.StatusCancelled),
		appt("h2", "amina", models.HomeServiceLocation, at, models.StatusCompleted),
	}

	entries := newReflector().Reflect(context.Background(), appts, dir, "downtown")
	if len(entries) != 0 {
		t.Fatalf("terminal appointments should not reflect, got %d entries", len(entries))
	}
}

func TestReflectOwnLocationKeptAsReal(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	dir := &fakeDirectory{staff: map[string]*models.StaffMember{}}

	appts := []models.Appointment{
		// Terminal appointments at the viewed location stay visible; the
		// calendar also renders history.
		appt("p1", "amina", "downtown", at, models.StatusCompleted),
		appt("p2", "amina", "downtown", at.Add(time.Hour), models.StatusConfirmed),
	}

	entries := newReflector().Reflect(context.Background(), appts, dir, "downtown")
	if len(entries) != 2 {
		t.Fatalf("expected 2 real entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Reflected {
			t.Errorf("entry %s should be real", e.Appointment.ID)
		}
	}
}

func TestReflectOriginalSortsBeforeReflection(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	dir := &fakeDirectory{staff: map[string]*models.StaffMember{
		"amina": {ID: "amina", Locations: []string{"downtown"}, HomeServiceCapable: true, JobRole: models.RoleStylist, Status: models.StaffActive},
	}}

	appts := []models.Appointment{
		appt("h1", "amina", models.HomeServiceLocation, at, models.StatusConfirmed),
		appt("p1", "amina", "downtown", at, models.StatusConfirmed),
	}

	entries := newReflector().Reflect(context.Background(), appts, dir, "downtown")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Reflected {
		t.Error("original entry must sort before the reflection at the same time")
	}
	if !entries[1].Reflected {
		t.Error("expected second entry to be the reflection")
	}
}

func TestReflectDirectoryFailureSkipsEntry(t *testing.T) {
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)
	dir := &fakeDirectory{err: errors.New("directory down")}

	appts := []models.Appointment{
		appt("h1", "amina", models.HomeServiceLocation, at, models.StatusConfirmed),
	}

	entries := newReflector().Reflect(context.Background(), appts, dir, "downtown")
	if len(entries) != 0 {
		t.Fatalf("expected lookup failure to drop the reflection, got %d entries", len(entries))
	}
}
