package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"glowsalon/internal/models"
)

const appointmentColumns = `id, staff_id, location_id, service_id, client_id, date,
	duration_minutes, status, booking_reference, created_at, updated_at`

// ListByStaff returns every appointment where the staff member occupies
// time, whether as the primary provider or through an additional service.
func (db *DB) ListByStaff(ctx context.Context, staffID string) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE staff_id = ?
		   OR id IN (SELECT appointment_id FROM appointment_services WHERE staff_id = ?)
		ORDER BY date`,
		staffID, staffID,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments by staff: %w", err)
	}
	defer rows.Close()

	return db.collectAppointments(ctx, rows)
}

// ListByDate returns all appointments starting on the given calendar day.
func (db *DB) ListByDate(ctx context.Context, date time.Time) ([]models.Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date >= ? AND date < ?
		ORDER BY date`,
		dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments by date: %w", err)
	}
	defer rows.Close()

	return db.collectAppointments(ctx, rows)
}

// GetAppointment returns the appointment or nil when it does not exist.
func (db *DB) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = ?`,
		id,
	)

	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if err := db.loadAdditionalServices(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// FindAppointment locates an appointment by the idempotency tuple
// (staff, start time, client). Returns nil when none exists.
func (db *DB) FindAppointment(ctx context.Context, staffID string, start time.Time, clientID string) (*models.Appointment, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE staff_id = ? AND client_id = ? AND date = ?
		LIMIT 1`,
		staffID, clientID, start,
	)

	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	if err := db.loadAdditionalServices(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// InsertAppointment persists a new appointment and its additional services.
func (db *DB) InsertAppointment(ctx context.Context, appt *models.Appointment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (id, staff_id, location_id, service_id, client_id,
			date, duration_minutes, status, booking_reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		appt.ID, appt.StaffID, appt.LocationID, appt.ServiceID, appt.ClientID,
		appt.Date, appt.DurationMinutes, appt.Status, appt.BookingReference,
		appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	for i := range appt.AdditionalServices {
		svc := &appt.AdditionalServices[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO appointment_services (appointment_id, staff_id, service_id, date, duration_minutes)
			VALUES (?, ?, ?, ?, ?)`,
			appt.ID, svc.StaffID, svc.ServiceID, svc.Date, svc.DurationMinutes,
		)
		if err != nil {
			return fmt.Errorf("insert additional service: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateAppointmentStatus sets a new status and returns the updated record.
func (db *DB) UpdateAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return db.GetAppointment(ctx, id)
}

func (db *DB) collectAppointments(ctx context.Context, rows *sql.Rows) ([]models.Appointment, error) {
	var appts []models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range appts {
		if err := db.loadAdditionalServices(ctx, &appts[i]); err != nil {
			return nil, err
		}
	}
	return appts, nil
}

func (db *DB) loadAdditionalServices(ctx context.Context, appt *models.Appointment) error {
	rows, err := db.QueryContext(ctx, `
		SELECT staff_id, service_id, date, duration_minutes
		FROM appointment_services
		WHERE appointment_id = ?
		ORDER BY id`,
		appt.ID,
	)
	if err != nil {
		return fmt.Errorf("load additional services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var svc models.AdditionalService
		var serviceID sql.NullString
		if err := rows.Scan(&svc.StaffID, &serviceID, &svc.Date, &svc.DurationMinutes); err != nil {
			return fmt.Errorf("scan additional service: %w", err)
		}
		svc.ServiceID = serviceID.String
		appt.AdditionalServices = append(appt.AdditionalServices, svc)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var appt models.Appointment
	var serviceID, reference sql.NullString
	err := row.Scan(
		&appt.ID, &appt.StaffID, &appt.LocationID, &serviceID, &appt.ClientID,
		&appt.Date, &appt.DurationMinutes, &appt.Status, &reference,
		&appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	appt.ServiceID = serviceID.String
	appt.BookingReference = reference.String
	return &appt, nil
}
