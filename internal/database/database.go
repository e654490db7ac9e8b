// Package database is the sqlite-backed appointment store, staff directory
// and day-off schedule.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the scheduling service.
type DB struct {
	*sql.DB
}

// New opens the database at path and runs migrations.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			service_id TEXT,
			client_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL,
			status TEXT NOT NULL,
			booking_reference TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sub-bookings attached to an appointment; each occupies its own
		// staff member's time.
		`CREATE TABLE IF NOT EXISTS appointment_services (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			appointment_id TEXT NOT NULL,
			staff_id TEXT NOT NULL,
			service_id TEXT,
			date DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL,
			FOREIGN KEY (appointment_id) REFERENCES appointments(id)
		)`,

		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			job_role TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Active',
			home_service_capable BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS staff_locations (
			staff_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			PRIMARY KEY (staff_id, location_id),
			FOREIGN KEY (staff_id) REFERENCES staff(id)
		)`,

		`CREATE TABLE IF NOT EXISTS day_offs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			staff_id TEXT NOT NULL,
			weekday INTEGER NOT NULL,
			is_day_off BOOLEAN NOT NULL DEFAULT 1,
			is_recurring BOOLEAN NOT NULL DEFAULT 1,
			FOREIGN KEY (staff_id) REFERENCES staff(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_appointments_staff ON appointments(staff_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_location_date ON appointments(location_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointment_services_staff ON appointment_services(staff_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// PingContext checks database connectivity for readiness probes.
func (db *DB) PingContext(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}
