package database

import (
	"context"
	"database/sql"
	"fmt"

	"glowsalon/internal/models"
)

// GetStaff returns a staff member with location assignments, or nil when the
// id is unknown.
func (db *DB) GetStaff(ctx context.Context, staffID string) (*models.StaffMember, error) {
	var s models.StaffMember
	err := db.QueryRowContext(ctx, `
		SELECT id, name, job_role, status, home_service_capable
		FROM staff WHERE id = ?`,
		staffID,
	).Scan(&s.ID, &s.Name, &s.JobRole, &s.Status, &s.HomeServiceCapable)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}

	if err := db.loadLocations(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActiveByLocation returns bookable staff assigned to the location:
// active, client-facing role.
func (db *DB) ListActiveByLocation(ctx context.Context, locationID string) ([]models.StaffMember, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.name, s.job_role, s.status, s.home_service_capable
		FROM staff s
		JOIN staff_locations sl ON sl.staff_id = s.id
		WHERE sl.location_id = ? AND s.status = ?
		ORDER BY s.name`,
		locationID, models.StaffActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list staff by location: %w", err)
	}
	defer rows.Close()

	return db.collectBookableStaff(ctx, rows)
}

// ListActiveWithHomeService returns bookable staff who take home visits.
func (db *DB) ListActiveWithHomeService(ctx context.Context) ([]models.StaffMember, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, job_role, status, home_service_capable
		FROM staff
		WHERE home_service_capable = 1 AND status = ?
		ORDER BY name`,
		models.StaffActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list home-service staff: %w", err)
	}
	defer rows.Close()

	return db.collectBookableStaff(ctx, rows)
}

// UpsertStaff creates or replaces a staff directory record.
func (db *DB) UpsertStaff(ctx context.Context, s *models.StaffMember) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO staff (id, name, job_role, status, home_service_capable)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.JobRole, s.Status, s.HomeServiceCapable,
	)
	if err != nil {
		return fmt.Errorf("upsert staff: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM staff_locations WHERE staff_id = ?`, s.ID); err != nil {
		return fmt.Errorf("clear staff locations: %w", err)
	}
	for _, loc := range s.Locations {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO staff_locations (staff_id, location_id) VALUES (?, ?)`,
			s.ID, loc,
		); err != nil {
			return fmt.Errorf("insert staff location: %w", err)
		}
	}

	return tx.Commit()
}

func (db *DB) collectBookableStaff(ctx context.Context, rows *sql.Rows) ([]models.StaffMember, error) {
	var staff []models.StaffMember
	for rows.Next() {
		var s models.StaffMember
		if err := rows.Scan(&s.ID, &s.Name, &s.JobRole, &s.Status, &s.HomeServiceCapable); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		if !s.Bookable() {
			continue
		}
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range staff {
		if err := db.loadLocations(ctx, &staff[i]); err != nil {
			return nil, err
		}
	}
	return staff, nil
}

func (db *DB) loadLocations(ctx context.Context, s *models.StaffMember) error {
	rows, err := db.QueryContext(ctx,
		`SELECT location_id FROM staff_locations WHERE staff_id = ? ORDER BY location_id`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("load staff locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return fmt.Errorf("scan staff location: %w", err)
		}
		s.Locations = append(s.Locations, loc)
	}
	return rows.Err()
}
