package database

import (
	"context"
	"fmt"
	"time"

	"glowsalon/internal/models"
)

// ListDayOffsByStaff returns the staff member's recurring day-off records.
func (db *DB) ListDayOffsByStaff(ctx context.Context, staffID string) ([]models.DayOff, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, staff_id, weekday, is_day_off, is_recurring
		FROM day_offs
		WHERE staff_id = ?
		ORDER BY weekday`,
		staffID,
	)
	if err != nil {
		return nil, fmt.Errorf("list day offs: %w", err)
	}
	defer rows.Close()

	var offs []models.DayOff
	for rows.Next() {
		var d models.DayOff
		var weekday int
		if err := rows.Scan(&d.ID, &d.StaffID, &weekday, &d.IsDayOff, &d.IsRecurring); err != nil {
			return nil, fmt.Errorf("scan day off: %w", err)
		}
		d.Weekday = time.Weekday(weekday)
		offs = append(offs, d)
	}
	return offs, rows.Err()
}

// SetDayOff creates or updates a recurring day-off record.
func (db *DB) SetDayOff(ctx context.Context, staffID string, weekday time.Weekday, isDayOff bool) error {
	res, err := db.ExecContext(ctx, `
		UPDATE day_offs SET is_day_off = ?, is_recurring = 1
		WHERE staff_id = ? AND weekday = ?`,
		isDayOff, staffID, int(weekday),
	)
	if err != nil {
		return fmt.Errorf("update day off: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO day_offs (staff_id, weekday, is_day_off, is_recurring)
		VALUES (?, ?, ?, 1)`,
		staffID, int(weekday), isDayOff,
	)
	if err != nil {
		return fmt.Errorf("insert day off: %w", err)
	}
	return nil
}
