package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/whenworks/whenworks/pkg/db"
)

// GetEvent retrieves a single event by its code.
func (d *DB) GetEvent(ctx context.Context, code string) (*db.EventRecord, error) {
	var record db.EventRecord
	err := d.pool.QueryRow(ctx, `
		SELECT code, title, event_type, start_date, end_date,
		       start_weekday, end_weekday, start_time, end_time,
		       timezone, duration_minutes
		FROM event
		WHERE code = $1
	`, code).Scan(
		&record.Code, &record.Title, &record.EventType,
		&record.StartDate, &record.EndDate,
		&record.StartWeekday, &record.EndWeekday,
		&record.StartTime, &record.EndTime,
		&record.Timezone, &record.DurationMinutes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("event %s not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return &record, nil
}

// InsertEvent inserts a new event record. Codes are unique; inserting
// an existing code fails rather than overwriting.
func (d *DB) InsertEvent(ctx context.Context, record *db.EventRecord) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO event (code, title, event_type, start_date, end_date,
		                   start_weekday, end_weekday, start_time, end_time,
		                   timezone, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		record.Code, record.Title, record.EventType,
		record.StartDate, record.EndDate,
		record.StartWeekday, record.EndWeekday,
		record.StartTime, record.EndTime,
		record.Timezone, record.DurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}
