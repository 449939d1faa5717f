package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/whenworks/whenworks/pkg/db"
)

// GetSelfAvailability retrieves one participant's submission for an
// event. A participant who has never submitted returns nil, nil.
func (d *DB) GetSelfAvailability(ctx context.Context, eventCode, displayName string) (*db.AvailabilityRecord, error) {
	record := db.AvailabilityRecord{
		EventCode:   eventCode,
		DisplayName: displayName,
	}
	err := d.pool.QueryRow(ctx, `
		SELECT timezone, available_slots
		FROM availability
		WHERE event_code = $1 AND display_name = $2
	`, eventCode, displayName).Scan(&record.Timezone, &record.AvailableSlots)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	return &record, nil
}

// SubmitAvailability stores a participant's submission, replacing any
// prior submission under the same name wholesale.
func (d *DB) SubmitAvailability(ctx context.Context, record *db.AvailabilityRecord) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO availability (event_code, display_name, timezone, available_slots)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_code, display_name)
		DO UPDATE SET timezone = EXCLUDED.timezone,
		              available_slots = EXCLUDED.available_slots,
		              submitted_at = NOW()
	`, record.EventCode, record.DisplayName, record.Timezone, record.AvailableSlots)
	if err != nil {
		return fmt.Errorf("failed to store availability: %w", err)
	}
	return nil
}

// GetAllAvailability retrieves the event-wide snapshot: every
// participant in first-submission order and the slot->names map.
func (d *DB) GetAllAvailability(ctx context.Context, eventCode string) (*db.AllAvailability, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT display_name, available_slots
		FROM availability
		WHERE event_code = $1
		ORDER BY created_at, display_name
	`, eventCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	all := &db.AllAvailability{
		Participants: []string{},
		Availability: map[string][]string{},
	}
	for rows.Next() {
		var name string
		var slots []string
		if err := rows.Scan(&name, &slots); err != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", err)
		}
		all.Participants = append(all.Participants, name)
		for _, slot := range slots {
			all.Availability[slot] = append(all.Availability[slot], name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability rows: %w", err)
	}

	return all, nil
}
