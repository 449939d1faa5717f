package db

import "context"

// EventStore persists event records.
type EventStore interface {
	GetEvent(ctx context.Context, code string) (*EventRecord, error)
	InsertEvent(ctx context.Context, record *EventRecord) error
}

// AvailabilityStore persists participant submissions.
type AvailabilityStore interface {
	GetSelfAvailability(ctx context.Context, eventCode, displayName string) (*AvailabilityRecord, error)
	SubmitAvailability(ctx context.Context, record *AvailabilityRecord) error
	GetAllAvailability(ctx context.Context, eventCode string) (*AllAvailability, error)
}

// Store is the full storage surface. The postgres implementation
// satisfies it; services depend on the narrow slices they need.
type Store interface {
	EventStore
	AvailabilityStore
}
