// Package db declares the storage records and store interfaces shared
// by the services and the postgres implementation.
package db

// EventType discriminates the two range variants an event can carry.
type EventType string

const (
	EventTypeDate EventType = "Date"
	EventTypeWeek EventType = "Week"
)

// EventRecord is the persisted shape of an event. Date events fill the
// StartDate/EndDate pair; Week events fill the weekday pair instead.
// Times are minutes after local midnight in Timezone.
type EventRecord struct {
	Code            string
	Title           string
	EventType       EventType
	StartDate       string
	EndDate         string
	StartWeekday    int
	EndWeekday      int
	StartTime       int
	EndTime         int
	Timezone        string
	DurationMinutes int
}

// AvailabilityRecord is one participant's submission for an event.
// AvailableSlots holds canonical UTC slot identifiers.
type AvailabilityRecord struct {
	EventCode      string
	DisplayName    string
	Timezone       string
	AvailableSlots []string
}

// AllAvailability is the event-wide snapshot used by results views:
// the roster in submission order and every participant's slots.
type AllAvailability struct {
	Participants []string
	Availability map[string][]string
}
