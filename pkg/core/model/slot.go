package model

import (
	"fmt"
	"time"
)

// SlotMinutes is the fixed grid granularity.
const SlotMinutes = 15

const slotLayout = "2006-01-02T15:04:05Z"

// SlotID returns the canonical identifier of the 15-minute slot
// starting at t: its UTC start instant as an RFC 3339 string with
// minute precision. Seconds are always zero; "selected" is never a
// property of the slot itself, only of an availability set keyed by
// these identifiers.
func SlotID(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format(slotLayout)
}

// ParseSlot parses a slot identifier back into its UTC start instant.
// Identifiers without a zone designator are interpreted as UTC, which
// is how the storage service delivers naive datetimes.
func ParseSlot(id string) (time.Time, error) {
	layouts := []string{
		slotLayout,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, id); err == nil {
			return t.UTC().Truncate(time.Minute), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid slot identifier %q", id)
}
