// Package results merges many participants' availability sets into
// per-slot participant lists and derives consensus and conflict views.
package results

import (
	"sort"

	"github.com/whenworks/whenworks/pkg/core/availability"
	"github.com/whenworks/whenworks/pkg/core/model"
)

// AvailabilityMap maps a slot identifier to the participants available
// at that slot, in roster order. It is a derived, read-only projection:
// rebuild it from a fresh snapshot instead of mutating it in place.
// Slots nobody referenced do not appear.
type AvailabilityMap map[string][]string

// Consensus partitions slots into full agreement and full conflict.
// Slots with partial overlap belong to neither list.
type Consensus struct {
	AllAvailable  []string
	NoneAvailable []string
}

// Aggregate builds the per-slot participant lists from a snapshot of
// each participant's set. Participants supply the name order; a
// participant missing from sets simply has empty availability, never an
// error.
func Aggregate(participants []string, sets map[string]availability.Set) AvailabilityMap {
	m := make(AvailabilityMap)
	for _, name := range participants {
		for slot := range sets[name] {
			m[slot] = append(m[slot], name)
		}
	}
	return m
}

// HasMutualAvailability reports whether at least one slot has the full
// roster available.
func HasMutualAvailability(m AvailabilityMap, participants []string) bool {
	if len(participants) == 0 {
		return false
	}
	for _, names := range m {
		if len(names) == len(participants) {
			return true
		}
	}
	return false
}

// FindConsensusAndConflicts splits the map's slots into those where
// everyone is available and those where nobody is. Both lists are
// sorted so callers render deterministically.
func FindConsensusAndConflicts(m AvailabilityMap, participants []string) Consensus {
	c := Consensus{
		AllAvailable:  []string{},
		NoneAvailable: []string{},
	}
	for slot, names := range m {
		if len(participants) > 0 && len(names) == len(participants) {
			c.AllAvailable = append(c.AllAvailable, slot)
		}
		if len(names) == 0 {
			c.NoneAvailable = append(c.NoneAvailable, slot)
		}
	}
	sort.Strings(c.AllAvailable)
	sort.Strings(c.NoneAvailable)
	return c
}

// HeatFraction returns the share of the roster available at slot,
// clamped to 0 for an empty roster.
func HeatFraction(m AvailabilityMap, slot string, participants []string) float64 {
	if len(participants) == 0 {
		return 0
	}
	return float64(len(m[slot])) / float64(len(participants))
}

// NormalizeWireKey converts a raw availability key from the storage
// service into the canonical UTC slot identifier. Keys may arrive
// without a zone designator; those are read as UTC.
func NormalizeWireKey(raw string) (string, error) {
	t, err := model.ParseSlot(raw)
	if err != nil {
		return "", err
	}
	return model.SlotID(t), nil
}

// NormalizeWireMap rewrites a raw slot->names map onto canonical slot
// identifiers, merging entries that normalize to the same slot while
// keeping first-seen name order. Unparsable keys are dropped rather
// than failing the whole snapshot.
func NormalizeWireMap(raw map[string][]string) AvailabilityMap {
	m := make(AvailabilityMap, len(raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		slot, err := NormalizeWireKey(k)
		if err != nil {
			continue
		}
		for _, name := range raw[k] {
			if !containsName(m[slot], name) {
				m[slot] = append(m[slot], name)
			}
		}
	}
	return m
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
