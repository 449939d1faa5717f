package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whenworks/whenworks/pkg/core/availability"
)

const (
	slotX = "2025-01-01T09:00:00Z"
	slotY = "2025-01-01T09:15:00Z"
)

func TestAggregate(t *testing.T) {
	roster := []string{"A", "B"}
	sets := map[string]availability.Set{
		"A": availability.NewSet(slotX, slotY),
		"B": availability.NewSet(slotX),
	}

	m := Aggregate(roster, sets)

	require.Len(t, m, 2)
	assert.Equal(t, []string{"A", "B"}, m[slotX])
	assert.Equal(t, []string{"A"}, m[slotY])
}

func TestAggregateRosterOrderIsStable(t *testing.T) {
	roster := []string{"Zoe", "Amy", "Mia"}
	sets := map[string]availability.Set{
		"Amy": availability.NewSet(slotX),
		"Mia": availability.NewSet(slotX),
		"Zoe": availability.NewSet(slotX),
	}

	m := Aggregate(roster, sets)
	assert.Equal(t, []string{"Zoe", "Amy", "Mia"}, m[slotX])
}

func TestAggregateMissingParticipantSet(t *testing.T) {
	roster := []string{"A", "B"}
	sets := map[string]availability.Set{
		"A": availability.NewSet(slotX),
		// B never submitted; treated as empty availability
	}

	m := Aggregate(roster, sets)
	assert.Equal(t, []string{"A"}, m[slotX])
	assert.Len(t, m, 1, "map stays sparse")
}

func TestHasMutualAvailability(t *testing.T) {
	roster := []string{"A", "B"}

	full := AvailabilityMap{slotX: {"A", "B"}, slotY: {"A"}}
	assert.True(t, HasMutualAvailability(full, roster))

	partial := AvailabilityMap{slotY: {"A"}}
	assert.False(t, HasMutualAvailability(partial, roster))

	assert.False(t, HasMutualAvailability(AvailabilityMap{}, roster))
	assert.False(t, HasMutualAvailability(full, nil))
}

func TestFindConsensusAndConflicts(t *testing.T) {
	roster := []string{"A", "B"}
	m := AvailabilityMap{
		slotX: {"A", "B"},
		slotY: {"A"},
	}

	c := FindConsensusAndConflicts(m, roster)
	assert.Equal(t, []string{slotX}, c.AllAvailable)
	assert.Empty(t, c.NoneAvailable)

	// an entry drained of names counts as a conflict
	m["2025-01-01T10:00:00Z"] = []string{}
	c = FindConsensusAndConflicts(m, roster)
	assert.Equal(t, []string{"2025-01-01T10:00:00Z"}, c.NoneAvailable)
}

func TestMutualMatchesConsensus(t *testing.T) {
	roster := []string{"A", "B", "C"}
	maps := []AvailabilityMap{
		{},
		{slotX: {"A"}},
		{slotX: {"A", "B", "C"}},
		{slotX: {"A", "B"}, slotY: {"A", "B", "C"}},
	}

	for _, m := range maps {
		c := FindConsensusAndConflicts(m, roster)
		assert.Equal(t, len(c.AllAvailable) > 0, HasMutualAvailability(m, roster))
	}
}

func TestHeatFraction(t *testing.T) {
	roster := []string{"A", "B"}
	m := AvailabilityMap{
		slotX: {"A", "B"},
		slotY: {"A"},
	}

	assert.Equal(t, 1.0, HeatFraction(m, slotX, roster))
	assert.Equal(t, 0.5, HeatFraction(m, slotY, roster))
	assert.Equal(t, 0.0, HeatFraction(m, "2025-01-01T10:00:00Z", roster))

	// no roster: clamp instead of dividing by zero
	assert.Equal(t, 0.0, HeatFraction(m, slotX, nil))
}

func TestNormalizeWireKey(t *testing.T) {
	// naive datetimes from the storage service are UTC
	got, err := NormalizeWireKey("2025-01-01T09:00:00")
	require.NoError(t, err)
	assert.Equal(t, slotX, got)

	got, err = NormalizeWireKey("2025-01-01T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, slotX, got)

	_, err = NormalizeWireKey("next tuesday")
	assert.Error(t, err)
}

func TestNormalizeWireMap(t *testing.T) {
	raw := map[string][]string{
		"2025-01-01T09:00:00":  {"A"},
		"2025-01-01T09:00:00Z": {"B", "A"},
		"garbage":              {"C"},
		"2025-01-01T09:15":     {"C"},
	}

	m := NormalizeWireMap(raw)

	require.Len(t, m, 2)
	assert.ElementsMatch(t, []string{"A", "B"}, m[slotX])
	assert.Equal(t, []string{"C"}, m[slotY])
}
