package availability

// State is one participant's editing session: who they are, the
// timezone they view the grid in, and the slots they have painted.
// Every transition below is pure and returns a new State; the input is
// never mutated, which keeps gesture handling safe to run on every
// pointer event.
type State struct {
	DisplayName string
	Timezone    string
	Selections  Set
}

// NewState creates an empty session for a participant.
func NewState(displayName, timezone string) State {
	return State{
		DisplayName: displayName,
		Timezone:    timezone,
		Selections:  NewSet(),
	}
}

// SeedState creates a session preloaded with a prior submission.
func SeedState(displayName, timezone string, slots []string) State {
	return State{
		DisplayName: displayName,
		Timezone:    timezone,
		Selections:  FromWire(slots),
	}
}

// ToggleSlot turns a single slot on or off. Both directions are
// idempotent: turning on an already-selected slot and turning off an
// absent one return a state equal to the input.
func ToggleSlot(s State, slotID string, turningOn bool) State {
	if turningOn == s.Selections.Contains(slotID) {
		return s
	}
	next := s.Selections.Clone()
	if turningOn {
		next[slotID] = struct{}{}
	} else {
		delete(next, slotID)
	}
	s.Selections = next
	return s
}

// Reset clears the selection, leaving identity fields untouched.
func Reset(s State) State {
	s.Selections = NewSet()
	return s
}

// SetDisplayName replaces the display name.
func SetDisplayName(s State, displayName string) State {
	s.DisplayName = displayName
	return s
}

// SetTimezone replaces the viewing timezone.
func SetTimezone(s State, timezone string) State {
	s.Timezone = timezone
	return s
}
