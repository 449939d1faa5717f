// Package availability holds one participant's painted slot selection
// and the pure operations that transition it, including the drag-fill
// walk behind the paint gesture.
package availability

import "sort"

// Set is a participant's selected slot identifiers. A Set is owned by a
// single editing session and is never shared by reference across
// participants; the transition functions below copy on write.
type Set map[string]struct{}

// NewSet builds a set from the given slot identifiers.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// FromWire rebuilds a set from its wire form. Order and duplicates in
// the input are irrelevant.
func FromWire(slots []string) Set {
	return NewSet(slots...)
}

// ToWire returns the set as a sorted slice of slot identifiers. Sorting
// keeps the full-replace submission payload deterministic.
func (s Set) ToWire() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports order-independent equality.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Contains(id) {
			return false
		}
	}
	return true
}
