package model

import "time"

// WeekdaySet records which weekdays an organizer selected, indexed by
// time.Weekday (Sunday = 0).
type WeekdaySet [7]bool

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s[d] = true
	}
	return s
}

func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s[d]
}

func (s WeekdaySet) IsEmpty() bool {
	return s == WeekdaySet{}
}

// Span returns the first and last selected weekday in canonical
// Sun..Sat order. It is the fallback shape for gapped selections: the
// effective span [first..last] inclusive silently includes unselected
// days between them. Selections forming a single run (including runs
// that wrap past Saturday) are handled by Run instead and never widen.
// ok is false for the empty set.
func (s WeekdaySet) Span() (first, last time.Weekday, ok bool) {
	first, last = -1, -1
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !s[d] {
			continue
		}
		if first == -1 {
			first = d
		}
		last = d
	}
	if first == -1 {
		return 0, 0, false
	}
	return first, last, true
}

// runStarts returns the selected days whose circularly previous day is
// unselected: the entry point of each run. Empty for the full week.
func (s WeekdaySet) runStarts() []time.Weekday {
	var starts []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s[d] && !s[(d+6)%7] {
			starts = append(starts, d)
		}
	}
	return starts
}

// Run returns the endpoints of the selection when it forms a single
// circularly contiguous run, wrapping past Saturday included (Fri..Mon
// is the run Fri, Sat, Sun, Mon). The full week reports Sun..Sat. ok is
// false for the empty set and for selections with more than one run.
func (s WeekdaySet) Run() (first, last time.Weekday, ok bool) {
	if s.IsEmpty() {
		return 0, 0, false
	}
	starts := s.runStarts()
	if len(starts) == 0 {
		return time.Sunday, time.Saturday, true
	}
	if len(starts) > 1 {
		return 0, 0, false
	}
	first = starts[0]
	last = first
	for s[(last+1)%7] {
		last = (last + 1) % 7
	}
	return first, last, true
}

// IsContiguous reports whether the selection forms a single circular
// run with no gaps. Fri..Mon counts as contiguous even though it wraps
// the canonical week boundary.
func (s WeekdaySet) IsContiguous() bool {
	_, _, ok := s.Run()
	return ok
}

// EffectiveDays returns the weekdays the selection expands to. A single
// run comes back in its own circular order, exactly the selection.
// Gapped selections widen to their canonical Sun..Sat span, gaps
// included.
func (s WeekdaySet) EffectiveDays() []time.Weekday {
	if first, last, ok := s.Run(); ok {
		days := []time.Weekday{first}
		for d := first; d != last; {
			d = (d + 1) % 7
			days = append(days, d)
		}
		return days
	}

	first, last, ok := s.Span()
	if !ok {
		return nil
	}
	days := make([]time.Weekday, 0, int(last-first)+1)
	for d := first; d <= last; d++ {
		days = append(days, d)
	}
	return days
}

// SpanSet builds the set covering [first..last]. A pair that wraps past
// Saturday (e.g. Fri..Mon) fills the circular run Fri, Sat, Sun, Mon;
// stored events address their weekday window as a start/end pair, and a
// wrapping pair is the only way such a record can express a run that
// crosses the week boundary.
func SpanSet(first, last time.Weekday) WeekdaySet {
	var s WeekdaySet
	d := first
	for {
		s[d] = true
		if d == last {
			break
		}
		d = (d + 1) % 7
	}
	return s
}

func (s WeekdaySet) String() string {
	names := [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	out := ""
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s[d] {
			if out != "" {
				out += ","
			}
			out += names[d]
		}
	}
	if out == "" {
		return "none"
	}
	return out
}
