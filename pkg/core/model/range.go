package model

import (
	"fmt"
	"time"
)

// RangeKind discriminates the two event range variants.
type RangeKind string

const (
	KindSpecific RangeKind = "specific"
	KindWeekday  RangeKind = "weekday"
)

const (
	// MinutesPerDay is also the midnight sentinel for TimeWindow.To.
	MinutesPerDay = 24 * 60

	// MaxRangeDays caps the span of a specific date range.
	MaxRangeDays = 30
)

// TimeWindow bounds the time of day an event may occur on each of its
// days, as minutes since local midnight. To == 0 or To == MinutesPerDay
// means "through end of day"; To numerically below From means the
// window continues past midnight into the next civil day.
type TimeWindow struct {
	From int
	To   int
}

// ThroughMidnight reports whether To is the midnight sentinel.
func (w TimeWindow) ThroughMidnight() bool {
	return w.To == 0 || w.To == MinutesPerDay
}

// Wraps reports whether the window crosses local midnight.
func (w TimeWindow) Wraps() bool {
	return w.ThroughMidnight() || w.To < w.From
}

// SpanMinutes returns the length of the window in minutes, accounting
// for wraparound. A window with From == To (sentinel aside) is empty.
func (w TimeWindow) SpanMinutes() int {
	if w.ThroughMidnight() {
		return MinutesPerDay - w.From
	}
	if w.To < w.From {
		return MinutesPerDay - w.From + w.To
	}
	return w.To - w.From
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.From/60, w.From%60, w.To/60, w.To%60)
}

// EventRange is the possible occurrence window of an event: either a
// concrete date span or a recurring weekday selection, each with a
// time-of-day window and an IANA timezone. The two variants are sealed;
// fields like the date pair or the weekday set only exist on the
// variant they belong to.
type EventRange interface {
	Kind() RangeKind
	Window() TimeWindow
	Zone() string
	Duration() int

	sealed()
}

// SpecificRange is an event that may occur on every date of a concrete
// civil span, FromDate through ToDate inclusive.
type SpecificRange struct {
	FromDate        Date
	ToDate          Date
	TimeWindow      TimeWindow
	Timezone        string
	DurationMinutes int
}

func (r SpecificRange) Kind() RangeKind    { return KindSpecific }
func (r SpecificRange) Window() TimeWindow { return r.TimeWindow }
func (r SpecificRange) Zone() string       { return r.Timezone }
func (r SpecificRange) Duration() int      { return r.DurationMinutes }
func (r SpecificRange) sealed()            {}

// WeekdayRange is an event that recurs on selected weekdays. Expansion
// always materializes one representative week, not an open-ended
// recurrence.
type WeekdayRange struct {
	Selected        WeekdaySet
	TimeWindow      TimeWindow
	Timezone        string
	DurationMinutes int
}

func (r WeekdayRange) Kind() RangeKind    { return KindWeekday }
func (r WeekdayRange) Window() TimeWindow { return r.TimeWindow }
func (r WeekdayRange) Zone() string       { return r.Timezone }
func (r WeekdayRange) Duration() int      { return r.DurationMinutes }
func (r WeekdayRange) sealed()            {}

// Location resolves the range's IANA zone against the tz database.
func Location(r EventRange) (*time.Location, error) {
	loc, err := time.LoadLocation(r.Zone())
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", r.Zone(), err)
	}
	return loc, nil
}
