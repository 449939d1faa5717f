// Package expand turns an abstract event range into the concrete,
// timezone-correct sequence of 15-minute slots the grid is built from.
package expand

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/whenworks/whenworks/pkg/core/model"
)

// DayGroup holds the slots belonging to one originating calendar day of
// the expanded range. When the time window crosses midnight the
// overnight continuation stays in the originating day's group, so a
// day's full offering renders as one contiguous column.
type DayGroup struct {
	DayKey   string      // civil date, "2006-01-02", in the event's timezone
	DayLabel string      // e.g. "Mon Jan 6", or "MON" for weekday events
	Slots    []time.Time // UTC slot starts, ascending
}

// rruleWeekdays maps time.Weekday onto rrule's weekday constants.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Expand resolves r against the current clock. See ExpandAt.
func Expand(r model.EventRange) ([]DayGroup, error) {
	return ExpandAt(r, time.Now())
}

// ExpandAt expands r into ordered day groups of UTC slot starts.
// It is deterministic and total for any valid range: an empty resolved
// span yields an empty sequence and a zero-length time window yields
// groups with zero slots, never an error. The reference instant only
// matters for weekday ranges, which expand to one representative week
// starting "today" in the event's timezone.
func ExpandAt(r model.EventRange, now time.Time) ([]DayGroup, error) {
	loc, err := model.Location(r)
	if err != nil {
		return nil, err
	}

	var days []model.Date
	switch rng := r.(type) {
	case model.SpecificRange:
		days = specificDates(rng)
	case model.WeekdayRange:
		days, err = weekdayDates(rng, now.In(loc))
		if err != nil {
			return nil, err
		}
	}

	groups := make([]DayGroup, 0, len(days))
	for _, day := range days {
		groups = append(groups, DayGroup{
			DayKey:   day.String(),
			DayLabel: dayLabel(day, r.Kind()),
			Slots:    daySlots(day, r.Window(), loc),
		})
	}
	return groups, nil
}

// specificDates enumerates every civil date in [FromDate, ToDate]
// inclusive. The dates are already expressed in the event's timezone,
// so no zone conversion happens here.
func specificDates(r model.SpecificRange) []model.Date {
	if r.ToDate.Before(r.FromDate) {
		return nil
	}
	var days []model.Date
	for d := r.FromDate; !d.After(r.ToDate); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// weekdayDates picks, from the next 7 civil dates starting today in the
// event's timezone, those whose weekday falls inside the effective
// contiguous span of the selection. The enumeration runs through a
// weekly BYDAY rule so exactly one representative week comes out.
func weekdayDates(r model.WeekdayRange, localNow time.Time) ([]model.Date, error) {
	effective := r.Selected.EffectiveDays()
	if len(effective) == 0 {
		return nil, nil
	}

	byday := make([]rrule.Weekday, len(effective))
	for i, d := range effective {
		byday[i] = rruleWeekdays[d]
	}

	today := model.DateOf(localNow)
	windowStart := today.In(localNow.Location())

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byday,
		Dtstart:   windowStart,
	})
	if err != nil {
		return nil, err
	}

	occurrences := rule.Between(windowStart, today.AddDays(6).In(localNow.Location()), true)

	days := make([]model.Date, 0, len(occurrences))
	for _, occ := range occurrences {
		days = append(days, model.DateOf(occ))
	}
	return days, nil
}

// daySlots generates the slot starts for one originating day. Each slot
// is built from its own wall-clock minute and converted to UTC with the
// zone offset in force at that instant, so a range spanning a DST
// transition stays correct slot by slot. Minute offsets past 1440 roll
// into the next civil day, which is how overnight windows continue past
// midnight while remaining in this day's group.
func daySlots(day model.Date, w model.TimeWindow, loc *time.Location) []time.Time {
	span := w.SpanMinutes()

	// A slot must fit entirely inside [From, To).
	count := span / model.SlotMinutes

	slots := make([]time.Time, 0, count)
	var prev time.Time
	for i := 0; i < count; i++ {
		minute := w.From + i*model.SlotMinutes
		local := time.Date(day.Year, day.Month, day.Day, 0, minute, 0, 0, loc)
		utc := local.UTC()
		// Wall-clock minutes inside a spring-forward gap have no
		// instant of their own; time.Date folds them back onto already
		// emitted slots. Skipping anything non-increasing keeps the
		// group strictly chronological and slot identifiers unique.
		if len(slots) > 0 && !utc.After(prev) {
			continue
		}
		slots = append(slots, utc)
		prev = utc
	}
	return slots
}

func dayLabel(day model.Date, kind model.RangeKind) string {
	t := day.In(time.UTC)
	if kind == model.KindWeekday {
		return strings.ToUpper(t.Format("Mon"))
	}
	return t.Format("Mon Jan 2")
}
