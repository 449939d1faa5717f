package availability

import (
	"time"

	"github.com/whenworks/whenworks/pkg/core/model"
)

// GenerateDragSlots computes the full set of 15-minute slots a paint
// gesture between two instants should cover. The endpoints may arrive
// in either order on either axis: the date components and time-of-day
// components are ordered independently, so a user can drag backward in
// time or backward across days without the selection collapsing.
//
// Two regimes:
//
//   - A gesture that stays within a single day column — same civil
//     date, or crossing midnight into the next date with the end's
//     clock time at or before the start's (an overnight column) — walks
//     linearly from the earlier instant in 15-minute steps, excluding
//     the end instant itself so a slot is only covered when the gesture
//     reaches its start.
//
//   - A gesture spanning multiple day columns fills the rectangle: for
//     every civil date between the two endpoints, the slots from the
//     earlier clock time through the later one inclusive, since the
//     endpoints name the covered cells. Advancing a day snaps the clock
//     back to the band start, which is what keeps an overnight band
//     from wrapping away from its column.
//
// Inverted or empty windows yield a well-defined, possibly empty set;
// the only error is an unparsable endpoint.
func GenerateDragSlots(dragStart, dragEnd string) (Set, error) {
	a, err := model.ParseSlot(dragStart)
	if err != nil {
		return nil, err
	}
	b, err := model.ParseSlot(dragEnd)
	if err != nil {
		return nil, err
	}

	if b.Before(a) {
		a, b = b, a
	}

	aDate, bDate := model.DateOf(a), model.DateOf(b)
	aTod, bTod := minuteOfDay(a), minuteOfDay(b)

	slots := NewSet()

	overnight := aDate.AddDays(1) == bDate && bTod <= aTod
	if aDate == bDate || overnight {
		for cur := a; cur.Before(b); cur = cur.Add(model.SlotMinutes * time.Minute) {
			slots[model.SlotID(cur)] = struct{}{}
		}
		return slots, nil
	}

	bandStart, bandEnd := aTod, bTod
	if bandEnd < bandStart {
		bandStart, bandEnd = bandEnd, bandStart
	}

	for day := aDate; !day.After(bDate); day = day.AddDays(1) {
		for m := bandStart; m <= bandEnd; m += model.SlotMinutes {
			cur := time.Date(day.Year, day.Month, day.Day, 0, m, 0, 0, time.UTC)
			slots[model.SlotID(cur)] = struct{}{}
		}
	}
	return slots, nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
