package services

import (
	"fmt"
	"time"

	"github.com/whenworks/whenworks/pkg/core/model"
	"github.com/whenworks/whenworks/pkg/db"
)

// RecordToRange reconstructs the in-memory range from a stored event
// record, choosing the variant from the record's event type. Week
// records address their weekday window as a start/end pair, which is
// rebuilt into the effective contiguous span.
func RecordToRange(record *db.EventRecord) (model.EventRange, error) {
	window := model.TimeWindow{From: record.StartTime, To: record.EndTime}

	switch record.EventType {
	case db.EventTypeDate:
		from, err := model.ParseDate(record.StartDate)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", record.Code, err)
		}
		to, err := model.ParseDate(record.EndDate)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", record.Code, err)
		}
		return model.SpecificRange{
			FromDate:        from,
			ToDate:          to,
			TimeWindow:      window,
			Timezone:        record.Timezone,
			DurationMinutes: record.DurationMinutes,
		}, nil

	case db.EventTypeWeek:
		if record.StartWeekday < 0 || record.StartWeekday > 6 ||
			record.EndWeekday < 0 || record.EndWeekday > 6 {
			return nil, fmt.Errorf("event %s: weekday pair %d..%d out of range",
				record.Code, record.StartWeekday, record.EndWeekday)
		}
		return model.WeekdayRange{
			Selected:        model.SpanSet(time.Weekday(record.StartWeekday), time.Weekday(record.EndWeekday)),
			TimeWindow:      window,
			Timezone:        record.Timezone,
			DurationMinutes: record.DurationMinutes,
		}, nil
	}

	return nil, fmt.Errorf("event %s: unknown event type %q", record.Code, record.EventType)
}

// RangeToRecord flattens a range onto the stored wire shape. The code
// and title are the caller's to fill in.
func RangeToRecord(r model.EventRange) *db.EventRecord {
	record := &db.EventRecord{
		StartTime:       r.Window().From,
		EndTime:         r.Window().To,
		Timezone:        r.Zone(),
		DurationMinutes: r.Duration(),
	}

	switch rng := r.(type) {
	case model.SpecificRange:
		record.EventType = db.EventTypeDate
		record.StartDate = rng.FromDate.String()
		record.EndDate = rng.ToDate.String()
	case model.WeekdayRange:
		record.EventType = db.EventTypeWeek
		// A single run keeps its own endpoints, so a wrapping pair like
		// Fri..Mon survives the round trip; gapped selections fall back
		// to the widened span.
		first, last, ok := rng.Selected.Run()
		if !ok {
			first, last, ok = rng.Selected.Span()
		}
		if ok {
			record.StartWeekday = int(first)
			record.EndWeekday = int(last)
		}
	}

	return record
}
