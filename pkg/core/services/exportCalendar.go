package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whenworks/whenworks/pkg/core/model"
	"github.com/whenworks/whenworks/pkg/db"
)

// ExportCalendarResult carries the serialized calendar and the windows
// it was built from.
type ExportCalendarResult struct {
	ICS     string
	Windows []SlotRun
}

// SlotRun is a maximal run of adjacent consensus slots, half-open on
// the end like the slots themselves.
type SlotRun struct {
	Start time.Time
	End   time.Time
}

// ExportCalendar builds an iCalendar feed of the windows where the
// whole roster is available. Adjacent consensus slots coalesce into one
// VEVENT per run; an event with no consensus produces an empty (but
// valid) calendar.
func ExportCalendar(ctx context.Context, store db.Store, logger *zap.Logger, eventCode string) (*ExportCalendarResult, error) {
	event, err := store.GetEvent(ctx, eventCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %w", eventCode, err)
	}

	view, err := ViewResults(ctx, store, logger, eventCode)
	if err != nil {
		return nil, err
	}

	runs, err := coalesceRuns(view.Consensus.AllAvailable)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//whenworks//scheduling//EN")

	now := time.Now().UTC()
	for _, run := range runs {
		ev := cal.AddEvent(uuid.New().String() + "@whenworks")
		ev.SetDtStampTime(now)
		ev.SetStartAt(run.Start)
		ev.SetEndAt(run.End)
		ev.SetSummary(event.Title)
		ev.SetDescription(fmt.Sprintf("All %d participants available", len(view.Participants)))
	}

	logger.Info("Calendar exported",
		zap.String("event_code", eventCode),
		zap.Int("windows", len(runs)))

	return &ExportCalendarResult{ICS: cal.Serialize(), Windows: runs}, nil
}

// coalesceRuns merges sorted slot identifiers into contiguous windows.
func coalesceRuns(slots []string) ([]SlotRun, error) {
	times := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		t, err := model.ParseSlot(s)
		if err != nil {
			return nil, fmt.Errorf("invalid consensus slot %q: %w", s, err)
		}
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	step := time.Duration(model.SlotMinutes) * time.Minute
	var runs []SlotRun
	for _, t := range times {
		if n := len(runs); n > 0 && runs[n-1].End.Equal(t) {
			runs[n-1].End = t.Add(step)
			continue
		}
		runs = append(runs, SlotRun{Start: t, End: t.Add(step)})
	}
	return runs, nil
}
