package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/whenworks/whenworks/pkg/core/expand"
	"github.com/whenworks/whenworks/pkg/core/model"
	"github.com/whenworks/whenworks/pkg/db"
)

// GetEventResult is a loaded event with its reconstructed range and
// expanded grid. The expansion is re-derived on every load; it is a
// pure function of the range, never persisted state.
type GetEventResult struct {
	Record    *db.EventRecord
	Range     model.EventRange
	DayGroups []expand.DayGroup
}

// GetEvent loads an event record, rebuilds its range, and expands it.
func GetEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, code string) (*GetEventResult, error) {
	logger.Debug("Fetching event", zap.String("code", code))

	record, err := store.GetEvent(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %w", code, err)
	}

	r, err := RecordToRange(record)
	if err != nil {
		return nil, err
	}

	groups, err := expand.Expand(r)
	if err != nil {
		return nil, fmt.Errorf("failed to expand event %s: %w", code, err)
	}

	slotCount := 0
	for _, g := range groups {
		slotCount += len(g.Slots)
	}
	logger.Debug("Event expanded",
		zap.String("code", code),
		zap.Int("day_groups", len(groups)),
		zap.Int("slots", slotCount))

	return &GetEventResult{Record: record, Range: r, DayGroups: groups}, nil
}
