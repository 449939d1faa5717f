package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/whenworks/whenworks/pkg/core/results"
	"github.com/whenworks/whenworks/pkg/db"
)

// ViewResultsResult is the aggregated picture of an event: who
// responded, who is free when, and where the roster fully agrees or
// fully conflicts.
type ViewResultsResult struct {
	Participants []string
	Availability results.AvailabilityMap
	Consensus    results.Consensus
	HasMutual    bool
}

// ViewResults fetches the event-wide snapshot and aggregates it.
// Raw slot keys are normalized onto canonical UTC identifiers before
// aggregation so submissions from differently-configured clients merge
// correctly.
func ViewResults(ctx context.Context, store db.AvailabilityStore, logger *zap.Logger, eventCode string) (*ViewResultsResult, error) {
	logger.Debug("Fetching all availability", zap.String("event_code", eventCode))

	all, err := store.GetAllAvailability(ctx, eventCode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability for event %s: %w", eventCode, err)
	}

	m := results.NormalizeWireMap(all.Availability)
	consensus := results.FindConsensusAndConflicts(m, all.Participants)
	hasMutual := results.HasMutualAvailability(m, all.Participants)

	logger.Info("Results aggregated",
		zap.String("event_code", eventCode),
		zap.Int("participants", len(all.Participants)),
		zap.Int("slots", len(m)),
		zap.Int("consensus_slots", len(consensus.AllAvailable)),
		zap.Bool("has_mutual", hasMutual))

	return &ViewResultsResult{
		Participants: all.Participants,
		Availability: m,
		Consensus:    consensus,
		HasMutual:    hasMutual,
	}, nil
}

// Heat returns the roster fraction available at slot, using the
// already-aggregated view.
func (r *ViewResultsResult) Heat(slot string) float64 {
	return results.HeatFraction(r.Availability, slot, r.Participants)
}
