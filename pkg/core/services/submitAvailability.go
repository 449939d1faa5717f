package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/whenworks/whenworks/pkg/core/model"
	"github.com/whenworks/whenworks/pkg/db"
)

const maxDisplayNameLength = 50

// SubmitAvailabilityInput is one participant's full submission. Slots
// replace any prior submission under the same name wholesale; there is
// no partial merge.
type SubmitAvailabilityInput struct {
	EventCode   string
	DisplayName string
	Timezone    string
	Slots       []string
}

// SubmitAvailabilityResult reports either a stored submission or the
// field errors that blocked it.
type SubmitAvailabilityResult struct {
	Record      *db.AvailabilityRecord
	FieldErrors []model.FieldError
}

// SubmitAvailability validates and stores a participant's slots. Like
// event creation, validation failures come back as data with nothing
// persisted.
func SubmitAvailability(ctx context.Context, store db.AvailabilityStore, logger *zap.Logger, input SubmitAvailabilityInput) (*SubmitAvailabilityResult, error) {
	logger.Info("Submitting availability",
		zap.String("event_code", input.EventCode),
		zap.String("display_name", input.DisplayName),
		zap.Int("slots", len(input.Slots)))

	fieldErrors := validateSubmission(input)
	if len(fieldErrors) > 0 {
		logger.Info("Submission rejected by validation", zap.Int("field_errors", len(fieldErrors)))
		return &SubmitAvailabilityResult{FieldErrors: fieldErrors}, nil
	}

	canonical := make([]string, 0, len(input.Slots))
	for _, raw := range input.Slots {
		t, err := model.ParseSlot(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid slot %q: %w", raw, err)
		}
		canonical = append(canonical, model.SlotID(t))
	}

	record := &db.AvailabilityRecord{
		EventCode:      input.EventCode,
		DisplayName:    strings.TrimSpace(input.DisplayName),
		Timezone:       input.Timezone,
		AvailableSlots: canonical,
	}

	if err := store.SubmitAvailability(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store availability: %w", err)
	}

	logger.Info("Availability stored",
		zap.String("event_code", record.EventCode),
		zap.String("display_name", record.DisplayName),
		zap.Int("slots", len(record.AvailableSlots)))

	return &SubmitAvailabilityResult{Record: record}, nil
}

func validateSubmission(input SubmitAvailabilityInput) []model.FieldError {
	var errs []model.FieldError

	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		errs = append(errs, model.FieldError{
			Field:   "displayName",
			Code:    "MissingName",
			Message: "please enter your name",
		})
	} else if len(name) > maxDisplayNameLength {
		errs = append(errs, model.FieldError{
			Field:   "displayName",
			Code:    "NameTooLong",
			Message: fmt.Sprintf("name must be under %d characters", maxDisplayNameLength),
		})
	}

	if _, err := time.LoadLocation(input.Timezone); err != nil || input.Timezone == "" {
		errs = append(errs, model.FieldError{
			Field:   "timezone",
			Code:    model.CodeInvalidTimezone,
			Message: fmt.Sprintf("unknown timezone %q", input.Timezone),
		})
	}

	return errs
}

// LoadParticipant rebuilds a participant's editing session from their
// stored submission. A participant who has never submitted gets a fresh
// empty session, not an error.
func LoadParticipant(ctx context.Context, store db.AvailabilityStore, logger *zap.Logger, eventCode, displayName, fallbackTimezone string) (*db.AvailabilityRecord, error) {
	logger.Debug("Loading participant",
		zap.String("event_code", eventCode),
		zap.String("display_name", displayName))

	record, err := store.GetSelfAvailability(ctx, eventCode, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability for %s: %w", displayName, err)
	}
	if record == nil {
		logger.Debug("No prior submission, starting empty session",
			zap.String("display_name", displayName))
		return &db.AvailabilityRecord{
			EventCode:      eventCode,
			DisplayName:    displayName,
			Timezone:       fallbackTimezone,
			AvailableSlots: []string{},
		}, nil
	}

	logger.Debug("Prior submission loaded",
		zap.String("display_name", displayName),
		zap.Int("slots", len(record.AvailableSlots)))
	return record, nil
}
