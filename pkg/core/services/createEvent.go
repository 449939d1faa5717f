package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whenworks/whenworks/pkg/core/expand"
	"github.com/whenworks/whenworks/pkg/core/model"
	"github.com/whenworks/whenworks/pkg/db"
)

const maxTitleLength = 50

// CreateEventInput carries everything an organizer submits for a new
// event. CustomCode is optional; a uuid is minted when it is blank.
type CreateEventInput struct {
	Title      string
	CustomCode string
	Range      model.EventRange
}

// CreateEventResult is either a persisted event plus its expansion
// preview, or the field errors that blocked submission.
type CreateEventResult struct {
	Record      *db.EventRecord
	DayGroups   []expand.DayGroup
	FieldErrors []model.FieldError
}

// CreateEvent validates the submitted range, persists the event record,
// and returns the expanded grid preview. Validation failures are data,
// not an error: they come back in FieldErrors with nothing persisted,
// so callers can surface them field by field.
func CreateEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, input CreateEventInput) (*CreateEventResult, error) {
	logger.Info("Creating event", zap.String("title", input.Title), zap.String("kind", string(input.Range.Kind())))

	fieldErrors := validateEventInput(input)
	if len(fieldErrors) > 0 {
		logger.Info("Event rejected by validation", zap.Int("field_errors", len(fieldErrors)))
		return &CreateEventResult{FieldErrors: fieldErrors}, nil
	}

	code := input.CustomCode
	if code == "" {
		code = uuid.New().String()
	}

	record := RangeToRecord(input.Range)
	record.Code = code
	record.Title = strings.TrimSpace(input.Title)

	logger.Debug("Persisting event record",
		zap.String("code", record.Code),
		zap.String("event_type", string(record.EventType)),
		zap.String("timezone", record.Timezone))

	if err := store.InsertEvent(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	groups, err := expand.Expand(input.Range)
	if err != nil {
		return nil, fmt.Errorf("failed to expand event range: %w", err)
	}

	logger.Info("Event created",
		zap.String("code", record.Code),
		zap.Int("day_groups", len(groups)))

	return &CreateEventResult{Record: record, DayGroups: groups}, nil
}

func validateEventInput(input CreateEventInput) []model.FieldError {
	var errs []model.FieldError

	title := strings.TrimSpace(input.Title)
	if title == "" {
		errs = append(errs, model.FieldError{
			Field:   "title",
			Code:    "MissingTitle",
			Message: "please enter an event name",
		})
	} else if len(title) > maxTitleLength {
		errs = append(errs, model.FieldError{
			Field:   "title",
			Code:    "TitleTooLong",
			Message: fmt.Sprintf("event name must be under %d characters", maxTitleLength),
		})
	}

	return append(errs, model.Validate(input.Range)...)
}
