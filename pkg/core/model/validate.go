package model

import (
	"fmt"
	"time"
)

// Field error codes surfaced by Validate. These block submission but
// are never fatal; callers render them as field-level messages.
const (
	CodeRangeTooLong     = "RangeTooLong"
	CodeInvertedDates    = "InvertedDates"
	CodeEmptyWeekdays    = "EmptyWeekdays"
	CodeWeekdayGap       = "WeekdayGap"
	CodeInvalidTimeRange = "InvalidTimeRange"
	CodeInvalidTimezone  = "InvalidTimezone"
	CodeInvalidDuration  = "InvalidDuration"
)

// FieldError describes a single range invariant violation.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator checks event ranges. StrictWeekdays rejects weekday
// selections with gaps instead of silently widening them to their
// effective span; the default mirrors the editor, which can only
// produce contiguous selections in the first place.
type Validator struct {
	StrictWeekdays bool
}

// Validate returns every invariant violation in r, or nil when r is
// valid. It never panics and never clamps: a 31-day span is an error,
// not a truncated range.
func (v Validator) Validate(r EventRange) []FieldError {
	var errs []FieldError

	switch rng := r.(type) {
	case SpecificRange:
		if rng.ToDate.Before(rng.FromDate) {
			errs = append(errs, FieldError{
				Field:   "dateRange",
				Code:    CodeInvertedDates,
				Message: "end date is before start date",
			})
		} else if rng.FromDate.DaysUntil(rng.ToDate) > MaxRangeDays {
			errs = append(errs, FieldError{
				Field:   "dateRange",
				Code:    CodeRangeTooLong,
				Message: fmt.Sprintf("date range cannot exceed %d days", MaxRangeDays),
			})
		}
	case WeekdayRange:
		if rng.Selected.IsEmpty() {
			errs = append(errs, FieldError{
				Field:   "weekdays",
				Code:    CodeEmptyWeekdays,
				Message: "select at least one weekday",
			})
		} else if v.StrictWeekdays && !rng.Selected.IsContiguous() {
			errs = append(errs, FieldError{
				Field:   "weekdays",
				Code:    CodeWeekdayGap,
				Message: "selected weekdays must be contiguous",
			})
		}
	}

	errs = append(errs, validateWindow(r.Window())...)

	if _, err := time.LoadLocation(r.Zone()); err != nil {
		errs = append(errs, FieldError{
			Field:   "timezone",
			Code:    CodeInvalidTimezone,
			Message: fmt.Sprintf("unknown timezone %q", r.Zone()),
		})
	}

	if r.Duration() < 0 {
		errs = append(errs, FieldError{
			Field:   "duration",
			Code:    CodeInvalidDuration,
			Message: "duration cannot be negative",
		})
	}

	return errs
}

func validateWindow(w TimeWindow) []FieldError {
	var errs []FieldError

	if w.From < 0 || w.From > MinutesPerDay || w.To < 0 || w.To > MinutesPerDay {
		errs = append(errs, FieldError{
			Field:   "timeRange",
			Code:    CodeInvalidTimeRange,
			Message: "times must fall within the day",
		})
		return errs
	}

	// From == To is only meaningful with the midnight sentinel, where
	// the window runs through end of day regardless of From.
	if w.From == w.To && !w.ThroughMidnight() {
		errs = append(errs, FieldError{
			Field:   "timeRange",
			Code:    CodeInvalidTimeRange,
			Message: "start and end time must differ",
		})
	}

	return errs
}

// Validate checks r with the default (lenient) validator.
func Validate(r EventRange) []FieldError {
	return Validator{}.Validate(r)
}
