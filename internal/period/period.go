// Package period holds calendar-date helpers shared by tariffs, limits and
// reports. All dates are UTC midnights; the wire format is YYYY-MM-DD.
package period

import (
	"time"

	apperrors "energytracker/internal/errors"
)

// DateLayout is the ISO-8601 calendar date layout used on the wire.
const DateLayout = "2006-01-02"

// Type is the kind of period a consumption limit covers.
type Type string

const (
	Week   Type = "week"
	Month  Type = "month"
	Year   Type = "year"
	Custom Type = "custom"
)

// Types lists the supported period types.
var Types = []Type{Week, Month, Year, Custom}

// ParseType validates a period type string.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", apperrors.InvalidField("period_type", "must be one of week, month, year, custom")
}

// ParseDate parses a strict YYYY-MM-DD date. field names the input for the error message.
func ParseDate(field, s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, apperrors.InvalidField(field, "must be a date in YYYY-MM-DD format")
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.InvalidField(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Date truncates t to its UTC calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day according to now.
func Today(now func() time.Time) time.Time {
	return Date(now())
}

// ComputeEnd returns the inclusive end date for a standard period starting at start.
//
// A month or year period ends the day before the same day-of-month in the
// next month or year. When that day does not exist in the target month
// (Jan 31 -> Feb, Feb 29 -> non-leap year) the period ends on the last day
// of the target month instead.
func ComputeEnd(t Type, start time.Time) (time.Time, error) {
	start = Date(start)
	switch t {
	case Week:
		return start.AddDate(0, 0, 6), nil
	case Month:
		return shiftedEnd(start, 1), nil
	case Year:
		return shiftedEnd(start, 12), nil
	}
	return time.Time{}, apperrors.InvalidField("period_end", "is required for custom periods")
}

func shiftedEnd(start time.Time, months int) time.Time {
	next, clamped := addMonthsClamped(start, months)
	if clamped {
		return next
	}
	return next.AddDate(0, 0, -1)
}

// addMonthsClamped adds months to t keeping the day-of-month, clamped to the
// length of the target month. The flag reports whether clamping happened.
func addMonthsClamped(t time.Time, months int) (time.Time, bool) {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := daysIn(first.Year(), first.Month())
	if d > last {
		return time.Date(first.Year(), first.Month(), last, 0, 0, 0, 0, time.UTC), true
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC), false
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ResolveEnd decides the end date of a period. Custom periods require
// supplied; standard periods accept supplied only when it equals the
// computed end, and report the expected value otherwise.
func ResolveEnd(t Type, start time.Time, supplied *string) (time.Time, error) {
	if t == Custom {
		if supplied == nil || *supplied == "" {
			return time.Time{}, apperrors.InvalidField("period_end", "is required for custom periods")
		}
		end, err := ParseDate("period_end", *supplied)
		if err != nil {
			return time.Time{}, err
		}
		if end.Before(start) {
			return time.Time{}, apperrors.InvalidField("period_end", "must not be before period_start")
		}
		return end, nil
	}

	expected, err := ComputeEnd(t, start)
	if err != nil {
		return time.Time{}, err
	}
	if supplied == nil || *supplied == "" {
		return expected, nil
	}
	end, err := ParseDate("period_end", *supplied)
	if err != nil {
		return time.Time{}, err
	}
	if !end.Equal(expected) {
		return time.Time{}, apperrors.ErrPeriodEndMismatch.WithDetail("expected_period_end", FormatDate(expected))
	}
	return expected, nil
}

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange parses an inclusive range; end must not precede start.
func NewRange(from, to string) (Range, error) {
	start, err := ParseDate("date_from", from)
	if err != nil {
		return Range{}, err
	}
	end, err := ParseDate("date_to", to)
	if err != nil {
		return Range{}, err
	}
	if end.Before(start) {
		return Range{}, apperrors.InvalidField("date_to", "must not be before date_from")
	}
	return Range{Start: start, End: end}, nil
}

// MonthOf returns the calendar month containing day.
func MonthOf(day time.Time) Range {
	day = Date(day)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.AddDate(0, 1, -1)}
}

// Contains reports whether day falls inside r.
func (r Range) Contains(day time.Time) bool {
	day = Date(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Overlaps reports whether r and o share at least one day.
func (r Range) Overlaps(o Range) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}
