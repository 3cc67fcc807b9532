package utils

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar dates.
const DayFormat = "2006-01-02"

// DateRange is a normalized day window: Start at 00:00:00 and End at
// 23:59:59 of their respective days, both anchored to UTC. Every query path
// shares this normalization so results do not depend on the caller's local
// zone.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two calendar dates and normalizes them to a UTC day
// window.
func ParseDateRange(start, end string) (*DateRange, error) {
	s, err := ParseDay(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return nil, err
	}
	return &DateRange{Start: StartOfDay(s), End: EndOfDay(e)}, nil
}

// ParseDay parses a calendar date, accepting YYYY-MM-DD or RFC 3339.
func ParseDay(value string) (time.Time, error) {
	for _, layout := range []string{DayFormat, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, want %s", value, DayFormat)
}

// StartOfDay truncates t to 00:00:00 UTC of its day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay moves t to 23:59:59 UTC of its day.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// SingleDay reports whether both bounds fall on the same calendar day. A
// single-day window filters by exact date equality rather than a range, so
// stored dates must sit at midnight to match.
func (r *DateRange) SingleDay() bool {
	return r.Start.Year() == r.End.Year() && r.Start.YearDay() == r.End.YearDay()
}

// FormatDay renders t as a YYYY-MM-DD string in UTC.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}
