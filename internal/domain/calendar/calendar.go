// Package calendar computes the day and month bucket keys used by reports.
//
// All keys are derived in an explicit location so every backend agrees on which
// bucket a timestamp belongs to.
package calendar

import (
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Granularity selects the bucket size.
type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
)

// Key returns the bucket key of t in loc.
func (g Granularity) Key(t time.Time, loc *time.Location) string {
	if g == Month {
		return t.In(loc).Format(MonthLayout)
	}
	return t.In(loc).Format(DayLayout)
}

// MongoFormat returns the $dateToString format producing the same keys as Key.
func (g Granularity) MongoFormat() string {
	if g == Month {
		return "%Y-%m"
	}
	return "%Y-%m-%d"
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last nanosecond of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfMonth returns midnight of the first day of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// DayKeys lists every calendar day in [from, to] inclusive.
func DayKeys(from, to time.Time, loc *time.Location) []string {
	start := StartOfDay(from, loc)
	end := StartOfDay(to, loc)
	if end.Before(start) {
		return nil
	}

	var keys []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(DayLayout))
	}
	return keys
}

// MonthKeys lists the n months ending with the month containing to, oldest first.
func MonthKeys(to time.Time, n int, loc *time.Location) []string {
	if n <= 0 {
		return nil
	}
	last := StartOfMonth(to, loc)
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, last.AddDate(0, -i, 0).Format(MonthLayout))
	}
	return keys
}

// ParseDate accepts YYYY-MM-DD (read in loc) or RFC3339.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DayLayout, raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseEndDate is ParseDate for the upper bound of a window: a bare date
// covers the whole day.
func ParseEndDate(raw string, loc *time.Location) (time.Time, bool) {
	t, ok := ParseDate(raw, loc)
	if !ok {
		return t, false
	}
	if len(strings.TrimSpace(raw)) == len(DayLayout) {
		return EndOfDay(t, loc), true
	}
	return t, true
}
