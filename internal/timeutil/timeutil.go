// Package timeutil parses the POS export time formats and provides the
// Monday-anchored calendar helpers used across the pipeline.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical business date format used as a run key.
const DateLayout = "2006-01-02"

var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ParseDate parses a YYYY-MM-DD business date key.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD business date key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates t to 00:00:00 UTC on the same calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayOfWeek returns the weekday with Monday=0 through Sunday=6.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayName returns the English weekday name for a Monday=0 index.
func DayName(dayOfWeek int) string {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return ""
	}
	return dayNames[dayOfWeek]
}

// WeekStart returns the Monday on or before t. A Sunday groups with the
// Monday six days earlier.
func WeekStart(t time.Time) time.Time {
	return t.AddDate(0, 0, -DayOfWeek(t))
}

// timestampLayouts are tried in order when parsing POS export timestamps.
// Exports mix US-style dates, ISO dates, and bare clock times.
var timestampLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"3:04:05 PM",
	"3:04 PM",
	"15:04:05",
	"15:04",
}

// ParseTimestamp parses a POS export timestamp in any supported layout.
// Bare clock times come back on the zero date (year 1); callers that need
// a full timestamp should use ParseAt.
func ParseTimestamp(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("parse timestamp: empty value")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: no layout matched", s)
}

// ParseAt parses a timestamp and grafts bare clock times onto the given
// business date.
func ParseAt(s string, business time.Time) (time.Time, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Year() > 1 {
		return t, nil
	}
	return time.Date(business.Year(), business.Month(), business.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, business.Location()), nil
}

// ParseFloat parses a numeric CSV cell, tolerating currency symbols,
// thousands separators, and blank cells (blank parses as 0).
func ParseFloat(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, nil
	}
	cleaned = strings.NewReplacer("$", "", ",", "", "(", "-", ")", "").Replace(cleaned)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}
