package domain

import (
	"fmt"
	"time"
)

// Pattern is the small contract both learned pattern shapes satisfy.
type Pattern interface {
	Key() string
	Validate() error
}

// DailyLaborPattern is the learned labor expectation for one
// (restaurant, day-of-week) pair. Day of week uses Monday=0..Sunday=6.
type DailyLaborPattern struct {
	Restaurant              string    `json:"restaurant"`
	DayOfWeek               int       `json:"day_of_week"`
	ExpectedLaborPercentage float64   `json:"expected_labor_percentage"`
	ExpectedTotalHours      float64   `json:"expected_total_hours"`
	Confidence              float64   `json:"confidence"`
	Observations            int       `json:"observations"`
	LastUpdated             time.Time `json:"last_updated"`
	IsFallback              bool      `json:"is_fallback,omitempty"`
	DaysAveraged            int       `json:"days_averaged,omitempty"`
}

// DailyPatternKey builds the store key for a (restaurant, day-of-week) pair.
func DailyPatternKey(restaurant string, dayOfWeek int) string {
	return fmt.Sprintf("%s:%d", restaurant, dayOfWeek)
}

// Key returns the pattern's store key.
func (p DailyLaborPattern) Key() string {
	return DailyPatternKey(p.Restaurant, p.DayOfWeek)
}

// Validate checks the pattern's structural invariants.
func (p DailyLaborPattern) Validate() error {
	if p.Restaurant == "" {
		return fmt.Errorf("daily pattern: empty restaurant")
	}
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		return fmt.Errorf("daily pattern %s: day of week %d out of range", p.Restaurant, p.DayOfWeek)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("daily pattern %s: confidence %.3f out of range", p.Key(), p.Confidence)
	}
	if p.Observations < 0 {
		return fmt.Errorf("daily pattern %s: negative observations", p.Key())
	}
	return nil
}

// Reliable reports whether the pattern meets the configured reliability
// thresholds.
func (p DailyLaborPattern) Reliable(minConfidence float64, minObservations int) bool {
	return p.Confidence >= minConfidence && p.Observations >= minObservations
}

// TimeslotPattern is the learned fulfillment baseline for one
// (restaurant, day name, shift, window, category) cell. Learned only from
// windows that passed standards.
type TimeslotPattern struct {
	Restaurant   string    `json:"restaurant"`
	DayName      string    `json:"day_name"`
	Shift        Shift     `json:"shift"`
	Window       int       `json:"window"`
	Category     Category  `json:"category"`
	BaselineTime float64   `json:"baseline_time"`
	Variance     float64   `json:"variance"`
	Confidence   float64   `json:"confidence"`
	Observations int       `json:"observations"`
	LastUpdated  time.Time `json:"last_updated"`
}

// TimeslotPatternKey builds the store key for the 5-tuple.
func TimeslotPatternKey(restaurant, dayName string, shift Shift, window int, category Category) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s", restaurant, dayName, shift, window, category)
}

// Key returns the pattern's store key.
func (p TimeslotPattern) Key() string {
	return TimeslotPatternKey(p.Restaurant, p.DayName, p.Shift, p.Window, p.Category)
}

// Validate checks the pattern's structural invariants.
func (p TimeslotPattern) Validate() error {
	if p.Restaurant == "" {
		return fmt.Errorf("timeslot pattern: empty restaurant")
	}
	if p.Window < 0 || p.Window >= WindowsPerDay {
		return fmt.Errorf("timeslot pattern %s: window %d out of range", p.Restaurant, p.Window)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("timeslot pattern %s: unknown category %q", p.Restaurant, p.Category)
	}
	if p.Variance < 0 {
		return fmt.Errorf("timeslot pattern %s: negative variance %.3f", p.Key(), p.Variance)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("timeslot pattern %s: confidence %.3f out of range", p.Key(), p.Confidence)
	}
	return nil
}

// Reliable reports whether the pattern meets the configured reliability
// thresholds.
func (p TimeslotPattern) Reliable(minConfidence float64, minObservations int) bool {
	return p.Confidence >= minConfidence && p.Observations >= minObservations
}

// HistoricalTarget is the fulfillment ceiling a reliable pattern imposes on
// top of the fixed standard.
func (p TimeslotPattern) HistoricalTarget() float64 {
	return p.BaselineTime + p.Variance
}
