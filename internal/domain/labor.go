package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeEntry is one clock-in/clock-out pair from the labor export.
type TimeEntry struct {
	EmployeeName string    `json:"employee_name"`
	JobTitle     string    `json:"job_title"`
	ClockIn      time.Time `json:"clock_in"`
	ClockOut     time.Time `json:"clock_out"`
	TotalHours   float64   `json:"total_hours"`
	PayableHours float64   `json:"payable_hours"`
	AutoClockout bool      `json:"auto_clockout"`
	IsManager    bool      `json:"is_manager"`
}

// NewTimeEntry validates and builds a time entry. The manager flag is
// derived from the job title against the configured keyword list.
func NewTimeEntry(name, title string, in, out time.Time, totalHours, payableHours float64, autoClockout bool, managerKeywords []string) (TimeEntry, error) {
	if name == "" {
		return TimeEntry{}, fmt.Errorf("time entry: empty employee name")
	}
	if !in.IsZero() && !out.IsZero() && out.Before(in) {
		return TimeEntry{}, fmt.Errorf("time entry %s: clock out %s before clock in %s", name, out.Format("15:04"), in.Format("15:04"))
	}
	if totalHours < 0 {
		return TimeEntry{}, fmt.Errorf("time entry %s: negative total hours %.2f", name, totalHours)
	}
	return TimeEntry{
		EmployeeName: name,
		JobTitle:     title,
		ClockIn:      in,
		ClockOut:     out,
		TotalHours:   totalHours,
		PayableHours: payableHours,
		AutoClockout: autoClockout,
		IsManager:    IsManagerTitle(title, managerKeywords),
	}, nil
}

// IsManagerTitle reports whether a job title matches any manager keyword,
// case-insensitively.
func IsManagerTitle(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the entry's worked interval intersects
// [start, end).
func (e TimeEntry) Overlaps(start, end time.Time) bool {
	if e.ClockIn.IsZero() || e.ClockOut.IsZero() {
		return false
	}
	return e.ClockIn.Before(end) && e.ClockOut.After(start)
}

// LaborReport carries the daily labor scalars extracted during ingestion.
// Regular/overtime splits are zero when the payroll export is absent.
type LaborReport struct {
	Restaurant       string  `json:"restaurant"`
	Date             string  `json:"date"`
	TotalHoursWorked float64 `json:"total_hours_worked"`
	TotalLaborCost   float64 `json:"total_labor_cost"`
	EmployeeCount    int     `json:"employee_count"`
	RegularHours     float64 `json:"regular_hours,omitempty"`
	OvertimeHours    float64 `json:"overtime_hours,omitempty"`
}

// LaborStatus buckets the labor percentage for operator attention.
type LaborStatus string

const (
	LaborExcellent LaborStatus = "EXCELLENT"
	LaborGood      LaborStatus = "GOOD"
	LaborWarning   LaborStatus = "WARNING"
	LaborCritical  LaborStatus = "CRITICAL"
	LaborSevere    LaborStatus = "SEVERE"
)

// LaborMetrics is the graded daily labor outcome.
type LaborMetrics struct {
	LaborPercentage float64     `json:"labor_percentage"`
	Status          LaborStatus `json:"status"`
	Grade           string      `json:"grade"`
	Warnings        []string    `json:"warnings,omitempty"`
	Recommendations []string    `json:"recommendations,omitempty"`
}
