package domain

import "time"

// Role distinguishes front-of-house from back-of-house for shift schedules.
type Role string

const (
	RoleFOH Role = "FOH"
	RoleBOH Role = "BOH"
)

// ClockoutAlert flags one auto-clockout whose recorded hours exceed the
// scheduled shift end.
type ClockoutAlert struct {
	EmployeeName    string    `json:"employee_name"`
	JobTitle        string    `json:"job_title"`
	Role            Role      `json:"role"`
	ClockIn         time.Time `json:"clock_in"`
	ExpectedEnd     time.Time `json:"expected_end"`
	RecordedHours   float64   `json:"recorded_hours"`
	SuggestedHours  float64   `json:"suggested_hours"`
	HoursDifference float64   `json:"hours_difference"`
	CostImpact      float64   `json:"cost_impact"`
}

// AutoClockoutSummary aggregates the per-entry alerts for one run.
type AutoClockoutSummary struct {
	Alerts               []ClockoutAlert `json:"alerts,omitempty"`
	EntriesFlagged       int             `json:"entries_flagged"`
	TotalHoursDifference float64         `json:"total_hours_difference"`
	TotalCostImpact      float64         `json:"total_cost_impact"`
}

// OvertimeSeverity buckets weekly overtime hours.
type OvertimeSeverity string

const (
	OvertimeNormal   OvertimeSeverity = "normal"
	OvertimeWarning  OvertimeSeverity = "warning"
	OvertimeCritical OvertimeSeverity = "critical"
)

// SeverityForOvertime maps overtime hours to a severity bucket.
func SeverityForOvertime(hours float64) OvertimeSeverity {
	switch {
	case hours >= 20:
		return OvertimeCritical
	case hours >= 10:
		return OvertimeWarning
	default:
		return OvertimeNormal
	}
}

// OvertimeRecord is one employee's weekly overtime exposure.
type OvertimeRecord struct {
	EmployeeName  string           `json:"employee_name"`
	WeeklyHours   float64          `json:"weekly_hours"`
	OvertimeHours float64          `json:"overtime_hours"`
	HourlyRate    float64          `json:"hourly_rate"`
	OvertimeCost  float64          `json:"overtime_cost"`
	Severity      OvertimeSeverity `json:"severity"`
}

// OvertimeReport collects overtime records for the 7-day window ending at
// the run's business date.
type OvertimeReport struct {
	WeekStart         string           `json:"week_start"`
	WeekEnd           string           `json:"week_end"`
	Records           []OvertimeRecord `json:"records,omitempty"`
	TotalOvertimeCost float64          `json:"total_overtime_cost"`
}
