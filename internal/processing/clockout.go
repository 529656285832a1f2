package processing

import (
	"fmt"
	"strings"
	"time"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// bohTitleKeywords marks back-of-house job titles; everything else is
// treated as front-of-house for schedule lookup.
var bohTitleKeywords = []string{"cook", "kitchen", "dish", "prep", "chef", "grill"}

// systemEntryKeywords marks entries that are stations or system accounts
// rather than people; auto-clockout analysis skips them.
var systemEntryKeywords = []string{"system", "cashier"}

// roleForTitle buckets a job title into FOH or BOH.
func roleForTitle(title string) domain.Role {
	lower := strings.ToLower(title)
	for _, kw := range bohTitleKeywords {
		if strings.Contains(lower, kw) {
			return domain.RoleBOH
		}
	}
	return domain.RoleFOH
}

func isSystemEntry(e domain.TimeEntry) bool {
	name := strings.ToLower(e.EmployeeName)
	title := strings.ToLower(e.JobTitle)
	for _, kw := range systemEntryKeywords {
		if strings.Contains(name, kw) || strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// analyzeAutoClockouts flags auto-clockout entries whose recorded hours
// run past the scheduled end of shift and prices the overrun at the
// default hourly rate.
func analyzeAutoClockouts(restaurant string, business time.Time,
	entries []domain.TimeEntry, settings *config.Store) (domain.AutoClockoutSummary, error) {

	var summary domain.AutoClockoutSummary
	sunday := business.Weekday() == time.Sunday
	cutoff := settings.Shifts.CutoffHour
	rate := settings.Clockout.DefaultHourlyRate

	for _, e := range entries {
		if !e.AutoClockout || isSystemEntry(e) || e.ClockIn.IsZero() {
			continue
		}

		role := roleForTitle(e.JobTitle)
		evening := e.ClockIn.Hour() >= cutoff
		clock, ok := settings.ShiftEndClock(restaurant, strings.ToLower(string(role)), sunday, evening)
		if !ok {
			continue
		}
		expectedEnd, err := atClock(business, clock)
		if err != nil {
			return domain.AutoClockoutSummary{}, fmt.Errorf("schedule for %s/%s: %w", restaurant, role, err)
		}

		suggested := expectedEnd.Sub(e.ClockIn).Hours()
		if suggested <= 0 {
			continue
		}
		diff := e.TotalHours - suggested
		if diff <= 0 {
			continue
		}

		summary.Alerts = append(summary.Alerts, domain.ClockoutAlert{
			EmployeeName:    e.EmployeeName,
			JobTitle:        e.JobTitle,
			Role:            role,
			ClockIn:         e.ClockIn,
			ExpectedEnd:     expectedEnd,
			RecordedHours:   e.TotalHours,
			SuggestedHours:  suggested,
			HoursDifference: diff,
			CostImpact:      diff * rate,
		})
		summary.EntriesFlagged++
		summary.TotalHoursDifference += diff
		summary.TotalCostImpact += diff * rate
	}
	return summary, nil
}

// atClock grafts an "HH:MM" clock value onto the business date.
func atClock(business time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(business.Year(), business.Month(), business.Day(),
		t.Hour(), t.Minute(), 0, 0, business.Location()), nil
}
