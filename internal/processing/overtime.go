package processing

import (
	"sort"
	"sync"
	"time"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

type employeeDay struct {
	hours float64
	rate  float64
}

// HoursLedger accumulates per-employee payable hours per day so a run can
// total the week leading up to its business date. The ledger is shared
// across a batch and safe for concurrent workers; recording a day twice
// replaces it, keeping re-runs idempotent.
type HoursLedger struct {
	mu   sync.RWMutex
	days map[string]map[string]map[string]employeeDay
}

// NewHoursLedger creates an empty ledger.
func NewHoursLedger() *HoursLedger {
	return &HoursLedger{days: make(map[string]map[string]map[string]employeeDay)}
}

// Record stores one day's payable hours per employee. Rates carry the
// per-employee hourly rate when the payroll export provided one.
func (l *HoursLedger) Record(restaurant, date string, entries []domain.TimeEntry, rates map[string]float64) {
	day := make(map[string]employeeDay, len(entries))
	for _, e := range entries {
		d := day[e.EmployeeName]
		d.hours += e.PayableHours
		if r, ok := rates[e.EmployeeName]; ok {
			d.rate = r
		}
		day[e.EmployeeName] = d
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.days[restaurant] == nil {
		l.days[restaurant] = make(map[string]map[string]employeeDay)
	}
	l.days[restaurant][date] = day
}

// weekTotals sums hours per employee across [weekStart, weekEnd],
// inclusive. The last known rate for an employee wins.
func (l *HoursLedger) weekTotals(restaurant string, weekStart, weekEnd time.Time) map[string]employeeDay {
	totals := make(map[string]employeeDay)

	l.mu.RLock()
	defer l.mu.RUnlock()
	byDate := l.days[restaurant]
	if byDate == nil {
		return totals
	}
	for d := weekStart; !d.After(weekEnd); d = d.AddDate(0, 0, 1) {
		for name, day := range byDate[timeutil.FormatDate(d)] {
			t := totals[name]
			t.hours += day.hours
			if day.rate > 0 {
				t.rate = day.rate
			}
			totals[name] = t
		}
	}
	return totals
}

// computeOvertime reports employees whose accumulated hours in the
// Monday-anchored week ending at the business date exceed the weekly
// threshold. Exactly at the threshold is not overtime.
func computeOvertime(restaurant string, business time.Time, ledger *HoursLedger, settings *config.Store) domain.OvertimeReport {
	weekStart := timeutil.WeekStart(business)
	report := domain.OvertimeReport{
		WeekStart: timeutil.FormatDate(weekStart),
		WeekEnd:   timeutil.FormatDate(business),
	}

	threshold := settings.Overtime.WeeklyThresholdHours
	multiplier := settings.Overtime.Multiplier
	defaultRate := settings.Clockout.DefaultHourlyRate

	totals := ledger.weekTotals(restaurant, weekStart, business)
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := totals[name]
		if t.hours <= threshold {
			continue
		}
		rate := t.rate
		if rate <= 0 {
			rate = defaultRate
		}
		overtime := t.hours - threshold
		record := domain.OvertimeRecord{
			EmployeeName:  name,
			WeeklyHours:   t.hours,
			OvertimeHours: overtime,
			HourlyRate:    rate,
			OvertimeCost:  overtime * rate * multiplier,
			Severity:      domain.SeverityForOvertime(overtime),
		}
		report.Records = append(report.Records, record)
		report.TotalOvertimeCost += record.OvertimeCost
	}
	return report
}
