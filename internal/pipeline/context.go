package pipeline

import (
	"time"

	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
)

// Context carries the shared state of one (restaurant, business date) run
// through the stages. It is owned by a single goroutine and not safe for
// concurrent use; each run gets its own instance.
//
// Values flow through typed slot accessors. Stage completion flags and
// durations feed checkpoints; raw tables never leave the process.
type Context struct {
	Restaurant   string
	Date         string
	BusinessDate time.Time
	DataPath     string

	// ingestion outputs
	tables         map[string]*datasource.Table
	sales          float64
	salesSet       bool
	payrollCost    float64
	payrollCostSet bool
	timeEntries    []domain.TimeEntry
	timeEntriesSet bool
	quality        domain.QualityReport
	qualitySet     bool

	// categorization outputs
	orders          []domain.OrderRecord
	ordersSet       bool
	orderCategories map[string]domain.Category
	serviceMix      domain.ServiceMix
	serviceMixSet   bool
	ruleHits        map[string]int

	// grading outputs
	timeslots     []domain.Timeslot
	timeslotsSet  bool
	shiftStats    domain.ShiftCategoryStats
	shiftStatsSet bool

	// processing outputs
	laborReport     domain.LaborReport
	laborReportSet  bool
	laborMetrics    domain.LaborMetrics
	laborMetricsSet bool
	shiftMetrics    domain.ShiftMetrics
	shiftMetricsSet bool
	cashFlow        *domain.CashFlow
	clockout        domain.AutoClockoutSummary
	clockoutSet     bool
	overtime        domain.OvertimeReport
	overtimeSet     bool

	// pattern learning outputs
	patternsLearned domain.PatternCounts

	completed map[string]bool
	durations map[string]time.Duration
	metadata  map[string]string
	warnings  []string
}

// NewContext builds an empty run context.
func NewContext(restaurant, date string, businessDate time.Time, dataPath string) *Context {
	return &Context{
		Restaurant:   restaurant,
		Date:         date,
		BusinessDate: businessDate,
		DataPath:     dataPath,
		tables:       make(map[string]*datasource.Table),
		completed:    make(map[string]bool),
		durations:    make(map[string]time.Duration),
		metadata:     make(map[string]string),
	}
}

// SetTable stores a raw table under its logical name.
func (c *Context) SetTable(logical string, t *datasource.Table) {
	c.tables[logical] = t
}

// Table returns the raw table for a logical name, nil when absent.
func (c *Context) Table(logical string) *datasource.Table {
	return c.tables[logical]
}

// HasTable reports whether a logical table was loaded.
func (c *Context) HasTable(logical string) bool {
	_, ok := c.tables[logical]
	return ok
}

// DropTables releases all raw tables. Called once persistence no longer
// needs them so batch memory stays bounded.
func (c *Context) DropTables() {
	c.tables = make(map[string]*datasource.Table)
}

// SetSales stores the net sales scalar.
func (c *Context) SetSales(v float64) { c.sales, c.salesSet = v, true }

// Sales returns the net sales scalar.
func (c *Context) Sales() (float64, bool) { return c.sales, c.salesSet }

// SetPayrollCost stores the payroll cost scalar when the export is present.
func (c *Context) SetPayrollCost(v float64) { c.payrollCost, c.payrollCostSet = v, true }

// PayrollCost returns the payroll cost scalar.
func (c *Context) PayrollCost() (float64, bool) { return c.payrollCost, c.payrollCostSet }

// SetTimeEntries stores the validated labor entries.
func (c *Context) SetTimeEntries(entries []domain.TimeEntry) {
	c.timeEntries, c.timeEntriesSet = entries, true
}

// TimeEntries returns the validated labor entries.
func (c *Context) TimeEntries() ([]domain.TimeEntry, bool) {
	return c.timeEntries, c.timeEntriesSet
}

// SetQuality stores the ingestion quality report.
func (c *Context) SetQuality(q domain.QualityReport) { c.quality, c.qualitySet = q, true }

// Quality returns the ingestion quality report.
func (c *Context) Quality() (domain.QualityReport, bool) { return c.quality, c.qualitySet }

// SetCategorizedOrders stores the categorized orders and the per-check map.
func (c *Context) SetCategorizedOrders(orders []domain.OrderRecord, byCheck map[string]domain.Category) {
	c.orders, c.ordersSet = orders, true
	c.orderCategories = byCheck
}

// CategorizedOrders returns the categorized orders.
func (c *Context) CategorizedOrders() ([]domain.OrderRecord, bool) {
	return c.orders, c.ordersSet
}

// OrderCategories returns the check number to category map.
func (c *Context) OrderCategories() map[string]domain.Category {
	return c.orderCategories
}

// SetServiceMix stores the category percentage distribution.
func (c *Context) SetServiceMix(m domain.ServiceMix) { c.serviceMix, c.serviceMixSet = m, true }

// ServiceMix returns the category percentage distribution.
func (c *Context) ServiceMix() (domain.ServiceMix, bool) { return c.serviceMix, c.serviceMixSet }

// SetRuleHits stores the categorization rule hit counters.
func (c *Context) SetRuleHits(hits map[string]int) { c.ruleHits = hits }

// RuleHits returns the categorization rule hit counters.
func (c *Context) RuleHits() map[string]int { return c.ruleHits }

// SetTimeslots stores all 64 graded windows, ordered by index.
func (c *Context) SetTimeslots(slots []domain.Timeslot) { c.timeslots, c.timeslotsSet = slots, true }

// Timeslots returns the graded windows.
func (c *Context) Timeslots() ([]domain.Timeslot, bool) { return c.timeslots, c.timeslotsSet }

// SetShiftStats stores the per-shift category aggregates.
func (c *Context) SetShiftStats(s domain.ShiftCategoryStats) { c.shiftStats, c.shiftStatsSet = s, true }

// ShiftStats returns the per-shift category aggregates.
func (c *Context) ShiftStats() (domain.ShiftCategoryStats, bool) {
	return c.shiftStats, c.shiftStatsSet
}

// SetLaborReport stores the ingested labor scalars.
func (c *Context) SetLaborReport(r domain.LaborReport) { c.laborReport, c.laborReportSet = r, true }

// LaborReport returns the ingested labor scalars.
func (c *Context) LaborReport() (domain.LaborReport, bool) { return c.laborReport, c.laborReportSet }

// SetLaborMetrics stores the graded labor outcome.
func (c *Context) SetLaborMetrics(m domain.LaborMetrics) { c.laborMetrics, c.laborMetricsSet = m, true }

// LaborMetrics returns the graded labor outcome.
func (c *Context) LaborMetrics() (domain.LaborMetrics, bool) {
	return c.laborMetrics, c.laborMetricsSet
}

// SetShiftMetrics stores the morning/evening split.
func (c *Context) SetShiftMetrics(m domain.ShiftMetrics) { c.shiftMetrics, c.shiftMetricsSet = m, true }

// ShiftMetrics returns the morning/evening split.
func (c *Context) ShiftMetrics() (domain.ShiftMetrics, bool) {
	return c.shiftMetrics, c.shiftMetricsSet
}

// SetCashFlow stores the cash movement summary. Nil means no cash data.
func (c *Context) SetCashFlow(cf *domain.CashFlow) { c.cashFlow = cf }

// CashFlow returns the cash movement summary, nil when absent.
func (c *Context) CashFlow() *domain.CashFlow { return c.cashFlow }

// SetAutoClockout stores the auto-clockout analysis.
func (c *Context) SetAutoClockout(s domain.AutoClockoutSummary) { c.clockout, c.clockoutSet = s, true }

// AutoClockout returns the auto-clockout analysis.
func (c *Context) AutoClockout() (domain.AutoClockoutSummary, bool) {
	return c.clockout, c.clockoutSet
}

// SetOvertime stores the weekly overtime report.
func (c *Context) SetOvertime(r domain.OvertimeReport) { c.overtime, c.overtimeSet = r, true }

// Overtime returns the weekly overtime report.
func (c *Context) Overtime() (domain.OvertimeReport, bool) { return c.overtime, c.overtimeSet }

// SetPatternsLearned stores the pattern update counts.
func (c *Context) SetPatternsLearned(n domain.PatternCounts) { c.patternsLearned = n }

// PatternsLearned returns the pattern update counts.
func (c *Context) PatternsLearned() domain.PatternCounts { return c.patternsLearned }

// MarkCompleted flags a stage as done and records its duration.
func (c *Context) MarkCompleted(stage string, elapsed time.Duration) {
	c.completed[stage] = true
	c.durations[stage] = elapsed
}

// Completed reports whether a stage finished.
func (c *Context) Completed(stage string) bool { return c.completed[stage] }

// StageDuration returns a completed stage's elapsed time.
func (c *Context) StageDuration(stage string) (time.Duration, bool) {
	d, ok := c.durations[stage]
	return d, ok
}

// TotalDuration sums all completed stage durations.
func (c *Context) TotalDuration() time.Duration {
	var total time.Duration
	for _, d := range c.durations {
		total += d
	}
	return total
}

// SetMeta records a free-form metadata entry.
func (c *Context) SetMeta(key, value string) { c.metadata[key] = value }

// Meta returns a metadata entry.
func (c *Context) Meta(key string) (string, bool) {
	v, ok := c.metadata[key]
	return v, ok
}

// AddWarning records a recoverable issue without interrupting the run.
func (c *Context) AddWarning(msg string) { c.warnings = append(c.warnings, msg) }

// Warnings returns the accumulated recoverable issues.
func (c *Context) Warnings() []string { return c.warnings }
