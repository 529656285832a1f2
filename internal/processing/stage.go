// Package processing computes the day's operational metrics: labor
// percentage with status and grade, the morning/evening shift split,
// auto-clockout corrections, weekly overtime, and the cash flow summary.
//
// Purpose:
//   This is the fourth pipeline stage. It consumes the sales scalar, the
//   labor report, the time entries, and the categorized orders, and writes
//   LaborMetrics, ShiftMetrics, AutoClockoutSummary, OvertimeReport, and
//   CashFlow to the context. Weekly overtime reads the shared HoursLedger,
//   which accumulates payable hours across the batch; a single-day run
//   sees only its own day and reports overtime accordingly.
package processing

import (
	"context"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/cashflow"
	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Stage is the processing stage.
type Stage struct {
	settings *config.Store
	ledger   *HoursLedger
	logger   *zap.Logger
}

// Config configures the processing stage. Ledger may be nil for callers
// that do not track weekly hours; a private ledger is created so overtime
// still covers the run's own day.
type Config struct {
	Settings *config.Store
	Ledger   *HoursLedger
	Logger   *zap.Logger
}

// New creates the processing stage.
func New(cfg Config) *Stage {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Ledger == nil {
		cfg.Ledger = NewHoursLedger()
	}
	return &Stage{settings: cfg.Settings, ledger: cfg.Ledger, logger: cfg.Logger}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return "processing" }

// Run computes labor metrics, the shift split, auto-clockout alerts, and
// weekly overtime, and writes all four to the context.
func (s *Stage) Run(ctx context.Context, pc *pipeline.Context) error {
	sales, ok := pc.Sales()
	if !ok {
		return pipeline.Errorf(pipeline.KindInternal, "sales scalar absent from context")
	}
	report, ok := pc.LaborReport()
	if !ok {
		return pipeline.Errorf(pipeline.KindInternal, "labor report absent from context")
	}
	entries, _ := pc.TimeEntries()
	orders, _ := pc.CategorizedOrders()

	metrics := computeLaborMetrics(sales, report.TotalLaborCost, s.settings.Labor)
	pc.SetLaborMetrics(metrics)

	shiftMetrics := splitShifts(pc.BusinessDate, sales, report.TotalLaborCost, orders, entries, s.settings.Shifts)
	pc.SetShiftMetrics(shiftMetrics)

	clockouts, err := analyzeAutoClockouts(pc.Restaurant, pc.BusinessDate, entries, s.settings)
	if err != nil {
		return pipeline.WrapErr(pipeline.KindConfig, err)
	}
	pc.SetAutoClockout(clockouts)

	rates := employeeRates(pc.Table("payroll"))
	s.ledger.Record(pc.Restaurant, pc.Date, entries, rates)
	pc.SetOvertime(computeOvertime(pc.Restaurant, pc.BusinessDate, s.ledger, s.settings))

	cashTable := pc.Table("cash_mgmt")
	if cashTable == nil {
		cashTable = pc.Table("cash_activity")
	}
	extractor := cashflow.NewExtractor(s.settings.Shifts.CutoffHour, s.logger)
	if flow := extractor.Extract(cashTable, pc.BusinessDate); flow != nil {
		pc.SetCashFlow(flow)
	} else {
		pc.AddWarning("cash management export absent: cash flow unavailable")
	}

	s.logger.Info("processing complete",
		zap.String("restaurant", pc.Restaurant),
		zap.String("business_date", pc.Date),
		zap.Float64("labor_percentage", metrics.LaborPercentage),
		zap.String("labor_status", string(metrics.Status)),
		zap.String("split_method", string(shiftMetrics.Method)),
		zap.Int("clockout_alerts", clockouts.EntriesFlagged),
	)
	return nil
}

// employeeRates extracts per-employee hourly rates from the payroll
// export: an explicit rate column when present, otherwise total pay over
// hours. Missing or unparseable data simply yields no entry.
func employeeRates(payroll *datasource.Table) map[string]float64 {
	rates := make(map[string]float64)
	if payroll == nil {
		return rates
	}
	nameCol, ok := payroll.AnyColumn("Employee", "Employee Name")
	if !ok {
		return rates
	}
	rateCol, hasRate := payroll.AnyColumn("Rate", "Hourly Rate")
	payCol, hasPay := payroll.AnyColumn("Total Pay", "Total pay")
	hoursCol, hasHours := payroll.AnyColumn("Payable Hours", "Total Hours", "Regular Hours")

	for i := 0; i < payroll.Len(); i++ {
		name := payroll.Cell(i, nameCol)
		if name == "" {
			continue
		}
		if hasRate {
			if rate, err := timeutil.ParseFloat(payroll.Cell(i, rateCol)); err == nil && rate > 0 {
				rates[name] = rate
				continue
			}
		}
		if hasPay && hasHours {
			pay, errP := timeutil.ParseFloat(payroll.Cell(i, payCol))
			hours, errH := timeutil.ParseFloat(payroll.Cell(i, hoursCol))
			if errP == nil && errH == nil && pay > 0 && hours > 0 {
				rates[name] = pay / hours
			}
		}
	}
	return rates
}
