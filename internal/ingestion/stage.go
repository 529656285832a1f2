// Package ingestion loads and validates the POS exports for one run.
//
// Purpose:
//   This package implements the first pipeline stage. It locates the
//   required and optional CSVs through a DataSource, enforces the fatal
//   L1 validations (presence, non-empty, required columns), computes the
//   non-fatal L2 quality metrics, and extracts the scalars and time
//   entries every later stage depends on.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Logical file names and their required columns. Required files abort the
// run when missing; optional files degrade the features that need them.
var (
	requiredFiles = []string{"labor", "sales", "orders"}
	optionalFiles = []string{"kitchen", "eod", "payroll", "cash_activity", "cash_mgmt"}

	requiredColumns = map[string][]string{
		"labor":  {"Employee", "Job Title", "In Date", "Out Date", "Total Hours", "Payable Hours"},
		"sales":  {"Net sales"},
		"orders": {"Order #", "Opened", "Server", "Amount"},
	}
)

// qualityWarnThreshold is the L2 score below which a quality warning is
// attached to the run.
const qualityWarnThreshold = 0.9

// Stage is the ingestion stage.
type Stage struct {
	source   datasource.DataSource
	settings *config.Store
	logger   *zap.Logger
}

// Config configures the ingestion stage.
type Config struct {
	Source   datasource.DataSource
	Settings *config.Store
	Logger   *zap.Logger
}

// New creates the ingestion stage.
func New(cfg Config) *Stage {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Stage{
		source:   cfg.Source,
		settings: cfg.Settings,
		logger:   cfg.Logger,
	}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return "ingestion" }

// Run loads the file set, validates it, and writes tables, scalars, time
// entries, and the quality report to the context.
func (s *Stage) Run(ctx context.Context, pc *pipeline.Context) error {
	logger := s.logger.With(
		zap.String("restaurant", pc.Restaurant),
		zap.String("business_date", pc.Date),
	)

	for _, logical := range requiredFiles {
		table, err := s.source.ReadCSV(ctx, logical)
		if err != nil {
			if errors.Is(err, datasource.ErrFileNotFound) {
				return pipeline.Errorf(pipeline.KindMissingFile, "required file %q: %v", logical, err)
			}
			return pipeline.Errorf(pipeline.KindValidation, "load required file %q: %v", logical, err)
		}
		if table.Len() == 0 {
			return pipeline.Errorf(pipeline.KindValidation, "required file %q has no data rows", logical)
		}
		if err := table.RequireColumns(requiredColumns[logical]...); err != nil {
			return pipeline.Errorf(pipeline.KindValidation, "file %q: %v", logical, err)
		}
		pc.SetTable(logical, table)
	}

	for _, logical := range optionalFiles {
		table, err := s.source.ReadCSV(ctx, logical)
		if err != nil {
			if errors.Is(err, datasource.ErrFileNotFound) {
				logger.Debug("optional file absent", zap.String("file", logical))
			} else {
				logger.Warn("optional file unreadable, degrading",
					zap.String("file", logical), zap.Error(err))
				pc.AddWarning(fmt.Sprintf("optional file %q unreadable: %v", logical, err))
			}
			continue
		}
		pc.SetTable(logical, table)
	}

	sales, err := s.extractSales(pc.Table("sales"))
	if err != nil {
		return pipeline.WrapErr(pipeline.KindValidation, err)
	}
	pc.SetSales(sales)

	if payroll := pc.Table("payroll"); payroll != nil {
		if cost, ok := s.extractPayrollCost(pc, payroll); ok {
			pc.SetPayrollCost(cost)
		}
	}

	entries, skipped := s.buildTimeEntries(pc, pc.Table("labor"))
	pc.SetTimeEntries(entries)
	if skipped > 0 {
		pc.SetMeta("labor_rows_skipped", fmt.Sprintf("%d", skipped))
	}

	pc.SetLaborReport(s.buildLaborReport(pc, entries))

	quality := s.measureQuality(pc)
	pc.SetQuality(quality)
	for _, w := range quality.Warnings {
		pc.AddWarning(w)
	}

	logger.Info("ingestion complete",
		zap.Float64("sales", sales),
		zap.Int("time_entries", len(entries)),
		zap.Int("labor_rows_skipped", skipped),
		zap.Float64("quality_score", quality.Score),
	)
	return nil
}

// extractSales sums the net sales column. An unparseable cell is fatal:
// every downstream percentage depends on this scalar.
func (s *Stage) extractSales(sales *datasource.Table) (float64, error) {
	col, ok := sales.ColumnIndex("Net sales")
	if !ok {
		return 0, fmt.Errorf("sales file: missing required column %q", "Net sales")
	}
	var total float64
	for i := 0; i < sales.Len(); i++ {
		v, err := timeutil.ParseFloat(sales.Cell(i, col))
		if err != nil {
			return 0, fmt.Errorf("sales row %d: %w", i+1, err)
		}
		total += v
	}
	return total, nil
}

// extractPayrollCost sums the payroll export's total pay column when
// present. Unparseable cells degrade to warnings.
func (s *Stage) extractPayrollCost(pc *pipeline.Context, payroll *datasource.Table) (float64, bool) {
	col, ok := payroll.AnyColumn("Total Pay", "Total pay")
	if !ok {
		return 0, false
	}
	var total float64
	for i := 0; i < payroll.Len(); i++ {
		v, err := timeutil.ParseFloat(payroll.Cell(i, col))
		if err != nil {
			pc.AddWarning(fmt.Sprintf("payroll row %d: unparseable total pay %q", i+1, payroll.Cell(i, col)))
			continue
		}
		total += v
	}
	return total, true
}

func (s *Stage) buildTimeEntries(pc *pipeline.Context, labor *datasource.Table) ([]domain.TimeEntry, int) {
	nameCol, _ := labor.ColumnIndex("Employee")
	titleCol, _ := labor.ColumnIndex("Job Title")
	inCol, _ := labor.ColumnIndex("In Date")
	outCol, _ := labor.ColumnIndex("Out Date")
	totalCol, _ := labor.ColumnIndex("Total Hours")
	payableCol, _ := labor.ColumnIndex("Payable Hours")
	autoCol, hasAuto := labor.AnyColumn("Auto Clock-out", "Auto Clockout", "Auto clock-out")

	keywords := s.settings.Shifts.ManagerKeywords

	entries := make([]domain.TimeEntry, 0, labor.Len())
	skipped := 0
	for i := 0; i < labor.Len(); i++ {
		name := labor.Cell(i, nameCol)
		if name == "" {
			skipped++
			continue
		}

		clockIn, errIn := timeutil.ParseAt(labor.Cell(i, inCol), pc.BusinessDate)
		clockOut, errOut := timeutil.ParseAt(labor.Cell(i, outCol), pc.BusinessDate)
		if errIn != nil {
			clockIn = time.Time{}
		}
		if errOut != nil {
			clockOut = time.Time{}
		}
		// Bare clock times that cross midnight land before the clock-in
		// once grafted onto the business date.
		if !clockIn.IsZero() && !clockOut.IsZero() && clockOut.Before(clockIn) {
			clockOut = clockOut.AddDate(0, 0, 1)
		}

		totalHours, err := timeutil.ParseFloat(labor.Cell(i, totalCol))
		if err != nil {
			s.logger.Debug("skipping labor row: bad total hours",
				zap.Int("row", i+1), zap.String("employee", name), zap.Error(err))
			skipped++
			continue
		}
		payableHours, err := timeutil.ParseFloat(labor.Cell(i, payableCol))
		if err != nil {
			payableHours = totalHours
		}

		auto := false
		if hasAuto {
			switch strings.ToLower(labor.Cell(i, autoCol)) {
			case "yes", "true", "1", "y":
				auto = true
			}
		}

		entry, err := domain.NewTimeEntry(name, labor.Cell(i, titleCol), clockIn, clockOut,
			totalHours, payableHours, auto, keywords)
		if err != nil {
			s.logger.Debug("skipping invalid labor row",
				zap.Int("row", i+1), zap.Error(err))
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

func (s *Stage) buildLaborReport(pc *pipeline.Context, entries []domain.TimeEntry) domain.LaborReport {
	report := domain.LaborReport{
		Restaurant: pc.Restaurant,
		Date:       pc.Date,
	}
	seen := make(map[string]struct{})
	for _, e := range entries {
		report.TotalHoursWorked += e.TotalHours
		seen[e.EmployeeName] = struct{}{}
	}
	report.EmployeeCount = len(seen)

	if cost, ok := pc.PayrollCost(); ok {
		report.TotalLaborCost = cost
	} else {
		pc.AddWarning("payroll export absent: labor cost unavailable")
	}

	if payroll := pc.Table("payroll"); payroll != nil {
		if col, ok := payroll.AnyColumn("Regular Hours", "Regular hours"); ok {
			report.RegularHours = sumColumn(payroll, col)
		}
		if col, ok := payroll.AnyColumn("Overtime Hours", "Overtime hours"); ok {
			report.OvertimeHours = sumColumn(payroll, col)
		}
	}
	return report
}

func sumColumn(t *datasource.Table, col int) float64 {
	var total float64
	for i := 0; i < t.Len(); i++ {
		v, err := timeutil.ParseFloat(t.Cell(i, col))
		if err != nil {
			continue
		}
		total += v
	}
	return total
}
