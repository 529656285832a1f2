package patterns

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/metrics"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Stage is the pattern learning stage. Store failures never fail the run:
// the update is skipped, a warning is recorded, and the run proceeds to
// storage with whatever was learned. Missing upstream outputs are wiring
// bugs and do fail the run.
type Stage struct {
	daily    *DailyManager
	timeslot *TimeslotManager
	logger   *zap.Logger
}

// Config configures the pattern learning stage. Either manager may be nil
// to disable that pattern kind.
type Config struct {
	Daily    *DailyManager
	Timeslot *TimeslotManager
	Logger   *zap.Logger
}

// New creates the pattern learning stage.
func New(cfg Config) *Stage {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Stage{daily: cfg.Daily, timeslot: cfg.Timeslot, logger: cfg.Logger}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return "patterns" }

// Run folds the run's labor outcome and graded windows into the pattern
// stores and records how many patterns were updated.
func (s *Stage) Run(ctx context.Context, pc *pipeline.Context) error {
	var counts domain.PatternCounts

	if s.daily != nil {
		laborMetrics, ok := pc.LaborMetrics()
		if !ok {
			return pipeline.Errorf(pipeline.KindInternal, "labor metrics absent from context")
		}
		report, ok := pc.LaborReport()
		if !ok {
			return pipeline.Errorf(pipeline.KindInternal, "labor report absent from context")
		}

		p, err := s.daily.Learn(ctx, pc.Restaurant, pc.BusinessDate, laborMetrics.LaborPercentage, report.TotalHoursWorked)
		if err != nil {
			s.warn(pc, "daily pattern update skipped", err)
		} else {
			counts.Daily = 1
			s.logger.Debug("daily pattern updated",
				zap.String("key", p.Key()),
				zap.Float64("expected_labor_pct", p.ExpectedLaborPercentage),
				zap.Float64("expected_hours", p.ExpectedTotalHours),
				zap.Float64("confidence", p.Confidence),
				zap.Int("observations", p.Observations))
		}
	}

	if s.timeslot != nil {
		slots, ok := pc.Timeslots()
		if !ok {
			return pipeline.Errorf(pipeline.KindInternal, "timeslots absent from context")
		}

		dayName := timeutil.DayName(timeutil.DayOfWeek(pc.BusinessDate))
		n, err := s.timeslot.Learn(ctx, pc.Restaurant, dayName, slots)
		if err != nil {
			s.warn(pc, "timeslot pattern updates incomplete", err)
		}
		counts.Timeslot = n
	}

	pc.SetPatternsLearned(counts)
	metrics.RecordPatternsLearned("daily", counts.Daily)
	metrics.RecordPatternsLearned("timeslot", counts.Timeslot)

	s.logger.Info("pattern learning complete",
		zap.String("restaurant", pc.Restaurant),
		zap.String("date", pc.Date),
		zap.Int("daily_patterns", counts.Daily),
		zap.Int("timeslot_patterns", counts.Timeslot))
	return nil
}

func (s *Stage) warn(pc *pipeline.Context, msg string, err error) {
	s.logger.Warn(msg,
		zap.String("restaurant", pc.Restaurant),
		zap.String("date", pc.Date),
		zap.Error(err))
	pc.AddWarning(fmt.Sprintf("%s: %v", msg, err))
}
