// Package orchestrator fans a batch of (restaurant, business date) runs
// out over a bounded worker pool.
//
// Purpose:
//
//	This package owns batch execution: it expands a date range and
//	restaurant list into jobs, runs each job's six-stage pipeline in a
//	worker goroutine under a per-run timeout, and folds the outcomes into
//	an ordered result list plus a batch summary. Stages inside one run are
//	sequential; runs are parallel up to the worker bound. The pattern
//	managers, hours ledger, and database client are batch-scoped and
//	shared across workers.
//
// Dependencies:
//   - go.uber.org/zap: structured logging
//   - github.com/google/uuid: run identifiers
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/categorization"
	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/datasource"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/grading"
	"github.com/JPRanx/omni-v4-sub001/internal/ingestion"
	"github.com/JPRanx/omni-v4-sub001/internal/metrics"
	"github.com/JPRanx/omni-v4-sub001/internal/patterns"
	"github.com/JPRanx/omni-v4-sub001/internal/persist"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/processing"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

// Config configures a batch orchestrator. Client, Daily, Timeslot, and
// Checkpoints may all be nil; each nil disables its concern (persistence,
// daily learning, timeslot learning and historical targets, resume).
type Config struct {
	DataDir     string
	ConfigDir   string
	Environment string

	// Workers and RunTimeout override orchestrator.max_workers and
	// orchestrator.run_timeout_seconds from the base layer when positive.
	Workers    int
	RunTimeout time.Duration

	// Resume skips jobs whose checkpoint marks every stage complete.
	Resume bool
	// FreezeLearning runs the pattern stage with no managers: grading
	// still reads historical targets, but nothing is upserted.
	FreezeLearning bool

	Client      persist.DatabaseClient
	Daily       *patterns.DailyManager
	Timeslot    *patterns.TimeslotManager
	Checkpoints *pipeline.CheckpointStore

	Logger *zap.Logger
}

// BatchReport is everything a finished batch produced: one result per
// attempted run, ordered by (date, restaurant), plus the summary.
type BatchReport struct {
	Results []domain.RunResult
	Summary domain.BatchSummary
}

type job struct {
	restaurant string
	date       time.Time
}

type outcome struct {
	result  domain.RunResult
	skipped bool
}

// Orchestrator executes batches of pipeline runs.
type Orchestrator struct {
	cfg        Config
	workers    int
	runTimeout time.Duration
	ledger     *processing.HoursLedger
	logger     *zap.Logger
}

// New builds an orchestrator, resolving worker count and run timeout from
// the base configuration layer where the caller left them unset.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	base, err := config.LoadStore(cfg.ConfigDir, cfg.Environment, "")
	if err != nil {
		return nil, fmt.Errorf("load base configuration: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = base.Orchestrator.MaxWorkers
	}
	runTimeout := cfg.RunTimeout
	if runTimeout <= 0 {
		runTimeout = base.Orchestrator.RunTimeout
	}

	return &Orchestrator{
		cfg:        cfg,
		workers:    workers,
		runTimeout: runTimeout,
		ledger:     processing.NewHoursLedger(),
		logger:     cfg.Logger.With(zap.String("component", "orchestrator")),
	}, nil
}

// RunBatch executes every (restaurant, date) pair in the scope. The error
// return covers setup problems and interruption only; individual run
// failures land in the report. Runs execute in (date, restaurant) order
// up to the worker bound, so a week of days feeds the overtime ledger
// chronologically when workers is 1.
func (o *Orchestrator) RunBatch(ctx context.Context, restaurants []string, from, to time.Time) (BatchReport, error) {
	restaurants = normalizeRestaurants(restaurants)
	if len(restaurants) == 0 {
		return BatchReport{}, fmt.Errorf("no restaurants in batch scope")
	}
	from, to = timeutil.Midnight(from), timeutil.Midnight(to)
	if from.After(to) {
		return BatchReport{}, fmt.Errorf("invalid date range: %s is after %s",
			from.Format(timeutil.DateLayout), to.Format(timeutil.DateLayout))
	}

	settings := make(map[string]*config.Store, len(restaurants))
	for _, r := range restaurants {
		s, err := config.LoadStore(o.cfg.ConfigDir, o.cfg.Environment, r)
		if err != nil {
			return BatchReport{}, fmt.Errorf("load configuration for %s: %w", r, err)
		}
		settings[r] = s
	}

	var jobs []job
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for _, r := range restaurants {
			jobs = append(jobs, job{restaurant: r, date: d})
		}
	}

	o.logger.Info("batch starting",
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", o.workers),
		zap.String("from", from.Format(timeutil.DateLayout)),
		zap.String("to", to.Format(timeutil.DateLayout)),
		zap.Strings("restaurants", restaurants),
	)
	start := time.Now()

	jobsCh := make(chan job)
	outcomes := make(chan outcome, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger := o.logger.With(zap.Int("worker_id", id))
			for jb := range jobsCh {
				outcomes <- o.executeRun(ctx, logger, settings[jb.restaurant], jb)
			}
		}(i)
	}

	interrupted := false
feed:
	for _, jb := range jobs {
		select {
		case jobsCh <- jb:
		case <-ctx.Done():
			interrupted = true
			break feed
		}
	}
	close(jobsCh)
	wg.Wait()
	close(outcomes)

	report := BatchReport{}
	for out := range outcomes {
		if out.skipped {
			report.Summary.Skipped++
			continue
		}
		report.Results = append(report.Results, out.result)
		if out.result.Success {
			report.Summary.Succeeded++
		} else {
			report.Summary.Failed++
		}
	}
	sort.Slice(report.Results, func(i, j int) bool {
		if report.Results[i].Date != report.Results[j].Date {
			return report.Results[i].Date < report.Results[j].Date
		}
		return report.Results[i].Restaurant < report.Results[j].Restaurant
	})

	attempted := report.Summary.Succeeded + report.Summary.Failed
	report.Summary.TotalRuns = attempted + report.Summary.Skipped
	report.Summary.SuccessRate = 100.0
	if attempted > 0 {
		report.Summary.SuccessRate = float64(report.Summary.Succeeded) / float64(attempted) * 100
	}
	report.Summary.DateFrom = from.Format(timeutil.DateLayout)
	report.Summary.DateTo = to.Format(timeutil.DateLayout)
	report.Summary.Restaurants = restaurants
	report.Summary.DurationMS = time.Since(start).Milliseconds()

	o.logger.Info("batch finished",
		zap.Int("succeeded", report.Summary.Succeeded),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Duration("duration", time.Since(start)),
	)

	if interrupted {
		return report, fmt.Errorf("batch interrupted: %w", ctx.Err())
	}
	return report, nil
}

// executeRun runs one job end to end and never panics the worker: every
// attempted job yields exactly one outcome.
func (o *Orchestrator) executeRun(ctx context.Context, logger *zap.Logger, settings *config.Store, jb job) outcome {
	dateStr := jb.date.Format(timeutil.DateLayout)
	logger = logger.With(
		zap.String("restaurant", jb.restaurant),
		zap.String("business_date", dateStr),
	)

	runner, stages := o.buildRunner(settings, jb, dateStr)

	if o.cfg.Resume && o.cfg.Checkpoints != nil {
		cp, found, err := o.cfg.Checkpoints.Load(jb.restaurant, dateStr)
		if err != nil {
			logger.Warn("checkpoint load failed, re-running", zap.Error(err))
		} else if found && allComplete(cp, stages) {
			logger.Info("run already complete, skipping")
			return outcome{skipped: true}
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, o.runTimeout)
	defer cancel()

	pc := pipeline.NewContext(jb.restaurant, dateStr, jb.date, o.cfg.DataDir)

	start := time.Now()
	err := runner.Run(runCtx, pc)
	elapsed := time.Since(start)

	result := resultFromContext(pc, elapsed, err)
	if err != nil {
		logger.Error("run failed",
			zap.String("stage", result.Error.Stage),
			zap.String("kind", result.Error.Kind),
			zap.Duration("duration", elapsed),
		)
		metrics.RecordRun(jb.restaurant, "failure", elapsed.Seconds())
	} else {
		logger.Info("run completed",
			zap.Float64("sales", result.Sales),
			zap.Duration("duration", elapsed),
		)
		metrics.RecordRun(jb.restaurant, "success", elapsed.Seconds())
	}
	return outcome{result: result}
}

// buildRunner assembles the fixed six-stage pipeline for one job.
func (o *Orchestrator) buildRunner(settings *config.Store, jb job, dateStr string) (*pipeline.Runner, []pipeline.Stage) {
	var targets grading.TargetSource
	if o.cfg.Timeslot != nil {
		targets = o.cfg.Timeslot
	}

	var daily *patterns.DailyManager
	var timeslot *patterns.TimeslotManager
	if !o.cfg.FreezeLearning {
		daily = o.cfg.Daily
		timeslot = o.cfg.Timeslot
	}

	stages := []pipeline.Stage{
		ingestion.New(ingestion.Config{
			Source:   datasource.NewFileSource(o.cfg.DataDir, jb.restaurant, dateStr),
			Settings: settings,
			Logger:   o.logger,
		}),
		categorization.New(categorization.Config{Settings: settings, Logger: o.logger}),
		grading.New(grading.Config{Targets: targets, Logger: o.logger}),
		processing.New(processing.Config{Settings: settings, Ledger: o.ledger, Logger: o.logger}),
		patterns.New(patterns.Config{Daily: daily, Timeslot: timeslot, Logger: o.logger}),
		persist.New(persist.Config{
			Client:     o.cfg.Client,
			COGSSource: settings.Storage.COGSSource,
			Logger:     o.logger,
		}),
	}

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Logger:      o.logger,
		Checkpoints: o.cfg.Checkpoints,
	}, stages...)
	return runner, stages
}

func allComplete(cp pipeline.Checkpoint, stages []pipeline.Stage) bool {
	for _, s := range stages {
		if !cp.HasStage(s.Name()) {
			return false
		}
	}
	return true
}

// resultFromContext flattens a finished run into its result record. Failed
// runs keep a zeroed payload and carry the classified error block.
func resultFromContext(pc *pipeline.Context, elapsed time.Duration, runErr error) domain.RunResult {
	result := domain.RunResult{
		RunID:      uuid.NewString(),
		Restaurant: pc.Restaurant,
		Date:       pc.Date,
		Success:    runErr == nil,
		DurationMS: elapsed.Milliseconds(),
	}

	if runErr != nil {
		result.Error = &domain.RunError{
			Stage:   "",
			Kind:    string(pipeline.KindInternal),
			Message: runErr.Error(),
		}
		var perr *pipeline.Error
		if errors.As(runErr, &perr) {
			result.Error.Stage = perr.Stage
			result.Error.Kind = string(perr.Kind)
			result.Error.Message = perr.Err.Error()
		}
		return result
	}

	if v, ok := pc.Sales(); ok {
		result.Sales = v
	}
	if v, ok := pc.LaborReport(); ok {
		result.Labor = v
	}
	if v, ok := pc.LaborMetrics(); ok {
		result.LaborMetrics = v
	}
	if v, ok := pc.ShiftMetrics(); ok {
		result.Shifts = v
	}
	if v, ok := pc.ServiceMix(); ok {
		result.ServiceMix = v
	}
	if v, ok := pc.Timeslots(); ok {
		result.Timeslots = v
	}
	if v, ok := pc.ShiftStats(); ok {
		result.ShiftStats = v
	}
	result.CashFlow = pc.CashFlow()
	if v, ok := pc.AutoClockout(); ok {
		result.AutoClockout = v
	}
	if v, ok := pc.Overtime(); ok {
		result.Overtime = v
	}
	if v, ok := pc.Quality(); ok {
		result.Quality = v
	}
	result.PatternsLearned = pc.PatternsLearned()
	result.Warnings = pc.Warnings()
	return result
}

func normalizeRestaurants(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
