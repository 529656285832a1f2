package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/metrics"
)

// Stage is one step of the pipeline. Run either mutates the context and
// returns nil, or returns a classified failure. Stages read only the slots
// they declare as inputs and are executed strictly in order.
type Stage interface {
	Name() string
	Run(ctx context.Context, pc *Context) error
}

// Runner executes a fixed ordered list of stages for one run.
type Runner struct {
	stages      []Stage
	logger      *zap.Logger
	checkpoints *CheckpointStore
}

// RunnerConfig configures a runner.
type RunnerConfig struct {
	Logger *zap.Logger
	// Checkpoints, when set, receives a snapshot after every completed
	// stage. Checkpoint write failures degrade to a warning.
	Checkpoints *CheckpointStore
}

// NewRunner builds a runner over the given stages.
func NewRunner(cfg RunnerConfig, stages ...Stage) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{
		stages:      stages,
		logger:      cfg.Logger,
		checkpoints: cfg.Checkpoints,
	}
}

// StageNames returns the configured stage order.
func (r *Runner) StageNames() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes the stages sequentially. Cancellation is observed between
// stages; a failing stage stops the run and the error comes back annotated
// with the stage name and elapsed time.
func (r *Runner) Run(ctx context.Context, pc *Context) error {
	logger := r.logger.With(
		zap.String("restaurant", pc.Restaurant),
		zap.String("business_date", pc.Date),
	)

	for _, stage := range r.stages {
		if err := ctx.Err(); err != nil {
			return annotate(stage.Name(), 0, err)
		}

		stageLogger := logger.With(zap.String("stage", stage.Name()))
		stageLogger.Debug("stage starting")

		start := time.Now()
		err := stage.Run(ctx, pc)
		elapsed := time.Since(start)
		metrics.RecordStage(stage.Name(), elapsed.Seconds())

		if err != nil {
			perr := annotate(stage.Name(), elapsed, err)
			stageLogger.Error("stage failed",
				zap.String("kind", string(perr.Kind)),
				zap.Duration("duration", elapsed),
				zap.Error(perr.Err),
			)
			return perr
		}

		pc.MarkCompleted(stage.Name(), elapsed)
		stageLogger.Debug("stage completed", zap.Duration("duration", elapsed))

		if r.checkpoints != nil {
			if err := r.checkpoints.Save(pc.Snapshot(r.StageNames())); err != nil {
				stageLogger.Warn("checkpoint write failed", zap.Error(err))
			}
		}
	}
	return nil
}
