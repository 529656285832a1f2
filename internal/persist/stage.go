// Package persist builds the typed rows for the three result tables and
// hands them to a database client inside one transaction per run.
//
// Purpose:
//   One daily_operations row, two shift_operations rows, and sixty-four
//   timeslot_results rows are written per run. A failure on any row rolls
//   the whole run back; partial writes never reach the database.
package persist

import (
	"context"

	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/metrics"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
)

// Result table names, as they appear in storage errors and metrics.
const (
	TableDaily    = "daily_operations"
	TableShift    = "shift_operations"
	TableTimeslot = "timeslot_results"
)

// DatabaseClient writes one run's rows transactionally. Implementations
// are shared across workers and must be safe for concurrent calls; each
// call's transaction must not interleave with another's.
type DatabaseClient interface {
	WriteRun(ctx context.Context, rows RunRows) error
}

// Stage is the storage stage.
type Stage struct {
	client     DatabaseClient
	cogsSource string
	logger     *zap.Logger
}

// Config configures the storage stage. A nil Client disables persistence
// for the run.
type Config struct {
	Client     DatabaseClient
	COGSSource string
	Logger     *zap.Logger
}

// New creates the storage stage.
func New(cfg Config) *Stage {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Stage{client: cfg.Client, cogsSource: cfg.COGSSource, logger: cfg.Logger}
}

// Name implements pipeline.Stage.
func (s *Stage) Name() string { return "storage" }

// Run builds the row payload and writes it in one transaction. Raw tables
// are released afterwards; nothing downstream reads them.
func (s *Stage) Run(ctx context.Context, pc *pipeline.Context) error {
	rows, err := BuildRows(pc, s.cogsSource)
	if err != nil {
		return err
	}

	if s.client == nil {
		s.logger.Debug("persistence disabled, skipping database write",
			zap.String("restaurant", pc.Restaurant),
			zap.String("date", pc.Date))
		pc.DropTables()
		return nil
	}

	if err := s.client.WriteRun(ctx, rows); err != nil {
		return pipeline.Errorf(pipeline.KindStorage, "write run %s/%s: %w", pc.Restaurant, pc.Date, err)
	}

	metrics.RecordStorageRows(TableDaily, 1)
	metrics.RecordStorageRows(TableShift, len(rows.Shifts))
	metrics.RecordStorageRows(TableTimeslot, len(rows.Timeslots))

	s.logger.Info("run persisted",
		zap.String("restaurant", pc.Restaurant),
		zap.String("date", pc.Date),
		zap.Int("shift_rows", len(rows.Shifts)),
		zap.Int("timeslot_rows", len(rows.Timeslots)))

	pc.DropTables()
	return nil
}
