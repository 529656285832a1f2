package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/artifact"
	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/dashboard"
	"github.com/JPRanx/omni-v4-sub001/internal/domain"
	"github.com/JPRanx/omni-v4-sub001/internal/logging"
	"github.com/JPRanx/omni-v4-sub001/internal/orchestrator"
	"github.com/JPRanx/omni-v4-sub001/internal/patterns"
	"github.com/JPRanx/omni-v4-sub001/internal/pipeline"
	"github.com/JPRanx/omni-v4-sub001/internal/storage/postgres"
)

// batchFlags are the knobs shared by run and run-range.
type batchFlags struct {
	dataDir    string
	outputDir  string
	workers    int
	resume     bool
	noDB       bool
	noPatterns bool
}

func addBatchFlags(cmd *cobra.Command, f *batchFlags) {
	cmd.Flags().StringVar(&f.dataDir, "data", "", "POS export directory (overrides DATA_DIR)")
	cmd.Flags().StringVar(&f.outputDir, "output", "", "artifact output directory (overrides OUTPUT_DIR)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent runs (overrides orchestrator.max_workers)")
	cmd.Flags().BoolVar(&f.resume, "resume", false, "skip runs whose checkpoint marks every stage complete")
	cmd.Flags().BoolVar(&f.noDB, "no-db", false, "skip database writes (artifact-only run)")
	cmd.Flags().BoolVar(&f.noPatterns, "no-patterns", false, "freeze pattern learning (patterns stay read-only)")
}

// executeBatch wires the orchestrator from environment and flags, runs
// the scope, and publishes artifacts. Returned errors are *ExitError.
func executeBatch(ctx context.Context, f batchFlags, restaurants []string, from, to time.Time) error {
	env, err := config.LoadEnv()
	if err != nil {
		return setupError("load environment: %v", err)
	}
	if f.dataDir != "" {
		env.DataDir = f.dataDir
	}
	if f.outputDir != "" {
		env.OutputDir = f.outputDir
	}

	logger, err := logging.New(logging.Config{
		ServiceName: env.ServiceName,
		Environment: env.Environment,
		Level:       env.LogLevel,
	})
	if err != nil {
		return setupError("initialize logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	base, err := config.LoadStore(env.ConfigDir, env.Environment, "")
	if err != nil {
		return setupError("load base configuration: %v", err)
	}

	cfg := orchestrator.Config{
		DataDir:        env.DataDir,
		ConfigDir:      env.ConfigDir,
		Environment:    env.Environment,
		Workers:        f.workers,
		Resume:         f.resume,
		FreezeLearning: f.noPatterns,
		Logger:         logger,
	}

	// A nil *postgres.Store must never reach the interface field, so the
	// client is only assigned on the connected path.
	if !f.noDB && env.DatabaseURL != "" {
		client, err := postgres.New(ctx, env.DatabaseURL)
		if err != nil {
			return setupError("connect to database: %v", err)
		}
		defer client.Close()
		cfg.Client = client
	} else if !f.noDB {
		logger.Warn("DATABASE_URL not set, skipping database writes")
	}

	store, closeStore, err := patternBackend(ctx, env, logger)
	if err != nil {
		return setupError("open pattern store: %v", err)
	}
	defer closeStore()
	cfg.Daily = patterns.NewDailyManager(store, base.Learning, logger)
	cfg.Timeslot = patterns.NewTimeslotManager(store, base.Learning, logger)

	checkpoints, err := pipeline.NewCheckpointStore(pipeline.CheckpointStoreConfig{
		Dir:    filepath.Join(env.OutputDir, "checkpoints"),
		Logger: logger,
	})
	if err != nil {
		return setupError("open checkpoint store: %v", err)
	}
	cfg.Checkpoints = checkpoints

	orch, err := orchestrator.New(cfg)
	if err != nil {
		return setupError("build orchestrator: %v", err)
	}

	report, runErr := orch.RunBatch(ctx, restaurants, from, to)
	if runErr != nil && report.Summary.TotalRuns == 0 {
		return setupError("run batch: %v", runErr)
	}

	out := os.Stdout
	if len(report.Results) == 0 && report.Summary.Skipped > 0 {
		// Nothing re-ran; the previous batch's artifacts already cover
		// this scope.
		fmt.Fprintf(out, "All %d runs already complete, artifacts unchanged.\n", report.Summary.Skipped)
		return nil
	}

	if err := writeOutputs(ctx, env, &report, logger); err != nil {
		return setupError("write artifacts: %v", err)
	}

	printSummary(out, env, report.Summary)
	if report.Summary.Failed > 0 {
		printFailures(out, report.Results)
	}

	if runErr != nil {
		return &ExitError{Code: ExitPartialFailure, Err: runErr}
	}
	if report.Summary.Failed > 0 {
		return &ExitError{
			Code: ExitPartialFailure,
			Err:  fmt.Errorf("%d of %d runs failed", report.Summary.Failed, report.Summary.TotalRuns),
		}
	}
	return nil
}

// patternBackend selects the pattern store: Redis when REDIS_URL is set,
// the embedded bolt file otherwise.
func patternBackend(ctx context.Context, env *config.Env, logger *zap.Logger) (patterns.Store, func(), error) {
	if env.RedisURL != "" {
		opts, err := redis.ParseURL(env.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		store := patterns.NewRedisStore(client)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("pattern store ready", zap.String("backend", "redis"))
		return store, func() { _ = client.Close() }, nil
	}

	if err := os.MkdirAll(filepath.Dir(env.PatternDBPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create pattern db directory: %w", err)
	}
	bolt, err := patterns.OpenBolt(env.PatternDBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("pattern store ready",
		zap.String("backend", "bolt"),
		zap.String("path", env.PatternDBPath),
	)
	return bolt, func() { _ = bolt.Close() }, nil
}

// writeOutputs renders the artifact document and dashboard module,
// attempts object storage delivery, and writes the local copies. Delivery
// failures flag the local document instead of failing the batch.
func writeOutputs(ctx context.Context, env *config.Env, report *orchestrator.BatchReport, logger *zap.Logger) error {
	writer, err := artifact.NewWriter(env.OutputDir, logger)
	if err != nil {
		return err
	}

	doc := artifact.NewDocument(report.Results, report.Summary)
	runsData, err := doc.Marshal()
	if err != nil {
		return err
	}
	dashData, err := dashboard.Transform(doc)
	if err != nil {
		return err
	}

	if deliveryErr := deliver(ctx, env, doc.Summary, runsData, dashData, logger); deliveryErr != "" {
		// The uploaded copy never carries the flag; only the local
		// document records that delivery failed.
		doc.Summary.DeliveryError = deliveryErr
		report.Summary.DeliveryError = deliveryErr
		if runsData, err = doc.Marshal(); err != nil {
			return err
		}
	}

	if _, err := writer.WriteFile(artifact.RunsFile, runsData); err != nil {
		return err
	}
	if _, err := writer.WriteFile(artifact.DashboardFile, dashData); err != nil {
		return err
	}
	return nil
}

// deliver uploads both artifacts when object storage is configured. The
// returned string is empty on success and describes the failure otherwise.
func deliver(ctx context.Context, env *config.Env, summary domain.BatchSummary, runsData, dashData []byte, logger *zap.Logger) string {
	if !env.S3Configured() {
		return ""
	}

	uploader, err := artifact.NewS3Delivery(artifact.S3Config{
		Endpoint:  env.S3Endpoint,
		AccessKey: env.S3AccessKey,
		SecretKey: env.S3SecretKey,
		Bucket:    env.S3Bucket,
		Region:    env.S3Region,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("initialize object storage delivery", zap.Error(err))
		return fmt.Sprintf("initialize object storage: %v", err)
	}

	files := []struct {
		name        string
		contentType string
		data        []byte
	}{
		{artifact.RunsFile, "application/json", runsData},
		{artifact.DashboardFile, "text/javascript", dashData},
	}
	for _, fl := range files {
		if _, err := uploader.Upload(ctx, artifact.ObjectKey(summary, fl.name), fl.contentType, fl.data); err != nil {
			logger.Error("artifact delivery failed", zap.String("file", fl.name), zap.Error(err))
			return err.Error()
		}
	}
	return ""
}

func printSummary(w io.Writer, env *config.Env, s domain.BatchSummary) {
	fmt.Fprintf(w, "Batch %s to %s: %d runs, %d succeeded, %d failed",
		s.DateFrom, s.DateTo, s.TotalRuns, s.Succeeded, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", s.Skipped)
	}
	duration := (time.Duration(s.DurationMS) * time.Millisecond).Round(time.Millisecond)
	fmt.Fprintf(w, " (%.1f%% success) in %s\n", s.SuccessRate, duration)
	fmt.Fprintf(w, "Artifacts: %s\n", filepath.Join(env.OutputDir, artifact.RunsFile))
	if s.DeliveryError != "" {
		fmt.Fprintf(w, "Delivery failed: %s\n", s.DeliveryError)
	}
}

// printFailures renders failed runs as a compact table.
func printFailures(w io.Writer, results []domain.RunResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tRESTAURANT\tSTAGE\tKIND")
	for _, r := range results {
		if r.Error == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Date, r.Restaurant, r.Error.Stage, r.Error.Kind)
	}
	_ = tw.Flush()
}
