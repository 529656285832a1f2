package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/dashboard"
	"github.com/JPRanx/omni-v4-sub001/internal/logging"
	"github.com/JPRanx/omni-v4-sub001/internal/storage/postgres"
)

func serveCommand() *cobra.Command {
	var flagPort int
	var flagOutput string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve batch artifacts and the dashboard module over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flagPort, flagOutput)
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 0, "HTTP port (overrides HTTP_PORT)")
	cmd.Flags().StringVar(&flagOutput, "output", "", "artifact directory to serve (overrides OUTPUT_DIR)")

	return cmd
}

func runServe(ctx context.Context, port int, outputDir string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return setupError("load environment: %v", err)
	}
	if port > 0 {
		env.HTTPPort = port
	}
	if outputDir != "" {
		env.OutputDir = outputDir
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

	// The server stays useful without a database; readiness just stops
	// reporting on it.
	var store *postgres.Store
	if env.DatabaseURL != "" {
		store, err = postgres.New(ctx, env.DatabaseURL)
		if err != nil {
			logger.Warn("database unreachable, serving without readiness checks on it", zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	srv := dashboard.NewServer(dashboard.ServerConfig{
		Port:      env.HTTPPort,
		OutputDir: env.OutputDir,
		Logger:    logger,
		Store:     store,
	})
	if err := srv.Start(ctx); err != nil {
		return setupError("serve dashboard: %v", err)
	}
	return nil
}
