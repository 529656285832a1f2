package cli

import (
	"github.com/spf13/cobra"

	"github.com/JPRanx/omni-v4-sub001/internal/config"
	"github.com/JPRanx/omni-v4-sub001/internal/storage/postgres"
)

func migrateCommand() *cobra.Command {
	var flagDown, flagStatus bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the operations database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(flagDown, flagStatus)
		},
	}

	cmd.Flags().BoolVar(&flagDown, "down", false, "roll back the most recent migration")
	cmd.Flags().BoolVar(&flagStatus, "status", false, "print migration status")

	return cmd
}

func runMigrate(down, status bool) error {
	env, err := config.LoadEnv()
	if err != nil {
		return setupError("load environment: %v", err)
	}
	if env.DatabaseURL == "" {
		return setupError("DATABASE_URL is required for migrate")
	}

	switch {
	case status:
		err = postgres.MigrationStatus(env.DatabaseURL)
	case down:
		err = postgres.MigrateDown(env.DatabaseURL)
	default:
		err = postgres.MigrateUp(env.DatabaseURL)
	}
	if err != nil {
		return setupError("migrate: %v", err)
	}
	return nil
}
