// Package cli implements the omnipos command tree.
//
// Purpose:
//
//	Commands for running the analytics pipeline over one or many
//	(restaurant, date) scopes, serving the produced artifacts, and
//	managing the operations database schema. Flags override environment
//	configuration, which overrides built-in defaults.
//
// Dependencies:
//   - github.com/spf13/cobra: command structure and flag parsing
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Root builds the omnipos root command with all subcommands registered.
// Errors bubble to main as *ExitError so the process exit code follows
// the batch outcome.
func Root() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "omnipos",
		Short: "Restaurant operations analytics pipeline",
		Long: `omnipos ingests point-of-sale exports, computes daily operational
metrics, learns behavioral patterns over time, and publishes batch
artifacts for the operations dashboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(runRangeCommand())
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(versionCommand())

	return rootCmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "omnipos %s (commit %s, built %s)\n", version, gitCommit, buildTime)
		},
	}
}
