// Command omnipos is the entrypoint for the POS analytics pipeline.
//
// Purpose:
//
//	This binary drives the nightly export pipeline and its surrounding
//	operations: single-day and date-range batch runs, the dashboard server
//	that publishes batch artifacts, and schema migrations. Batch commands
//	exit 0 when every run succeeded, 1 on partial failure, and 2 when setup
//	prevented the batch from starting.
//
// Dependencies:
//   - internal/cli: Cobra command implementations and exit-code mapping
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JPRanx/omni-v4-sub001/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		// Flag and usage mistakes are setup failures.
		os.Exit(cli.ExitSetup)
	}
}
