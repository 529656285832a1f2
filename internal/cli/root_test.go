package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JPRanx/omni-v4-sub001/internal/artifact"
	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

func TestRootCommandSurface(t *testing.T) {
	root := Root()
	require.NotNil(t, root)
	assert.Equal(t, "omnipos", root.Use)
	assert.True(t, root.SilenceUsage)

	for _, name := range []string{"run", "run-range", "serve", "migrate", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, "subcommand %s should exist", name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRunCommandFlags(t *testing.T) {
	root := Root()
	cmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	for _, flag := range []string{"restaurant", "date", "data", "output", "resume", "workers", "no-db", "no-patterns"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %s should exist", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	root := Root()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "omnipos dev")
	assert.Contains(t, buf.String(), "commit unknown")
}

func TestRunCommandRequiresRestaurant(t *testing.T) {
	root := Root()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"run", "--date", "2025-07-14"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restaurant")
}

func TestRunCommandRejectsBadDate(t *testing.T) {
	root := Root()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"run", "--restaurant", "SDR", "--date", "14/07/2025"})

	err := root.Execute()
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitSetup, exitErr.Code)
	assert.Contains(t, err.Error(), "invalid --date")
}

// setBatchEnv pins every environment knob the batch commands read, so the
// test is hermetic regardless of the host environment.
func setBatchEnv(t *testing.T, outDir string) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("S3_ENDPOINT", "")
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("PATTERN_DB_PATH", filepath.Join(outDir, "patterns.db"))
	t.Setenv("LOG_LEVEL", "error")
}

// writeExports lays down a complete export directory for one run: the three
// required files plus kitchen and payroll.
func writeExports(t *testing.T, dataDir, restaurant, date string) {
	t.Helper()
	day, err := timeutil.ParseDate(date)
	require.NoError(t, err)
	us := day.Format("1/2/2006")

	dir := filepath.Join(dataDir, restaurant, date)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	files := map[string]string{
		"labor.csv": "Employee,Job Title,In Date,Out Date,Total Hours,Payable Hours\n" +
			"Dana Reyes,Shift Manager," + us + " 7:00 AM," + us + " 3:00 PM,8.0,7.5\n" +
			"Eli Park,Cashier," + us + " 10:00 AM," + us + " 4:00 PM,6.0,6.0\n",
		"sales.csv": "Net sales,Tax\n" +
			"\"$2,100.00\",168.00\n",
		"orders.csv": "Order #,Opened,Server,Amount,Table,Duration (Opened to Paid)\n" +
			"501," + us + " 11:20 AM,Dana Reyes,18.25,4,5 minutes\n" +
			"502," + us + " 12:05 PM,Eli Park,12.50,,3 minutes and 20 seconds\n" +
			"503," + us + " 7:10 PM,Dana Reyes,27.75,9,6 minutes\n",
		"kitchen.csv": "Check #,Table,Fulfillment Time,Fire Time,Server\n" +
			"501,4,5 minutes," + us + " 11:20 AM,Dana Reyes\n" +
			"502,,3 minutes and 20 seconds," + us + " 12:05 PM,Eli Park\n" +
			"503,9,6 minutes," + us + " 7:10 PM,Dana Reyes\n",
		"payroll.csv": "Employee,Total Pay,Regular Hours,Overtime Hours\n" +
			"Dana Reyes,160.00,8.0,0\n" +
			"Eli Park,90.00,6.0,0\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestRunCommandEndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	setBatchEnv(t, outDir)
	writeExports(t, dataDir, "SDR", "2025-07-14")

	root := Root()
	root.SetArgs([]string{"run",
		"--restaurant", "SDR", "--date", "2025-07-14",
		"--data", dataDir, "--output", outDir, "--no-db",
	})
	require.NoError(t, root.ExecuteContext(context.Background()))

	doc, err := artifact.Load(filepath.Join(outDir, artifact.RunsFile))
	require.NoError(t, err)
	require.Len(t, doc.PipelineRuns, 1)
	run := doc.PipelineRuns[0]
	assert.True(t, run.Success)
	assert.Equal(t, "SDR", run.Restaurant)
	assert.InDelta(t, 2100.00, run.Sales, 0.01)
	assert.Equal(t, 1, doc.Summary.Succeeded)

	dash, err := os.ReadFile(filepath.Join(outDir, artifact.DashboardFile))
	require.NoError(t, err)
	assert.Contains(t, string(dash), "const v4Data")

	// The bolt pattern store and per-run checkpoints land under the
	// output directory.
	_, err = os.Stat(filepath.Join(outDir, "patterns.db"))
	assert.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(outDir, "checkpoints"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRunCommandResumeSkipsCompleted(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	setBatchEnv(t, outDir)
	writeExports(t, dataDir, "SDR", "2025-07-14")

	args := []string{"run",
		"--restaurant", "SDR", "--date", "2025-07-14",
		"--data", dataDir, "--output", outDir, "--no-db",
	}

	first := Root()
	first.SetArgs(args)
	require.NoError(t, first.ExecuteContext(context.Background()))

	before, err := os.ReadFile(filepath.Join(outDir, artifact.RunsFile))
	require.NoError(t, err)

	second := Root()
	second.SetArgs(append(args, "--resume"))
	require.NoError(t, second.ExecuteContext(context.Background()))

	// Nothing re-ran, so the artifact from the first batch is untouched.
	after, err := os.ReadFile(filepath.Join(outDir, artifact.RunsFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunRangeCommandPartialFailure(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	setBatchEnv(t, outDir)
	writeExports(t, dataDir, "SDR", "2025-07-14")
	// BWD has no exports, so its run fails at ingestion.

	root := Root()
	root.SetArgs([]string{"run-range",
		"--restaurants", "SDR,BWD",
		"--from", "2025-07-14", "--to", "2025-07-14",
		"--data", dataDir, "--output", outDir, "--no-db",
	})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitPartialFailure, exitErr.Code)
	assert.Contains(t, err.Error(), "1 of 2 runs failed")

	// The failed run still lands in the artifact next to the good one.
	doc, err := artifact.Load(filepath.Join(outDir, artifact.RunsFile))
	require.NoError(t, err)
	require.Len(t, doc.PipelineRuns, 2)
	assert.Equal(t, 1, doc.Summary.Failed)

	found := false
	for _, run := range doc.PipelineRuns {
		if run.Success {
			continue
		}
		found = true
		assert.Equal(t, "BWD", run.Restaurant)
		require.NotNil(t, run.Error)
		assert.Equal(t, "ingestion", run.Error.Stage)
	}
	require.True(t, found, "artifact should contain the failed run")
}
