package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/antwalk/internal/sim"
)

var reportLine = regexp.MustCompile(`^Average time to get to the food is \d+\.\d{3}\n`)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

var fixedSeeds = []string{"--server-seed", "cli_server_seed", "--client-seed", "cli_client_seed"}

func TestRootPrintsAverage(t *testing.T) {
	out, _, err := execute(t, append([]string{"--epochs", "200"}, fixedSeeds...)...)
	require.NoError(t, err)

	assert.Regexp(t, reportLine, out)
	assert.NotContains(t, out, "Skipped")
}

func TestRunMatchesRoot(t *testing.T) {
	args := append([]string{"--epochs", "300", "--region", "diamond"}, fixedSeeds...)

	fromRoot, _, err := execute(t, args...)
	require.NoError(t, err)
	fromRun, _, err := execute(t, append([]string{"run", "--workers", "3"}, args...)...)
	require.NoError(t, err)

	assert.Equal(t, fromRoot, fromRun)
}

func TestConfigFileWithFlagOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "antwalk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
region: diamond
epochs: 400
seed:
  server: file_server_seed
  client: file_client_seed
log:
  level: debug
`), 0o600))

	fromFile, logs, err := execute(t, "--config", path)
	require.NoError(t, err)
	assert.Regexp(t, reportLine, fromFile)
	assert.Contains(t, logs, "batch statistics")
	assert.NotContains(t, logs, "generated server seed")

	overridden, _, err := execute(t, "--config", path, "--epochs", "50", "--log-level", "warn")
	require.NoError(t, err)

	explicit, _, err := execute(t,
		"--region", "diamond", "--epochs", "50",
		"--server-seed", "file_server_seed", "--client-seed", "file_client_seed")
	require.NoError(t, err)
	assert.Equal(t, explicit, overridden)
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestGeneratedSeedIsLogged(t *testing.T) {
	out, logs, err := execute(t, "--epochs", "20")
	require.NoError(t, err)

	assert.Regexp(t, reportLine, out)
	assert.Regexp(t, `server_seed=[0-9a-f-]{36}`, logs)
}

func TestSkippedTrialsReported(t *testing.T) {
	out, _, err := execute(t, append([]string{"--region", "diamond", "--epochs", "200", "--max-steps", "3"}, fixedSeeds...)...)
	require.NoError(t, err)

	assert.Regexp(t, reportLine, out)
	assert.Regexp(t, `Skipped \d+ of 200 trials\n$`, out)
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero_epochs", []string{"--epochs", "0"}, "epochs must be positive"},
		{"unknown_region", []string{"--region", "torus"}, "torus"},
		{"bad_log_level", []string{"--log-level", "loud"}, "unknown log level"},
		{"bad_precision", []string{"--precision", "-1"}, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, out)
		})
	}
}

func TestAllTrialsFailing(t *testing.T) {
	out, _, err := execute(t, append([]string{"--region", "diamond", "--epochs", "30", "--max-steps", "1"}, fixedSeeds...)...)
	assert.ErrorIs(t, err, sim.ErrNoCompletedTrials)
	assert.Contains(t, err.Error(), "30 of 30 trials skipped")
	assert.Empty(t, out)
}

func TestRegionsCommand(t *testing.T) {
	out, _, err := execute(t, "regions")
	require.NoError(t, err)

	assert.Contains(t, out, "diamond")
	assert.Contains(t, out, "ellipse")
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, sim.Summary{Mean: 14.0625, Evaluated: 10, Completed: 10}))
	assert.Equal(t, "Average time to get to the food is 14.062\n", buf.String())

	buf.Reset()
	require.NoError(t, writeReport(&buf, sim.Summary{Mean: 4.5, Evaluated: 8, Completed: 6, Skipped: 2}))
	assert.Equal(t, "Average time to get to the food is 4.500\nSkipped 2 of 8 trials\n", buf.String())
}

func TestFormatFixedMatchesPrintf(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{14.0625, "14.062"}, // exact tie, rounds to even
		{0.1875, "0.188"},
		{1.0005, "1.000"}, // stored just below the tie
		{2.0015, "2.002"}, // stored just above the tie
		{4.505, "4.505"},
		{13.6041, "13.604"},
		{7, "7.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := formatFixed(tt.in, 3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, fmt.Sprintf("%.3f", tt.in), got)
		})
	}

	_, err := formatFixed(math.Inf(1), 3)
	assert.Error(t, err)
}
