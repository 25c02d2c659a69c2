package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/molsim/internal/harness"
)

func runTraceCommand(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(testRootOptions(format))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTraceStdoutSeries(t *testing.T) {
	buf, err := runTraceCommand(t, "text", "--mode", "pairwise", "--out", "-")
	require.NoError(t, err)

	dens, err := harness.ReadSeries(buf)
	require.NoError(t, err)
	require.NotEmpty(t, dens)
	for _, d := range dens {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestTraceText(t *testing.T) {
	buf, err := runTraceCommand(t, "text", "--seed", "11")
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "original, seed 11:")
	assert.Contains(t, output, "blood-stage days")
	assert.Contains(t, output, "last_pos_day")
}

func TestTraceJSON(t *testing.T) {
	buf, err := runTraceCommand(t, "json", "--mode", "mean_dur_gamma")
	require.NoError(t, err)

	var result struct {
		Mode  string         `json:"mode"`
		Days  int            `json:"days"`
		Stats map[string]any `json:"stats"`
	}
	decodeData(t, buf, &result)
	assert.Equal(t, "mean_dur_gamma", result.Mode)
	assert.Positive(t, result.Days)
	assert.Len(t, result.Stats, len(harness.Stats()))
	assert.Contains(t, result.Stats, "GM_interv")
}

func TestTraceCompare(t *testing.T) {
	series := filepath.Join(t.TempDir(), "expected.series")
	_, err := runTraceCommand(t, "text", "--seed", "5", "--out", series)
	require.NoError(t, err)

	buf, err := runTraceCommand(t, "text", "--seed", "5", "--compare", series)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), series+": ok")

	buf, err = runTraceCommand(t, "text", "--seed", "6", "--compare", series)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "mismatches")
}

func TestTraceCompare_MissingFile(t *testing.T) {
	_, err := runTraceCommand(t, "text", "--compare", "/nonexistent/expected.series")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTracePNG(t *testing.T) {
	png := filepath.Join(t.TempDir(), "trace.png")
	_, err := runTraceCommand(t, "text", "--mode", "pairwise", "--png", png)
	require.NoError(t, err)

	data, err := os.ReadFile(png)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
}

func TestRenderDensityPlot_TooFewPoints(t *testing.T) {
	err := renderDensityPlot(&bytes.Buffer{}, "empty", []float64{0, 5, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1")
}
