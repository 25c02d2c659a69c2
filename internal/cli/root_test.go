package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRootOptions returns options as NewRootCommand builds them with an
// empty environment.
func testRootOptions(format string) *RootOptions {
	return &RootOptions{Format: format, Env: EnvDefaults{Seed: 1095}}
}

// decodeData unmarshals the data payload of a successful JSON response.
func decodeData(t *testing.T, buf *bytes.Buffer, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), "output: %s", buf.String())
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "molsim", cmd.Use)
	assert.Contains(t, cmd.Long, "golden percentile tables")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"capture", "compare", "suite", "trace", "dose", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestModelFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"capture", "compare", "trace", "dose"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			mode := subCmd.Flags().Lookup("mode")
			require.NotNil(t, mode)
			assert.Equal(t, "original", mode.DefValue)
			assert.Contains(t, mode.Usage, "pairwise")

			require.NotNil(t, subCmd.Flags().Lookup("replication-gamma"))
			require.NotNil(t, subCmd.Flags().Lookup("params"))
		})
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("MOLSIM_SEED", "7")
	t.Setenv("MOLSIM_DB", "/tmp/archive.db")
	t.Setenv("MOLSIM_GOLDEN_DIR", "/tmp/golden")

	cmd := NewRootCommand()

	captureCmd, _, err := cmd.Find([]string{"capture"})
	require.NoError(t, err)
	assert.Equal(t, "7", captureCmd.Flags().Lookup("seed").DefValue)
	assert.Equal(t, "/tmp/archive.db", captureCmd.Flags().Lookup("db").DefValue)

	suiteCmd, _, err := cmd.Find([]string{"suite"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/golden", suiteCmd.Flags().Lookup("golden-dir").DefValue)
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("MOLSIM_SEED", "not-a-number")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"history"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid environment")
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "history"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}

func TestExecute(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"capture", "--runs", "5"}, stdout, stderr)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout.String(), "5 runs")
	assert.Empty(t, stderr.String())
}

func TestExecute_ErrorText(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"capture", "--mode", "cubic"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "Error [UNKNOWN_MODE]")
}

func TestExecute_ErrorJSON(t *testing.T) {
	t.Setenv("MOLSIM_DB", "")
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"--format", "json", "history"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &resp), "stderr: %s", stderr.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "--db is required")
}
