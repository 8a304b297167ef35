package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const familyFixture = "../harness/testdata/fixtures/family.cue"

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// loadedDB loads the family fixture into a fresh database and returns its path.
func loadedDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "family.db")
	_, err := execute(t, "load", familyFixture, "--db", db)
	require.NoError(t, err)
	return db
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// decode unmarshals a JSON CLIResponse with a typed payload.
func decode[T any](t *testing.T, out string) (T, *CLIError) {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp.Data, resp.Error
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "aspectswrl", cmd.Use)
	assert.Contains(t, cmd.Long, "createNegativeOPA")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"load", "validate", "invoke", "aspects", "dump", "test"}

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

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	for _, name := range []string{"db", "iri", "ids"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "", f.DefValue, "--%s defers to config", name)
	}
}

func TestInvokeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	invokeCmd, _, err := cmd.Find([]string{"invoke"})
	require.NoError(t, err)

	ruleFlag := invokeCmd.Flags().Lookup("rule")
	require.NotNil(t, ruleFlag)
	assert.Equal(t, "cli", ruleFlag.DefValue)

	require.NotNil(t, invokeCmd.Flags().Lookup("bind"))
	require.NotNil(t, invokeCmd.Flags().Lookup("metrics"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	require.NotNil(t, testCmd.Flags().Lookup("filter"))
	require.NotNil(t, testCmd.Flags().Lookup("golden-dir"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "validate", familyFixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestResolveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aspectswrl.yaml")
	writeFile(t, path, "database: from-file.db\nid_scheme: ulid\nlog_level: warn\n")

	opts := &RootOptions{ConfigPath: path, Database: "flag.db", Verbose: true}
	cfg, err := opts.resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.Database)
	assert.Equal(t, "ulid", cfg.IDScheme)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = (&RootOptions{IDScheme: "sequential"}).resolveConfig()
	require.Error(t, err)

	_, err = (&RootOptions{ConfigPath: filepath.Join(dir, "missing.yaml")}).resolveConfig()
	require.Error(t, err)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
