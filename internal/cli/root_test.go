package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stash/internal/testutil"
)

// execute runs the CLI with the given args, capturing combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeSchemaDir writes the canonical test schema as a CUE file in a
// fresh directory and returns the directory path.
func writeSchemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.cue")
	require.NoError(t, os.WriteFile(path, []byte(testutil.TasksCUE), 0644))
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "stash", cmd.Use)
	assert.Contains(t, cmd.Long, "persistence facade")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "init", "insert", "fetch", "delete", "test"}

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

	for _, name := range []string{"schemas", "schema", "dir"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %s should exist", name)
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("STASH_SCHEMAS", "/opt/schemas")
	t.Setenv("STASH_SCHEMA", "tasks")
	t.Setenv("STASH_DIR", "/var/data")

	cmd := NewRootCommand()
	assert.Equal(t, "/opt/schemas", cmd.PersistentFlags().Lookup("schemas").DefValue)
	assert.Equal(t, "tasks", cmd.PersistentFlags().Lookup("schema").DefValue)
	assert.Equal(t, "/var/data", cmd.PersistentFlags().Lookup("dir").DefValue)
}

func TestInsertCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	insertCmd, _, err := cmd.Find([]string{"insert"})
	require.NoError(t, err)

	for _, name := range []string{"set", "where", "if-absent", "no-save"} {
		require.NotNil(t, insertCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestFetchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	fetchCmd, _, err := cmd.Find([]string{"fetch"})
	require.NoError(t, err)

	require.NotNil(t, fetchCmd.Flags().Lookup("where"))
	require.NotNil(t, fetchCmd.Flags().Lookup("sort"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	require.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
