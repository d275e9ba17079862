package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: insert-and-count
description: one insert, one count
schema: tasks
flow:
  - op: insert
    entity: Task
    attrs:
      title: A
      done: false
    save: true
assertions:
  - type: count
    entity: Task
    count: 1
`

const failingScenario = `
name: wrong-count
description: count that cannot hold
schema: tasks
flow:
  - op: insert
    entity: Task
    attrs:
      title: A
    save: true
assertions:
  - type: count
    entity: Task
    count: 9
`

const snapshotScenario = `
name: snapshot-tags
description: snapshot the Tag collection
schema: tasks
flow:
  - op: insert
    entity: Tag
    attrs:
      name: urgent
    save: true
snapshot:
  - Tag
`

func writeScenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTestCommandAllPass(t *testing.T) {
	schemas := writeSchemaDir(t)
	scenarios := writeScenarioDir(t, map[string]string{"pass.yaml": passingScenario})

	out, err := execute(t, "test", scenarios, "--schemas", schemas)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ insert-and-count")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandFailure(t *testing.T) {
	schemas := writeSchemaDir(t)
	scenarios := writeScenarioDir(t, map[string]string{
		"pass.yaml": passingScenario,
		"fail.yaml": failingScenario,
	})

	out, err := execute(t, "test", scenarios, "--schemas", schemas)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong-count")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	schemas := writeSchemaDir(t)
	scenarios := writeScenarioDir(t, map[string]string{
		"pass.yaml": passingScenario,
		"fail.yaml": failingScenario,
	})

	// Filter matches file names, so the failing scenario never runs
	out, err := execute(t, "test", scenarios, "--schemas", schemas, "--filter", "pass")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	schemas := writeSchemaDir(t)
	scenarios := writeScenarioDir(t, map[string]string{"snap.yaml": snapshotScenario})

	// Without a golden file the scenario fails
	_, err := execute(t, "test", scenarios, "--schemas", schemas)
	require.Error(t, err)

	// --update creates it
	out, err := execute(t, "test", scenarios, "--schemas", schemas, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")
	assert.FileExists(t, filepath.Join(scenarios, "golden", "snap.golden"))

	// Subsequent runs compare clean
	out, err = execute(t, "test", scenarios, "--schemas", schemas)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ snapshot-tags")
}

func TestTestCommandMalformedScenario(t *testing.T) {
	schemas := writeSchemaDir(t)
	scenarios := writeScenarioDir(t, map[string]string{"broken.yaml": "name: [unclosed"})

	out, err := execute(t, "test", scenarios, "--schemas", schemas)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Load error")
}

func TestTestCommandNoScenarios(t *testing.T) {
	schemas := writeSchemaDir(t)

	out, err := execute(t, "test", t.TempDir(), "--schemas", schemas)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandMissingDir(t *testing.T) {
	schemas := writeSchemaDir(t)

	_, err := execute(t, "test", "/nonexistent/scenarios", "--schemas", schemas)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandJSON(t *testing.T) {
	schemas := writeSchemaDir(t)
	scenarios := writeScenarioDir(t, map[string]string{"pass.yaml": passingScenario})

	out, err := execute(t, "test", scenarios, "--schemas", schemas, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Zero(t, resp.Data.Failed)
}
