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
name: counter_twice
description: Two increments
app: counter
steps:
  - send: increment
    expect: {counter: {count: 1}}
  - send: increment
    expect: {counter: {count: 2}}
assertions:
  - type: final_state
    path: counter.count
    equals: 2
`

const failingScenario = `
name: counter_wrong
description: Expects the wrong count
app: counter
steps:
  - send: increment
    expect: {counter: {count: 7}}
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestTest_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"counter_twice.yaml": passingScenario})

	out, err := executeCommand(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ counter_twice")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_FailureExitsWithOne(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"counter_twice.yaml": passingScenario,
		"counter_wrong.yaml": failingScenario,
	})

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ counter_wrong")
	assert.Contains(t, out, "state mismatch")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_LoadErrorIsAFailure(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"broken.yaml": "name: broken\n"})

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTest_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"counter_twice.yaml": passingScenario,
		"counter_wrong.yaml": failingScenario,
	})

	out, err := executeCommand(t, "test", dir, "--filter", "*_twice")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "counter_wrong")
}

func TestTest_WalksSubdirectoriesButNotGolden(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"counter/counter_twice.yaml": passingScenario,
		"golden/counter_wrong.yaml":  failingScenario,
	})

	out, err := executeCommand(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ counter_twice")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTest_InvalidFilter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"counter_twice.yaml": passingScenario})

	_, err := executeCommand(t, "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_NoScenarios(t *testing.T) {
	out, err := executeCommand(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := executeCommand(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_UpdateThenCompareGolden(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"counter_twice.yaml": passingScenario})

	_, err := executeCommand(t, "test", dir, "--update")
	require.NoError(t, err)

	goldenPath := filepath.Join(dir, "golden", "counter_twice.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(golden))
	assert.Contains(t, string(golden), `"scenario_name":"counter_twice"`)

	_, err = executeCommand(t, "test", dir)
	require.NoError(t, err, "trace matches the golden file it just wrote")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"counter_twice","trace":[]}`), 0o644))
	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"counter_twice.yaml": passingScenario,
		"counter_wrong.yaml": failingScenario,
	})

	out, err := executeCommand(t, "--format", "json", "test", dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTest_HarnessScenarios(t *testing.T) {
	out, err := executeCommand(t, "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ editor_submit")
}
