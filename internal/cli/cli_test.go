package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// execute runs the CLI with the given args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", filepath.Join("testdata", "overdraft.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestValidateLawfile(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "overdraft.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, "valid: scenario overdraft")
}

func TestValidateBadLawfile(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "bad.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "invalid CEL expression")
}

func TestValidateJSONFormat(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", filepath.Join("testdata", "overdraft.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
	assert.Contains(t, out, `"valid":true`)
}

func TestRunScenario(t *testing.T) {
	out, err := execute(t, "run", filepath.Join("testdata", "overdraft.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "scenario: overdraft")
	assert.Contains(t, out, "timeline: timeline:bank")
	assert.Contains(t, out, "forks: 1  paradoxes: 1  relocations: 0")
}

func TestRunBareLawfile(t *testing.T) {
	out, err := execute(t, "run", filepath.Join("testdata", "overdraft.cue"))
	require.NoError(t, err)
	assert.Contains(t, out, "seed entity account:alice")
}

func TestRunUnsupportedExtension(t *testing.T) {
	_, err := execute(t, "run", filepath.Join("testdata", "events.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGraphStats(t *testing.T) {
	out, err := execute(t, "graph", filepath.Join("testdata", "events.yaml"), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "events: 3")
	assert.Contains(t, out, "branch points: 1")
	assert.Contains(t, out, "max depth: 2")
}

func TestGraphAncestors(t *testing.T) {
	out, err := execute(t, "graph", filepath.Join("testdata", "events.yaml"), "ancestors", "e2")
	require.NoError(t, err)
	assert.Contains(t, out, "e1")
	assert.Contains(t, out, "1 event(s)")
}

func TestGraphDescendantsWithDepth(t *testing.T) {
	out, err := execute(t, "graph", filepath.Join("testdata", "events.yaml"), "descendants", "e1", "--depth", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "2 event(s)")
}

func TestGraphMergeBase(t *testing.T) {
	out, err := execute(t, "graph", filepath.Join("testdata", "events.yaml"), "merge-base", "e2", "e3")
	require.NoError(t, err)
	assert.Contains(t, out, "e1")
}

func TestGraphMergeBaseDisjoint(t *testing.T) {
	out, err := execute(t, "graph", filepath.Join("testdata", "events.yaml"), "merge-base", "e2", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "no common ancestor")
}

func TestGraphQueryFilters(t *testing.T) {
	out, err := execute(t, "graph", filepath.Join("testdata", "events.yaml"), "query",
		"--timeline", "timeline:main", "--order", "causal")
	require.NoError(t, err)
	assert.Contains(t, out, "e1")
	assert.Contains(t, out, "e2")
	assert.NotContains(t, out, "e3")
}

func TestGraphUnknownAnalysis(t *testing.T) {
	_, err := execute(t, "graph", filepath.Join("testdata", "events.yaml"), "explode")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadEventsMissingID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.yaml")
	writeFile(t, path, "events:\n  - key: x\n    op: create\n    timeline: t\n")
	_, err := LoadEvents(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}
