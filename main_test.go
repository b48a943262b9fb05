package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/clicommand"
)

// runApp runs loom with args in a fresh directory and returns the exit code
// and both output streams.
func runApp(t *testing.T, files map[string]string, args ...string) (int, string, string) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("LOOM_FILE", "")

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	code := 0
	if err := app.Run(append([]string{"loom"}, args...)); err != nil {
		code = clicommand.PrintMessageAndReturnExitCode(&stderr, err)
	}
	return code, stdout.String(), stderr.String()
}

const validWorkflow = `name: CI
on: push
jobs:
  test:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v6
      - run: go test ./...
`

func TestNoDefinitionExitsTwo(t *testing.T) {
	code, _, stderr := runApp(t, nil)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "loom: fatal: no workflow definition program found")
}

func TestMissingFileExitsTwo(t *testing.T) {
	code, _, stderr := runApp(t, nil, "run", "--file", "nope.go")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "nope.go does not exist")
}

func TestRunPassesExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("runner uses sh")
	}

	files := map[string]string{".loom.go": "package main\n"}

	code, _, stderr := runApp(t, files, "run", "--runner", "sh -c 'exit 3'")
	assert.Equal(t, 3, code)
	assert.NotContains(t, stderr, "fatal")

	code, stdout, _ := runApp(t, files, "--runner", `sh -c 'echo "ran $0 $1"'`, "--", "--dry-run")
	assert.Equal(t, 0, code)
	assert.Equal(t, ".loom.go --dry-run\n", strings.TrimPrefix(stdout, "ran "))
}

func TestParse(t *testing.T) {
	code, stdout, stderr := runApp(t, map[string]string{"ci.yml": validWorkflow}, "parse", "ci.yml")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, `{"name":"CI","on":"push","jobs":{"test":{"runs-on":"ubuntu-latest","steps":[{"uses":"actions/checkout@v6"},{"run":"go test ./..."}]}}}`+"\n", stdout)
}

func TestParseMissingFile(t *testing.T) {
	code, stdout, stderr := runApp(t, nil, "parse", "nope.yml")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "loom: fatal: couldn't find workflow file located at nope.yml")
}

func TestValidate(t *testing.T) {
	files := map[string]string{
		".github/workflows/ci.yml":  validWorkflow,
		".github/workflows/bad.yml": "on: push\njobs:\n  test:\n    runs-on: ubuntu-latest\n    stepz: []\n",
	}

	code, _, stderr := runApp(t, files, "validate", ".github/workflows/ci.yml")
	assert.Equal(t, 0, code, stderr)

	code, _, stderr = runApp(t, files, "validate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "loom: fatal: 1 of 2 workflow files failed validation")
}

func TestActions(t *testing.T) {
	code, stdout, stderr := runApp(t, nil, "actions", "--markdown")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "| checkout | actions/checkout@v6 |")
	assert.Contains(t, stdout, "| upload-artifact | actions/upload-artifact@v6 |")

	code, stdout, stderr = runApp(t, nil, "actions", "--markdown", "cache")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "| key | key | string | yes |")

	code, _, stderr = runApp(t, nil, "actions", "setup-rust")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown action "setup-rust"`)
}
