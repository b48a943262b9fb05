package clicommand

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/actions"
	"github.com/loomworks/loom/logger"
)

func TestPrintMessageAndReturnExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{name: "nil", err: nil, wantCode: 0},
		{name: "plain", err: errors.New("boom"), wantCode: 1, wantOut: "loom: fatal: boom\n"},
		{name: "exit error", err: NewExitError(2, ErrNoDefinition), wantCode: 2, wantOut: "loom: fatal: no workflow definition program found\n"},
		{name: "silent", err: NewSilentExitError(7), wantCode: 7},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			assert.Equal(t, test.wantCode, PrintMessageAndReturnExitCode(&buf, test.err))
			assert.Equal(t, test.wantOut, buf.String())
		})
	}

	assert.ErrorIs(t, NewExitError(2, ErrNoDefinition), ErrNoDefinition)
	assert.ErrorIs(t, NewExitError(2, ErrNoDefinition), NewExitError(2, nil))
}

func TestFindDefinition(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := FindDefinition("")
	require.ErrorIs(t, err, ErrNoDefinition)
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.Code())

	require.NoError(t, os.WriteFile("loom.go", []byte("package main\n"), 0o644))
	got, err := FindDefinition("")
	require.NoError(t, err)
	assert.Equal(t, "loom.go", got)

	// .loom.go wins over loom.go
	require.NoError(t, os.WriteFile(".loom.go", []byte("package main\n"), 0o644))
	got, err = FindDefinition("")
	require.NoError(t, err)
	assert.Equal(t, ".loom.go", got)

	got, err = FindDefinition("loom.go")
	require.NoError(t, err)
	assert.Equal(t, "loom.go", got)

	_, err = FindDefinition("ci/defs.go")
	assert.ErrorIs(t, err, ErrNoDefinition)
}

func TestRun(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	ctx := context.Background()
	var stdout bytes.Buffer
	rio := RunIO{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	err := Run(ctx, logger.Discard, []string{"sh", "-c", "echo hello"}, rio)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout.String())

	err = Run(ctx, logger.Discard, []string{"sh", "-c", "exit 4"}, rio)
	assert.ErrorIs(t, err, NewSilentExitError(4))

	err = Run(ctx, logger.Discard, []string{filepath.Join(t.TempDir(), "missing")}, rio)
	require.Error(t, err)
	var exit *ExitError
	assert.False(t, errors.As(err, &exit) && exit.Silent(), "start failures are reported, not passed through")
}

func TestParseWorkflow(t *testing.T) {
	t.Parallel()

	input := []byte("defaults: &d\n  runs-on: ubuntu-latest\njobs:\n  a:\n    <<: *d\n    steps: [{run: make}]\n")

	var buf bytes.Buffer
	require.NoError(t, ParseWorkflow(&buf, input, false))
	assert.Equal(t, `{"defaults":{"runs-on":"ubuntu-latest"},"jobs":{"a":{"runs-on":"ubuntu-latest","steps":[{"run":"make"}]}}}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, ParseWorkflow(&buf, []byte("on: push\n"), true))
	assert.Equal(t, "{\n  \"on\": \"push\"\n}\n", buf.String())

	assert.EqualError(t, ParseWorkflow(&buf, []byte("  \n"), false), "workflow is empty")
	assert.Error(t, ParseWorkflow(&buf, []byte("on: [push\n"), false))
}

func TestValidateFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.yml")
	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(good, []byte("on: push\njobs:\n  a:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("on: push\n"), 0o644))

	ctx := context.Background()
	files, err := FindWorkflows(ctx, logger.Discard, []string{filepath.Join(dir, "*.yml")}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{bad, good}, files)

	buf := logger.NewBuffer()
	require.NoError(t, ValidateFiles(ctx, buf, []string{good}, 2))
	assert.Contains(t, buf.Messages, "[notice] Validated 1 workflow file")

	buf = logger.NewBuffer()
	err = ValidateFiles(ctx, buf, files, 2)
	assert.EqualError(t, err, "1 of 2 workflow files failed validation")
	var errorLines int
	for _, m := range buf.Messages {
		if strings.HasPrefix(m, "[error] ") {
			errorLines++
		}
	}
	assert.Positive(t, errorLines)
}

func TestCreateLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := CreateLogger(&GlobalConfig{LogFormat: "json", LogLevel: "warn"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logger.WARN, l.Level())
	l.Info("hidden")
	l.Warn("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.NotContains(t, buf.String(), "hidden")

	l, err = CreateLogger(&GlobalConfig{LogLevel: "error", Debug: true}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logger.DEBUG, l.Level())

	_, err = CreateLogger(&GlobalConfig{LogFormat: "xml"}, &buf)
	assert.EqualError(t, err, `invalid log format "xml"; only 'text' or 'json' are allowed`)

	_, err = CreateLogger(&GlobalConfig{LogLevel: "loud"}, &buf)
	assert.Error(t, err)
}

func TestPrintCatalog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintCatalog(&buf, actions.Catalog(), true)
	out := buf.String()
	assert.Contains(t, out, "| Name | Uses | Description |")
	assert.Contains(t, out, "| setup-go | actions/setup-go@v6 | Install a Go toolchain |")

	buf.Reset()
	PrintInputs(&buf, actions.UploadArtifact, true)
	out = buf.String()
	assert.Contains(t, out, "| artifact-name | name | string |")
	assert.Contains(t, out, "| if-no-files-found | if-no-files-found | string |  | warn, error, ignore |")
	assert.Contains(t, out, "| compression-level | compression-level | number |  | in the range 0-9 |")
}
