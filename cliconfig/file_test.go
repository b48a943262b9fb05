package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line, key, value string
	}{
		{line: "runner=go run", key: "runner", value: "go run"},
		{line: "runner: go run", key: "runner", value: "go run"},
		{line: "export log-level=debug", key: "log-level", value: "debug"},
		{line: `file="ci/loom.go" # the definitions`, key: "file", value: "ci/loom.go"},
		{line: `runner='go run -tags "ci#1"'`, key: "runner", value: `go run -tags "ci#1"`},
		{line: `banner="line one\nline two"`, key: "banner", value: "line one\nline two"},
	}

	for _, test := range tests {
		key, value, err := parseLine(test.line)
		if assert.NoError(t, err, test.line) {
			assert.Equal(t, test.key, key, test.line)
			assert.Equal(t, test.value, value, test.line)
		}
	}

	_, _, err := parseLine("no separator here")
	assert.Error(t, err)
}

func TestFileLoad(t *testing.T) {
	t.Setenv("LOOM_TEST_RUNNER", "go run -race")

	path := filepath.Join(t.TempDir(), "loom.cfg")
	content := "# loom settings\n\nrunner=$LOOM_TEST_RUNNER\nlog-format=${LOOM_TEST_FORMAT:-json}\nno-color=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f := File{Path: path}
	require.True(t, f.Exists())
	require.NoError(t, f.Load())

	want := map[string]string{
		"runner":     "go run -race",
		"log-format": "json",
		"no-color":   "true",
	}
	if diff := cmp.Diff(f.Config, want); diff != "" {
		t.Errorf("File.Load() config diff (-got +want):\n%s", diff)
	}

	missing := File{Path: filepath.Join(t.TempDir(), "missing.cfg")}
	assert.False(t, missing.Exists())
}
