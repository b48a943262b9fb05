package cliconfig

import (
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

type testConfig struct {
	Config string   `cli:"config"`
	Runner string   `cli:"runner"`
	Jobs   int      `cli:"jobs"`
	Debug  bool     `cli:"debug"`
	Tags   []string `cli:"tag"`
	File   string   `cli:"arg:0" env:"LOOM_TEST_FILE" validate:"required" label:"definition file"`
	Rest   []string `cli:"arg:*"`
}

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.String("runner", "go run", "")
	set.Int("jobs", 4, "")
	set.Bool("debug", false, "")
	set.Var(&cli.StringSlice{}, "tag", "")
	require.NoError(t, set.Parse(args))

	app := cli.NewApp()
	app.Name = "loom"
	return cli.NewContext(app, set, nil)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loom.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoaderPrecedence(t *testing.T) {
	path := writeConfig(t, "runner=go run -tags ci\njobs=8\ndebug=true\n")

	var cfg testConfig
	l := Loader{
		CLI:    newContext(t, "--config", path, "--jobs", "2", "--tag", "a", "--tag", "c", "defs.go", "extra"),
		Config: &cfg,
	}
	require.NoError(t, l.Load())
	require.NotNil(t, l.File)

	want := testConfig{
		Config: path,
		Runner: "go run -tags ci",
		Jobs:   2,
		Debug:  true,
		Tags:   []string{"a", "c"},
		File:   "defs.go",
		Rest:   []string{"defs.go", "extra"},
	}
	if diff := cmp.Diff(cfg, want); diff != "" {
		t.Errorf("Loader.Load() config diff (-got +want):\n%s", diff)
	}
}

func TestLoaderDefaultConfigFiles(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "second.cfg")
	require.NoError(t, os.WriteFile(second, []byte("runner=go run ./ci\n"), 0o600))

	var cfg testConfig
	l := Loader{
		CLI:                    newContext(t, "defs.go"),
		Config:                 &cfg,
		DefaultConfigFilePaths: []string{filepath.Join(dir, "first.cfg"), second},
	}
	require.NoError(t, l.Load())
	require.NotNil(t, l.File)
	assert.Equal(t, second, l.File.Path)
	assert.Equal(t, "go run ./ci", cfg.Runner)
	assert.Equal(t, 4, cfg.Jobs)
}

func TestLoaderArgFromEnv(t *testing.T) {
	t.Setenv("LOOM_TEST_FILE", "from-env.go")

	var cfg testConfig
	l := Loader{CLI: newContext(t), Config: &cfg}
	require.NoError(t, l.Load())
	assert.Equal(t, "from-env.go", cfg.File)
}

func TestLoaderErrors(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	l := Loader{CLI: newContext(t), Config: &cfg}
	err := l.Load()
	assert.EqualError(t, err, "Missing definition file. See: `loom  --help`")

	l = Loader{CLI: newContext(t, "--config", filepath.Join(t.TempDir(), "nope.cfg"), "defs.go"), Config: &testConfig{}}
	err = l.Load()
	assert.ErrorContains(t, err, "a configuration file could not be found at")

	bad := writeConfig(t, "jobs=lots\n")
	l = Loader{CLI: newContext(t, "--config", bad, "defs.go"), Config: &testConfig{}}
	err = l.Load()
	assert.ErrorContains(t, err, `parsing "lots" as an integer`)
}

type fileConfig struct {
	Path string `cli:"arg:0" normalize:"filepath" validate:"file-exists" label:"workflow file"`
}

func TestLoaderFileRules(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ci.yml"), []byte("on: push\n"), 0o600))
	t.Setenv("LOOM_TEST_DIR", dir)

	var cfg fileConfig
	l := Loader{CLI: newContext(t, "$LOOM_TEST_DIR/ci.yml"), Config: &cfg}
	require.NoError(t, l.Load())
	assert.Equal(t, filepath.Join(dir, "ci.yml"), cfg.Path)

	l = Loader{CLI: newContext(t, "$LOOM_TEST_DIR/missing.yml"), Config: &fileConfig{}}
	err := l.Load()
	assert.ErrorContains(t, err, "couldn't find workflow file located at "+filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	l = Loader{CLI: newContext(t), Config: &fileConfig{}}
	assert.NoError(t, l.Load(), "an unset path is not checked")
}
