package clicommand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/urfave/cli"

	"github.com/loomworks/loom/internal/osutil"
	"github.com/loomworks/loom/logger"
)

const runHelpDescription = `Usage:

    loom run [options] [arguments...]

Description:

Runs a workflow definition program, a Go program that builds workflows with
the loom packages and writes them out with Dump. The program is found by
checking, in order:

    - the --file flag
    - the LOOM_FILE environment variable
    - .loom.go in the current directory
    - loom.go in the current directory

The program is started with the runner command, "go run" by default, and
any arguments are passed through to it. loom exits with the program's exit
status, or 2 when no program can be found.

Example:

    $ loom run
    $ loom run --file ci/workflows.go -- --dry-run
    $ loom run --runner "go run -tags ci"`

// DefaultDefinitionFiles are the definition programs looked for, in order,
// when no file is given.
var DefaultDefinitionFiles = []string{".loom.go", "loom.go"}

type RunConfig struct {
	GlobalConfig

	File   string   `cli:"file" normalize:"filepath"`
	Runner string   `cli:"runner"`
	Args   []string `cli:"arg:*"`
}

var runFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "file",
		Usage:  "Path to the workflow definition program",
		EnvVar: "LOOM_FILE",
	},
	cli.StringFlag{
		Name:   "runner",
		Value:  "go run",
		Usage:  "Command used to run the definition program",
		EnvVar: "LOOM_RUNNER",
	},
}

var RunCommand = cli.Command{
	Name:        "run",
	Usage:       "Run a workflow definition program",
	Description: runHelpDescription,
	Flags:       append(globalFlags(), runFlags...),
	Action:      runAction,
}

func runAction(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx, cfg, l, _, err := setupLoggerAndConfig[RunConfig](ctx, c)
	if err != nil {
		return err
	}

	path, err := FindDefinition(cfg.File)
	if err != nil {
		return err
	}

	runner, err := shellwords.Split(cfg.Runner)
	if err != nil {
		return fmt.Errorf("parsing runner %q: %w", cfg.Runner, err)
	}
	if len(runner) == 0 {
		return errors.New("runner must not be empty")
	}

	argv := append(append(runner, path), cfg.Args...)
	return Run(ctx, l, argv, RunIO{Stdout: outWriter(c), Stderr: errWriter(c)})
}

// FindDefinition returns the definition program to run. An explicit file
// must exist; otherwise the default files are tried in the current
// directory. It returns an ExitError with status 2 wrapping ErrNoDefinition
// when nothing is found.
func FindDefinition(file string) (string, error) {
	if file != "" {
		if !osutil.FileExists(file) {
			return "", NewExitError(2, fmt.Errorf("%w: %s does not exist", ErrNoDefinition, file))
		}
		return file, nil
	}

	for _, name := range DefaultDefinitionFiles {
		if osutil.FileExists(name) {
			return name, nil
		}
	}
	return "", NewExitError(2, fmt.Errorf("%w: looked for --file, $LOOM_FILE, %s", ErrNoDefinition, strings.Join(DefaultDefinitionFiles, ", ")))
}

// RunIO holds the streams passed to the definition program.
type RunIO struct {
	Stdout, Stderr io.Writer
}

// Run starts argv and waits for it. A non-zero exit status is returned as a
// silent ExitError, since the program has already reported its own failure.
func Run(ctx context.Context, l logger.Logger, argv []string, rio RunIO) error {
	l.Debug("Running %s", quoteArgs(argv))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = rio.Stdout
	cmd.Stderr = rio.Stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 10 * time.Second

	start := time.Now()
	err := cmd.Run()
	l.WithFields(logger.DurationField("duration", time.Since(start))).Debug("%s finished", argv[0])

	if exitErr := new(exec.ExitError); errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return NewSilentExitError(code)
		}
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", argv[0], err)
	}
	return nil
}

func quoteArgs(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellwords.Quote(a)
	}
	return strings.Join(quoted, " ")
}
