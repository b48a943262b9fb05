package clicommand

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"sync"

	"drjosh.dev/zzglob"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/loomworks/loom/internal/schema"
	"github.com/loomworks/loom/logger"
)

const validateHelpDescription = `Usage:

    loom validate [options] [patterns...]

Description:

Checks workflow files against the GitHub Actions workflow schema. Each
argument is a glob pattern; ** matches any number of directories. With no
arguments, the workflows in .github/workflows are checked.

Example:

    $ loom validate
    $ loom validate ".github/workflows/release-*.yml"`

// DefaultWorkflowPatterns are validated when no patterns are given.
var DefaultWorkflowPatterns = []string{
	".github/workflows/*.yml",
	".github/workflows/*.yaml",
}

type ValidateConfig struct {
	GlobalConfig

	Patterns       []string `cli:"arg:*"`
	FollowSymlinks bool     `cli:"follow-symlinks"`
	Jobs           int      `cli:"jobs"`
}

var ValidateCommand = cli.Command{
	Name:        "validate",
	Usage:       "Validate workflow files against the workflow schema",
	Description: validateHelpDescription,
	Flags: append(globalFlags(),
		cli.BoolFlag{
			Name:   "follow-symlinks",
			Usage:  "Follow symbolic links to directories while expanding patterns",
			EnvVar: "LOOM_VALIDATE_FOLLOW_SYMLINKS",
		},
		cli.IntFlag{
			Name:   "jobs",
			Value:  runtime.NumCPU(),
			Usage:  "Number of files to validate at once",
			EnvVar: "LOOM_VALIDATE_JOBS",
		},
	),
	Action: func(c *cli.Context) error {
		ctx, cfg, l, _, err := setupLoggerAndConfig[ValidateConfig](context.Background(), c)
		if err != nil {
			return err
		}

		patterns := cfg.Patterns
		if len(patterns) == 0 {
			patterns = DefaultWorkflowPatterns
		}

		files, err := FindWorkflows(ctx, l, patterns, cfg.FollowSymlinks)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no workflow files matched %v", patterns)
		}

		return ValidateFiles(ctx, l, files, cfg.Jobs)
	},
}

// FindWorkflows expands glob patterns into a sorted list of files.
func FindWorkflows(ctx context.Context, l logger.Logger, patterns []string, followSymlinks bool) ([]string, error) {
	var globs []*zzglob.Pattern
	for _, p := range patterns {
		g, err := zzglob.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	var (
		mu    sync.Mutex
		files []string
	)
	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.Warn("Couldn't walk path %s: %v", path, err)
			return nil
		}
		if d != nil && d.IsDir() {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		files = append(files, path)
		return nil
	}
	if err := zzglob.MultiGlob(ctx, globs, walk, zzglob.TraverseSymlinks(followSymlinks)); err != nil {
		return nil, fmt.Errorf("globbing patterns: %w", err)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// ValidateFiles validates files concurrently, at most jobs at a time. Every
// file is checked; the returned error counts the failures.
func ValidateFiles(ctx context.Context, l logger.Logger, files []string, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}

	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, path := range files {
		g.Go(func() error {
			doc, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			err = schema.Validate(gctx, doc)
			if verr := new(schema.ValidationError); errors.As(err, &verr) {
				for _, e := range verr.Errors {
					l.WithFields(logger.StringField("file", path)).Error("%s", e)
				}
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			l.Info("%s is valid (%s)", path, humanize.Bytes(uint64(len(doc))))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d workflow files failed validation", failed, len(files))
	}
	l.Notice("Validated %s", humanize.Plural(len(files), "workflow file", "workflow files"))
	return nil
}
