package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ordered"
	"github.com/loomworks/loom/internal/osutil"
	"github.com/loomworks/loom/internal/render"
	"github.com/loomworks/loom/internal/schema"
	"github.com/loomworks/loom/logger"
)

// JobEntry is a job and the id it is rendered under. Jobs render in the
// order they are listed.
type JobEntry struct {
	ID  string
	Job *Job
}

// Options describe a workflow.
type Options struct {
	Name        string
	RunName     expr.String
	On          Events
	Permissions *Permissions
	Env         map[string]expr.String
	Defaults    *Defaults
	Concurrency *Concurrency
	Jobs        []JobEntry
}

// Workflow is a complete workflow document.
type Workflow struct {
	opts Options
	on   any
}

var jobIDPattern = regexp.MustCompile(`^[_a-zA-Z][a-zA-Z0-9_-]*$`)

// New validates the workflow-level fields of opts and returns the workflow.
// Jobs were validated when they were constructed and are not checked again,
// apart from their ids and the jobs they need.
func New(opts Options) (*Workflow, error) {
	if err := check(expr.AllowedRunName, opts.RunName); err != nil {
		return nil, err
	}
	if err := checkMap(expr.AllowedEnv, opts.Env); err != nil {
		return nil, err
	}
	if opts.Concurrency != nil {
		if err := opts.Concurrency.validate(expr.AllowedConcurrency); err != nil {
			return nil, err
		}
	}
	if opts.Defaults != nil {
		if err := opts.Defaults.validate(expr.AllowedDefaultsRun); err != nil {
			return nil, err
		}
	}
	if err := opts.Permissions.Validate(); err != nil {
		return nil, err
	}

	if len(opts.Jobs) == 0 {
		return nil, configErr("jobs", errors.New("workflow must have at least one job"))
	}
	ids := make(map[string]bool, len(opts.Jobs))
	for _, entry := range opts.Jobs {
		switch {
		case entry.ID == "":
			return nil, configErr("jobs", errors.New("job id must not be empty"))
		case !jobIDPattern.MatchString(entry.ID):
			return nil, configErrf("jobs", "job id %q must start with a letter or _ and contain only alphanumeric characters, - or _", entry.ID)
		case ids[entry.ID]:
			return nil, configErrf("jobs", "duplicate job id %q", entry.ID)
		case entry.Job == nil:
			return nil, configErrf("jobs."+entry.ID, "job must not be nil")
		}
		ids[entry.ID] = true
	}
	for _, entry := range opts.Jobs {
		for _, need := range entry.Job.Needs() {
			if !ids[need] {
				return nil, configErrf("jobs."+entry.ID+".needs", "job %q is not defined in this workflow", need)
			}
		}
	}

	on, err := opts.On.node()
	if err != nil {
		return nil, err
	}
	return &Workflow{opts: opts, on: on}, nil
}

// Job returns the job with the given id, or nil.
func (w *Workflow) Job(id string) *Job {
	for _, entry := range w.opts.Jobs {
		if entry.ID == id {
			return entry.Job
		}
	}
	return nil
}

// Jobs returns the workflow's jobs in render order.
func (w *Workflow) Jobs() []JobEntry { return w.opts.Jobs }

func (w *Workflow) node() *ordered.MapSA {
	o := w.opts
	m := ordered.NewMap[string, any](8)
	setString(m, "name", o.Name)
	set(m, "run-name", o.RunName)
	m.Set("on", w.on)
	if !o.Permissions.IsEmpty() {
		m.Set("permissions", o.Permissions.node())
	}
	setMap(m, "env", valueMap(o.Env))
	if o.Defaults != nil {
		setMap(m, "defaults", o.Defaults.node())
	}
	if o.Concurrency != nil {
		m.Set("concurrency", o.Concurrency.node())
	}
	jobs := ordered.NewMap[string, any](len(o.Jobs))
	for _, entry := range o.Jobs {
		jobs.Set(entry.ID, entry.Job.node())
	}
	m.Set("jobs", jobs)
	return m
}

// Render returns the workflow as a YAML document. Rendering the same
// workflow always produces the same bytes.
func (w *Workflow) Render() ([]byte, error) {
	return render.YAML(w.node())
}

// WriteTo writes the rendered workflow to out.
func (w *Workflow) WriteTo(out io.Writer) (int64, error) {
	b, err := w.Render()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(b)
	return int64(n), err
}

// DumpOptions control how Dump writes a workflow file.
type DumpOptions struct {
	// NoOverwrite leaves an existing file untouched.
	NoOverwrite bool
	// NoValidate skips checking the document against the workflow schema.
	NoValidate bool
	// Logger, when set, receives a line for each file written or skipped.
	Logger logger.Logger
}

const lockRetryDelay = 100 * time.Millisecond

// Dump renders the workflow and writes it to path, creating parent
// directories as needed. The file is locked while it is written, so
// concurrent Dumps of the same path do not interleave.
func (w *Workflow) Dump(ctx context.Context, path string, opts DumpOptions) error {
	l := opts.Logger
	if l == nil {
		l = logger.Discard
	}

	if opts.NoOverwrite && osutil.FileExists(path) {
		l.Info("Skipping %s, it already exists", path)
		return nil
	}

	b, err := w.Render()
	if err != nil {
		return err
	}
	if !opts.NoValidate {
		if err := schema.Validate(ctx, b); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	lock := flock.New(path)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("could not lock %s", path)
	}
	defer lock.Unlock()

	// Another process may have written the file while we waited for the lock.
	if opts.NoOverwrite {
		if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
			l.Info("Skipping %s, it already exists", path)
			return nil
		}
	}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, b) {
		l.Debug("%s is up to date", path)
		return nil
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	l.WithFields(logger.StringField("size", humanize.Bytes(uint64(len(b))))).Info("Wrote %s", path)
	return nil
}
