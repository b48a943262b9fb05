package workflow

import (
	"errors"
	"strings"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ordered"
	"github.com/loomworks/loom/option"
)

// StepOptions are the fields shared by run and action steps.
type StepOptions struct {
	Name expr.String
	// If is the step's `if` condition.
	If              expr.Bool
	ID              string
	Env             map[string]expr.String
	ContinueOnError expr.Bool
	TimeoutMinutes  expr.Number

	// WorkingDirectory and Shell only apply to run steps.
	WorkingDirectory expr.String
	Shell            string

	// SkipRecommendedPermissions stops the step's recommended permissions
	// from being merged into its job.
	SkipRecommendedPermissions bool
}

// ActionOptions configure a step that uses an action.
type ActionOptions struct {
	StepOptions

	// Ref is the branch, tag, or SHA of the action, rendered after an @.
	Ref string
	// With holds the action's inputs, in render order.
	With *option.Options
	// Args and Entrypoint are Docker action inputs, rendered under `with`
	// after the other inputs.
	Args       expr.String
	Entrypoint expr.String
	// RecommendedPermissions are the permissions the action needs. They are
	// merged into the job's permissions.
	RecommendedPermissions *Permissions
}

// Step is a single step of a job. Steps are immutable once constructed.
type Step struct {
	opts StepOptions

	run         expr.String
	uses        string
	with        *option.Options
	recommended *Permissions
}

// Run returns a step that runs a script. The lines are joined with newlines;
// a script with more than one line renders as a block scalar. Line endings
// become LF and trailing spaces and tabs are dropped from each line.
func Run(opts StepOptions, lines ...expr.String) (*Step, error) {
	if err := checkSlice(expr.AllowedStepRun, lines); err != nil {
		return nil, err
	}
	script := expr.TrimTrailingSpace(expr.Lines(lines...))
	if s, ok := option.LiteralString(script); ok && strings.TrimSpace(s) == "" {
		return nil, configErr("run", errors.New("step must have a non-empty script"))
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Step{opts: opts, run: script}, nil
}

// Action returns a step that uses the action at uses, of the form
// owner/repo or owner/repo/path.
func Action(uses string, opts ActionOptions) (*Step, error) {
	if uses == "" {
		return nil, configErr("uses", errors.New("action step must name an action"))
	}
	if !opts.WorkingDirectory.IsZero() {
		return nil, configErr("working-directory", errors.New("only run steps can set a working directory"))
	}
	if opts.Shell != "" {
		return nil, configErr("shell", errors.New("only run steps can set a shell"))
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkOptions(expr.AllowedStepWith, opts.With); err != nil {
		return nil, err
	}
	if err := check(expr.AllowedStepWith, opts.Args, opts.Entrypoint); err != nil {
		return nil, err
	}
	if err := opts.RecommendedPermissions.Validate(); err != nil {
		return nil, err
	}

	with := &option.Options{}
	with.Merge(opts.With)
	with.Set("args", opts.Args)
	with.Set("entrypoint", opts.Entrypoint)

	if opts.Ref != "" {
		uses += "@" + opts.Ref
	}
	return &Step{
		opts:        opts.StepOptions,
		uses:        uses,
		with:        with,
		recommended: opts.RecommendedPermissions,
	}, nil
}

func (o StepOptions) validate() error {
	if err := check(expr.AllowedStepName, o.Name); err != nil {
		return err
	}
	if err := check(expr.AllowedStepIf, o.If); err != nil {
		return err
	}
	if err := check(expr.AllowedStepWorkingDirectory, o.WorkingDirectory); err != nil {
		return err
	}
	if err := checkMap(expr.AllowedStepEnv, o.Env); err != nil {
		return err
	}
	if err := check(expr.AllowedStepContinueOnError, o.ContinueOnError); err != nil {
		return err
	}
	return check(expr.AllowedStepTimeoutMinutes, o.TimeoutMinutes)
}

// Name returns the display name of the step.
func (s *Step) Name() expr.String { return s.opts.Name }

// ID returns the step id, or "" if none was set.
func (s *Step) ID() string { return s.opts.ID }

// Uses returns the action reference, or "" for run steps.
func (s *Step) Uses() string { return s.uses }

// With returns the action inputs.
func (s *Step) With() []option.Entry { return s.with.Entries() }

// Script returns the script of a run step.
func (s *Step) Script() expr.String { return s.run }

// RecommendedPermissions returns the permissions the step contributes to its
// job, or nil if it contributes none.
func (s *Step) RecommendedPermissions() *Permissions {
	if s.opts.SkipRecommendedPermissions {
		return nil
	}
	return s.recommended
}

// Output returns steps.<id>.outputs.<name> for this step. It panics if the
// step has no id.
func (s *Step) Output(name string) expr.String {
	if s.opts.ID == "" {
		panic("workflow: Output called on a step without an id")
	}
	return expr.StepOutput(s.opts.ID, name)
}

func (s *Step) node() *ordered.MapSA {
	m := ordered.NewMap[string, any](11)
	set(m, "name", s.opts.Name)
	set(m, "if", s.opts.If)
	setString(m, "uses", s.uses)
	setMap(m, "with", optionsMap(s.with))
	set(m, "run", s.run)
	set(m, "working-directory", s.opts.WorkingDirectory)
	setString(m, "shell", s.opts.Shell)
	setString(m, "id", s.opts.ID)
	setMap(m, "env", valueMap(s.opts.Env))
	set(m, "continue-on-error", s.opts.ContinueOnError)
	set(m, "timeout-minutes", s.opts.TimeoutMinutes)
	return m
}
