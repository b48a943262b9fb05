package workflow

import (
	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ordered"
	"github.com/loomworks/loom/option"
)

// JobOptions describe a job. A job either runs steps on a runner (RunsOn and
// Steps) or calls a reusable workflow (Uses, With, and Secrets).
type JobOptions struct {
	Name        expr.String
	Permissions *Permissions
	Needs       []string
	If          expr.Bool
	RunsOn      *RunsOn
	// Snapshot names a custom runner image to create from the job.
	Snapshot        string
	Environment     *Environment
	Concurrency     *Concurrency
	Outputs         map[string]expr.String
	Env             map[string]expr.String
	Defaults        *Defaults
	Strategy        *Strategy
	Steps           []*Step
	TimeoutMinutes  expr.Number
	ContinueOnError expr.Bool
	Container       *Container
	Services        map[string]*Container

	Uses    string
	With    *option.Options
	Secrets *JobSecrets

	// IgnoreRecommendedPermissions stops the permissions recommended by the
	// job's steps from being merged into Permissions.
	IgnoreRecommendedPermissions bool
}

// Job is a validated job. Jobs are immutable once constructed.
type Job struct {
	opts        JobOptions
	permissions *Permissions
	strategy    *ordered.MapSA
}

// NewJob validates opts and returns the job. Structural errors wrap one of
// ErrUsesAndRunsOn, ErrNoUsesOrRunsOn, ErrUsesWithSteps or ErrNoSteps.
func NewJob(opts JobOptions) (*Job, error) {
	switch {
	case opts.Uses != "" && opts.RunsOn != nil:
		return nil, configErr("uses", ErrUsesAndRunsOn)
	case opts.Uses == "" && opts.RunsOn == nil:
		return nil, configErr("runs-on", ErrNoUsesOrRunsOn)
	case opts.Uses != "" && len(opts.Steps) > 0:
		return nil, configErr("steps", ErrUsesWithSteps)
	case opts.RunsOn != nil && len(opts.Steps) == 0:
		return nil, configErr("steps", ErrNoSteps)
	}
	if opts.Uses == "" && (opts.With.Len() > 0 || opts.Secrets != nil) {
		return nil, configErrf("with", "only jobs calling a reusable workflow can set 'with' or 'secrets'")
	}

	if err := check(expr.AllowedJobName, opts.Name); err != nil {
		return nil, err
	}
	if err := check(expr.AllowedJobIf, opts.If); err != nil {
		return nil, err
	}
	if opts.RunsOn != nil {
		if err := opts.RunsOn.validate(); err != nil {
			return nil, err
		}
	}
	if opts.Environment != nil {
		if err := opts.Environment.validate(); err != nil {
			return nil, err
		}
	}
	if opts.Concurrency != nil {
		if err := opts.Concurrency.validate(expr.AllowedJobConcurrency); err != nil {
			return nil, err
		}
	}
	if err := checkMap(expr.AllowedJobOutputs, opts.Outputs); err != nil {
		return nil, err
	}
	if err := checkMap(expr.AllowedJobEnv, opts.Env); err != nil {
		return nil, err
	}
	if opts.Defaults != nil {
		if err := opts.Defaults.validate(expr.AllowedJobDefaultsRun); err != nil {
			return nil, err
		}
	}
	if err := check(expr.AllowedJobTimeoutMinutes, opts.TimeoutMinutes); err != nil {
		return nil, err
	}
	if err := check(expr.AllowedJobContinueOnError, opts.ContinueOnError); err != nil {
		return nil, err
	}
	if opts.Container != nil {
		if err := opts.Container.validate("container", jobContainerRules); err != nil {
			return nil, err
		}
	}
	for _, id := range sortedKeys(opts.Services) {
		svc := opts.Services[id]
		if svc == nil {
			return nil, configErrf("services."+id, "service must not be nil")
		}
		if err := svc.validate("services."+id, serviceRules); err != nil {
			return nil, err
		}
	}
	if err := checkOptions(expr.AllowedJobWith, opts.With); err != nil {
		return nil, err
	}
	if opts.Secrets != nil {
		if err := opts.Secrets.validate(); err != nil {
			return nil, err
		}
	}
	if err := opts.Permissions.Validate(); err != nil {
		return nil, err
	}

	j := &Job{opts: opts}
	if opts.Strategy != nil {
		s, err := opts.Strategy.node()
		if err != nil {
			return nil, err
		}
		j.strategy = s
	}

	ids := map[string]bool{}
	for i, s := range opts.Steps {
		if s == nil {
			return nil, configErrf("steps", "step %d is nil", i)
		}
		if id := s.ID(); id != "" {
			if ids[id] {
				return nil, configErrf("steps", "duplicate step id %q", id)
			}
			ids[id] = true
		}
	}

	j.permissions = Merge(opts.Permissions, nil)
	if !opts.IgnoreRecommendedPermissions {
		var recommended *Permissions
		for _, s := range opts.Steps {
			if p := s.RecommendedPermissions(); !p.IsEmpty() {
				recommended = Merge(recommended, p)
			}
		}
		j.permissions = Merge(opts.Permissions, recommended)
	}
	return j, nil
}

// Needs returns the ids of the jobs this job depends on.
func (j *Job) Needs() []string { return j.opts.Needs }

// Steps returns the job's steps.
func (j *Job) Steps() []*Step { return j.opts.Steps }

// Permissions returns the declared permissions merged with those recommended
// by the job's steps.
func (j *Job) Permissions() *Permissions { return j.permissions }

func (j *Job) node() *ordered.MapSA {
	o := j.opts
	m := ordered.NewMap[string, any](20)
	set(m, "name", o.Name)
	if !j.permissions.IsEmpty() {
		m.Set("permissions", j.permissions.node())
	}
	switch len(o.Needs) {
	case 0:
	case 1:
		m.Set("needs", o.Needs[0])
	default:
		m.Set("needs", stringList(o.Needs))
	}
	set(m, "if", o.If)
	if o.RunsOn != nil {
		m.Set("runs-on", o.RunsOn.node())
	}
	setString(m, "snapshot", o.Snapshot)
	if o.Environment != nil {
		m.Set("environment", o.Environment.node())
	}
	if o.Concurrency != nil {
		m.Set("concurrency", o.Concurrency.node())
	}
	setMap(m, "outputs", valueMap(o.Outputs))
	setMap(m, "env", valueMap(o.Env))
	if o.Defaults != nil {
		setMap(m, "defaults", o.Defaults.node())
	}
	setMap(m, "strategy", j.strategy)
	if len(o.Steps) > 0 {
		steps := make([]any, len(o.Steps))
		for i, s := range o.Steps {
			steps[i] = s.node()
		}
		m.Set("steps", steps)
	}
	set(m, "timeout-minutes", o.TimeoutMinutes)
	set(m, "continue-on-error", o.ContinueOnError)
	if o.Container != nil {
		m.Set("container", o.Container.node())
	}
	if len(o.Services) > 0 {
		services := ordered.NewMap[string, any](len(o.Services))
		for _, id := range sortedKeys(o.Services) {
			services.Set(id, o.Services[id].node())
		}
		m.Set("services", services)
	}
	setString(m, "uses", o.Uses)
	setMap(m, "with", optionsMap(o.With))
	if o.Secrets != nil {
		if secrets := o.Secrets.node(); secrets != nil {
			m.Set("secrets", secrets)
		}
	}
	return m
}
