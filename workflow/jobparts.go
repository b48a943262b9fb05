package workflow

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ordered"
)

// RunsOn selects the runner for a job: one or more labels, optionally within
// a runner group.
type RunsOn struct {
	Group  expr.String
	Labels []expr.String
}

// Labels returns a RunsOn matching runners with all of the given labels.
func Labels(labels ...string) *RunsOn {
	return &RunsOn{Labels: expr.Strs(labels...)}
}

// Group returns a RunsOn selecting runners from a runner group, optionally
// restricted by labels.
func Group(group string, labels ...string) *RunsOn {
	return &RunsOn{Group: expr.Str(group), Labels: expr.Strs(labels...)}
}

func (r *RunsOn) validate() error {
	if r.Group.IsZero() && len(valueList(r.Labels)) == 0 {
		return configErr("runs-on", errors.New("must set a group or at least one label"))
	}
	if err := check(expr.AllowedJobRunsOn, r.Group); err != nil {
		return err
	}
	return checkSlice(expr.AllowedJobRunsOn, r.Labels)
}

func (r *RunsOn) node() any {
	labels := valueList(r.Labels)
	var lv any = labels
	if len(labels) == 1 {
		lv = labels[0]
	}
	if r.Group.IsZero() {
		return lv
	}
	m := ordered.NewMap[string, any](2)
	set(m, "group", r.Group)
	if len(labels) > 0 {
		m.Set("labels", lv)
	}
	return m
}

// Environment is the deployment environment a job references.
type Environment struct {
	Name expr.String
	URL  expr.String
}

func (e *Environment) validate() error {
	if e.Name.IsZero() {
		return configErr("environment", errors.New("must have a name"))
	}
	if err := check(expr.AllowedJobEnvironment, e.Name); err != nil {
		return err
	}
	return check(expr.AllowedJobEnvironmentURL, e.URL)
}

func (e *Environment) node() any {
	if e.URL.IsZero() {
		return e.Name.Scalar()
	}
	m := ordered.NewMap[string, any](2)
	set(m, "name", e.Name)
	set(m, "url", e.URL)
	return m
}

// Concurrency limits a workflow or job to one run per group.
type Concurrency struct {
	Group            expr.String
	CancelInProgress expr.Bool
}

func (c *Concurrency) validate(allowed expr.Allowed) error {
	if c.Group.IsZero() {
		return configErr(allowed.Label, errors.New("must have a group"))
	}
	return check(allowed, c.Group, c.CancelInProgress)
}

func (c *Concurrency) node() *ordered.MapSA {
	m := ordered.NewMap[string, any](2)
	set(m, "group", c.Group)
	set(m, "cancel-in-progress", c.CancelInProgress)
	return m
}

// Defaults are settings applied to every run step of a workflow or job.
type Defaults struct {
	Run RunDefaults
}

// RunDefaults are the shell and working directory used by run steps.
type RunDefaults struct {
	Shell            expr.String
	WorkingDirectory expr.String
}

func (d *Defaults) validate(allowed expr.Allowed) error {
	return check(allowed, d.Run.Shell, d.Run.WorkingDirectory)
}

func (d *Defaults) node() *ordered.MapSA {
	run := ordered.NewMap[string, any](2)
	set(run, "shell", d.Run.Shell)
	set(run, "working-directory", d.Run.WorkingDirectory)
	m := ordered.NewMap[string, any](1)
	setMap(m, "run", run)
	return m
}

// Strategy configures the matrix and scheduling of a job's runs.
type Strategy struct {
	Matrix      *Matrix
	FailFast    expr.Bool
	MaxParallel expr.Number
}

// Matrix defines the variations a job runs with. Axes map each variable to
// its values and render in key order. Include and Exclude entries are
// rendered after the axes. Expr, when set, replaces the whole matrix with
// an expression such as fromJSON(needs.plan.outputs.matrix).
type Matrix struct {
	Axes    map[string]any
	Include []map[string]any
	Exclude []map[string]any
	Expr    expr.Value
}

// node converts the strategy to its rendered form, checking expressions in
// the matrix as it goes.
func (s *Strategy) node() (*ordered.MapSA, error) {
	if err := check(expr.AllowedJobStrategy, s.FailFast, s.MaxParallel); err != nil {
		return nil, err
	}
	m := ordered.NewMap[string, any](3)
	if s.Matrix != nil {
		mx, err := s.Matrix.node()
		if err != nil {
			return nil, err
		}
		m.Set("matrix", mx)
	}
	set(m, "fail-fast", s.FailFast)
	set(m, "max-parallel", s.MaxParallel)
	if m.Len() == 0 {
		return nil, configErr("strategy", errors.New("must set a matrix, fail-fast, or max-parallel"))
	}
	return m, nil
}

func (mx *Matrix) node() (any, error) {
	if mx.Expr != nil && !mx.Expr.IsZero() {
		if len(mx.Axes) > 0 || len(mx.Include) > 0 || len(mx.Exclude) > 0 {
			return nil, configErr("strategy.matrix", errors.New("an expression matrix cannot also set axes, include, or exclude"))
		}
		if err := check(expr.AllowedJobStrategy, mx.Expr); err != nil {
			return nil, err
		}
		return mx.Expr.Scalar(), nil
	}

	m := ordered.NewMap[string, any](len(mx.Axes) + 2)
	for _, k := range slices.Sorted(maps.Keys(mx.Axes)) {
		v, err := docValue(expr.AllowedJobStrategy, mx.Axes[k])
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	for _, part := range []struct {
		key     string
		entries []map[string]any
	}{{"include", mx.Include}, {"exclude", mx.Exclude}} {
		if len(part.entries) == 0 {
			continue
		}
		list := make([]any, len(part.entries))
		for i, e := range part.entries {
			v, err := docValue(expr.AllowedJobStrategy, e)
			if err != nil {
				return nil, err
			}
			list[i] = v
		}
		m.Set(part.key, list)
	}
	if m.Len() == 0 {
		return nil, configErr("strategy.matrix", errors.New("must not be empty"))
	}
	return m, nil
}

// docValue converts user-supplied data (literals, expressions, slices, and
// string-keyed maps) into values the renderer understands. Map keys are
// sorted. Expressions are checked against allowed.
func docValue(allowed expr.Allowed, v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case expr.Value:
		if err := check(allowed, v); err != nil {
			return nil, err
		}
		return v.Scalar(), nil
	case string, bool, int64, float64:
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil

	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			item, err := docValue(allowed, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		m := ordered.NewMap[string, any](len(keys))
		for _, k := range keys {
			item, err := docValue(allowed, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, err
			}
			m.Set(k, item)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", v)
}

// Credentials authenticate to a container registry.
type Credentials struct {
	Username expr.String
	Password expr.String
}

// Container is the container a job runs in, or a service container.
type Container struct {
	Image       expr.String
	Credentials *Credentials
	Env         map[string]expr.String
	Ports       []expr.Number
	Volumes     []expr.String
	Options     expr.String
}

type containerRules struct {
	image, other, credentials, env expr.Allowed
}

var (
	jobContainerRules = containerRules{
		image:       expr.AllowedJobContainerImage,
		other:       expr.AllowedJobContainer,
		credentials: expr.AllowedJobContainerCredentials,
		env:         expr.AllowedJobContainerEnv,
	}
	serviceRules = containerRules{
		image:       expr.AllowedJobServices,
		other:       expr.AllowedJobServices,
		credentials: expr.AllowedJobServiceCredentials,
		env:         expr.AllowedJobServiceEnv,
	}
)

func (c *Container) validate(field string, rules containerRules) error {
	if c.Image.IsZero() {
		return configErr(field, errors.New("container must have an image"))
	}
	if err := check(rules.image, c.Image); err != nil {
		return err
	}
	if err := check(rules.other, c.Options); err != nil {
		return err
	}
	if err := checkSlice(rules.other, c.Volumes); err != nil {
		return err
	}
	if err := checkSlice(rules.other, c.Ports); err != nil {
		return err
	}
	if c.Credentials != nil {
		if err := check(rules.credentials, c.Credentials.Username, c.Credentials.Password); err != nil {
			return err
		}
	}
	return checkMap(rules.env, c.Env)
}

func (c *Container) node() *ordered.MapSA {
	m := ordered.NewMap[string, any](6)
	set(m, "image", c.Image)
	if c.Credentials != nil {
		creds := ordered.NewMap[string, any](2)
		set(creds, "username", c.Credentials.Username)
		set(creds, "password", c.Credentials.Password)
		setMap(m, "credentials", creds)
	}
	setMap(m, "env", valueMap(c.Env))
	if ports := valueList(c.Ports); len(ports) > 0 {
		m.Set("ports", ports)
	}
	if volumes := valueList(c.Volumes); len(volumes) > 0 {
		m.Set("volumes", volumes)
	}
	set(m, "options", c.Options)
	return m
}

// JobSecrets are the secrets passed to a reusable workflow: either named
// values or every secret of the calling workflow.
type JobSecrets struct {
	Inherit bool
	Values  map[string]expr.String
}

// InheritSecrets passes all of the caller's secrets to the called workflow.
func InheritSecrets() *JobSecrets { return &JobSecrets{Inherit: true} }

func (s *JobSecrets) validate() error {
	if s.Inherit && len(s.Values) > 0 {
		return configErr("secrets", errors.New("cannot both inherit and name secrets"))
	}
	return checkMap(expr.AllowedJobSecrets, s.Values)
}

func (s *JobSecrets) node() any {
	if s.Inherit {
		return "inherit"
	}
	if m := valueMap(s.Values); m != nil {
		return m
	}
	return nil
}
