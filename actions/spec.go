// Package actions is a catalog of commonly used GitHub actions. Each action
// is described by a Spec listing the inputs it accepts, and steps are built
// from a Spec with Step.
package actions

import (
	"fmt"
	"slices"
	"strings"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/logger"
	"github.com/loomworks/loom/option"
	"github.com/loomworks/loom/workflow"
)

// Spec describes an action and the inputs it accepts.
type Spec struct {
	// Name identifies the action in the catalog.
	Name        string
	Uses        string
	Ref         string
	Description string
	Schema      option.Schema

	// DefaultName returns the step name used when none is given.
	DefaultName func(with *option.Options) string
	// Recommended are the permissions the action needs to run.
	Recommended *workflow.Permissions
	// Check validates the built inputs beyond what the schema covers.
	Check func(with *option.Options, l logger.Logger) error
}

// StepOptions are the step-level settings for a catalog action.
type StepOptions struct {
	workflow.StepOptions

	// Ref overrides the action version pinned by the Spec.
	Ref        string
	Args       expr.String
	Entrypoint expr.String
	// Logger receives warnings about inputs that are valid but probably
	// not what was intended.
	Logger logger.Logger
}

// Step builds a step using the action. values are keyed by input name and
// may be Go literals, expr values, or string slices for list inputs.
func (s *Spec) Step(values map[string]any, opts StepOptions) (*workflow.Step, error) {
	with, err := s.Schema.Build(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Uses, err)
	}

	l := opts.Logger
	if l == nil {
		l = logger.Discard
	}
	if s.Check != nil {
		if err := s.Check(with, l); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Uses, err)
		}
	}

	stepOpts := opts.StepOptions
	if stepOpts.Name.IsZero() && s.DefaultName != nil {
		stepOpts.Name = expr.Str(s.DefaultName(with))
	}
	ref := opts.Ref
	if ref == "" {
		ref = s.Ref
	}

	return workflow.Action(s.Uses, workflow.ActionOptions{
		StepOptions:            stepOpts,
		Ref:                    ref,
		With:                   with,
		Args:                   opts.Args,
		Entrypoint:             opts.Entrypoint,
		RecommendedPermissions: s.Recommended,
	})
}

// Inputs returns the names of the inputs the action accepts.
func (s *Spec) Inputs() []string {
	names := make([]string, len(s.Schema))
	for i, f := range s.Schema {
		names[i] = f.Name
	}
	return names
}

// Catalog returns every action in the catalog, sorted by name.
func Catalog() []*Spec {
	specs := []*Spec{
		Cache,
		Checkout,
		DownloadArtifact,
		SetupGo,
		SetupNode,
		SetupPython,
		UploadArtifact,
	}
	slices.SortFunc(specs, func(a, b *Spec) int { return strings.Compare(a.Name, b.Name) })
	return specs
}

// Lookup returns the catalog action with the given name.
func Lookup(name string) (*Spec, bool) {
	for _, s := range Catalog() {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// fixedName returns a DefaultName that always returns name.
func fixedName(name string) func(*option.Options) string {
	return func(*option.Options) string { return name }
}

// literalName names the step after the literal value of input, formatted
// with format, or falls back to fallback when the input is unset or an
// expression.
func literalName(input, format, fallback string) func(*option.Options) string {
	return func(with *option.Options) string {
		v, ok := with.Get(input)
		if !ok {
			return fallback
		}
		s, ok := option.LiteralString(v)
		if !ok || s == "" {
			return fallback
		}
		return fmt.Sprintf(format, s)
	}
}
