package workflow

import (
	"errors"
	"slices"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ordered"
	"github.com/loomworks/loom/option"
)

// InputType is the declared type of a workflow input.
type InputType string

const (
	InputBoolean     InputType = "boolean"
	InputNumber      InputType = "number"
	InputString      InputType = "string"
	InputChoice      InputType = "choice"
	InputEnvironment InputType = "environment"
)

var (
	callInputTypes     = []string{string(InputBoolean), string(InputNumber), string(InputString)}
	dispatchInputTypes = []string{string(InputBoolean), string(InputChoice), string(InputNumber), string(InputEnvironment), string(InputString)}
)

// CallInput is an input of a reusable workflow.
type CallInput struct {
	ID          string
	Description string
	Type        InputType
	Required    bool
	Default     expr.Value
}

// CallOutput is an output of a reusable workflow, usually taken from one of
// its jobs with expr.JobsOutput.
type CallOutput struct {
	ID          string
	Description string
	Value       expr.String
}

// CallSecret is a secret a reusable workflow accepts.
type CallSecret struct {
	ID          string
	Description string
	Required    bool
}

// WorkflowCall makes a workflow reusable from other workflows.
type WorkflowCall struct {
	Inputs  []CallInput
	Outputs []CallOutput
	Secrets []CallSecret
}

// DispatchInput is an input of a manually dispatched workflow.
type DispatchInput struct {
	ID          string
	Description string
	Type        InputType
	Required    bool
	// Default must be a literal. Environment inputs have no default.
	Default expr.Value
	// Options are the choices of a choice input.
	Options []string
}

// WorkflowDispatch allows a workflow to be run manually.
type WorkflowDispatch struct {
	Inputs []DispatchInput
}

// Input returns inputs.<id> for use in expressions.
func (i CallInput) Input() expr.Object { return expr.Input(i.ID) }

// Input returns inputs.<id> for use in expressions.
func (i DispatchInput) Input() expr.Object { return expr.Input(i.ID) }

// uniqueIDs checks that ids are non-empty and distinct.
func uniqueIDs(field string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return configErr(field, errors.New("id must not be empty"))
		}
		if seen[id] {
			return configErrf(field, "duplicate id %q", id)
		}
		seen[id] = true
	}
	return nil
}

// checkDefault checks that a literal default matches the input type.
func checkDefault(field string, typ InputType, def expr.Value) error {
	lit, ok := expr.Untyped(def).Literal()
	if !ok {
		return nil
	}
	var valid bool
	switch typ {
	case InputBoolean:
		_, valid = lit.(bool)
	case InputNumber:
		switch lit.(type) {
		case int64, float64:
			valid = true
		}
	default:
		_, valid = lit.(string)
	}
	if !valid {
		return configErrf(field, "default %v does not match type %s", lit, typ)
	}
	return nil
}

func inputType(field string, typ InputType, allowed []string) (InputType, error) {
	if typ == "" {
		return InputString, nil
	}
	t, err := option.ValidateChoice(field, expr.Str(string(typ)), allowed...)
	if err != nil {
		return "", err
	}
	s, _ := option.LiteralString(t)
	return InputType(s), nil
}

func (c *WorkflowCall) node() (*ordered.MapSA, error) {
	ids := func(n int, id func(int) string) []string {
		out := make([]string, n)
		for i := range n {
			out[i] = id(i)
		}
		return out
	}
	if err := uniqueIDs("on.workflow_call.inputs", ids(len(c.Inputs), func(i int) string { return c.Inputs[i].ID })); err != nil {
		return nil, err
	}
	if err := uniqueIDs("on.workflow_call.outputs", ids(len(c.Outputs), func(i int) string { return c.Outputs[i].ID })); err != nil {
		return nil, err
	}
	if err := uniqueIDs("on.workflow_call.secrets", ids(len(c.Secrets), func(i int) string { return c.Secrets[i].ID })); err != nil {
		return nil, err
	}

	m := ordered.NewMap[string, any](3)

	inputs := ordered.NewMap[string, any](len(c.Inputs))
	for _, in := range c.Inputs {
		field := "on.workflow_call.inputs." + in.ID
		typ, err := inputType(field+".type", in.Type, callInputTypes)
		if err != nil {
			return nil, err
		}
		if err := check(expr.AllowedCallInputDefault, in.Default); err != nil {
			return nil, err
		}
		if err := checkDefault(field+".default", typ, in.Default); err != nil {
			return nil, err
		}
		im := ordered.NewMap[string, any](4)
		setString(im, "description", in.Description)
		im.Set("type", string(typ))
		if in.Required {
			im.Set("required", true)
		}
		set(im, "default", in.Default)
		inputs.Set(in.ID, im)
	}
	setMap(m, "inputs", inputs)

	outputs := ordered.NewMap[string, any](len(c.Outputs))
	for _, out := range c.Outputs {
		if out.Value.IsZero() {
			return nil, configErr("on.workflow_call.outputs."+out.ID+".value", errors.New("output must have a value"))
		}
		if err := check(expr.AllowedCallOutputValue, out.Value); err != nil {
			return nil, err
		}
		om := ordered.NewMap[string, any](2)
		setString(om, "description", out.Description)
		set(om, "value", out.Value)
		outputs.Set(out.ID, om)
	}
	setMap(m, "outputs", outputs)

	secrets := ordered.NewMap[string, any](len(c.Secrets))
	for _, s := range c.Secrets {
		sm := ordered.NewMap[string, any](2)
		setString(sm, "description", s.Description)
		if s.Required {
			sm.Set("required", true)
		}
		if sm.Len() == 0 {
			secrets.Set(s.ID, nil)
			continue
		}
		secrets.Set(s.ID, sm)
	}
	setMap(m, "secrets", secrets)
	return m, nil
}

func (d *WorkflowDispatch) node() (*ordered.MapSA, error) {
	ids := make([]string, len(d.Inputs))
	for i, in := range d.Inputs {
		ids[i] = in.ID
	}
	if err := uniqueIDs("on.workflow_dispatch.inputs", ids); err != nil {
		return nil, err
	}

	inputs := ordered.NewMap[string, any](len(d.Inputs))
	for _, in := range d.Inputs {
		field := "on.workflow_dispatch.inputs." + in.ID
		typ, err := inputType(field+".type", in.Type, dispatchInputTypes)
		if err != nil {
			return nil, err
		}
		if in.Default != nil && !in.Default.IsZero() {
			if !in.Default.IsLiteral() {
				return nil, configErr(field+".default", errors.New("default must be a literal"))
			}
			if typ == InputEnvironment {
				return nil, configErr(field+".default", errors.New("environment inputs cannot have a default"))
			}
			if err := checkDefault(field+".default", typ, in.Default); err != nil {
				return nil, err
			}
		}
		switch {
		case typ == InputChoice && len(in.Options) == 0:
			return nil, configErr(field+".options", errors.New("choice input must have options"))
		case typ != InputChoice && len(in.Options) > 0:
			return nil, configErr(field+".options", errors.New("only choice inputs can have options"))
		}
		if typ == InputChoice {
			if def, ok := option.LiteralString(in.Default); ok && !slices.Contains(in.Options, def) {
				return nil, &option.InvalidChoiceError{Field: field + ".default", Value: def, Allowed: in.Options}
			}
		}

		im := ordered.NewMap[string, any](5)
		setString(im, "description", in.Description)
		im.Set("type", string(typ))
		if in.Required {
			im.Set("required", true)
		}
		set(im, "default", in.Default)
		setList(im, "options", in.Options)
		inputs.Set(in.ID, im)
	}

	m := ordered.NewMap[string, any](1)
	setMap(m, "inputs", inputs)
	return m, nil
}
