package option

import (
	"fmt"
	"maps"
	"slices"

	"github.com/loomworks/loom/expr"
)

// Kind is the type an option accepts.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
	// KindList accepts a sequence of strings and joins it with the field's
	// Join separator. A single string is accepted as-is.
	KindList
	// KindAny accepts any literal or expression.
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	case KindAny:
		return "value"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Field describes one option of an action.
type Field struct {
	// Name is the name callers pass the value under.
	Name string
	// Key is the `with` key, when it differs from Name.
	Key  string
	Kind Kind
	// Choices, when set, restricts literal values (case-insensitively).
	Choices []string
	// Range, when set, bounds literal integer values.
	Range *Range
	// Join separates list elements. Defaults to a comma.
	Join string
	// Required options must be given a set value.
	Required bool
}

// WithKey returns the `with` key of f.
func (f Field) WithKey() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}

// Schema is the ordered list of options an action accepts. The order is the
// order options are rendered in.
type Schema []Field

// Field returns the field called name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Build turns values, keyed by field name, into Options in schema order.
// Nil and unset values are skipped. Unknown names and missing required
// options are an error.
func (s Schema) Build(values map[string]any) (*Options, error) {
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if _, ok := s.Field(name); !ok {
			return nil, fmt.Errorf("unknown option %q", name)
		}
	}

	opts := &Options{}
	for _, f := range s {
		raw, ok := values[f.Name]
		if !ok {
			continue
		}
		v, err := f.normalize(raw)
		if err != nil {
			return nil, err
		}
		opts.Set(f.WithKey(), v)
	}
	for _, f := range s {
		if _, ok := opts.Get(f.WithKey()); f.Required && !ok {
			return nil, fmt.Errorf("option '%s' is required", f.Name)
		}
	}
	return opts, nil
}

func (f Field) normalize(raw any) (expr.Value, error) {
	v, err := f.coerce(raw)
	if err != nil || v == nil || v.IsZero() {
		return v, err
	}

	if len(f.Choices) > 0 {
		if v, err = ValidateChoice(f.Name, v, f.Choices...); err != nil {
			return nil, err
		}
	}
	if f.Range != nil {
		if _, err := ValidateRange(f.Name, v, *f.Range); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (f Field) coerce(raw any) (expr.Value, error) {
	if f.Kind == KindList {
		sep := f.Join
		if sep == "" {
			sep = ","
		}
		switch raw := raw.(type) {
		case []string:
			return join(sep, expr.Strs(raw...)), nil
		case []expr.String:
			return join(sep, raw), nil
		}
	}

	v, err := expr.ValueOf(raw)
	if err != nil {
		return nil, fmt.Errorf("option '%s': %w", f.Name, err)
	}
	lit, ok := expr.Untyped(v).Literal()
	if !ok || lit == nil {
		return v, nil
	}

	var match bool
	switch f.Kind {
	case KindString, KindList:
		_, match = lit.(string)
	case KindBool:
		_, match = lit.(bool)
	case KindNumber:
		switch lit.(type) {
		case int64, float64:
			match = true
		}
	case KindAny:
		match = true
	}
	if !match {
		return nil, fmt.Errorf("option '%s' must be a %s, got %T", f.Name, f.Kind, lit)
	}
	return v, nil
}
