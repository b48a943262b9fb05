package workflow

import (
	"maps"
	"slices"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ordered"
	"github.com/loomworks/loom/option"
)

// check validates each value against allowed, returning a
// *ConfigurationError for the first value that uses a forbidden context.
func check(allowed expr.Allowed, values ...expr.Value) error {
	for _, v := range values {
		if err := allowed.Check(v); err != nil {
			return configErr(allowed.Label, err)
		}
	}
	return nil
}

// checkMap validates the values of m in key order.
func checkMap[V expr.Value](allowed expr.Allowed, m map[string]V) error {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if err := check(allowed, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func checkSlice[V expr.Value](allowed expr.Allowed, vs []V) error {
	for _, v := range vs {
		if err := check(allowed, v); err != nil {
			return err
		}
	}
	return nil
}

func checkOptions(allowed expr.Allowed, opts *option.Options) error {
	for _, e := range opts.Entries() {
		if err := check(allowed, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// set adds v under key unless v is unset.
func set(m *ordered.MapSA, key string, v expr.Value) {
	if v == nil || v.IsZero() {
		return
	}
	m.Set(key, v.Scalar())
}

// setString adds s under key unless it is empty.
func setString(m *ordered.MapSA, key, s string) {
	if s != "" {
		m.Set(key, s)
	}
}

// setMap adds sub under key unless it is empty.
func setMap(m *ordered.MapSA, key string, sub *ordered.MapSA) {
	if sub.Len() > 0 {
		m.Set(key, sub)
	}
}

// valueMap renders m with sorted keys, or returns nil when m has no set
// values.
func valueMap[V expr.Value](m map[string]V) *ordered.MapSA {
	out := ordered.NewMap[string, any](len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		set(out, k, m[k])
	}
	if out.Len() == 0 {
		return nil
	}
	return out
}

func optionsMap(opts *option.Options) *ordered.MapSA {
	entries := opts.Entries()
	if len(entries) == 0 {
		return nil
	}
	out := ordered.NewMap[string, any](len(entries))
	for _, e := range entries {
		set(out, e.Key, e.Value)
	}
	return out
}

func valueList[V expr.Value](vs []V) []any {
	var out []any
	for _, v := range vs {
		x := expr.Value(v)
		if x != nil && !x.IsZero() {
			out = append(out, x.Scalar())
		}
	}
	return out
}

func stringList(ss []string) []any {
	if len(ss) == 0 {
		return nil
	}
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
