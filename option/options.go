// Package option normalizes the options passed to actions before they become
// a step's `with` mapping: unset values are dropped, sequences are joined,
// enumerated choices and numeric bounds are checked.
package option

import (
	"strings"

	"github.com/loomworks/loom/expr"
)

// Entry is a single key/value pair of an Options mapping.
type Entry struct {
	Key   string
	Value expr.Value
}

// Options is an ordered option mapping. Keys keep the position of their first
// Set. The zero Options is empty and ready to use.
type Options struct {
	entries []Entry
}

// New returns Options holding entries, skipping unset values.
func New(entries ...Entry) *Options {
	o := &Options{}
	for _, e := range entries {
		o.Set(e.Key, e.Value)
	}
	return o
}

// Set sets key to v. Unset values are ignored, so callers can pass optional
// fields straight through.
func (o *Options) Set(key string, v expr.Value) {
	if v == nil || v.IsZero() {
		return
	}
	for i := range o.entries {
		if o.entries[i].Key == key {
			o.entries[i].Value = v
			return
		}
	}
	o.entries = append(o.entries, Entry{Key: key, Value: v})
}

// Get returns the value for key.
func (o *Options) Get(key string) (expr.Value, bool) {
	if o == nil {
		return nil, false
	}
	for _, e := range o.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of set options.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Entries returns the options in order. It returns nil when there are none,
// so an empty mapping is omitted rather than rendered as {}.
func (o *Options) Entries() []Entry {
	if o.Len() == 0 {
		return nil
	}
	return append([]Entry(nil), o.entries...)
}

// Merge sets every option of other on o, in other's order.
func (o *Options) Merge(other *Options) {
	for _, e := range other.Entries() {
		o.Set(e.Key, e.Value)
	}
}

// LiteralString returns the text of v when v is a literal string that
// contains no ${{ }} interpolation. It is used to derive display names.
func LiteralString(v expr.Value) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.Scalar().(string)
	if !ok || !v.IsLiteral() || strings.Contains(s, "${{") {
		return "", false
	}
	return s, true
}

// JoinComma joins values with commas. It returns an unset String when there
// are no values.
func JoinComma(values ...expr.String) expr.String {
	return join(",", values)
}

// JoinLines joins values with newlines, as used for multi-value inputs such
// as version lists. It returns an unset String when there are no values.
func JoinLines(values ...expr.String) expr.String {
	return join("\n", values)
}

func join(sep string, values []expr.String) expr.String {
	parts := make([]expr.Value, 0, 2*len(values))
	for _, v := range values {
		if v.IsZero() {
			continue
		}
		if len(parts) > 0 {
			parts = append(parts, expr.Str(sep))
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return expr.String{}
	}
	return expr.Concat(parts...)
}
