// Package ptr has helpers for optional fields declared as pointers.
package ptr

// To returns a pointer to a copy of v, for use in composite literals.
func To[T any](v T) *T { return &v }
