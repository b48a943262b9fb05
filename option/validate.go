package option

import (
	"fmt"
	"strings"

	"github.com/loomworks/loom/expr"
)

// InvalidChoiceError is returned when a literal option value is not one of
// the values the option allows.
type InvalidChoiceError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidChoiceError) Error() string {
	quoted := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		quoted[i] = "'" + a + "'"
	}

	var choices string
	switch len(quoted) {
	case 0:
		choices = "unset"
	case 1, 2:
		choices = strings.Join(quoted, " or ")
	default:
		choices = strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
	}
	return fmt.Sprintf("'%s' must be %s", e.Field, choices)
}

// ValidateChoice checks a literal v against allowed, ignoring case, and
// returns the matching allowed value. Expressions can't be checked until the
// workflow runs and are returned unchanged, as are unset values.
func ValidateChoice(field string, v expr.Value, allowed ...string) (expr.String, error) {
	s, ok := expr.Untyped(v).Literal()
	if !ok {
		return expr.Untyped(v).AsStr(), nil
	}
	str, ok := s.(string)
	if !ok {
		str = fmt.Sprint(s)
	}
	for _, a := range allowed {
		if strings.EqualFold(str, a) {
			return expr.Str(a), nil
		}
	}
	return expr.Untyped(v).AsStr(), &InvalidChoiceError{Field: field, Value: str, Allowed: allowed}
}

// Range bounds an integer option. A zero Range has no bounds.
type Range struct {
	Min, Max       int64
	HasMin, HasMax bool
}

// Between is the inclusive range [lo, hi].
func Between(lo, hi int64) Range {
	return Range{Min: lo, Max: hi, HasMin: true, HasMax: true}
}

// AtLeast has a lower bound only.
func AtLeast(lo int64) Range {
	return Range{Min: lo, HasMin: true}
}

// Contains reports whether n is within r.
func (r Range) Contains(n int64) bool {
	return (!r.HasMin || n >= r.Min) && (!r.HasMax || n <= r.Max)
}

func (r Range) String() string {
	switch {
	case r.HasMin && r.HasMax:
		return fmt.Sprintf("in the range %d-%d", r.Min, r.Max)
	case r.HasMin:
		return fmt.Sprintf(">= %d", r.Min)
	case r.HasMax:
		return fmt.Sprintf("<= %d", r.Max)
	}
	return "any integer"
}

// RangeError is returned when a literal integer option is out of bounds.
type RangeError struct {
	Field string
	Value int64
	Range Range
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("'%s' must be %s, got %d", e.Field, e.Range, e.Value)
}

// ValidateRange checks a literal integer v against r. Expressions and
// non-integer literals pass through unchecked.
func ValidateRange(field string, v expr.Value, r Range) (expr.Number, error) {
	num := expr.Untyped(v).AsNum()
	lit, ok := num.Literal()
	if !ok {
		return num, nil
	}
	n, ok := lit.(int64)
	if !ok || r.Contains(n) {
		return num, nil
	}
	return num, &RangeError{Field: field, Value: n, Range: r}
}
