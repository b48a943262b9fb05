package option

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/expr"
)

func TestValidateChoice(t *testing.T) {
	t.Parallel()

	got, err := ValidateChoice("field", expr.Str("VALUE"), "value", "other")
	require.NoError(t, err)
	assert.Equal(t, "value", got.String())

	_, err = ValidateChoice("field", expr.Str("bogus"), "value", "other")
	var ice *InvalidChoiceError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "'field' must be 'value' or 'other'", err.Error())

	_, err = ValidateChoice("if-no-files-found", expr.Str("nope"), "warn", "error", "ignore")
	assert.EqualError(t, err, "'if-no-files-found' must be 'warn', 'error', or 'ignore'")
}

// Expressions are only known when the workflow runs, so they skip the check
// on purpose.
func TestValidateChoiceExpressionPassesThrough(t *testing.T) {
	t.Parallel()

	in := expr.Input("mode").AsStr()
	got, err := ValidateChoice("mode", in, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "${{ inputs.mode }}", got.String())

	got, err = ValidateChoice("mode", expr.String{}, "a", "b")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestValidateRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   expr.Value
		r       Range
		wantErr string
	}{
		{name: "inside", value: expr.Int(5), r: Between(0, 9)},
		{name: "upper bound", value: expr.Int(9), r: Between(0, 9)},
		{name: "above", value: expr.Int(10), r: Between(0, 9), wantErr: "'level' must be in the range 0-9, got 10"},
		{name: "below minimum", value: expr.Int(0), r: AtLeast(1), wantErr: "'level' must be >= 1, got 0"},
		{name: "expression", value: expr.Input("level"), r: Between(0, 9)},
		{name: "float literal", value: expr.Float(99.5), r: Between(0, 9)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateRange("level", test.value, test.r)
			if test.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var re *RangeError
			require.ErrorAs(t, err, &re)
			assert.EqualError(t, err, test.wantErr)
		})
	}
}

func TestOptionsDropUnset(t *testing.T) {
	t.Parallel()

	var opts Options
	opts.Set("path", expr.Str("dist/"))
	opts.Set("name", expr.String{})
	opts.Set("overwrite", nil)
	opts.Set("retention-days", expr.Int(3))
	opts.Set("path", expr.Str("build/"))

	want := []Entry{
		{Key: "path", Value: expr.Str("build/")},
		{Key: "retention-days", Value: expr.Int(3)},
	}
	if diff := cmp.Diff(scalars(opts.Entries()), scalars(want)); diff != "" {
		t.Errorf("opts.Entries() diff (-got +want):\n%s", diff)
	}

	var empty Options
	empty.Set("name", expr.String{})
	if got := empty.Entries(); got != nil {
		t.Errorf("empty.Entries() = %v, want nil", got)
	}
}

func TestLiteralString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value  expr.Value
		want   string
		wantOK bool
	}{
		{value: expr.Str("actions/checkout"), want: "actions/checkout", wantOK: true},
		{value: expr.Str("${{ github.repository }}")},
		{value: expr.GithubRepository},
		{value: expr.Sprintf("%s/x", expr.GithubRepository)},
		{value: expr.Int(1)},
		{value: nil},
	}

	for _, test := range tests {
		got, ok := LiteralString(test.value)
		if got != test.want || ok != test.wantOK {
			t.Errorf("LiteralString(%v) = (%q, %t), want (%q, %t)", test.value, got, ok, test.want, test.wantOK)
		}
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1,2,3", JoinComma(expr.Strs("1", "2", "3")...).String())
	assert.Equal(t, "3.12\n3.13", JoinLines(expr.Strs("3.12", "3.13")...).String())
	assert.True(t, JoinComma().IsZero())

	mixed := JoinComma(expr.Str("a"), expr.Input("ids").AsStr())
	assert.Equal(t, "a,${{ inputs.ids }}", mixed.String())
}

func TestSchemaBuild(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "path", Kind: KindList, Join: "\n"},
		{Name: "if-no-files-found", Kind: KindString, Choices: []string{"warn", "error", "ignore"}},
		{Name: "retention_days", Key: "retention-days", Kind: KindNumber, Range: &Range{Min: 1, HasMin: true}},
		{Name: "overwrite", Kind: KindBool},
	}

	opts, err := schema.Build(map[string]any{
		"overwrite":         true,
		"retention_days":    7,
		"path":              []string{"dist/", "build/"},
		"if-no-files-found": "ERROR",
	})
	require.NoError(t, err)

	want := []Entry{
		{Key: "path", Value: expr.Str("dist/\nbuild/")},
		{Key: "if-no-files-found", Value: expr.Str("error")},
		{Key: "retention-days", Value: expr.Int(7)},
		{Key: "overwrite", Value: expr.True},
	}
	if diff := cmp.Diff(scalars(opts.Entries()), scalars(want)); diff != "" {
		t.Errorf("schema.Build(...) diff (-got +want):\n%s", diff)
	}
}

func TestSchemaBuildErrors(t *testing.T) {
	t.Parallel()

	schema := Schema{
		{Name: "level", Kind: KindNumber, Range: &Range{Min: 0, Max: 9, HasMin: true, HasMax: true}},
		{Name: "mode", Kind: KindString, Choices: []string{"a", "b"}},
		{Name: "key", Kind: KindString, Required: true},
	}

	tests := []struct {
		name   string
		values map[string]any
		check  func(*testing.T, error)
	}{
		{
			name:   "unknown option",
			values: map[string]any{"colour": "red"},
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, `unknown option "colour"`)
			},
		},
		{
			name:   "wrong type",
			values: map[string]any{"level": "high"},
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "option 'level' must be a number, got string")
			},
		},
		{
			name:   "out of range",
			values: map[string]any{"level": 12},
			check: func(t *testing.T, err error) {
				var re *RangeError
				assert.True(t, errors.As(err, &re))
			},
		},
		{
			name:   "bad choice",
			values: map[string]any{"mode": "c"},
			check: func(t *testing.T, err error) {
				var ice *InvalidChoiceError
				assert.True(t, errors.As(err, &ice))
			},
		},
		{
			name:   "missing required",
			values: map[string]any{"mode": "a"},
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "option 'key' is required")
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := schema.Build(test.values)
			require.Error(t, err)
			test.check(t, err)
		})
	}
}

func scalars(entries []Entry) map[string]any {
	out := make(map[string]any, len(entries))
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value.Scalar()
		keys = append(keys, e.Key)
	}
	out["_order"] = keys
	return out
}
