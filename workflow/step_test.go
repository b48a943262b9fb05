package workflow

import (
	"errors"
	"testing"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStepRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  StepOptions
		lines []expr.String
		want  string
	}{
		{
			name:  "inline backslash-n",
			lines: []expr.String{expr.Sprintf(`printf "%%s\n" %s >> file.txt`, expr.Secret("X"))},
			want:  `run: printf "%s\n" ${{ secrets.X }} >> file.txt` + "\n",
		},
		{
			name:  "three lines",
			lines: expr.Strs("echo one", "echo two", "echo three"),
			want:  "run: |-\n  echo one\n  echo two\n  echo three\n",
		},
		{
			name:  "trailing whitespace",
			lines: expr.Strs("echo a ", "echo b\t", "echo c  "),
			want:  "run: |-\n  echo a\n  echo b\n  echo c\n",
		},
		{
			name:  "CRLF line endings",
			lines: expr.Strs("echo a\r\necho b \r\necho c"),
			want:  "run: |-\n  echo a\n  echo b\n  echo c\n",
		},
		{
			name:  "trailing space after an expression",
			lines: []expr.String{expr.Sprintf("echo %s ", expr.Secret("X")), expr.Str("done")},
			want:  "run: |-\n  echo ${{ secrets.X }}\n  done\n",
		},
		{
			name: "all options",
			opts: StepOptions{
				Name:             expr.Str("Test"),
				If:               expr.Success(),
				ID:               "test",
				Env:              map[string]expr.String{"TOKEN": expr.Secret("TOKEN")},
				ContinueOnError:  expr.True,
				TimeoutMinutes:   expr.Int(10),
				WorkingDirectory: expr.Str("src"),
				Shell:            "bash",
			},
			lines: expr.Strs("go test ./..."),
			want: `name: Test
if: ${{ success() }}
run: go test ./...
working-directory: src
shell: bash
id: test
env:
  TOKEN: ${{ secrets.TOKEN }}
continue-on-error: true
timeout-minutes: 10
`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			s, err := Run(test.opts, test.lines...)
			require.NoError(t, err)
			assert.Equal(t, test.want, renderNode(t, s.node()))
		})
	}
}

func TestActionStepRender(t *testing.T) {
	t.Parallel()

	s, err := Action("docker://alpine", ActionOptions{
		StepOptions: StepOptions{Name: expr.Str("Alpine")},
		Ref:         "3.20",
		With: option.New(
			option.Entry{Key: "path", Value: expr.Str("out")},
			option.Entry{Key: "skipped", Value: expr.String{}},
		),
		Args:       expr.Str("echo hi"),
		Entrypoint: expr.Str("/bin/sh"),
	})
	require.NoError(t, err)

	want := `name: Alpine
uses: docker://alpine@3.20
with:
  path: out
  args: echo hi
  entrypoint: /bin/sh
`
	assert.Equal(t, want, renderNode(t, s.node()))
	assert.Equal(t, "docker://alpine@3.20", s.Uses())
	assert.Len(t, s.With(), 3)
}

func TestStepErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		build   func() (*Step, error)
		wantCtx bool
	}{
		{
			name:  "empty script",
			build: func() (*Step, error) { return Run(StepOptions{}) },
		},
		{
			name:  "blank script",
			build: func() (*Step, error) { return Run(StepOptions{}, expr.Str("  ")) },
		},
		{
			name:    "jobs context in run",
			build:   func() (*Step, error) { return Run(StepOptions{}, expr.Sprintf("echo %s", expr.JobsOutput("a", "b"))) },
			wantCtx: true,
		},
		{
			name:  "action without uses",
			build: func() (*Step, error) { return Action("", ActionOptions{}) },
		},
		{
			name: "action with shell",
			build: func() (*Step, error) {
				return Action("actions/checkout", ActionOptions{StepOptions: StepOptions{Shell: "bash"}})
			},
		},
		{
			name: "action with working directory",
			build: func() (*Step, error) {
				return Action("actions/checkout", ActionOptions{StepOptions: StepOptions{WorkingDirectory: expr.Str("src")}})
			},
		},
		{
			name: "jobs context in with",
			build: func() (*Step, error) {
				return Action("actions/checkout", ActionOptions{With: option.New(option.Entry{Key: "ref", Value: expr.JobsOutput("a", "b")})})
			},
			wantCtx: true,
		},
		{
			name: "bad recommended permissions",
			build: func() (*Step, error) {
				return Action("actions/checkout", ActionOptions{RecommendedPermissions: &Permissions{Models: Write}})
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := test.build()
			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)

			var ctxErr *expr.ContextError
			assert.Equal(t, test.wantCtx, errors.As(err, &ctxErr))
		})
	}
}

func TestStepOutput(t *testing.T) {
	t.Parallel()

	s := mustRun(t, StepOptions{ID: "version"}, expr.Str("echo v=1 >> $GITHUB_OUTPUT"))
	assert.Equal(t, "${{ steps.version.outputs.v }}", s.Output("v").String())

	anon := mustRun(t, StepOptions{}, expr.Str("true"))
	assert.Panics(t, func() { anon.Output("v") })
}

func TestSkipRecommendedPermissions(t *testing.T) {
	t.Parallel()

	s := mustAction(t, "actions/checkout", ActionOptions{
		StepOptions:            StepOptions{SkipRecommendedPermissions: true},
		RecommendedPermissions: &Permissions{Contents: Read},
	})
	assert.Nil(t, s.RecommendedPermissions())
}
