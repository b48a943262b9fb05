package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomworks/loom/logger"
)

func textLogger(t *testing.T) (*bytes.Buffer, logger.Logger, *int) {
	t.Helper()

	var out bytes.Buffer
	printer := logger.NewTextPrinter(&out)
	printer.Colors = false

	exitCode := -1
	return &out, logger.NewConsoleLogger(printer, func(c int) { exitCode = c }), &exitCode
}

func lines(b *bytes.Buffer) []string {
	s := strings.TrimRight(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestConsoleLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level logger.Level
		want  []string
	}{
		{level: logger.DEBUG, want: []string{"DEBUG  rendering", "INFO   wrote ci.yml", "NOTICE done", "WARN   slow"}},
		{level: logger.NOTICE, want: []string{"NOTICE done", "WARN   slow"}},
		{level: logger.ERROR, want: nil},
	}

	for _, test := range tests {
		t.Run(test.level.String(), func(t *testing.T) {
			t.Parallel()

			out, l, _ := textLogger(t)
			l.SetLevel(test.level)
			assert.Equal(t, test.level, l.Level())

			l.Debug("rendering")
			l.Info("wrote %s", "ci.yml")
			l.Notice("done")
			l.Warn("slow")

			got := lines(out)
			require.Len(t, got, len(test.want))
			for i, want := range test.want {
				assert.True(t, strings.HasSuffix(got[i], want), "line %d = %q, want suffix %q", i, got[i], want)
			}
		})
	}
}

func TestConsoleLoggerFatalExits(t *testing.T) {
	t.Parallel()

	out, l, exitCode := textLogger(t)
	l.Fatal("cannot continue: %v", "no jobs")

	assert.Equal(t, 1, *exitCode)
	assert.Contains(t, out.String(), "FATAL  cannot continue: no jobs")
}

func TestConsoleLoggerWithFields(t *testing.T) {
	t.Parallel()

	out, l, _ := textLogger(t)
	child := l.WithFields(logger.StringField("file", "ci.yml"), logger.IntField("jobs", 2))
	child.WithFields(logger.DurationField("took", 1500*time.Microsecond)).Notice("Wrote workflow")
	child.Notice("No duration")
	l.Notice("No fields")

	got := lines(out)
	require.Len(t, got, 3)
	assert.True(t, strings.HasSuffix(got[0], "Wrote workflow file=ci.yml jobs=2 took=2ms"), "got %q", got[0])
	assert.True(t, strings.HasSuffix(got[1], "No duration file=ci.yml jobs=2"), "got %q", got[1])
	assert.True(t, strings.HasSuffix(got[2], "No fields"), "got %q", got[2])
}

func TestJSONPrinter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := logger.NewJSONPrinter(&out)
	p.Print(logger.WARN, "bad \x1b input", logger.Fields{logger.BoolField("dry-run", true)})

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "WARN", got["level"])
	assert.Equal(t, "bad \x1b input", got["msg"])
	assert.Equal(t, "true", got["dry-run"])
	_, err := time.Parse(time.RFC3339, got["ts"])
	assert.NoError(t, err)
}

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    logger.Level
		wantErr bool
	}{
		{in: "debug", want: logger.DEBUG},
		{in: "NOTICE", want: logger.NOTICE},
		{in: "Warn", want: logger.WARN},
		{in: "verbose", wantErr: true},
	}

	for _, test := range tests {
		got, err := logger.LevelFromString(test.in)
		if test.wantErr {
			assert.Error(t, err, "LevelFromString(%q)", test.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.want, got)
	}
}
