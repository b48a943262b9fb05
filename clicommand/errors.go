package clicommand

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoDefinition is returned by run when no definition program can be found.
var ErrNoDefinition = errors.New("no workflow definition program found")

// ExitError makes the process exit with a particular status. A silent
// ExitError carries no message and is not printed, which is how a child
// process's exit status is passed through after it has reported its own
// failure.
type ExitError struct {
	code int
	err  error
}

// NewExitError wraps err so that it exits with code.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{code: code, err: err}
}

// NewSilentExitError exits with code without printing anything.
func NewSilentExitError(code int) *ExitError {
	return &ExitError{code: code}
}

func (e *ExitError) Code() int     { return e.code }
func (e *ExitError) Silent() bool  { return e.err == nil }
func (e *ExitError) Unwrap() error { return e.err }

func (e *ExitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

// Is matches another ExitError with the same code.
func (e *ExitError) Is(target error) bool {
	t, ok := target.(*ExitError)
	return ok && t.code == e.code
}

// PrintMessageAndReturnExitCode reports err on w as "loom: fatal: ..." and
// returns the status the process should exit with: 0 for nil, the code of
// an ExitError, and 1 otherwise.
func PrintMessageAndReturnExitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var exit *ExitError
	if !errors.As(err, &exit) {
		fmt.Fprintf(w, "loom: fatal: %s\n", err)
		return 1
	}
	if !exit.Silent() {
		fmt.Fprintf(w, "loom: fatal: %s\n", err)
	}
	return exit.Code()
}
