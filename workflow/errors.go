package workflow

import (
	"errors"
	"fmt"
)

// Job structure errors, returned by NewJob wrapped in a *ConfigurationError.
var (
	ErrUsesAndRunsOn  = errors.New("job cannot set both 'uses' and 'runs-on'")
	ErrNoUsesOrRunsOn = errors.New("job must set either 'uses' or 'runs-on'")
	ErrUsesWithSteps  = errors.New("job using 'uses' cannot define 'steps'")
	ErrNoSteps        = errors.New("job with 'runs-on' must define at least one step")
)

// ConfigurationError is returned when a workflow, job, or step is constructed
// with an invalid combination of fields, or with an expression that a field
// does not allow. Field names the offending key.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErr(field string, err error) error {
	return &ConfigurationError{Field: field, Err: err}
}

func configErrf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Err: fmt.Errorf(format, args...)}
}
