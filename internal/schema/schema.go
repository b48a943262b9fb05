// Package schema validates rendered workflow documents against an embedded
// JSON schema of the GitHub Actions workflow syntax.
package schema

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/loomworks/loom/internal/yamltojson"
	"github.com/qri-io/jsonschema"
)

//go:embed workflow.schema.json
var workflowSchema []byte

// jsonschema resolves $refs into the schema the first time they are used,
// so validations against the shared schema are serialized.
var validateMu sync.Mutex

var loadSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{}
	if err := json.Unmarshal(workflowSchema, s); err != nil {
		return nil, fmt.Errorf("loading workflow schema: %w", err)
	}
	return s, nil
})

// ValidationError lists the ways a document fails the workflow schema.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "workflow failed schema validation: " + strings.Join(e.Errors, "; ")
}

// Validate checks a YAML workflow document. It returns a *ValidationError
// when the document parses but does not match the schema.
func Validate(ctx context.Context, doc []byte) error {
	js, err := yamltojson.Convert(doc)
	if err != nil {
		return err
	}
	return ValidateJSON(ctx, js)
}

// ValidateJSON checks a workflow document that has already been converted
// to JSON.
func ValidateJSON(ctx context.Context, js []byte) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}
	validateMu.Lock()
	keyErrs, err := s.ValidateBytes(ctx, js)
	validateMu.Unlock()
	if err != nil {
		return fmt.Errorf("validating workflow: %w", err)
	}
	if len(keyErrs) == 0 {
		return nil
	}
	verr := &ValidationError{}
	for _, ke := range keyErrs {
		verr.Errors = append(verr.Errors, ke.Error())
	}
	return verr
}
