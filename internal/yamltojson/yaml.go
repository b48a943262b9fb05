// Package yamltojson converts workflow YAML into JSON so it can be checked
// against a JSON schema or printed by `loom parse`.
package yamltojson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/loomworks/loom/internal/ordered"
)

// Convert returns the compact JSON equivalent of the YAML document src.
// Mapping keys keep their source order and merge keys are resolved. HTML
// characters are left unescaped.
func Convert(src []byte) ([]byte, error) {
	doc, err := ordered.Unmarshal(src)
	if err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
