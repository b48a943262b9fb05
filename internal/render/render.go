// Package render encodes documents built from ordered maps as YAML.
//
// Strings containing a newline are written as literal block scalars so that
// scripts keep their line breaks. Every other string is written plain when
// YAML allows it and quoted otherwise; a backslash followed by n is never
// treated as a line break.
package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ordered"
)

// Indent is the number of spaces used per nesting level.
const Indent = 2

// YAML encodes v as a YAML document.
func YAML(v any) ([]byte, error) {
	n, err := Node(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Node converts v into a *yaml.Node. Supported values are *ordered.MapSA,
// []any, []string, expr.Value, string, bool, integers, float64 and nil.
func Node(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil

	case *yaml.Node:
		return v, nil

	case *ordered.MapSA:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if v == nil {
			return n, nil
		}
		err := v.Range(func(k string, val any) error {
			vn, err := Node(val)
			if err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			n.Content = append(n.Content, String(k), vn)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return n, nil

	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range v {
			in, err := Node(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			n.Content = append(n.Content, in)
		}
		return n, nil

	case []string:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, s := range v {
			n.Content = append(n.Content, String(s))
		}
		return n, nil

	case expr.Value:
		if v.IsZero() {
			return Node(nil)
		}
		return Node(v.Scalar())

	case string:
		return String(v), nil

	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil

	case int:
		return intNode(int64(v)), nil

	case int64:
		return intNode(v), nil

	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
	}
	return nil, fmt.Errorf("cannot render value of type %T", v)
}

// String returns a string scalar node. Multi-line strings use the literal
// block style. Other strings are left for the encoder to quote if they
// would otherwise read back as another type.
func String(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func intNode(i int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
}
