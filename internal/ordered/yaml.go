package ordered

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrAliasCycle is returned when an alias refers to a node that contains it.
var ErrAliasCycle = errors.New("alias refers to itself")

// Unmarshal parses a single YAML document. Mappings become *MapSA in source
// order, sequences become []any and scalars take the type yaml.v3 resolves
// them to. Merge keys (<<) are applied: keys written in the mapping win over
// merged keys, and earlier merges win over later ones.
func Unmarshal(b []byte) (any, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(b, &n); err != nil {
		return nil, err
	}
	return DecodeYAML(&n)
}

// DecodeYAML converts a parsed node the same way Unmarshal does.
func DecodeYAML(n *yaml.Node) (any, error) {
	d := decoder{active: make(map[*yaml.Node]bool)}
	return d.value(n)
}

type decoder struct {
	// Nodes on the path from the root to the node being decoded. An anchor
	// may be aliased from several places, just not from inside itself.
	active map[*yaml.Node]bool
}

func (d *decoder) enter(n *yaml.Node) error {
	if d.active[n] {
		return fmt.Errorf("line %d, col %d: %w", n.Line, n.Column, ErrAliasCycle)
	}
	d.active[n] = true
	return nil
}

func (d *decoder) leave(n *yaml.Node) { delete(d.active, n) }

func (d *decoder) value(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	if err := d.enter(n); err != nil {
		return nil, err
	}
	defer d.leave(n)

	switch n.Kind {
	case 0:
		// Empty input.
		return nil, nil

	case yaml.DocumentNode:
		if len(n.Content) > 1 {
			return nil, fmt.Errorf("line %d, col %d: expected one document node, got %d", n.Line, n.Column, len(n.Content))
		}
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.value(n.Content[0])

	case yaml.AliasNode:
		return d.value(n.Alias)

	case yaml.ScalarNode:
		return scalar(n)

	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.value(c)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil

	case yaml.MappingNode:
		return d.mapping(n)
	}
	return nil, fmt.Errorf("line %d, col %d: unsupported node kind %d", n.Line, n.Column, n.Kind)
}

func scalar(n *yaml.Node) (any, error) {
	// yaml.v3 only resolves true and false, even with an explicit tag.
	if n.ShortTag() == "!!bool" {
		switch strings.ToLower(n.Value) {
		case "y", "yes", "on", "true":
			return true, nil
		case "n", "no", "off", "false":
			return false, nil
		}
	}

	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, fmt.Errorf("line %d, col %d: %q has no JSON representation", n.Line, n.Column, n.Value)
	}
	return v, nil
}

func (d *decoder) mapping(n *yaml.Node) (*MapSA, error) {
	if len(n.Content)%2 != 0 {
		return nil, fmt.Errorf("line %d, col %d: mapping has an odd number of nodes", n.Line, n.Column)
	}

	explicit := make(map[string]bool, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		if isMerge(n.Content[i]) {
			continue
		}
		k, err := d.key(n.Content[i])
		if err != nil {
			return nil, err
		}
		explicit[k] = true
	}

	m := NewMap[string, any](len(n.Content) / 2)
	for i := 0; i < len(n.Content); i += 2 {
		kn, vn := n.Content[i], n.Content[i+1]
		if isMerge(kn) {
			if err := d.merge(m, explicit, vn); err != nil {
				return nil, err
			}
			continue
		}
		k, err := d.key(kn)
		if err != nil {
			return nil, err
		}
		v, err := d.value(vn)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

// merge copies keys from the value of a << key into m. The value is a
// mapping or a sequence of mappings, either of which may be aliases.
func (d *decoder) merge(m *MapSA, explicit map[string]bool, n *yaml.Node) error {
	target := n
	for target.Kind == yaml.AliasNode {
		target = target.Alias
	}

	switch target.Kind {
	case yaml.MappingNode:
		src, err := d.value(n)
		if err != nil {
			return err
		}
		return src.(*MapSA).Range(func(k string, v any) error {
			if !explicit[k] && !m.Has(k) {
				m.Set(k, v)
			}
			return nil
		})

	case yaml.SequenceNode:
		for _, c := range target.Content {
			if err := d.merge(m, explicit, c); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("line %d, col %d: merge value must be a mapping or a list of mappings", n.Line, n.Column)
}

func (d *decoder) key(n *yaml.Node) (string, error) {
	for n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d, col %d: mapping keys must be scalars", n.Line, n.Column)
	}
	if n.ShortTag() == "!!null" {
		return "", fmt.Errorf("line %d, col %d: mapping keys must not be null", n.Line, n.Column)
	}
	return n.Value, nil
}

func isMerge(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!merge"
}
