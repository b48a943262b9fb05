// Package ordered implements an insertion-ordered map used to build rendered
// documents whose key order is part of the output.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Tuple is a key/value pair stored in a Map.
type Tuple[K comparable, V any] struct {
	Key   K
	Value V
}

// TupleSA is a Tuple with string keys and any values.
type TupleSA = Tuple[string, any]

// Map is a map that remembers the order keys were first set in.
type Map[K comparable, V any] struct {
	items []Tuple[K, V]
	pos   map[K]int
}

// MapSA is a Map with string keys and any values. Rendered documents are
// built from these.
type MapSA = Map[string, any]

// NewMap returns an empty map with room for size items.
func NewMap[K comparable, V any](size int) *Map[K, V] {
	return &Map[K, V]{
		items: make([]Tuple[K, V], 0, size),
		pos:   make(map[K]int, size),
	}
}

// MapFromItems returns a Map holding items in the order given. A repeated
// key keeps its first position and its last value.
func MapFromItems[K comparable, V any](items ...Tuple[K, V]) *Map[K, V] {
	m := NewMap[K, V](len(items))
	for _, it := range items {
		m.Set(it.Key, it.Value)
	}
	return m
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// IsZero reports if m is nil or empty.
func (m *Map[K, V]) IsZero() bool { return m.Len() == 0 }

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	i, ok := m.pos[k]
	if !ok {
		var zero V
		return zero, false
	}
	return m.items[i].Value, true
}

// Has reports whether k has been set.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Set stores v under k. A key that is already present keeps its position.
func (m *Map[K, V]) Set(k K, v V) {
	if m.pos == nil {
		m.pos = make(map[K]int)
	}
	if i, ok := m.pos[k]; ok {
		m.items[i].Value = v
		return
	}
	m.pos[k] = len(m.items)
	m.items = append(m.items, Tuple[K, V]{Key: k, Value: v})
}

// Keys returns the keys in order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	for _, it := range m.all() {
		keys = append(keys, it.Key)
	}
	return keys
}

// Range calls f for each key in order, stopping at the first error.
func (m *Map[K, V]) Range(f func(k K, v V) error) error {
	for _, it := range m.all() {
		if err := f(it.Key, it.Value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map[K, V]) all() []Tuple[K, V] {
	if m == nil {
		return nil
	}
	return m.items
}

// MarshalJSON encodes m as a JSON object with keys in order. Keys that are
// not strings are formatted with fmt.Sprint.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, it := range m.all() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(fmt.Sprint(it.Key)); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(it.Value); err != nil {
			return nil, fmt.Errorf("key %v: %w", it.Key, err)
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// json.Encoder terminates every value with a newline.
func trimNewline(buf *bytes.Buffer) {
	if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
}

// Equal reports if two maps hold the same items in the same order. Values
// are compared with go-cmp, and nested *MapSA values with Equal.
func Equal[K comparable, V any](a, b *Map[K, V]) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.items {
		x, y := a.items[i], b.items[i]
		if x.Key != y.Key {
			return false
		}
		if !cmp.Equal(x.Value, y.Value, cmp.Comparer(Equal[string, any])) {
			return false
		}
	}
	return true
}

// EqualSA is Equal for MapSA.
var EqualSA = Equal[string, any]
