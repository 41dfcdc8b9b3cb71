package smt

import (
	"fmt"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
)

const (
	// DummyKey is the key of the empty leaf inserted into every tree.
	DummyKey uint64 = 1
	// FirstFieldKey is the key assigned to the first real field.
	FirstFieldKey uint64 = 2
)

// FieldIndex binds a flattened field path to its tree key.
type FieldIndex struct {
	FieldName  string `json:"fieldName"`
	FieldIndex uint64 `json:"fieldIndex"`
}

// KeyMap assigns tree keys to field paths. The same object always yields
// the same KeyMap.
type KeyMap struct {
	entries []FieldIndex
	index   map[string]uint64
}

// BuildKeyMap numbers the paths of a sorted field list from FirstFieldKey
// in first-seen order.
func BuildKeyMap(fields []jsonvalue.Field) *KeyMap {
	m := &KeyMap{index: make(map[string]uint64, len(fields))}
	for _, f := range fields {
		if _, ok := m.index[f.Path]; ok {
			continue
		}
		key := FirstFieldKey + uint64(len(m.entries))
		m.index[f.Path] = key
		m.entries = append(m.entries, FieldIndex{FieldName: f.Path, FieldIndex: key})
	}
	return m
}

// NewKeyMap rebuilds a KeyMap from recorded field indexes, as carried by a
// credential. Names and keys must be unique and keys must not collide with
// DummyKey.
func NewKeyMap(entries []FieldIndex) (*KeyMap, error) {
	m := &KeyMap{index: make(map[string]uint64, len(entries))}
	used := make(map[uint64]struct{}, len(entries))

	for _, e := range entries {
		if e.FieldIndex < FirstFieldKey {
			return nil, fmt.Errorf("field %q has reserved index %d", e.FieldName, e.FieldIndex)
		}
		if _, ok := m.index[e.FieldName]; ok {
			return nil, fmt.Errorf("duplicate field %q", e.FieldName)
		}
		if _, ok := used[e.FieldIndex]; ok {
			return nil, fmt.Errorf("duplicate field index %d", e.FieldIndex)
		}
		used[e.FieldIndex] = struct{}{}
		m.index[e.FieldName] = e.FieldIndex
		m.entries = append(m.entries, e)
	}

	return m, nil
}

// Index returns the key of path.
func (m *KeyMap) Index(path string) (uint64, bool) {
	k, ok := m.index[path]
	return k, ok
}

// Entries returns a copy of the mapping in key order.
func (m *KeyMap) Entries() []FieldIndex {
	out := make([]FieldIndex, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len is the number of real fields.
func (m *KeyMap) Len() int {
	return len(m.entries)
}

// Equal reports whether both maps bind the same paths to the same keys.
func (m *KeyMap) Equal(other *KeyMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for path, k := range m.index {
		if ok, found := other.index[path]; !found || ok != k {
			return false
		}
	}
	return true
}
