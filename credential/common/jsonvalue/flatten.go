package jsonvalue

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrDuplicatePath is returned when two leaves of an object flatten to the
// same dotted path, as in {"a":{"b":1},"a.b":2}.
var ErrDuplicatePath = errors.New("duplicate field path")

// Field is one leaf of a flattened object.
type Field struct {
	Path  string
	Value Value
}

// Flatten walks nested objects and returns their leaves keyed by dotted path,
// sorted by path and then by canonical value, so colliding paths still come
// out in a fixed order. Arrays and scalars are leaves; an empty nested object
// contributes nothing. Anything other than an object flattens to nothing.
func Flatten(v Value) []Field {
	obj, ok := v.(Object)
	if !ok {
		return nil
	}

	var fields []Field
	flattenInto(&fields, obj, "")
	slices.SortFunc(fields, func(a, b Field) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), bytes.Compare(Canonical(a.Value), Canonical(b.Value)))
	})
	return fields
}

// CheckUniquePaths fails with ErrDuplicatePath if two fields of a sorted
// field list share a path.
func CheckUniquePaths(fields []Field) error {
	for i := 1; i < len(fields); i++ {
		if fields[i].Path == fields[i-1].Path {
			return fmt.Errorf("%w %q", ErrDuplicatePath, fields[i].Path)
		}
	}
	return nil
}

// FlattenUnique is Flatten that rejects objects with colliding paths.
func FlattenUnique(v Value) ([]Field, error) {
	fields := Flatten(v)
	if err := CheckUniquePaths(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func flattenInto(out *[]Field, obj Object, prefix string) {
	for key, child := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch t := child.(type) {
		case Object:
			flattenInto(out, t, path)
		case Null, Bool, Number, String, Array:
			*out = append(*out, Field{Path: path, Value: t})
		case nil:
			*out = append(*out, Field{Path: path, Value: Null{}})
		}
	}
}

// FieldMap indexes flattened fields by path.
func FieldMap(fields []Field) map[string]Value {
	m := make(map[string]Value, len(fields))
	for _, f := range fields {
		m[f.Path] = f.Value
	}
	return m
}
