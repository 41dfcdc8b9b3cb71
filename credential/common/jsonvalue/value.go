// Package jsonvalue models JSON documents as a closed sum type so that
// flattening, canonicalization and field encoding can match on every case
// explicitly instead of inspecting interface{} values at runtime.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
)

// Value is one of Null, Bool, Number, String, Array or Object.
type Value interface {
	isValue()
}

type (
	// Null is the JSON null literal.
	Null struct{}
	// Bool is a JSON boolean.
	Bool bool
	// Number keeps the decimal text of a JSON number so large integers survive.
	Number json.Number
	// String is a JSON string.
	String string
	// Array is an ordered JSON array.
	Array []Value
	// Object is a JSON object. Key order is irrelevant, canonical output sorts keys.
	Object map[string]Value
)

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Number) isValue() {}
func (String) isValue() {}
func (Array) isValue()  {}
func (Object) isValue() {}

// Int builds a Number from an int64.
func Int(i int64) Number {
	return Number(big.NewInt(i).String())
}

// Parse decodes raw JSON into a Value, keeping numbers exact.
func Parse(raw []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to decode JSON: trailing data")
	}

	return FromAny(v)
}

// ParseObject decodes raw JSON that must be an object.
func ParseObject(raw []byte) (Object, error) {
	v, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %s", KindOf(v))
	}
	return obj, nil
}

// FromAny converts decoded Go values (as produced by encoding/json, or built
// by hand) into a Value.
func FromAny(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if _, ok := new(big.Rat).SetString(string(t)); !ok {
			return nil, fmt.Errorf("invalid number %q", t)
		}
		return Number(t), nil
	case float64:
		return Number(formatFloat(t)), nil
	case float32:
		return Number(formatFloat(float64(t))), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Number(new(big.Int).SetUint64(uint64(t)).String()), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return Number(new(big.Int).SetUint64(t).String()), nil
	case []interface{}:
		arr := make(Array, len(t))
		for i, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]interface{}:
		obj := make(Object, len(t))
		for k, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			obj[k] = converted
		}
		return obj, nil
	case []string:
		arr := make(Array, len(t))
		for i, s := range t {
			arr[i] = String(s)
		}
		return arr, nil
	default:
		// Structs and typed maps go through a JSON round trip.
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("unsupported type %T: %w", v, err)
		}
		return Parse(raw)
	}
}

// ToAny converts a Value back to plain Go values (numbers as json.Number).
func ToAny(v Value) interface{} {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		return json.Number(t)
	case String:
		return string(t)
	case Array:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = ToAny(item)
		}
		return out
	case Object:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = ToAny(item)
		}
		return out
	default:
		panic(fmt.Sprintf("jsonvalue: unknown value type %T", v))
	}
}

// KindOf names the JSON type of v.
func KindOf(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Equal reports whether a and b have the same canonical JSON form.
func Equal(a, b Value) bool {
	return bytes.Equal(Canonical(a), Canonical(b))
}

// MarshalJSON emits the canonical form.
func (o Object) MarshalJSON() ([]byte, error) {
	return Canonical(o), nil
}

// UnmarshalJSON decodes a JSON object, keeping numbers exact.
func (o *Object) UnmarshalJSON(raw []byte) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		*o = nil
		return nil
	}
	obj, err := ParseObject(raw)
	if err != nil {
		return err
	}
	*o = obj
	return nil
}

// MarshalJSON emits the canonical form.
func (a Array) MarshalJSON() ([]byte, error) {
	return Canonical(a), nil
}

// UnmarshalJSON decodes a JSON array, keeping numbers exact.
func (a *Array) UnmarshalJSON(raw []byte) error {
	v, err := Parse(raw)
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case Null:
		*a = nil
	case Array:
		*a = t
	default:
		return fmt.Errorf("expected JSON array, got %s", KindOf(v))
	}
	return nil
}

// MarshalJSON emits the canonical number text.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(canonicalNumber(n)), nil
}
