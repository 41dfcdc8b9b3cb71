package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse([]byte(`{"b": [1, "x", null], "a": {"c": true, "d": 12345678901234567890123}}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, Array{Number("1"), String("x"), Null{}}, obj["b"])
	assert.Equal(t, Number("12345678901234567890123"), obj["a"].(Object)["d"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "invalid JSON", input: `{invalid}`},
		{name: "trailing data", input: `{} {}`},
		{name: "empty", input: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}

	_, err := ParseObject([]byte(`[1,2]`))
	assert.ErrorContains(t, err, "expected JSON object, got array")
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{
			name:     "sorted keys",
			input:    Object{"b": Int(1), "a": Object{"z": Bool(false), "y": Null{}}},
			expected: `{"a":{"y":null,"z":false},"b":1}`,
		},
		{
			name:     "html is not escaped",
			input:    String("<a&b>"),
			expected: `"<a&b>"`,
		},
		{
			name:     "control characters",
			input:    String("a\nb\x01\"\\"),
			expected: `"a\nb\u0001\"\\"`,
		},
		{
			name:     "numbers normalized",
			input:    Array{Number("30.0"), Number("1.50"), Number("1e21"), Number("0.00000015"), Number("-0")},
			expected: `[30,1.5,1e+21,1.5e-7,0]`,
		},
		{
			name:     "big integer stays exact",
			input:    Number("0012345678901234567890123"),
			expected: `12345678901234567890123`,
		},
		{
			name:     "unicode kept",
			input:    String("Hà Nội"),
			expected: `"Hà Nội"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalString(tt.input))
		})
	}
}

func TestCanonicalDeterministic(t *testing.T) {
	raw := []byte(`{"k3": {"x": 1, "a": [3, 2, 1]}, "k1": "v", "k2": 2.5}`)
	for i := 0; i < 20; i++ {
		a, err := Parse(raw)
		require.NoError(t, err)
		b, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, Canonical(a), Canonical(b))
		assert.True(t, Equal(a, b))
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]interface{}{
		"age":   30,
		"score": 4.5,
		"tags":  []string{"a", "b"},
		"ok":    true,
		"none":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"age":30,"none":null,"ok":true,"score":4.5,"tags":["a","b"]}`, CanonicalString(v))

	type point struct {
		X int `json:"x"`
	}
	v, err = FromAny(point{X: 7})
	require.NoError(t, err)
	assert.Equal(t, Object{"x": Number("7")}, v)

	_, err = FromAny(func() {})
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	obj := Object{
		"name": String("Alice"),
		"address": Object{
			"city":   String("Hanoi"),
			"street": Object{"no": Int(12)},
		},
		"tags":  Array{String("x")},
		"empty": Object{},
		"zero":  Int(0),
	}

	fields := Flatten(obj)
	paths := make([]string, len(fields))
	for i, f := range fields {
		paths[i] = f.Path
	}

	assert.Equal(t, []string{"address.city", "address.street.no", "name", "tags", "zero"}, paths)
	assert.Equal(t, Array{String("x")}, FieldMap(fields)["tags"])
	assert.Equal(t, Int(0), FieldMap(fields)["zero"])
}

func TestFlattenCollidingPaths(t *testing.T) {
	obj, err := ParseObject([]byte(`{"a":{"b":1},"a.b":2,"c":3}`))
	require.NoError(t, err)

	first := Flatten(obj)
	for range 20 {
		assert.Equal(t, first, Flatten(obj))
	}
	require.Len(t, first, 3)
	assert.Equal(t, "a.b", first[0].Path)
	assert.Equal(t, "1", CanonicalString(first[0].Value))

	_, err = FlattenUnique(obj)
	assert.ErrorIs(t, err, ErrDuplicatePath)
	assert.ErrorContains(t, err, `"a.b"`)

	fields, err := FlattenUnique(Object{"a": Object{"b": Int(1)}, "c": Int(3)})
	require.NoError(t, err)
	assert.Len(t, fields, 2)
}

func TestFlattenNonObject(t *testing.T) {
	assert.Empty(t, Flatten(String("abc")))
	assert.Empty(t, Flatten(Array{Int(1)}))
	assert.Empty(t, Flatten(Null{}))
}

func TestObjectJSONRoundTrip(t *testing.T) {
	var obj Object
	require.NoError(t, obj.UnmarshalJSON([]byte(`{"b":1,"a":"x"}`)))

	raw, err := obj.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1}`, string(raw))

	var arr Array
	assert.Error(t, arr.UnmarshalJSON([]byte(`{"a":1}`)))
}
