package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
)

func mustObject(t *testing.T, raw string) jsonvalue.Object {
	t.Helper()
	obj, err := jsonvalue.ParseObject([]byte(raw))
	require.NoError(t, err)
	return obj
}

func TestParseOperator(t *testing.T) {
	for name, id := range map[string]int64{"$EQ": 0, "$NE": 1, "$LT": 2, "$LTE": 3, "$GT": 4, "$GTE": 5} {
		op, err := ParseOperator(name)
		require.NoError(t, err)
		assert.Equal(t, id, op.ID())
		assert.Equal(t, name, op.String())
	}

	op, err := ParseOperator("$IN")
	assert.ErrorIs(t, err, vcerror.ErrInvalidSchema)
	assert.Equal(t, OpInvalid, op)
}

func TestEvaluateCheck(t *testing.T) {
	subject := `{"age": 30, "country": "US", "verified": true, "score": 7.5,
		"address": {"city": "Hanoi"}, "tags": ["a", "b"], "zero": 0, "glyph": "\uff01"}`

	tests := []struct {
		name     string
		check    string
		expected bool
	}{
		{name: "gte passes", check: `{"age": ["$GTE", 18]}`, expected: true},
		{name: "lt fails", check: `{"age": ["$LT", 18]}`, expected: false},
		{name: "eq string", check: `{"country": ["$EQ", "US"]}`, expected: true},
		{name: "ne string", check: `{"country": ["$NE", "US"]}`, expected: false},
		{name: "nested path", check: `{"address": {"city": ["$EQ", "Hanoi"]}}`, expected: true},
		{name: "eq array", check: `{"tags": ["$EQ", ["a", "b"]]}`, expected: true},
		{name: "eq number forms", check: `{"age": ["$EQ", 30.0]}`, expected: true},
		{name: "decimal ordering", check: `{"score": ["$GT", 7.25]}`, expected: true},
		{name: "string ordering", check: `{"country": ["$LT", "VN"]}`, expected: true},
		{name: "string ordering is bytewise", check: `{"glyph": ["$LT", "\ud83d\ude00"]}`, expected: true},
		{name: "bool ordering", check: `{"verified": ["$GT", false]}`, expected: true},
		{name: "mixed types never order", check: `{"age": ["$GT", "18"]}`, expected: false},
		{name: "zero is present", check: `{"zero": ["$LTE", 0]}`, expected: true},
		{name: "missing field", check: `{"name": ["$EQ", "Alice"]}`, expected: false},
		{name: "conjunction", check: `{"age": ["$GTE", 18], "country": ["$EQ", "US"]}`, expected: true},
		{name: "conjunction with failing leaf", check: `{"age": ["$GTE", 18], "country": ["$EQ", "VN"]}`, expected: false},
		{name: "empty check", check: `{}`, expected: true},
	}

	subj := mustObject(t, subject)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := EvaluateCheck(mustObject(t, tt.check), subj)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestEvaluateCheckInvalid(t *testing.T) {
	subj := mustObject(t, `{"age": 30}`)

	tests := []struct {
		name  string
		check string
	}{
		{name: "unknown operator", check: `{"age": ["$IN", [1, 2]]}`},
		{name: "unknown operator after failing clause", check: `{"a": ["$EQ", 1], "b": ["$XX", 1]}`},
		{name: "not a pair", check: `{"age": 18}`},
		{name: "pair too long", check: `{"age": ["$EQ", 1, 2]}`},
		{name: "operator not a string", check: `{"age": [1, 2]}`},
		{name: "colliding paths", check: `{"a": {"b": ["$EQ", 1]}, "a.b": ["$EQ", 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateCheck(mustObject(t, tt.check), subj)
			assert.ErrorIs(t, err, vcerror.ErrInvalidSchema)
		})
	}
}

func TestEvaluateMonotonicAnd(t *testing.T) {
	fields := jsonvalue.FieldMap(jsonvalue.Flatten(mustObject(t, `{"age": 30, "country": "US", "city": "Hanoi"}`)))

	passing := []Clause{
		{Path: "age", Op: OpGTE, Value: jsonvalue.Int(18)},
		{Path: "country", Op: OpEQ, Value: jsonvalue.String("US")},
		{Path: "city", Op: OpNE, Value: jsonvalue.String("Paris")},
	}
	failing := Clause{Path: "age", Op: OpLT, Value: jsonvalue.Int(18)}

	require.True(t, Evaluate(passing, fields))

	// Dropping any passing clause keeps the evaluation passing.
	for i := range passing {
		subset := append(append([]Clause{}, passing[:i]...), passing[i+1:]...)
		assert.True(t, Evaluate(subset, fields))
	}

	// Adding a failing clause anywhere fails.
	for i := 0; i <= len(passing); i++ {
		withFailing := append(append(append([]Clause{}, passing[:i]...), failing), passing[i:]...)
		assert.False(t, Evaluate(withFailing, fields))
	}
}

func TestFields(t *testing.T) {
	clauses, err := ParseCheck(mustObject(t, `{"b": ["$EQ", "x"], "a": ["$GTE", 18]}`))
	require.NoError(t, err)

	fields := Fields(clauses)
	require.Len(t, fields, 2)
	assert.Equal(t, jsonvalue.Field{Path: "a", Value: jsonvalue.Number("18")}, fields[0])
	assert.Equal(t, jsonvalue.Field{Path: "b", Value: jsonvalue.String("x")}, fields[1])
}
