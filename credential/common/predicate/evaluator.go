package predicate

import (
	"math/big"

	"golang.org/x/exp/constraints"

	"github.com/pilacorp/go-zkcredential-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
)

// Clause is one leaf of a check: the field at Path must satisfy Op against Value.
type Clause struct {
	Path  string
	Op    Operator
	Value jsonvalue.Value
}

// ParseCheck flattens a check into clauses, sorted by path. Every leaf must
// be a two element array whose first element names a known operator.
func ParseCheck(check jsonvalue.Object) ([]Clause, error) {
	fields, err := jsonvalue.FlattenUnique(check)
	if err != nil {
		return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "check: %v", err)
	}
	clauses := make([]Clause, 0, len(fields))

	for _, f := range fields {
		pair, ok := f.Value.(jsonvalue.Array)
		if !ok || len(pair) != 2 {
			return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "check %q must be an [operator, value] pair", f.Path)
		}
		name, ok := pair[0].(jsonvalue.String)
		if !ok {
			return nil, vcerror.Wrap(vcerror.ErrInvalidSchema, "check %q has a non-string operator", f.Path)
		}
		op, err := ParseOperator(string(name))
		if err != nil {
			return nil, err
		}

		clauses = append(clauses, Clause{Path: f.Path, Op: op, Value: pair[1]})
	}

	return clauses, nil
}

// Fields returns the (path, comparedValue) leaves the check tree commits to.
func Fields(clauses []Clause) []jsonvalue.Field {
	out := make([]jsonvalue.Field, len(clauses))
	for i, c := range clauses {
		out[i] = jsonvalue.Field{Path: c.Path, Value: c.Value}
	}
	return out
}

// EvaluateCheck reports whether subject satisfies every clause of check.
// A malformed check fails with ErrInvalidSchema even when an earlier clause
// already does not hold.
func EvaluateCheck(check, subject jsonvalue.Object) (bool, error) {
	clauses, err := ParseCheck(check)
	if err != nil {
		return false, err
	}
	return Evaluate(clauses, jsonvalue.FieldMap(jsonvalue.Flatten(subject))), nil
}

// Evaluate is the AND of all clauses over flattened fields. It stops at the
// first clause whose field is missing or whose comparison fails.
func Evaluate(clauses []Clause, fields map[string]jsonvalue.Value) bool {
	for _, c := range clauses {
		v, ok := fields[c.Path]
		if !ok || !c.Holds(v) {
			return false
		}
	}
	return true
}

// Holds applies the clause to a credential value. Equality compares
// canonical JSON text. Ordering is defined between two numbers, two strings
// (bytewise) or two booleans (false < true); any other pairing does not hold.
// Strings order by UTF-8 bytes, which differs from UTF-16 code unit order
// only when a character above U+FFFF meets one in U+E000 to U+FFFF.
func (c Clause) Holds(v jsonvalue.Value) bool {
	switch c.Op {
	case OpEQ:
		return jsonvalue.Equal(v, c.Value)
	case OpNE:
		return !jsonvalue.Equal(v, c.Value)
	}

	switch a := v.(type) {
	case jsonvalue.Number:
		b, ok := c.Value.(jsonvalue.Number)
		if !ok {
			return false
		}
		x, okx := new(big.Rat).SetString(string(a))
		y, oky := new(big.Rat).SetString(string(b))
		if !okx || !oky {
			return false
		}
		return holds(c.Op, x.Cmp(y), 0)
	case jsonvalue.String:
		b, ok := c.Value.(jsonvalue.String)
		if !ok {
			return false
		}
		return holds(c.Op, string(a), string(b))
	case jsonvalue.Bool:
		b, ok := c.Value.(jsonvalue.Bool)
		if !ok {
			return false
		}
		return holds(c.Op, boolRank(bool(a)), boolRank(bool(b)))
	}

	return false
}

func holds[T constraints.Ordered](op Operator, a, b T) bool {
	switch op {
	case OpLT:
		return a < b
	case OpLTE:
		return a <= b
	case OpGT:
		return a > b
	case OpGTE:
		return a >= b
	}
	return false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
