// Package predicate evaluates schema checks against credential subjects.
//
// A check is a JSON object whose leaves are [operator, comparedValue]
// pairs, e.g. {"age": ["$GTE", 18], "address": {"country": ["$EQ", "US"]}}.
package predicate

import (
	"github.com/pilacorp/go-zkcredential-sdk/credential/common/vcerror"
)

// Operator is a comparison operator. Its numeric value is the operator id
// the circuit expects.
type Operator int

const (
	OpEQ Operator = iota
	OpNE
	OpLT
	OpLTE
	OpGT
	OpGTE
	// OpInvalid never appears in a parsed check.
	OpInvalid
)

var operatorNames = map[string]Operator{
	"$EQ":  OpEQ,
	"$NE":  OpNE,
	"$LT":  OpLT,
	"$LTE": OpLTE,
	"$GT":  OpGT,
	"$GTE": OpGTE,
}

// ParseOperator maps an operator name to its Operator.
func ParseOperator(name string) (Operator, error) {
	op, ok := operatorNames[name]
	if !ok {
		return OpInvalid, vcerror.Wrap(vcerror.ErrInvalidSchema, "unknown operator %q", name)
	}
	return op, nil
}

// ID is the circuit operator id.
func (o Operator) ID() int64 {
	return int64(o)
}

func (o Operator) String() string {
	for name, op := range operatorNames {
		if op == o {
			return name
		}
	}
	return "INVALID"
}
