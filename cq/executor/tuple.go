package executor

import (
	"strings"

	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/query"
)

// Tuple is a row of constants tagged with the variables they bind.
// Equality between tuples considers values only.
type Tuple struct {
	Values    []cq.Constant
	Variables []query.Variable
}

// NewTuple pairs values with their variables
func NewTuple(vars []query.Variable, values []cq.Constant) Tuple {
	return Tuple{Values: values, Variables: vars}
}

func (t Tuple) Len() int { return len(t.Values) }

// Position returns the column of v, or -1.
func (t Tuple) Position(v query.Variable) int {
	for i, tv := range t.Variables {
		if tv == v {
			return i
		}
	}
	return -1
}

// Value returns the constant bound to v.
func (t Tuple) Value(v query.Variable) (cq.Constant, bool) {
	if i := t.Position(v); i >= 0 {
		return t.Values[i], true
	}
	return cq.Constant{}, false
}

// Key returns a string usable as a map key for the values.
func (t Tuple) Key() string {
	return string(cq.EncodeRow(t.Values))
}

// Equal compares values only.
func (t Tuple) Equal(other Tuple) bool {
	if len(t.Values) != len(other.Values) {
		return false
	}
	for i := range t.Values {
		if t.Values[i] != other.Values[i] {
			return false
		}
	}
	return true
}

// String renders the values separated by ", ", the output line format.
func (t Tuple) String() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Concat joins two tuples, left columns first.
func Concat(left, right Tuple) Tuple {
	values := make([]cq.Constant, 0, len(left.Values)+len(right.Values))
	values = append(values, left.Values...)
	values = append(values, right.Values...)

	vars := make([]query.Variable, 0, len(left.Variables)+len(right.Variables))
	vars = append(vars, left.Variables...)
	vars = append(vars, right.Variables...)
	return Tuple{Values: values, Variables: vars}
}
