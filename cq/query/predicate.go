package query

import (
	"fmt"

	"github.com/wbrown/janus-cq/cq"
)

// CompareOp represents comparison operators
type CompareOp string

const (
	OpEQ  CompareOp = "="
	OpNE  CompareOp = "!="
	OpLT  CompareOp = "<"
	OpLTE CompareOp = "<="
	OpGT  CompareOp = ">"
	OpGTE CompareOp = ">="
)

func (op CompareOp) String() string { return string(op) }

// Valid reports whether op is one of the six supported operators.
func (op CompareOp) Valid() bool {
	switch op {
	case OpEQ, OpNE, OpLT, OpLTE, OpGT, OpGTE:
		return true
	}
	return false
}

// Swap returns the operator that holds when the operands trade places,
// so that a op b == b op.Swap() a.
func (op CompareOp) Swap() CompareOp {
	switch op {
	case OpLT:
		return OpGT
	case OpLTE:
		return OpGTE
	case OpGT:
		return OpLT
	case OpGTE:
		return OpLTE
	default:
		return op
	}
}

// Eval applies the operator to two constants. Equality operators accept
// constants of different kinds (they are simply unequal); ordering operators
// return cq.ErrKindMismatch for them.
func (op CompareOp) Eval(left, right cq.Constant) (bool, error) {
	switch op {
	case OpEQ:
		return cq.Equal(left, right), nil
	case OpNE:
		return !cq.Equal(left, right), nil
	}

	cmp, err := cq.Compare(left, right)
	if err != nil {
		return false, err
	}

	switch op {
	case OpLT:
		return cmp < 0, nil
	case OpLTE:
		return cmp <= 0, nil
	case OpGT:
		return cmp > 0, nil
	case OpGTE:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unknown comparison operator: %s", op)
	}
}

// EvalGround evaluates a comparison whose both sides are constants.
func (c *ComparisonAtom) EvalGround() (bool, error) {
	l, lok := AsConstant(c.Left)
	r, rok := AsConstant(c.Right)
	if !lok || !rok {
		return false, fmt.Errorf("comparison %s is not ground", c)
	}
	return c.Op.Eval(l, r)
}
