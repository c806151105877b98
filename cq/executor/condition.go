package executor

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/query"
)

// operand is either a column of the input tuple or a constant.
type operand struct {
	pos      int // -1 for constants
	constant cq.Constant
}

func (o operand) resolve(t Tuple) cq.Constant {
	if o.pos < 0 {
		return o.constant
	}
	return t.Values[o.pos]
}

type boundComparison struct {
	atom        *query.ComparisonAtom
	left, right operand
}

// Condition is a conjunction of comparison atoms bound to the columns of
// an operator's output schema. A nil Condition holds for every tuple.
type Condition struct {
	comparisons []boundComparison
}

// NewCondition binds atoms to the positions of their variables in symbols.
func NewCondition(atoms []*query.ComparisonAtom, symbols []query.Variable) (*Condition, error) {
	if len(atoms) == 0 {
		return nil, nil
	}
	c := &Condition{comparisons: make([]boundComparison, 0, len(atoms))}
	for _, a := range atoms {
		left, err := bindOperand(a.Left, symbols)
		if err != nil {
			return nil, fmt.Errorf("condition %s: %w", a, err)
		}
		right, err := bindOperand(a.Right, symbols)
		if err != nil {
			return nil, fmt.Errorf("condition %s: %w", a, err)
		}
		c.comparisons = append(c.comparisons, boundComparison{atom: a, left: left, right: right})
	}
	return c, nil
}

func bindOperand(t query.Term, symbols []query.Variable) (operand, error) {
	if c, ok := query.AsConstant(t); ok {
		return operand{pos: -1, constant: c}, nil
	}
	v, _ := query.AsVariable(t)
	for i, s := range symbols {
		if s == v {
			return operand{pos: i}, nil
		}
	}
	return operand{}, fmt.Errorf("variable %s not in [%s]", v, joinSymbols(symbols))
}

// Eval reports whether every comparison holds on t. Ordering comparisons
// between an integer and a string are errors.
func (c *Condition) Eval(t Tuple) (bool, error) {
	if c == nil {
		return true, nil
	}
	for _, bc := range c.comparisons {
		ok, err := bc.atom.Op.Eval(bc.left.resolve(t), bc.right.resolve(t))
		if err != nil {
			return false, fmt.Errorf("condition %s: %w", bc.atom, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c *Condition) String() string {
	if c == nil {
		return "true"
	}
	parts := make([]string, len(c.comparisons))
	for i, bc := range c.comparisons {
		parts[i] = bc.atom.String()
	}
	return strings.Join(parts, " AND ")
}

func joinSymbols(vars []query.Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
