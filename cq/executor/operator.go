package executor

import (
	"github.com/wbrown/janus-cq/cq/query"
)

// Operator is a pull-based iterator over tuples.
//
//	for op.Next() {
//	    t := op.Tuple()
//	}
//	if err := op.Err(); err != nil { ... }
//
// Reset rewinds to the first tuple so the operator can be scanned again,
// as the inner side of a nested loop join is.
type Operator interface {
	// Symbols is the output schema
	Symbols() []query.Variable

	// Next advances to the next tuple; false at end of stream or on error
	Next() bool

	// Tuple returns the current tuple
	Tuple() Tuple

	// Err returns the first error encountered
	Err() error

	// Reset rewinds to the first tuple
	Reset() error

	// Close releases any resources
	Close() error
}

// Dump drains op and returns every tuple it yields.
func Dump(op Operator) ([]Tuple, error) {
	var out []Tuple
	for op.Next() {
		out = append(out, op.Tuple())
	}
	return out, op.Err()
}

// CountingOperator wraps an operator and counts the tuples it yields,
// across resets.
type CountingOperator struct {
	Operator
	name  string
	count int
}

// NewCountingOperator wraps op under a display name
func NewCountingOperator(name string, op Operator) *CountingOperator {
	return &CountingOperator{Operator: op, name: name}
}

func (c *CountingOperator) Next() bool {
	if c.Operator.Next() {
		c.count++
		return true
	}
	return false
}

func (c *CountingOperator) Name() string { return c.name }
func (c *CountingOperator) Count() int   { return c.count }
