package executor

import (
	"github.com/wbrown/janus-cq/cq/query"
)

// Select passes through the child tuples satisfying its condition.
type Select struct {
	child   Operator
	cond    *Condition
	current Tuple
	err     error
}

func NewSelect(cond *Condition, child Operator) *Select {
	return &Select{child: child, cond: cond}
}

func (s *Select) Symbols() []query.Variable { return s.child.Symbols() }

func (s *Select) Next() bool {
	if s.err != nil {
		return false
	}
	for s.child.Next() {
		t := s.child.Tuple()
		ok, err := s.cond.Eval(t)
		if err != nil {
			s.err = err
			return false
		}
		if ok {
			s.current = t
			return true
		}
	}
	return false
}

func (s *Select) Tuple() Tuple { return s.current }

func (s *Select) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.child.Err()
}

func (s *Select) Reset() error {
	s.err = nil
	return s.child.Reset()
}

func (s *Select) Close() error   { return s.child.Close() }
func (s *Select) String() string { return "Select " + s.cond.String() }
