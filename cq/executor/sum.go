package executor

import (
	"fmt"

	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/query"
)

// Sum is a blocking grouped aggregate: it drains its child when built,
// adds the product of the aggregate factors of every row to the row's
// group, and then serves one tuple per group (group values followed by
// the sum). Groups come out in the order they were first seen. Reset
// replays the cached groups without reading the child again.
type Sum struct {
	child     Operator
	aggregate *query.SumAggregate
	groupBy   []query.Variable
	symbols   []query.Variable
	results   []Tuple
	pos       int
}

type sumFactor struct {
	pos      int // -1 for constants
	constant int64
}

// NewSum builds the aggregate. sumSymbol names the output column of the
// sum.
func NewSum(agg *query.SumAggregate, groupBy []query.Variable, sumSymbol query.Variable, child Operator) (*Sum, error) {
	symbols := child.Symbols()
	indexOf := func(v query.Variable) (int, error) {
		for i, s := range symbols {
			if s == v {
				return i, nil
			}
		}
		return -1, fmt.Errorf("sum: variable %s not in [%s]", v, joinSymbols(symbols))
	}

	groupPos := make([]int, len(groupBy))
	for i, v := range groupBy {
		pos, err := indexOf(v)
		if err != nil {
			return nil, err
		}
		groupPos[i] = pos
	}

	factors := make([]sumFactor, len(agg.Factors))
	for i, f := range agg.Factors {
		if v, ok := query.AsVariable(f); ok {
			pos, err := indexOf(v)
			if err != nil {
				return nil, err
			}
			factors[i] = sumFactor{pos: pos}
			continue
		}
		c, _ := query.AsConstant(f)
		n, ok := c.IntValue()
		if !ok {
			return nil, fmt.Errorf("sum: factor %s is not an integer", f)
		}
		factors[i] = sumFactor{pos: -1, constant: n}
	}

	s := &Sum{
		child:     child,
		aggregate: agg,
		groupBy:   groupBy,
		symbols:   append(append([]query.Variable(nil), groupBy...), sumSymbol),
		pos:       -1,
	}
	if err := s.drain(groupPos, factors); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sum) drain(groupPos []int, factors []sumFactor) error {
	type group struct {
		values []cq.Constant
		sum    int64
	}
	var groups []*group
	index := make(map[string]*group)

	for s.child.Next() {
		t := s.child.Tuple()

		product := int64(1)
		for _, f := range factors {
			n := f.constant
			if f.pos >= 0 {
				var ok bool
				if n, ok = t.Values[f.pos].IntValue(); !ok {
					return fmt.Errorf("sum %s: value %s of %s is not an integer",
						s.aggregate, t.Values[f.pos], t.Variables[f.pos])
				}
			}
			product *= n
		}

		values := make([]cq.Constant, len(groupPos))
		for i, pos := range groupPos {
			values[i] = t.Values[pos]
		}
		key := string(cq.EncodeRow(values))
		g, ok := index[key]
		if !ok {
			g = &group{values: values}
			index[key] = g
			groups = append(groups, g)
		}
		g.sum += product
	}
	if err := s.child.Err(); err != nil {
		return err
	}

	s.results = make([]Tuple, len(groups))
	for i, g := range groups {
		s.results[i] = NewTuple(s.symbols, append(g.values, cq.Int(g.sum)))
	}
	return nil
}

func (s *Sum) Symbols() []query.Variable { return s.symbols }

func (s *Sum) Next() bool {
	if s.pos+1 >= len(s.results) {
		s.pos = len(s.results)
		return false
	}
	s.pos++
	return true
}

func (s *Sum) Tuple() Tuple {
	if s.pos < 0 || s.pos >= len(s.results) {
		return Tuple{}
	}
	return s.results[s.pos]
}

func (s *Sum) Err() error { return nil }

// Reset rewinds to the first cached group.
func (s *Sum) Reset() error {
	s.pos = -1
	return nil
}

func (s *Sum) Close() error { return s.child.Close() }

func (s *Sum) String() string {
	return fmt.Sprintf("Sum %s group by [%s]", s.aggregate, joinSymbols(s.groupBy))
}
