package executor

import (
	"fmt"

	"github.com/wbrown/janus-cq/cq/planner"
)

// Build turns a plan into an operator tree reading from opener. An empty
// plan builds to a nil operator, which yields no tuples.
func Build(opener RowOpener, plan *planner.QueryPlan) (Operator, error) {
	if plan.Empty() {
		return nil, nil
	}
	b := &builder{opener: opener}
	return b.build(plan.Root)
}

// builder optionally wraps every operator it creates in a CountingOperator.
type builder struct {
	opener   RowOpener
	count    bool
	counters []*CountingOperator
}

func (b *builder) build(n planner.Node) (Operator, error) {
	op, err := b.buildNode(n)
	if err != nil {
		return nil, err
	}
	if !b.count {
		return op, nil
	}
	c := NewCountingOperator(n.String(), op)
	b.counters = append(b.counters, c)
	return c, nil
}

func (b *builder) buildNode(n planner.Node) (Operator, error) {
	switch n := n.(type) {
	case *planner.ScanNode:
		return NewScan(b.opener, n.Atom)

	case *planner.SelectNode:
		child, err := b.build(n.Child)
		if err != nil {
			return nil, err
		}
		cond, err := NewCondition(n.Conditions, child.Symbols())
		if err != nil {
			child.Close()
			return nil, err
		}
		return NewSelect(cond, child), nil

	case *planner.JoinNode:
		left, err := b.build(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.build(n.Right)
		if err != nil {
			left.Close()
			return nil, err
		}
		cond, err := NewCondition(n.Conditions, n.Symbols())
		if err != nil {
			left.Close()
			right.Close()
			return nil, err
		}
		return NewJoin(left, right, cond), nil

	case *planner.ProjectNode:
		child, err := b.build(n.Child)
		if err != nil {
			return nil, err
		}
		p, err := NewProject(n.Variables, child)
		if err != nil {
			child.Close()
			return nil, err
		}
		return p, nil

	case *planner.SumNode:
		child, err := b.build(n.Child)
		if err != nil {
			return nil, err
		}
		s, err := NewSum(n.Aggregate, n.GroupBy, planner.SumSymbol(n.Aggregate), child)
		if err != nil {
			child.Close()
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown plan node %T", n)
	}
}
