// Package executor runs query plans with pull-based operators.
//
// Evaluate is the entry point: it rewrites and plans a query, builds the
// operator tree (Scan, Select, Join, Project, Sum) and drains it.
package executor

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/wbrown/janus-cq/cq/annotations"
	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/planner"
	"github.com/wbrown/janus-cq/cq/query"
)

// Result is the output of one evaluation.
type Result struct {
	RunID   uuid.UUID
	Plan    *planner.QueryPlan
	Symbols []query.Variable
	Tuples  []Tuple
}

func (r *Result) Len() int { return len(r.Tuples) }

// Lines returns one rendered line per tuple.
func (r *Result) Lines() []string {
	out := make([]string, len(r.Tuples))
	for i, t := range r.Tuples {
		out[i] = t.String()
	}
	return out
}

// WriteLines writes one line per tuple to w.
func (r *Result) WriteLines(w io.Writer) error {
	for _, t := range r.Tuples {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return nil
}

// Table renders the result as a markdown table.
func (r *Result) Table() string {
	return NewTableFormatter().Format(r.Symbols, r.Tuples)
}

// Evaluate rewrites, plans and runs q against cat. ctx is checked between
// tuples.
func Evaluate(ctx context.Context, cat *catalog.Catalog, q *query.Query, opts ...Option) (*Result, error) {
	o := EvalOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.RunID == uuid.Nil {
		o.RunID = uuid.New()
	}
	p := o.Planner
	if p == nil {
		p = planner.New(cat)
	}

	ectx := NewContext(o.Handler)
	ectx.QueryBegin(o.RunID.String(), q.String())

	result, err := evaluate(ctx, ectx, p, q)
	count := 0
	if result != nil {
		result.RunID = o.RunID
		count = result.Len()
	}
	ectx.QueryComplete(count, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func evaluate(ctx context.Context, ectx Context, p *planner.Planner, q *query.Query) (*Result, error) {
	plan, err := p.Prepare(q)
	if err != nil {
		ectx.Collector().Add(annotations.Event{
			Name: annotations.ErrorQueryPlanning,
			Data: map[string]interface{}{"error": err},
		})
		return nil, err
	}
	ectx.QueryRewritten(plan.Query.String())
	ectx.QueryPlanCreated(plan.String())

	result := &Result{Plan: plan, Symbols: plan.Symbols()}
	if plan.Empty() {
		return result, nil
	}

	b := &builder{opener: p.Catalog(), count: ectx.Annotated()}
	root, err := b.build(plan.Root)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	for root.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Tuples = append(result.Tuples, root.Tuple())
	}
	if err := root.Err(); err != nil {
		return nil, err
	}

	for _, c := range b.counters {
		ectx.OperatorDone(c.Name(), c.Count())
	}
	return result, nil
}
