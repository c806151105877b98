// Package planner turns conjunctive queries into left-deep operator plans.
//
// File organization:
//   - rewriter.go: normal form (no repeated variables, no constants in atoms)
//   - planner.go: condition classification and tree construction
//   - types.go: plan nodes and the explain rendering
//   - cache.go: plan cache used by Planner
//
// Start with Planner.Prepare to follow a query from text to plan.
package planner

import (
	"errors"
	"fmt"
	"slices"

	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/query"
)

var (
	ErrNoRelationalAtoms = errors.New("query body has no relational atoms")
	ErrNotNormalized     = errors.New("query is not in normal form")
	ErrUnsafeVariable    = errors.New("variable is not bound by any relational atom")
	ErrArityMismatch     = errors.New("atom arity does not match schema")
	ErrNonIntegerSum     = errors.New("SUM factor is not an integer")
)

// Planner rewrites and plans queries against one catalog.
type Planner struct {
	catalog  *catalog.Catalog
	rewriter *Rewriter
	cache    *PlanCache
}

// Option configures a Planner
type Option func(*Planner)

// WithRewriter sets the rewriter used by Prepare
func WithRewriter(rw *Rewriter) Option {
	return func(p *Planner) { p.rewriter = rw }
}

// WithCache makes Prepare reuse plans for queries it has seen
func WithCache(c *PlanCache) Option {
	return func(p *Planner) { p.cache = c }
}

func New(cat *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{catalog: cat}
	for _, opt := range opts {
		opt(p)
	}
	if p.rewriter == nil {
		p.rewriter = NewRewriter()
	}
	return p
}

// Catalog returns the catalog plans are built against
func (p *Planner) Catalog() *catalog.Catalog { return p.catalog }

// Prepare rewrites q into normal form and plans it.
func (p *Planner) Prepare(q *query.Query) (*QueryPlan, error) {
	if plan, ok := p.cache.Get(q); ok {
		return plan, nil
	}
	plan, err := Plan(p.catalog, p.rewriter.Rewrite(q))
	if err != nil {
		return nil, err
	}
	p.cache.Set(q, plan)
	return plan, nil
}

// Plan builds the operator tree for a normalized query.
func Plan(cat *catalog.Catalog, q *query.Query) (*QueryPlan, error) {
	atoms := q.RelationalAtoms()
	if len(atoms) == 0 {
		return nil, ErrNoRelationalAtoms
	}
	if !IsNormalized(q) {
		return nil, fmt.Errorf("%w: %s", ErrNotNormalized, q)
	}

	// Relation numbers are body positions, so a relation may occur twice.
	ix := catalog.NewVariableIndex()
	for i, a := range atoms {
		arity, err := cat.Arity(a.Name)
		if err != nil {
			return nil, err
		}
		if arity != len(a.Terms) {
			return nil, fmt.Errorf("%w: %s has %d terms, schema has %d", ErrArityMismatch, a, len(a.Terms), arity)
		}
		for j, v := range a.Variables() {
			if err := ix.Add(v, i, j); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrNotNormalized, err)
			}
		}
	}
	ix.Freeze()

	if err := checkHead(q.Head, ix); err != nil {
		return nil, err
	}

	plan := &QueryPlan{
		Query:      q,
		Index:      ix,
		Selections: make(map[int][]*query.ComparisonAtom),
		Joins:      make(map[int][]*query.ComparisonAtom),
	}

	// Every comparison is classified before a false ground condition
	// empties the plan, so errors do not depend on atom order.
	empty := false
	for _, c := range q.ComparisonAtoms() {
		keep, err := plan.classify(c)
		if err != nil {
			return nil, err
		}
		if !keep {
			empty = true
		}
	}
	if empty {
		return plan, nil
	}

	var root Node
	for i, a := range atoms {
		var n Node = &ScanNode{Atom: a, Relation: i}
		if conds := plan.Selections[i]; len(conds) > 0 {
			n = &SelectNode{Conditions: conds, Child: n}
		}
		if root == nil {
			root = n
			continue
		}
		root = &JoinNode{Left: root, Right: n, Conditions: plan.Joins[i]}
	}

	switch {
	case q.Head.Sum != nil:
		root = &SumNode{GroupBy: q.Head.Variables, Aggregate: q.Head.Sum, Child: root}
	case !slices.Equal(q.Head.Variables, ix.Variables()):
		root = &ProjectNode{Variables: q.Head.Variables, Child: root}
	}
	plan.Root = root
	return plan, nil
}

// classify attaches c to a relation as a selection or a join condition.
// Ground conditions are evaluated now; keep is false when one fails.
func (p *QueryPlan) classify(c *query.ComparisonAtom) (keep bool, err error) {
	lv, lvar := query.AsVariable(c.Left)
	rv, rvar := query.AsVariable(c.Right)

	relationOf := func(v query.Variable) (int, error) {
		rel, ok := p.Index.RelationOf(v)
		if !ok {
			return 0, fmt.Errorf("%w: %s in %s", ErrUnsafeVariable, v, c)
		}
		return rel, nil
	}

	switch {
	case lvar && rvar:
		l, err := relationOf(lv)
		if err != nil {
			return false, err
		}
		r, err := relationOf(rv)
		if err != nil {
			return false, err
		}
		if l == r {
			p.Selections[l] = append(p.Selections[l], c)
		} else {
			at := max(l, r)
			p.Joins[at] = append(p.Joins[at], c)
		}
	case lvar:
		rel, err := relationOf(lv)
		if err != nil {
			return false, err
		}
		p.Selections[rel] = append(p.Selections[rel], c)
	case rvar:
		rel, err := relationOf(rv)
		if err != nil {
			return false, err
		}
		p.Selections[rel] = append(p.Selections[rel], c)
	default:
		ok, err := c.EvalGround()
		if err != nil {
			return false, fmt.Errorf("condition %s: %w", c, err)
		}
		return ok, nil
	}
	return true, nil
}

func checkHead(h *query.Head, ix *catalog.VariableIndex) error {
	for _, v := range h.Variables {
		if _, ok := ix.Lookup(v); !ok {
			return fmt.Errorf("%w: head variable %s", ErrUnsafeVariable, v)
		}
	}
	if h.Sum == nil {
		return nil
	}
	for _, f := range h.Sum.Factors {
		if v, ok := query.AsVariable(f); ok {
			if _, bound := ix.Lookup(v); !bound {
				return fmt.Errorf("%w: SUM variable %s", ErrUnsafeVariable, v)
			}
			continue
		}
		if c, ok := query.AsConstant(f); !ok || !c.IsInteger() {
			return fmt.Errorf("%w: %s", ErrNonIntegerSum, f)
		}
	}
	return nil
}
