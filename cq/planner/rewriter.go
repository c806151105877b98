package planner

import (
	"math/rand"
	"time"

	"github.com/wbrown/janus-cq/cq/query"
)

// Rewriter brings a query into normal form: every relational atom term is a
// variable and no variable occurs twice across the relational atoms.
//
//	R(x, x), S(x, 4)  =>  R(x, f), S(k, b), x = f, x = k, b = 4
//
// Fresh names are single random lowercase letters, extended by one more
// random letter until they collide with no name used in the query.
type Rewriter struct {
	rnd *rand.Rand
}

// RewriterOption configures a Rewriter
type RewriterOption func(*Rewriter)

// WithRand sets the random source used for fresh variable names.
func WithRand(rnd *rand.Rand) RewriterOption {
	return func(rw *Rewriter) {
		rw.rnd = rnd
	}
}

// WithSeed seeds the fresh name generator
func WithSeed(seed int64) RewriterOption {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func NewRewriter(opts ...RewriterOption) *Rewriter {
	rw := &Rewriter{}
	for _, opt := range opts {
		opt(rw)
	}
	if rw.rnd == nil {
		rw.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rw
}

// Rewrite returns the normal form of q. The body of the result is the
// rewritten relational atoms, then the original comparison atoms, then the
// generated equalities. q is not modified.
func (rw *Rewriter) Rewrite(q *query.Query) *query.Query {
	used := q.Variables()
	relational := q.RelationalAtoms()
	var generated []query.Atom

	// Repeated variables, across the whole body: R(x, x) -> R(x, f), x = f
	seen := make(map[query.Variable]bool)
	dedup := make([]*query.RelationalAtom, len(relational))
	for i, a := range relational {
		out := a.Clone()
		for j, t := range out.Terms {
			v, ok := query.AsVariable(t)
			if !ok {
				continue
			}
			if seen[v] {
				fresh := rw.fresh(used)
				out.Terms[j] = fresh
				seen[fresh] = true
				generated = append(generated, query.NewComparisonAtom(v, query.OpEQ, fresh))
				continue
			}
			seen[v] = true
		}
		dedup[i] = out
	}

	// Constants: R(x, 4) -> R(x, f), f = 4
	for _, a := range dedup {
		for j, t := range a.Terms {
			c, ok := query.AsConstant(t)
			if !ok {
				continue
			}
			fresh := rw.fresh(used)
			a.Terms[j] = fresh
			generated = append(generated, query.NewComparisonAtom(fresh, query.OpEQ, c))
		}
	}

	body := make([]query.Atom, 0, len(q.Body)+len(generated))
	for _, a := range dedup {
		body = append(body, a)
	}
	for _, c := range q.ComparisonAtoms() {
		cp := *c
		body = append(body, &cp)
	}
	body = append(body, generated...)

	return &query.Query{Head: q.Head.Clone(), Body: body}
}

// fresh draws a name absent from used and reserves it.
func (rw *Rewriter) fresh(used map[query.Variable]bool) query.Variable {
	name := string(rune('a' + rw.rnd.Intn(26)))
	for used[query.Variable(name)] {
		name += string(rune('a' + rw.rnd.Intn(26)))
	}
	v := query.Variable(name)
	used[v] = true
	return v
}

// IsNormalized reports whether q is already in the form Rewrite produces.
func IsNormalized(q *query.Query) bool {
	seen := make(map[query.Variable]bool)
	for _, a := range q.RelationalAtoms() {
		for _, t := range a.Terms {
			v, ok := query.AsVariable(t)
			if !ok || seen[v] {
				return false
			}
			seen[v] = true
		}
	}
	return true
}
