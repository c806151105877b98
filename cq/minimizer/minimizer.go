// Package minimizer removes redundant relational atoms from conjunctive
// queries. An atom is redundant when a containment mapping sends the whole
// body into the body without it, keeping every head variable fixed.
package minimizer

import (
	"github.com/wbrown/janus-cq/cq/query"
)

// Minimize returns an equivalent query whose body has no redundant atom.
// Candidates are tried from the end of the body, so of two equivalent
// atoms the earlier one is kept. q is not modified.
func Minimize(q *query.Query) *query.Query {
	out := q.Clone()
	for {
		removed := false
		for i := len(out.Body) - 1; i >= 0; i-- {
			if IsRedundant(out, i) {
				out.Body = append(out.Body[:i:i], out.Body[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			return out
		}
	}
}

// IsRedundant reports whether q.Body[i], a relational atom, can be removed
// without changing the answers of q.
func IsRedundant(q *query.Query, i int) bool {
	a, ok := q.Body[i].(*query.RelationalAtom)
	if !ok {
		return false
	}

	rest := make([]query.Atom, 0, len(q.Body)-1)
	rest = append(rest, q.Body[:i]...)
	rest = append(rest, q.Body[i+1:]...)
	fixed := q.Head.Distinguished()

	for _, other := range rest {
		b, ok := other.(*query.RelationalAtom)
		if !ok || b.Name != a.Name || len(b.Terms) != len(a.Terms) {
			continue
		}
		mapping, ok := mapOnto(a, b, fixed)
		if !ok {
			continue
		}
		if contained(q.Body, rest, mapping) {
			return true
		}
	}
	return false
}

// mapOnto sends each free variable of a to the term at the same position
// of b. Constants of a must meet the same constant in b.
func mapOnto(a, b *query.RelationalAtom, fixed map[query.Variable]bool) (map[query.Variable]query.Term, bool) {
	mapping := make(map[query.Variable]query.Term)
	for pos, t := range a.Terms {
		target := b.Terms[pos]
		v, isVar := query.AsVariable(t)
		if !isVar {
			if t != target {
				return nil, false
			}
			continue
		}
		if fixed[v] {
			continue
		}
		if prev, seen := mapping[v]; seen && prev != target {
			return nil, false
		}
		mapping[v] = target
	}
	return mapping, true
}

// contained reports whether every atom of body, after mapping, occurs in rest.
func contained(body, rest []query.Atom, mapping map[query.Variable]query.Term) bool {
	for _, atom := range body {
		if !present(apply(atom, mapping), rest) {
			return false
		}
	}
	return true
}

func present(atom query.Atom, in []query.Atom) bool {
	for _, candidate := range in {
		switch a := atom.(type) {
		case *query.RelationalAtom:
			if c, ok := candidate.(*query.RelationalAtom); ok && a.Equal(c) {
				return true
			}
		case *query.ComparisonAtom:
			if c, ok := candidate.(*query.ComparisonAtom); ok && a.Equal(c) {
				return true
			}
		}
	}
	return false
}

func apply(atom query.Atom, mapping map[query.Variable]query.Term) query.Atom {
	switch a := atom.(type) {
	case *query.RelationalAtom:
		terms := make([]query.Term, len(a.Terms))
		for i, t := range a.Terms {
			terms[i] = substitute(t, mapping)
		}
		return query.NewRelationalAtom(a.Name, terms...)
	case *query.ComparisonAtom:
		return query.NewComparisonAtom(substitute(a.Left, mapping), a.Op, substitute(a.Right, mapping))
	}
	return atom
}

func substitute(t query.Term, mapping map[query.Variable]query.Term) query.Term {
	if v, ok := query.AsVariable(t); ok {
		if target, mapped := mapping[v]; mapped {
			return target
		}
	}
	return t
}
