package query

import (
	"strings"

	"github.com/wbrown/janus-cq/cq"
)

// Term is an element of an atom: a Variable or a cq.Constant.
type Term interface {
	IsVariable() bool
	String() string
}

// Variable names a logical column. Two variables are equal when their
// names are equal.
type Variable string

func (v Variable) IsVariable() bool { return true }
func (v Variable) String() string   { return string(v) }

// AsVariable returns the term as a Variable when it is one.
func AsVariable(t Term) (Variable, bool) {
	v, ok := t.(Variable)
	return v, ok
}

// AsConstant returns the term as a constant when it is one.
func AsConstant(t Term) (cq.Constant, bool) {
	c, ok := t.(cq.Constant)
	return c, ok
}

// Atom is either a *RelationalAtom or a *ComparisonAtom.
type Atom interface {
	String() string
	atom()
}

// RelationalAtom is Name(t1, ..., tn).
type RelationalAtom struct {
	Name  string
	Terms []Term
}

func (*RelationalAtom) atom() {}

// NewRelationalAtom builds a relational atom over the given terms.
func NewRelationalAtom(name string, terms ...Term) *RelationalAtom {
	return &RelationalAtom{Name: name, Terms: terms}
}

func (a *RelationalAtom) String() string {
	return a.Name + "(" + joinTerms(a.Terms, ", ") + ")"
}

// Variables returns the variable terms of the atom in positional order.
func (a *RelationalAtom) Variables() []Variable {
	vars := make([]Variable, 0, len(a.Terms))
	for _, t := range a.Terms {
		if v, ok := t.(Variable); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// Equal reports structural equality: same name and pairwise equal terms.
func (a *RelationalAtom) Equal(other *RelationalAtom) bool {
	if a.Name != other.Name || len(a.Terms) != len(other.Terms) {
		return false
	}
	for i := range a.Terms {
		if a.Terms[i] != other.Terms[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy with its own term slice.
func (a *RelationalAtom) Clone() *RelationalAtom {
	terms := make([]Term, len(a.Terms))
	copy(terms, a.Terms)
	return &RelationalAtom{Name: a.Name, Terms: terms}
}

// ComparisonAtom is Left Op Right.
type ComparisonAtom struct {
	Left  Term
	Right Term
	Op    CompareOp
}

func (*ComparisonAtom) atom() {}

// NewComparisonAtom builds left op right.
func NewComparisonAtom(left Term, op CompareOp, right Term) *ComparisonAtom {
	return &ComparisonAtom{Left: left, Right: right, Op: op}
}

func (c *ComparisonAtom) String() string {
	return c.Left.String() + " " + c.Op.String() + " " + c.Right.String()
}

// Equal reports structural equality.
func (c *ComparisonAtom) Equal(other *ComparisonAtom) bool {
	return c.Op == other.Op && c.Left == other.Left && c.Right == other.Right
}

// Variables returns the variables referenced by the comparison.
func (c *ComparisonAtom) Variables() []Variable {
	var vars []Variable
	if v, ok := c.Left.(Variable); ok {
		vars = append(vars, v)
	}
	if v, ok := c.Right.(Variable); ok {
		vars = append(vars, v)
	}
	return vars
}

// SumAggregate is SUM(f1 * f2 * ...). Each factor is a variable or an
// integer constant.
type SumAggregate struct {
	Factors []Term
}

func (s *SumAggregate) String() string {
	return "SUM(" + joinTerms(s.Factors, " * ") + ")"
}

// Variables returns the variable factors.
func (s *SumAggregate) Variables() []Variable {
	var vars []Variable
	for _, t := range s.Factors {
		if v, ok := t.(Variable); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// Head is Name(v1, ..., vn[, SUM(...)]).
type Head struct {
	Name      string
	Variables []Variable
	Sum       *SumAggregate
}

func (h *Head) String() string {
	parts := make([]string, 0, len(h.Variables)+1)
	for _, v := range h.Variables {
		parts = append(parts, v.String())
	}
	if h.Sum != nil {
		parts = append(parts, h.Sum.String())
	}
	return h.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Contains reports whether v is one of the head variables.
func (h *Head) Contains(v Variable) bool {
	for _, hv := range h.Variables {
		if hv == v {
			return true
		}
	}
	return false
}

// Distinguished returns every variable the head exposes, including the
// variables of its SUM aggregate.
func (h *Head) Distinguished() map[Variable]bool {
	out := make(map[Variable]bool, len(h.Variables))
	for _, v := range h.Variables {
		out[v] = true
	}
	if h.Sum != nil {
		for _, v := range h.Sum.Variables() {
			out[v] = true
		}
	}
	return out
}

// Clone copies the head.
func (h *Head) Clone() *Head {
	out := &Head{Name: h.Name, Variables: append([]Variable(nil), h.Variables...)}
	if h.Sum != nil {
		out.Sum = &SumAggregate{Factors: append([]Term(nil), h.Sum.Factors...)}
	}
	return out
}

// Query is Head :- Body.
type Query struct {
	Head *Head
	Body []Atom
}

func (q *Query) String() string {
	parts := make([]string, len(q.Body))
	for i, a := range q.Body {
		parts[i] = a.String()
	}
	return q.Head.String() + " :- " + strings.Join(parts, ", ")
}

// RelationalAtoms returns the relational atoms of the body in order.
func (q *Query) RelationalAtoms() []*RelationalAtom {
	var out []*RelationalAtom
	for _, a := range q.Body {
		if ra, ok := a.(*RelationalAtom); ok {
			out = append(out, ra)
		}
	}
	return out
}

// ComparisonAtoms returns the comparison atoms of the body in order.
func (q *Query) ComparisonAtoms() []*ComparisonAtom {
	var out []*ComparisonAtom
	for _, a := range q.Body {
		if ca, ok := a.(*ComparisonAtom); ok {
			out = append(out, ca)
		}
	}
	return out
}

// Variables returns every variable mentioned anywhere in the query.
func (q *Query) Variables() map[Variable]bool {
	out := q.Head.Distinguished()
	for _, a := range q.Body {
		switch a := a.(type) {
		case *RelationalAtom:
			for _, v := range a.Variables() {
				out[v] = true
			}
		case *ComparisonAtom:
			for _, v := range a.Variables() {
				out[v] = true
			}
		}
	}
	return out
}

// Clone deep-copies the query.
func (q *Query) Clone() *Query {
	body := make([]Atom, len(q.Body))
	for i, a := range q.Body {
		switch a := a.(type) {
		case *RelationalAtom:
			body[i] = a.Clone()
		case *ComparisonAtom:
			c := *a
			body[i] = &c
		}
	}
	return &Query{Head: q.Head.Clone(), Body: body}
}

func joinTerms(terms []Term, sep string) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}
