package planner

import (
	"fmt"
	"strings"

	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/query"
)

// QueryPlan is a left-deep operator tree for one normalized query.
type QueryPlan struct {
	Query *query.Query           // normalized query the plan was built from
	Root  Node                   // nil when a constant condition is false
	Index *catalog.VariableIndex // frozen variable placement

	// Selections holds the conditions classified per relation number.
	Selections map[int][]*query.ComparisonAtom
	// Joins holds the conditions applied when relation i is joined in.
	Joins map[int][]*query.ComparisonAtom
}

// Empty reports whether the plan produces no rows without reading any
func (p *QueryPlan) Empty() bool { return p.Root == nil }

// Symbols returns the output schema of the plan.
func (p *QueryPlan) Symbols() []query.Variable {
	if p.Root != nil {
		return p.Root.Symbols()
	}
	return outputSymbols(p.Query.Head)
}

// String renders the plan as an indented tree.
func (p *QueryPlan) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n", p.Query)
	if p.Root == nil {
		sb.WriteString("Empty (constant condition is false)\n")
		return sb.String()
	}
	writeNode(&sb, p.Root, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.String())
	sb.WriteByte('\n')
	for _, child := range n.Children() {
		writeNode(sb, child, depth+1)
	}
}

// Node is one operator of a plan.
type Node interface {
	Symbols() []query.Variable
	Children() []Node
	String() string
}

// ScanNode reads every row of one relational atom.
type ScanNode struct {
	Atom     *query.RelationalAtom
	Relation int
}

func (n *ScanNode) Symbols() []query.Variable { return n.Atom.Variables() }
func (n *ScanNode) Children() []Node          { return nil }
func (n *ScanNode) String() string {
	return fmt.Sprintf("Scan %s #%d", n.Atom, n.Relation)
}

// SelectNode keeps child rows satisfying every condition.
type SelectNode struct {
	Conditions []*query.ComparisonAtom
	Child      Node
}

func (n *SelectNode) Symbols() []query.Variable { return n.Child.Symbols() }
func (n *SelectNode) Children() []Node          { return []Node{n.Child} }
func (n *SelectNode) String() string {
	return "Select " + formatConditions(n.Conditions)
}

// JoinNode is a nested loop join. No conditions means a cartesian product.
type JoinNode struct {
	Left       Node
	Right      Node
	Conditions []*query.ComparisonAtom
}

func (n *JoinNode) Symbols() []query.Variable {
	left := n.Left.Symbols()
	out := make([]query.Variable, 0, len(left)+len(n.Right.Symbols()))
	out = append(out, left...)
	return append(out, n.Right.Symbols()...)
}

func (n *JoinNode) Children() []Node { return []Node{n.Left, n.Right} }
func (n *JoinNode) String() string {
	if len(n.Conditions) == 0 {
		return "Join (cartesian)"
	}
	return "Join " + formatConditions(n.Conditions)
}

// ProjectNode keeps the listed variables, in order, without duplicate rows.
type ProjectNode struct {
	Variables []query.Variable
	Child     Node
}

func (n *ProjectNode) Symbols() []query.Variable { return n.Variables }
func (n *ProjectNode) Children() []Node          { return []Node{n.Child} }
func (n *ProjectNode) String() string {
	return "Project [" + joinVariables(n.Variables) + "]"
}

// SumNode groups child rows by GroupBy and sums the product of the
// aggregate factors per group.
type SumNode struct {
	GroupBy   []query.Variable
	Aggregate *query.SumAggregate
	Child     Node
}

func (n *SumNode) Symbols() []query.Variable {
	out := make([]query.Variable, 0, len(n.GroupBy)+1)
	out = append(out, n.GroupBy...)
	return append(out, SumSymbol(n.Aggregate))
}

func (n *SumNode) Children() []Node { return []Node{n.Child} }
func (n *SumNode) String() string {
	return fmt.Sprintf("Sum %s group by [%s]", n.Aggregate, joinVariables(n.GroupBy))
}

// SumSymbol names the aggregate output column.
func SumSymbol(agg *query.SumAggregate) query.Variable {
	return query.Variable(agg.String())
}

func outputSymbols(h *query.Head) []query.Variable {
	out := append([]query.Variable(nil), h.Variables...)
	if h.Sum != nil {
		out = append(out, SumSymbol(h.Sum))
	}
	return out
}

func formatConditions(conds []*query.ComparisonAtom) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func joinVariables(vars []query.Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
