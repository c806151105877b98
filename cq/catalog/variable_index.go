package catalog

import (
	"fmt"

	"github.com/wbrown/janus-cq/cq/query"
)

// Position locates a variable in a plan: Global is its column in the
// concatenation of all scanned atoms, Relation the relation number of the
// atom that binds it, Local its column inside that atom.
type Position struct {
	Global   int
	Relation int
	Local    int
}

// VariableIndex records where the planner placed each variable. It is
// written while a plan is built and frozen before any operator runs.
type VariableIndex struct {
	positions map[query.Variable]Position
	order     []query.Variable
	frozen    bool
}

// NewVariableIndex creates an empty index
func NewVariableIndex() *VariableIndex {
	return &VariableIndex{positions: make(map[query.Variable]Position)}
}

// Add records v as column local of relation number rel. Binding a variable
// twice is an error.
func (ix *VariableIndex) Add(v query.Variable, rel, local int) error {
	if ix.frozen {
		panic(fmt.Sprintf("catalog: write of %s to frozen variable index", v))
	}
	if prev, ok := ix.positions[v]; ok {
		return fmt.Errorf("variable %s already bound by relation %d", v, prev.Relation)
	}
	ix.positions[v] = Position{Global: len(ix.order), Relation: rel, Local: local}
	ix.order = append(ix.order, v)
	return nil
}

// Freeze makes the index read-only
func (ix *VariableIndex) Freeze() { ix.frozen = true }

// Frozen reports whether Freeze was called
func (ix *VariableIndex) Frozen() bool { return ix.frozen }

func (ix *VariableIndex) Lookup(v query.Variable) (Position, bool) {
	p, ok := ix.positions[v]
	return p, ok
}

// RelationOf returns the relation number owning v
func (ix *VariableIndex) RelationOf(v query.Variable) (int, bool) {
	p, ok := ix.positions[v]
	return p.Relation, ok
}

// Variables returns variables in the order they were added
func (ix *VariableIndex) Variables() []query.Variable {
	out := make([]query.Variable, len(ix.order))
	copy(out, ix.order)
	return out
}

func (ix *VariableIndex) Len() int { return len(ix.order) }
