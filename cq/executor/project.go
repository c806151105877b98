package executor

import (
	"fmt"

	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/query"
)

// Project keeps the listed variables in order and suppresses rows it has
// already produced. Columns are located by variable, not position.
type Project struct {
	child     Operator
	variables []query.Variable
	positions []int
	seen      map[string]struct{}
	current   Tuple
}

func NewProject(vars []query.Variable, child Operator) (*Project, error) {
	symbols := child.Symbols()
	positions := make([]int, len(vars))
	for i, v := range vars {
		positions[i] = -1
		for j, s := range symbols {
			if s == v {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			return nil, fmt.Errorf("project: variable %s not in [%s]", v, joinSymbols(symbols))
		}
	}
	return &Project{
		child:     child,
		variables: vars,
		positions: positions,
		seen:      make(map[string]struct{}),
	}, nil
}

func (p *Project) Symbols() []query.Variable { return p.variables }

func (p *Project) Next() bool {
	for p.child.Next() {
		in := p.child.Tuple()
		values := make([]cq.Constant, len(p.positions))
		for i, pos := range p.positions {
			values[i] = in.Values[pos]
		}
		t := NewTuple(p.variables, values)
		key := t.Key()
		if _, dup := p.seen[key]; dup {
			continue
		}
		p.seen[key] = struct{}{}
		p.current = t
		return true
	}
	return false
}

func (p *Project) Tuple() Tuple { return p.current }
func (p *Project) Err() error   { return p.child.Err() }

func (p *Project) Reset() error {
	p.seen = make(map[string]struct{})
	p.current = Tuple{}
	return p.child.Reset()
}

func (p *Project) Close() error   { return p.child.Close() }
func (p *Project) String() string { return fmt.Sprintf("Project [%s]", joinSymbols(p.variables)) }
