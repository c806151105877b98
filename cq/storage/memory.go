package storage

import (
	"fmt"

	"github.com/wbrown/janus-cq/cq"
)

// MemorySource serves relations held in memory.
type MemorySource map[string][][]cq.Constant

// Open implements Source.
func (m MemorySource) Open(relation string, arity int) (RowReader, error) {
	rows, ok := m[relation]
	if !ok {
		return nil, fmt.Errorf("relation %s: %w", relation, ErrNoSuchRelation)
	}
	return &sliceReader{relation: relation, arity: arity, rows: rows, pos: -1}, nil
}

type sliceReader struct {
	relation string
	arity    int
	rows     [][]cq.Constant
	pos      int
	err      error
}

func (r *sliceReader) Next() bool {
	if r.err != nil || r.pos+1 >= len(r.rows) {
		return false
	}
	r.pos++
	if r.arity > 0 && len(r.rows[r.pos]) != r.arity {
		r.err = fmt.Errorf("relation %s: expected %d fields, got %d", r.relation, r.arity, len(r.rows[r.pos]))
		return false
	}
	return true
}

func (r *sliceReader) Row() []cq.Constant {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return nil
	}
	return r.rows[r.pos]
}

func (r *sliceReader) Err() error   { return r.err }
func (r *sliceReader) Close() error { return nil }

// ReadAll drains a reader and closes it.
func ReadAll(r RowReader) ([][]cq.Constant, error) {
	defer r.Close()
	var rows [][]cq.Constant
	for r.Next() {
		rows = append(rows, r.Row())
	}
	return rows, r.Err()
}
