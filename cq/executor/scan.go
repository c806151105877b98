package executor

import (
	"fmt"

	"github.com/wbrown/janus-cq/cq/query"
	"github.com/wbrown/janus-cq/cq/storage"
)

// RowOpener opens a fresh reader over a relation. *catalog.Catalog
// implements it.
type RowOpener interface {
	Open(relation string) (storage.RowReader, error)
}

// Scan yields the rows of one relation in storage order, tagged with the
// variables of its atom. Reset reopens the relation.
type Scan struct {
	atom    *query.RelationalAtom
	symbols []query.Variable
	opener  RowOpener
	reader  storage.RowReader
	current Tuple
	err     error
}

// NewScan opens the relation of atom. Every term of atom must be a
// variable; the rewriter guarantees it.
func NewScan(opener RowOpener, atom *query.RelationalAtom) (*Scan, error) {
	symbols := atom.Variables()
	if len(symbols) != len(atom.Terms) {
		panic(fmt.Sprintf("executor: scan of %s with constant terms", atom))
	}
	s := &Scan{atom: atom, symbols: symbols, opener: opener}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scan) open() error {
	r, err := s.opener.Open(s.atom.Name)
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.atom, err)
	}
	s.reader = r
	return nil
}

func (s *Scan) Symbols() []query.Variable { return s.symbols }

func (s *Scan) Next() bool {
	if s.err != nil || s.reader == nil {
		return false
	}
	if !s.reader.Next() {
		if err := s.reader.Err(); err != nil {
			s.err = fmt.Errorf("scan %s: %w", s.atom, err)
		}
		return false
	}
	row := s.reader.Row()
	if len(row) != len(s.symbols) {
		s.err = fmt.Errorf("scan %s: row has %d values", s.atom, len(row))
		return false
	}
	s.current = NewTuple(s.symbols, row)
	return true
}

func (s *Scan) Tuple() Tuple { return s.current }
func (s *Scan) Err() error   { return s.err }

func (s *Scan) Reset() error {
	if err := s.Close(); err != nil {
		return err
	}
	s.err = nil
	s.current = Tuple{}
	return s.open()
}

func (s *Scan) Close() error {
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	return err
}

func (s *Scan) String() string { return "Scan " + s.atom.String() }
