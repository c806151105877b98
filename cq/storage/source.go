// Package storage provides the row sources behind relation scans: the
// database directory of CSV files and a badger-backed relation store.
package storage

import (
	"errors"
	"path/filepath"

	"github.com/wbrown/janus-cq/cq"
)

// ErrNoSuchRelation is returned by a Source that holds no rows for a relation.
var ErrNoSuchRelation = errors.New("no such relation")

// RowReader streams the rows of one relation in storage order.
type RowReader interface {
	// Next advances to the next row
	Next() bool

	// Row returns the current row
	Row() []cq.Constant

	// Err returns the first error encountered by Next
	Err() error

	// Close releases any resources
	Close() error
}

// Source opens row readers by relation name. arity is the schema arity
// expected by the caller; readers report rows of any other width as errors.
type Source interface {
	Open(relation string, arity int) (RowReader, error)
}

// RelationPath returns the CSV file location of relation inside a database
// directory: <dir>/files/<relation>.csv
func RelationPath(dir, relation string) string {
	return filepath.Join(dir, "files", relation+".csv")
}

// SchemaPath returns <dir>/schema.txt
func SchemaPath(dir string) string {
	return filepath.Join(dir, "schema.txt")
}
