// Package catalog maps relation names to their schema and backing rows.
//
// A Catalog is built once per evaluation run and passed explicitly to the
// planner and executor. It is read-only after Open.
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/wbrown/janus-cq/cq/storage"
)

var (
	// ErrUnknownRelation is returned for names absent from the schema
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrMissingSchema is returned when a database directory has no schema.txt
	ErrMissingSchema = errors.New("missing schema.txt")
)

// Relation describes one schema entry.
type Relation struct {
	Name     string
	Location string
	Types    []string
}

// Arity returns the number of columns
func (r Relation) Arity() int { return len(r.Types) }

// Catalog holds the relations of one database.
type Catalog struct {
	dir       string
	relations map[string]Relation
	order     []string
	source    storage.Source
}

// Option configures a Catalog
type Option func(*Catalog)

// WithSource makes the catalog read rows from src instead of the CSV files
// of the database directory.
func WithSource(src storage.Source) Option {
	return func(c *Catalog) {
		c.source = src
	}
}

// Open reads dir/schema.txt and records dir/files/<Name>.csv as the
// location of every relation.
func Open(dir string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(storage.SchemaPath(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrMissingSchema)
		}
		return nil, fmt.Errorf("failed to open schema: %w", err)
	}
	defer f.Close()

	relations, err := ParseSchema(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", storage.SchemaPath(dir), err)
	}
	for i := range relations {
		relations[i].Location = storage.RelationPath(dir, relations[i].Name)
	}

	cat, err := New(relations, append([]Option{WithSource(storage.DirSource{Dir: dir})}, opts...)...)
	if err != nil {
		return nil, err
	}
	cat.dir = dir
	return cat, nil
}

// New builds a catalog from explicit relations. Without WithSource the
// catalog can plan queries but not open rows.
func New(relations []Relation, opts ...Option) (*Catalog, error) {
	c := &Catalog{relations: make(map[string]Relation, len(relations))}
	for _, r := range relations {
		if _, dup := c.relations[r.Name]; dup {
			return nil, fmt.Errorf("relation %s declared twice", r.Name)
		}
		c.relations[r.Name] = r
		c.order = append(c.order, r.Name)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ParseSchema reads lines of the form `Name type type ...`. Blank lines are
// skipped.
func ParseSchema(r io.Reader) ([]Relation, error) {
	var relations []Relation
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) == 1 {
			return nil, fmt.Errorf("line %d: relation %s has no columns", line, fields[0])
		}
		relations = append(relations, Relation{
			Name:  fields[0],
			Types: fields[1:],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return relations, nil
}

// Dir returns the database directory, empty for catalogs built with New
func (c *Catalog) Dir() string { return c.dir }

// Relations returns relation names in schema order
func (c *Catalog) Relations() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Lookup returns the schema entry for name.
func (c *Catalog) Lookup(name string) (Relation, error) {
	r, ok := c.relations[name]
	if !ok {
		return Relation{}, fmt.Errorf("%w: %s", ErrUnknownRelation, name)
	}
	return r, nil
}

// Location returns the backing file of a relation
func (c *Catalog) Location(name string) (string, error) {
	r, err := c.Lookup(name)
	if err != nil {
		return "", err
	}
	return r.Location, nil
}

// Schema returns the column types of a relation
func (c *Catalog) Schema(name string) ([]string, error) {
	r, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	return r.Types, nil
}

// Arity returns the column count of a relation
func (c *Catalog) Arity(name string) (int, error) {
	r, err := c.Lookup(name)
	if err != nil {
		return 0, err
	}
	return r.Arity(), nil
}

// Open returns a fresh reader over the rows of a relation. Each call opens
// a new handle; callers close it.
func (c *Catalog) Open(name string) (storage.RowReader, error) {
	r, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	if c.source == nil {
		return nil, fmt.Errorf("catalog has no row source for %s", name)
	}
	return c.source.Open(name, r.Arity())
}
