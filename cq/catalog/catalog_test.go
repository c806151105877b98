package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/query"
	"github.com/wbrown/janus-cq/cq/storage"
)

func makeDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files"), 0o755))
	schema := "R int string\n\nS int int int\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.txt"), []byte(schema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files", "R.csv"), []byte("1, 'a'\n2, 'b'\n"), 0o644))
	return dir
}

func TestOpen(t *testing.T) {
	dir := makeDB(t)
	cat, err := Open(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cat.Dir())
	assert.Equal(t, []string{"R", "S"}, cat.Relations())

	loc, err := cat.Location("R")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "files", "R.csv"), loc)

	schema, err := cat.Schema("S")
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "int", "int"}, schema)

	arity, err := cat.Arity("R")
	require.NoError(t, err)
	assert.Equal(t, 2, arity)

	_, err = cat.Arity("T")
	assert.ErrorIs(t, err, ErrUnknownRelation)

	r, err := cat.Open("R")
	require.NoError(t, err)
	rows, err := storage.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, [][]cq.Constant{{cq.Int(1), cq.Str("a")}, {cq.Int(2), cq.Str("b")}}, rows)

	// S is declared but has no file
	_, err = cat.Open("S")
	assert.ErrorIs(t, err, storage.ErrNoSuchRelation)
}

func TestOpenMissingSchema(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingSchema)
}

func TestWithSource(t *testing.T) {
	src := storage.MemorySource{"R": {{cq.Int(9), cq.Str("z")}}}
	cat, err := Open(makeDB(t), WithSource(src))
	require.NoError(t, err)

	r, err := cat.Open("R")
	require.NoError(t, err)
	rows, err := storage.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, [][]cq.Constant{{cq.Int(9), cq.Str("z")}}, rows)
}

func TestParseSchema(t *testing.T) {
	rels, err := ParseSchema(strings.NewReader("A int\n  B string   int \n"))
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "B", rels[1].Name)
	assert.Equal(t, 2, rels[1].Arity())

	_, err = ParseSchema(strings.NewReader("A\n"))
	assert.Error(t, err)

	_, err = New([]Relation{{Name: "A", Types: []string{"int"}}, {Name: "A", Types: []string{"int"}}})
	assert.Error(t, err)
}

func TestNewWithoutSource(t *testing.T) {
	cat, err := New([]Relation{{Name: "A", Types: []string{"int"}}})
	require.NoError(t, err)
	_, err = cat.Open("A")
	assert.Error(t, err)
}

func TestVariableIndex(t *testing.T) {
	ix := NewVariableIndex()
	require.NoError(t, ix.Add("x", 0, 0))
	require.NoError(t, ix.Add("y", 0, 1))
	require.NoError(t, ix.Add("z", 1, 0))

	p, ok := ix.Lookup("z")
	require.True(t, ok)
	assert.Equal(t, Position{Global: 2, Relation: 1, Local: 0}, p)

	rel, ok := ix.RelationOf("y")
	assert.True(t, ok)
	assert.Equal(t, 0, rel)

	_, ok = ix.Lookup("w")
	assert.False(t, ok)

	assert.Error(t, ix.Add("x", 1, 1))
	assert.Equal(t, []query.Variable{"x", "y", "z"}, ix.Variables())
	assert.Equal(t, 3, ix.Len())

	ix.Freeze()
	assert.True(t, ix.Frozen())
	assert.Panics(t, func() { _ = ix.Add("w", 2, 0) })
}
