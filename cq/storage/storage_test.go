package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-cq/cq"
)

func writeRelation(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files"), 0o755))
	require.NoError(t, os.WriteFile(RelationPath(dir, name), []byte(content), 0o644))
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		line string
		want []cq.Constant
	}{
		{"1, 2, 3", []cq.Constant{cq.Int(1), cq.Int(2), cq.Int(3)}},
		{"1,2", []cq.Constant{cq.Int(1), cq.Int(2)}},
		{"-4, 'adam'", []cq.Constant{cq.Int(-4), cq.Str("adam")}},
		{"'a, b', 7", []cq.Constant{cq.Str("a, b"), cq.Int(7)}},
		{"''", []cq.Constant{cq.Str("")}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseRow(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"1,,2", "'open, 2", "x"} {
		_, err := ParseRow(bad)
		assert.Error(t, err, bad)
	}
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeRelation(t, dir, "R", "1, 'a'\n2, 'b'\n\n3, 'a'\n")

	src := DirSource{Dir: dir}
	r, err := src.Open("R", 2)
	require.NoError(t, err)
	rows, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, [][]cq.Constant{
		{cq.Int(1), cq.Str("a")},
		{cq.Int(2), cq.Str("b")},
		{cq.Int(3), cq.Str("a")},
	}, rows)

	t.Run("missing file", func(t *testing.T) {
		_, err := src.Open("S", 1)
		assert.ErrorIs(t, err, ErrNoSuchRelation)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		writeRelation(t, dir, "T", "1, 2\n3\n")
		r, err := src.Open("T", 2)
		require.NoError(t, err)
		_, err = ReadAll(r)
		assert.ErrorContains(t, err, "expected 2 fields")
	})
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	rows := [][]cq.Constant{
		{cq.Int(1), cq.Str("a")},
		{cq.Int(2), cq.Str("b")},
		{cq.Int(3), cq.Str("a")},
	}
	src := MemorySource{"R": rows, "Empty": nil}

	for _, name := range []string{"R", "Empty"} {
		r, err := src.Open(name, 0)
		require.NoError(t, err)
		_, err = store.Load(name, r)
		require.NoError(t, err)
	}

	rels, err := store.Relations()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"R": 3, "Empty": 0}, rels)

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"Empty", "R"}, names)

	r, err := store.Open("R", 2)
	require.NoError(t, err)
	got, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	r, err = store.Open("Empty", 2)
	require.NoError(t, err)
	got, err = ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = store.Open("Missing", 1)
	assert.ErrorIs(t, err, ErrNoSuchRelation)

	t.Run("reload replaces rows", func(t *testing.T) {
		r, err := MemorySource{"R": rows[:1]}.Open("R", 2)
		require.NoError(t, err)
		n, err := store.Load("R", r)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		r2, err := store.Open("R", 2)
		require.NoError(t, err)
		got, err := ReadAll(r2)
		require.NoError(t, err)
		assert.Equal(t, rows[:1], got)
	})
}

func TestMemorySourceArity(t *testing.T) {
	src := MemorySource{"R": {{cq.Int(1)}, {cq.Int(1), cq.Int(2)}}}
	r, err := src.Open("R", 1)
	require.NoError(t, err)
	_, err = ReadAll(r)
	assert.Error(t, err)
}
