package executor

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/annotations"
	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/parser"
	"github.com/wbrown/janus-cq/cq/planner"
	"github.com/wbrown/janus-cq/cq/query"
	"github.com/wbrown/janus-cq/cq/storage"
)

const testDB = "testdata/db"

func openTestDB(t *testing.T, opts ...catalog.Option) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(testDB, opts...)
	require.NoError(t, err)
	return cat
}

func mustParse(t *testing.T, s string) *query.Query {
	t.Helper()
	q, err := parser.ParseQuery(s)
	require.NoError(t, err)
	return q
}

func evalQuery(t *testing.T, cat *catalog.Catalog, s string) *Result {
	t.Helper()
	p := planner.New(cat, planner.WithRewriter(planner.NewRewriter(planner.WithSeed(11))))
	res, err := Evaluate(context.Background(), cat, mustParse(t, s), WithPlanner(p))
	require.NoError(t, err)
	return res
}

func TestEvaluateGolden(t *testing.T) {
	cat := openTestDB(t)
	tests := []struct {
		name  string
		query string
	}{
		{"select", "Q(x) :- R(x, 'a')"},
		{"join", "Q(x, z) :- R(x, y), S(x, w, z)"},
		{"sum", "Q(SUM(x * y)) :- N(x, y)"},
		{"group_sum", "Q(z, SUM(w)) :- S(x, w, z)"},
		{"three_way", "Q(x, c) :- R(x, y), S(x, w, z), T(z, c), c > 5"},
		{"project_dedup", "Q(y) :- R(x, y)"},
		{"cartesian", "Q(y, c) :- R(x, y), T(z, c)"},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := evalQuery(t, cat, tt.query)
			var buf bytes.Buffer
			require.NoError(t, res.WriteLines(&buf))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestSelectionByConstant(t *testing.T) {
	cat := openTestDB(t)
	viaConstant := evalQuery(t, cat, "Q(x) :- R(x, 'a')")
	viaComparison := evalQuery(t, cat, "Q(x) :- R(x, y), y = 'a'")

	assert.Equal(t, []string{"1", "3"}, viaComparison.Lines())
	assert.Equal(t, viaComparison.Lines(), viaConstant.Lines())
}

func TestRepeatedVariable(t *testing.T) {
	cat, err := catalog.New(
		[]catalog.Relation{{Name: "P", Types: []string{"int", "int"}}},
		catalog.WithSource(storage.MemorySource{"P": {
			{cq.Int(1), cq.Int(1)},
			{cq.Int(1), cq.Int(2)},
			{cq.Int(3), cq.Int(3)},
		}}),
	)
	require.NoError(t, err)
	res := evalQuery(t, cat, "Q(x) :- P(x, x)")
	assert.Equal(t, []string{"1", "3"}, res.Lines())
}

// Rows are deduplicated only by a Project or Sum tail. A head that keeps
// every body variable passes duplicate input rows through unchanged.
func TestDuplicateRows(t *testing.T) {
	cat, err := catalog.New(
		[]catalog.Relation{
			{Name: "D", Types: []string{"int"}},
			{Name: "E", Types: []string{"int", "int"}},
		},
		catalog.WithSource(storage.MemorySource{
			"D": {{cq.Int(1)}, {cq.Int(1)}},
			"E": {{cq.Int(1), cq.Int(2)}, {cq.Int(1), cq.Int(3)}},
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "1"}, evalQuery(t, cat, "Q(x) :- D(x)").Lines())
	assert.Equal(t, []string{"1"}, evalQuery(t, cat, "Q(x) :- E(x, y)").Lines())
}

func TestConstantFalse(t *testing.T) {
	cat := openTestDB(t)
	res := evalQuery(t, cat, "Q(x) :- R(x, y), 1 = 2")
	assert.True(t, res.Plan.Empty())
	assert.Zero(t, res.Len())
	assert.Equal(t, []query.Variable{"x"}, res.Symbols)

	res = evalQuery(t, cat, "Q(x) :- R(x, y), 1 < 2")
	assert.Equal(t, 3, res.Len())
}

func TestJoinCommutes(t *testing.T) {
	cat := openTestDB(t)
	a := evalQuery(t, cat, "Q(x, z) :- R(x, y), S(x, w, z)")
	b := evalQuery(t, cat, "Q(x, z) :- S(x, w, z), R(x, y)")
	assert.ElementsMatch(t, a.Lines(), b.Lines())
	assert.Len(t, a.Lines(), 4)
}

func TestEmptyRelation(t *testing.T) {
	cat := openTestDB(t)
	assert.Zero(t, evalQuery(t, cat, "Q(x, e) :- R(x, y), E(e)").Len())
	assert.Zero(t, evalQuery(t, cat, "Q(x, e) :- E(e), R(x, y)").Len())
	assert.Zero(t, evalQuery(t, cat, "Q(SUM(e)) :- E(e)").Len())
}

func TestEvaluateErrors(t *testing.T) {
	cat := openTestDB(t)
	ctx := context.Background()

	_, err := Evaluate(ctx, cat, mustParse(t, "Q(x) :- R(x, y), y < 3"))
	assert.ErrorIs(t, err, cq.ErrKindMismatch)

	_, err = Evaluate(ctx, cat, mustParse(t, "Q(SUM(y)) :- R(x, y)"))
	assert.ErrorContains(t, err, "not an integer")

	_, err = Evaluate(ctx, cat, mustParse(t, "Q(x) :- Missing(x)"))
	assert.ErrorIs(t, err, catalog.ErrUnknownRelation)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Evaluate(canceled, cat, mustParse(t, "Q(x) :- R(x, y)"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMissingRelationFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(dir+"/schema.txt", "Z int\n"))
	cat, err := catalog.Open(dir)
	require.NoError(t, err)

	_, err = Evaluate(context.Background(), cat, mustParse(t, "Q(x) :- Z(x)"))
	assert.ErrorIs(t, err, storage.ErrNoSuchRelation)
}

func TestEvaluateAnnotations(t *testing.T) {
	cat := openTestDB(t)
	var names []string
	handler := func(e annotations.Event) { names = append(names, e.Name) }

	res, err := Evaluate(context.Background(), cat, mustParse(t, "Q(x) :- R(x, 'a')"), WithHandler(handler))
	require.NoError(t, err)
	assert.NotEqual(t, "", res.RunID.String())

	require.GreaterOrEqual(t, len(names), 5)
	assert.Equal(t, annotations.QueryInvoked, names[0])
	assert.Equal(t, annotations.QueryRewritten, names[1])
	assert.Equal(t, annotations.QueryPlanCreated, names[2])
	assert.Contains(t, names, annotations.OperatorStats)
	assert.Equal(t, annotations.QueryComplete, names[len(names)-1])
}

func TestResultTable(t *testing.T) {
	res := evalQuery(t, openTestDB(t), "Q(x, y) :- R(x, y)")
	table := res.Table()
	assert.Contains(t, table, "x")
	assert.Contains(t, table, "'b'")
	assert.Contains(t, table, "_3 rows_")

	empty := evalQuery(t, openTestDB(t), "Q(x) :- R(x, y), 1 = 2")
	assert.Contains(t, empty.Table(), "_No rows_")
}

func TestBadgerSourceMatchesCSV(t *testing.T) {
	csvCat := openTestDB(t)

	store, err := storage.NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	for _, name := range csvCat.Relations() {
		r, err := csvCat.Open(name)
		require.NoError(t, err)
		_, err = store.Load(name, r)
		r.Close()
		require.NoError(t, err)
	}
	badgerCat := openTestDB(t, catalog.WithSource(store))

	for _, s := range []string{
		"Q(x, z) :- R(x, y), S(x, w, z)",
		"Q(z, SUM(w)) :- S(x, w, z)",
		"Q(x, c) :- R(x, y), S(x, w, z), T(z, c), c > 5",
	} {
		assert.Equal(t, evalQuery(t, csvCat, s).Lines(), evalQuery(t, badgerCat, s).Lines(), s)
	}
}
