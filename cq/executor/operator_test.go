package executor

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/catalog"
	"github.com/wbrown/janus-cq/cq/planner"
	"github.com/wbrown/janus-cq/cq/query"
	"github.com/wbrown/janus-cq/cq/storage"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func memCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	src := storage.MemorySource{
		"A": {{cq.Int(1)}, {cq.Int(2)}, {cq.Int(3)}},
		"B": {{cq.Str("p")}, {cq.Str("q")}},
		"C": {{cq.Int(7), cq.Int(1)}, {cq.Int(8), cq.Int(2)}},
		"E": nil,
	}
	cat, err := catalog.New([]catalog.Relation{
		{Name: "A", Types: []string{"int"}},
		{Name: "B", Types: []string{"string"}},
		{Name: "C", Types: []string{"int", "int"}},
		{Name: "E", Types: []string{"int"}},
	}, catalog.WithSource(src))
	require.NoError(t, err)
	return cat
}

func scan(t *testing.T, cat *catalog.Catalog, name string, vars ...query.Variable) *Scan {
	t.Helper()
	terms := make([]query.Term, len(vars))
	for i, v := range vars {
		terms[i] = v
	}
	s, err := NewScan(cat, query.NewRelationalAtom(name, terms...))
	require.NoError(t, err)
	return s
}

func lines(tuples []Tuple) []string {
	out := make([]string, len(tuples))
	for i, t := range tuples {
		out[i] = t.String()
	}
	return out
}

func TestScanReset(t *testing.T) {
	s := scan(t, memCatalog(t), "C", "x", "y")
	first, err := Dump(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"7, 1", "8, 2"}, lines(first))
	assert.Equal(t, []query.Variable{"x", "y"}, first[0].Variables)

	require.NoError(t, s.Reset())
	again, err := Dump(s)
	require.NoError(t, err)
	assert.Equal(t, lines(first), lines(again))
	require.NoError(t, s.Close())
}

func TestScanRejectsConstants(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewScan(memCatalog(t), query.NewRelationalAtom("A", cq.Int(1)))
	})
}

func TestSelect(t *testing.T) {
	s := scan(t, memCatalog(t), "A", "x")
	cond, err := NewCondition([]*query.ComparisonAtom{
		query.NewComparisonAtom(query.Variable("x"), query.OpGTE, cq.Int(2)),
	}, s.Symbols())
	require.NoError(t, err)

	sel := NewSelect(cond, s)
	out, err := Dump(sel)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, lines(out))

	require.NoError(t, sel.Reset())
	out, err = Dump(sel)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, lines(out))
}

func TestConditionUnboundVariable(t *testing.T) {
	_, err := NewCondition([]*query.ComparisonAtom{
		query.NewComparisonAtom(query.Variable("z"), query.OpEQ, cq.Int(1)),
	}, []query.Variable{"x"})
	assert.Error(t, err)

	var none *Condition
	ok, err := none.Eval(Tuple{})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestJoinOrderAndReset(t *testing.T) {
	cat := memCatalog(t)
	j := NewJoin(scan(t, cat, "A", "x"), scan(t, cat, "B", "y"), nil)
	assert.Equal(t, []query.Variable{"x", "y"}, j.Symbols())

	first, err := Dump(j)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1, 'p'", "1, 'q'",
		"2, 'p'", "2, 'q'",
		"3, 'p'", "3, 'q'",
	}, lines(first))

	// spent until reset
	assert.False(t, j.Next())

	require.NoError(t, j.Reset())
	again, err := Dump(j)
	require.NoError(t, err)
	assert.Equal(t, lines(first), lines(again))
	require.NoError(t, j.Close())
}

func TestJoinCondition(t *testing.T) {
	cat := memCatalog(t)
	left := scan(t, cat, "A", "x")
	right := scan(t, cat, "C", "v", "w")
	cond, err := NewCondition([]*query.ComparisonAtom{
		query.NewComparisonAtom(query.Variable("x"), query.OpEQ, query.Variable("w")),
	}, []query.Variable{"x", "v", "w"})
	require.NoError(t, err)

	out, err := Dump(NewJoin(left, right, cond))
	require.NoError(t, err)
	assert.Equal(t, []string{"1, 7, 1", "2, 8, 2"}, lines(out))
}

func TestNestedJoinReset(t *testing.T) {
	cat := memCatalog(t)
	inner := NewJoin(scan(t, cat, "B", "y"), scan(t, cat, "C", "v", "w"), nil)
	outer := NewJoin(scan(t, cat, "A", "x"), inner, nil)

	out, err := Dump(outer)
	require.NoError(t, err)
	assert.Len(t, out, 3*2*2)
	assert.Equal(t, "1, 'p', 7, 1", out[0].String())
	assert.Equal(t, "3, 'q', 8, 2", out[len(out)-1].String())
}

func TestJoinWithEmptyChild(t *testing.T) {
	cat := memCatalog(t)

	out, err := Dump(NewJoin(scan(t, cat, "A", "x"), scan(t, cat, "E", "e"), nil))
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = Dump(NewJoin(scan(t, cat, "E", "e"), scan(t, cat, "A", "x"), nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProjectDeduplicates(t *testing.T) {
	cat := memCatalog(t)
	j := NewJoin(scan(t, cat, "A", "x"), scan(t, cat, "B", "y"), nil)
	p, err := NewProject([]query.Variable{"y"}, j)
	require.NoError(t, err)

	out, err := Dump(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"'p'", "'q'"}, lines(out))

	require.NoError(t, p.Reset())
	out, err = Dump(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"'p'", "'q'"}, lines(out))

	_, err = NewProject([]query.Variable{"missing"}, scan(t, cat, "A", "x"))
	assert.Error(t, err)
}

func TestProjectRepeatsHeadVariable(t *testing.T) {
	p, err := NewProject([]query.Variable{"w", "v", "w"}, scan(t, memCatalog(t), "C", "v", "w"))
	require.NoError(t, err)
	out, err := Dump(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"1, 7, 1", "2, 8, 2"}, lines(out))
}

func TestSumReplaysAfterReset(t *testing.T) {
	cat := memCatalog(t)
	child := NewCountingOperator("Scan C", scan(t, cat, "C", "v", "w"))
	agg := &query.SumAggregate{Factors: []query.Term{query.Variable("v"), query.Variable("w"), cq.Int(2)}}

	s, err := NewSum(agg, nil, "SUM(v * w * 2)", child)
	require.NoError(t, err)
	assert.Equal(t, 2, child.Count())

	out, err := Dump(s)
	require.NoError(t, err)
	// 7*1*2 + 8*2*2
	assert.Equal(t, []string{"46"}, lines(out))
	assert.Equal(t, []query.Variable{"SUM(v * w * 2)"}, out[0].Variables)

	require.NoError(t, s.Reset())
	again, err := Dump(s)
	require.NoError(t, err)
	assert.Equal(t, lines(out), lines(again))
	assert.Equal(t, 2, child.Count(), "reset must not re-read the child")
}

func TestSumGroups(t *testing.T) {
	cat := memCatalog(t)
	j := NewJoin(scan(t, cat, "B", "y"), scan(t, cat, "A", "x"), nil)
	agg := &query.SumAggregate{Factors: []query.Term{query.Variable("x")}}

	s, err := NewSum(agg, []query.Variable{"y"}, "SUM(x)", j)
	require.NoError(t, err)
	out, err := Dump(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"'p', 6", "'q', 6"}, lines(out))
}

func TestTupleEquality(t *testing.T) {
	a := NewTuple([]query.Variable{"x", "y"}, []cq.Constant{cq.Int(1), cq.Str("a")})
	b := NewTuple([]query.Variable{"u", "v"}, []cq.Constant{cq.Int(1), cq.Str("a")})
	c := NewTuple([]query.Variable{"x", "y"}, []cq.Constant{cq.Str("1"), cq.Str("a")})

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, "1, 'a'", a.String())

	v, ok := a.Value("y")
	assert.True(t, ok)
	assert.Equal(t, cq.Str("a"), v)
	assert.Equal(t, -1, a.Position("z"))

	joined := Concat(a, c)
	assert.Equal(t, 4, joined.Len())
	assert.Equal(t, []query.Variable{"x", "y", "x", "y"}, joined.Variables)
}

func TestBuildEmptyPlan(t *testing.T) {
	cat := memCatalog(t)
	q := &query.Query{
		Head: &query.Head{Name: "Q", Variables: []query.Variable{"x"}},
		Body: []query.Atom{
			query.NewRelationalAtom("A", query.Variable("x")),
			query.NewComparisonAtom(cq.Int(1), query.OpEQ, cq.Int(2)),
		},
	}
	plan, err := planner.Plan(cat, q)
	require.NoError(t, err)
	op, err := Build(cat, plan)
	require.NoError(t, err)
	assert.Nil(t, op)
}
