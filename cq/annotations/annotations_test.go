package annotations

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	var seen []string
	c := NewCollector(func(e Event) { seen = append(seen, e.Name) })

	c.Add(Event{Name: QueryInvoked, Data: map[string]interface{}{"query": "Q(x) :- R(x)"}})
	c.AddTiming(QueryComplete, time.Now().Add(-time.Millisecond), map[string]interface{}{"success": true})

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, []string{QueryInvoked, QueryComplete}, seen)
	assert.GreaterOrEqual(t, events[1].Latency, time.Millisecond)

	c.Reset()
	assert.Empty(t, c.Events())
}

func TestDisabledCollector(t *testing.T) {
	c := NewCollector(nil)
	c.Add(Event{Name: QueryInvoked})
	assert.Empty(t, c.Events())

	var nilCollector *Collector
	nilCollector.Add(Event{Name: QueryInvoked})
	assert.Nil(t, nilCollector.Events())
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	tests := []struct {
		event Event
		want  string
	}{
		{
			Event{Name: QueryInvoked, Latency: 5 * time.Microsecond, Data: map[string]interface{}{"run.id": "abc", "query": "Q(x)   :- R(x, y)"}},
			"[5µs] Query abc: Q(x) :- R(x, y)",
		},
		{
			Event{Name: OperatorStats, Latency: 2500 * time.Microsecond, Data: map[string]interface{}{"operator": "Scan R(x, y)", "tuples.count": 3}},
			"[2.5ms] Scan R(x, y) 3 tuples",
		},
		{
			Event{Name: QueryComplete, Data: map[string]interface{}{"success": true, "tuples.count": 2}},
			"[0µs] === Query done with 2 tuples.",
		},
		{
			Event{Name: QueryComplete, Data: map[string]interface{}{"success": false, "error": errors.New("boom").Error()}},
			"[0µs] ✗ Query failed: boom",
		},
		{
			Event{Name: MinimizeComplete, Data: map[string]interface{}{"atoms.before": 2, "atoms.after": 1, "query": "Q(x) :- R(x, y)"}},
			"[0µs] Minimized 2 atoms to 1: Q(x) :- R(x, y)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.event.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.event))
		})
	}

	f.Handle(Event{Name: QueryRewritten, Data: map[string]interface{}{"query": "Q(x) :- R(x, y)"}})
	assert.Equal(t, "[0µs] Rewritten: Q(x) :- R(x, y)\n", buf.String())
}

func TestTruncateQuery(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "R(x, y), "
	}
	out := truncateQuery(long)
	assert.Len(t, out, 100)
	assert.True(t, len(out) > 3 && out[len(out)-3:] == "...")
}
