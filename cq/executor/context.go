package executor

import (
	"time"

	"github.com/wbrown/janus-cq/cq/annotations"
)

// Context receives the lifecycle points of one evaluation.
type Context interface {
	QueryBegin(runID, query string)
	QueryRewritten(query string)
	QueryPlanCreated(plan string)
	OperatorDone(name string, tuples int)
	QueryComplete(tupleCount int, err error)

	// Annotated reports whether events are being recorded
	Annotated() bool

	Collector() *annotations.Collector
}

// BaseContext ignores every event.
type BaseContext struct{}

// NewContext returns an AnnotatedContext when handler is set, else a
// BaseContext.
func NewContext(handler annotations.Handler) Context {
	if handler == nil {
		return &BaseContext{}
	}
	return &AnnotatedContext{collector: annotations.NewCollector(handler)}
}

func (c *BaseContext) QueryBegin(runID, query string)          {}
func (c *BaseContext) QueryRewritten(query string)             {}
func (c *BaseContext) QueryPlanCreated(plan string)            {}
func (c *BaseContext) OperatorDone(name string, tuples int)    {}
func (c *BaseContext) QueryComplete(tupleCount int, err error) {}
func (c *BaseContext) Annotated() bool                         { return false }
func (c *BaseContext) Collector() *annotations.Collector       { return nil }

// AnnotatedContext forwards events to a collector.
type AnnotatedContext struct {
	collector  *annotations.Collector
	runID      string
	queryStart time.Time
	stageStart time.Time
}

func (c *AnnotatedContext) QueryBegin(runID, query string) {
	c.runID = runID
	c.queryStart = time.Now()
	c.stageStart = c.queryStart
	c.collector.Add(annotations.Event{
		Name:  annotations.QueryInvoked,
		Start: c.queryStart,
		Data: map[string]interface{}{
			"run.id": runID,
			"query":  query,
		},
	})
}

func (c *AnnotatedContext) QueryRewritten(query string) {
	c.collector.AddTiming(annotations.QueryRewritten, c.stageStart, map[string]interface{}{
		"run.id": c.runID,
		"query":  query,
	})
	c.stageStart = time.Now()
}

func (c *AnnotatedContext) QueryPlanCreated(plan string) {
	c.collector.AddTiming(annotations.QueryPlanCreated, c.stageStart, map[string]interface{}{
		"run.id": c.runID,
		"plan":   plan,
	})
	c.stageStart = time.Now()
}

func (c *AnnotatedContext) OperatorDone(name string, tuples int) {
	c.collector.Add(annotations.Event{
		Name:  annotations.OperatorStats,
		Start: time.Now(),
		Data: map[string]interface{}{
			"run.id":       c.runID,
			"operator":     name,
			"tuples.count": tuples,
		},
	})
}

func (c *AnnotatedContext) QueryComplete(tupleCount int, err error) {
	data := map[string]interface{}{
		"run.id":       c.runID,
		"tuples.count": tupleCount,
		"success":      err == nil,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	c.collector.AddTiming(annotations.QueryComplete, c.queryStart, data)
}

func (c *AnnotatedContext) Annotated() bool                   { return true }
func (c *AnnotatedContext) Collector() *annotations.Collector { return c.collector }
