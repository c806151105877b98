// Package annotations records what happens while a query is evaluated and
// renders those events for the verbose console mode.
package annotations

import (
	"sync"
	"time"
)

// Event names, grouped by the stage that emits them
const (
	// Query lifecycle
	QueryInvoked     = "query/invoked"
	QueryRewritten   = "query/rewritten"
	QueryPlanCreated = "query/plan.created"
	QueryComplete    = "query/completed"

	// Operators
	OperatorStats = "operator/stats"

	// Minimization
	MinimizeComplete = "minimize/completed"

	// Errors
	ErrorQueryParsing  = "error/query.parsing"
	ErrorQueryPlanning = "error/query.planning"
)

// Event is a single annotation emitted during evaluation.
type Event struct {
	Name    string
	Start   time.Time
	End     time.Time
	Latency time.Duration
	Data    map[string]interface{}
}

// Handler processes events as they occur.
type Handler func(event Event)

// Collector accumulates events and forwards each one to its handler.
type Collector struct {
	enabled bool
	handler Handler
	events  []Event
	mu      sync.Mutex
}

// NewCollector creates a collector. A nil handler disables collection.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		events:  make([]Event, 0, 16),
	}
}

// Add records an event
func (c *Collector) Add(event Event) {
	if c == nil || !c.enabled {
		return
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	// handler runs outside the lock
	c.handler(event)
}

// AddTiming records an event that started at start and ends now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if c == nil || !c.enabled {
		return
	}
	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns a copy of the collected events.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Reset clears collected events, keeping the handler
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
