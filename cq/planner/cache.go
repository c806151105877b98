package planner

import (
	"sync"
	"sync/atomic"

	"github.com/wbrown/janus-cq/cq/query"
)

// PlanCache keeps plans keyed by the textual form of the query they were
// prepared from. Plans are immutable once built, so a cached plan can be
// executed any number of times.
type PlanCache struct {
	mu      sync.RWMutex
	plans   map[string]*QueryPlan
	order   []string
	maxSize int

	hits   int64
	misses int64
}

// NewPlanCache creates a cache holding at most maxSize plans.
func NewPlanCache(maxSize int) *PlanCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &PlanCache{
		plans:   make(map[string]*QueryPlan),
		maxSize: maxSize,
	}
}

// Get returns the cached plan for q. A nil cache always misses.
func (c *PlanCache) Get(q *query.Query) (*QueryPlan, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	plan, ok := c.plans[q.String()]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return plan, true
}

// Set stores a plan, evicting the oldest entry when full
func (c *PlanCache) Set(q *query.Query, plan *QueryPlan) {
	if c == nil || plan == nil {
		return
	}
	key := q.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.plans[key]; !ok {
		if len(c.plans) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.plans, oldest)
		}
		c.order = append(c.order, key)
	}
	c.plans[key] = plan
}

func (c *PlanCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans = make(map[string]*QueryPlan)
	c.order = nil
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Stats returns cache statistics
func (c *PlanCache) Stats() (hits, misses int64, size int) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses), len(c.plans)
}
