package executor

import (
	"github.com/google/uuid"
	"github.com/wbrown/janus-cq/cq/annotations"
	"github.com/wbrown/janus-cq/cq/planner"
)

// EvalOptions configures Evaluate
type EvalOptions struct {
	Handler annotations.Handler
	Planner *planner.Planner
	RunID   uuid.UUID
}

// Option sets an EvalOptions field
type Option func(*EvalOptions)

// WithHandler receives annotation events for the evaluation.
func WithHandler(h annotations.Handler) Option {
	return func(o *EvalOptions) { o.Handler = h }
}

// WithPlanner reuses a planner, and with it its rewriter and plan cache.
func WithPlanner(p *planner.Planner) Option {
	return func(o *EvalOptions) { o.Planner = p }
}

// WithRunID sets the id reported in annotation events
func WithRunID(id uuid.UUID) Option {
	return func(o *EvalOptions) { o.RunID = id }
}
