package services

import "context"

// compensations collects undo actions as an operation makes external side
// effects. run executes them newest first unless commit was called. Actions
// get a context that survives cancellation of the request.
type compensations struct {
	ctx       context.Context
	actions   []func(context.Context)
	committed bool
}

func newCompensations(ctx context.Context) *compensations {
	return &compensations{ctx: context.WithoutCancel(ctx)}
}

func (c *compensations) add(fn func(context.Context)) {
	c.actions = append(c.actions, fn)
}

func (c *compensations) commit() { c.committed = true }

func (c *compensations) run() {
	if c.committed {
		return
	}
	for i := len(c.actions) - 1; i >= 0; i-- {
		c.actions[i](c.ctx)
	}
}
