package engine

import (
	"context"
	"sync/atomic"

	"gqlmerge/internal/source"
)

// Counting wraps an Engine and counts invocations.
type Counting struct {
	next  Engine
	calls atomic.Int64
}

func NewCounting(next Engine) *Counting {
	return &Counting{next: next}
}

func (c *Counting) Merge(ctx context.Context, frags []source.Fragment) (Outcome, error) {
	c.calls.Add(1)
	return c.next.Merge(ctx, frags)
}

// Calls returns the number of Merge invocations so far.
func (c *Counting) Calls() int64 {
	return c.calls.Load()
}
