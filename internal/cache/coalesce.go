package cache

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Coalescer joins concurrent calls for the same key onto a single execution.
// The key is released as soon as that execution settles, so a failed load can
// be retried by the next caller.
type Coalescer struct {
	group  singleflight.Group
	shared atomic.Int64
}

// Do runs fn for key unless a call for key is already in flight, in which case
// it waits for and returns that call's result. A cancelled ctx stops the wait
// but not the running fn.
func (c *Coalescer) Do(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	ch := c.group.DoChan(key, fn)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.shared.Add(1)
		}
		return res.Val, res.Err
	}
}

// Shared counts calls that received a result produced for another caller too
func (c *Coalescer) Shared() int64 {
	return c.shared.Load()
}
