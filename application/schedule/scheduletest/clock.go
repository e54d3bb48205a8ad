// Package scheduletest provides a manually driven clock for scheduler tests.
package scheduletest

import (
	"context"
	"sync"
	"time"
)

// FakeClock implements schedule.Clock. Sleep advances the clock instantly.
// After the configured number of sleeps the next Sleep cancels the run.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	limit  int
	cancel context.CancelFunc
}

// NewFakeClock returns a clock starting at start that allows unlimited sleeps
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start, limit: -1}
}

// StopAfter allows n sleeps; the following Sleep calls cancel and fails
func (c *FakeClock) StopAfter(n int, cancel context.CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = n
	c.cancel = cancel
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward, simulating work that takes d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleep records d and advances the clock by it
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.limit >= 0 && len(c.sleeps) >= c.limit {
		cancel := c.cancel
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return context.Canceled
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// Sleeps returns every recorded sleep duration
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
