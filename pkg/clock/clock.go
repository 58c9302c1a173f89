// Package clock provides the time source for ledger timestamps.
package clock

import (
	"sync"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("clock", fx.Provide(New))

// Clock returns UTC instants that never repeat and never go backwards, even
// when the wall clock does. An offset can be applied for tests.
type Clock struct {
	mu     sync.Mutex
	now    func() time.Time
	offset time.Duration
	last   time.Time
}

func New() *Clock {
	return &Clock{now: time.Now}
}

// NewAt returns a clock frozen at t; only Advance moves it (plus the
// nanosecond step that keeps consecutive reads distinct).
func NewAt(t time.Time) *Clock {
	return &Clock{now: func() time.Time { return t }}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().Add(c.offset).UTC().Round(0)
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
}

// Observe moves the floor forward so later readings come after t.
func (c *Clock) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.last) {
		c.last = t.UTC()
	}
}
