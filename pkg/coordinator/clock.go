package coordinator

import (
	"sync"
	"time"
)

// Clock issues write timestamps.
//
// Every timestamp is strictly later than all timestamps issued or observed
// before, even if the wall clock goes backwards.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock creates a clock reading the time from now. If now is nil,
// time.Now is used.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}

	return &Clock{now: now}
}

// Now returns the current wall clock time in UTC.
func (c *Clock) Now() time.Time {
	return c.now().UTC()
}

// Next returns the next write timestamp.
func (c *Clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}

	c.last = t
	return t
}

// Observe moves the clock forward to t so that following writes are newer
// than a write received from the remote store.
func (c *Clock) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.After(c.last) {
		c.last = t.UTC()
	}
}
