package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Day labels and the reminder
// future-check both read time through it so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// Real reads the wall clock, optionally converted to a fixed location.
type Real struct {
	Location *time.Location
}

func (c Real) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		return now.In(c.Location)
	}
	return now
}

// Fake is deterministic and test-friendly.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{t: start}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
