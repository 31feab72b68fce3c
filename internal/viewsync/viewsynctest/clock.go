// Package viewsynctest provides a virtual clock and an in-memory viewport for
// exercising viewsync without a terminal or wall-clock delays.
package viewsynctest

import (
	"slices"
	"time"

	"github.com/jask/convolens/internal/viewsync"
)

// FakeClock is a manually advanced clock. Timer callbacks run synchronously
// inside Advance, in deadline order.
type FakeClock struct {
	now    time.Time
	timers []*fakeTimer
	seq    int
}

var _ viewsync.Clock = (*FakeClock)(nil)

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time { return c.now }

func (c *FakeClock) AfterFunc(d time.Duration, f func()) viewsync.Timer {
	if d < 0 {
		d = 0
	}
	c.seq++
	t := &fakeTimer{clock: c, at: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, firing every timer that comes due,
// including timers scheduled by callbacks during the advance.
func (c *FakeClock) Advance(d time.Duration) {
	end := c.now.Add(d)
	for {
		t := c.nextDue(end)
		if t == nil {
			break
		}
		c.remove(t)
		t.done = true
		if t.at.After(c.now) {
			c.now = t.at
		}
		t.f()
	}
	c.now = end
}

// Pending returns the number of armed timers.
func (c *FakeClock) Pending() int { return len(c.timers) }

func (c *FakeClock) nextDue(end time.Time) *fakeTimer {
	var best *fakeTimer
	for _, t := range c.timers {
		if t.at.After(end) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *FakeClock) remove(t *fakeTimer) {
	c.timers = slices.DeleteFunc(c.timers, func(o *fakeTimer) bool { return o == t })
}

type fakeTimer struct {
	clock *FakeClock
	at    time.Time
	seq   int
	f     func()
	done  bool
}

func (t *fakeTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}
