package viewsync

import (
	"sync/atomic"
	"time"
)

// Clock supplies time and one-shot timers. Callbacks passed to AfterFunc must
// run on the same loop that calls into the Engine.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if it already ran or was stopped before.
	Stop() bool
}

// LoopClock returns a Clock backed by real timers whose callbacks are handed
// to post instead of running on the timer goroutine. post must enqueue the
// function onto the host event loop; it may be called from any goroutine.
func LoopClock(post func(func())) Clock {
	return loopClock{post: post}
}

type loopClock struct {
	post func(func())
}

func (loopClock) Now() time.Time { return time.Now() }

func (c loopClock) AfterFunc(d time.Duration, f func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		c.post(func() {
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			f()
		})
	})
	return lt
}

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	already := t.stopped.Swap(true)
	t.t.Stop()
	return !already && !t.fired.Load()
}
