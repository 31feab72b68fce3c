package viewsync

import (
	"io"
	"log/slog"
	"time"
)

// Options configures an Engine.
type Options struct {
	Timing Timing
	// Clock is required. Its callbacks must run on the caller's event loop.
	Clock  Clock
	Logger *slog.Logger
	// Behavior is used for every programmatic scroll. Defaults to Smooth.
	Behavior Behavior
}

// Engine coordinates the Primary and Secondary viewports of one view. Create
// one when the view mounts and Close it when the view unmounts.
//
// No method returns an error: missing viewports, unrendered items and failing
// containers all degrade to no-ops.
type Engine struct {
	clock     Clock
	log       *slog.Logger
	reg       registry
	focus     *focusStore
	sched     *scheduler
	scroller  scroller
	detectors [2]*detector

	wake   Timer
	wakeAt time.Time
	closed bool
}

func New(opts Options) *Engine {
	if opts.Clock == nil {
		panic("viewsync: Options.Clock is nil")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timing := opts.Timing.withDefaults()

	e := &Engine{
		clock:    opts.Clock,
		log:      log,
		focus:    newFocusStore(),
		scroller: scroller{log: log, behavior: opts.Behavior},
	}
	e.sched = newScheduler(timing, e.focus, &e.reg, log)
	e.sched.scroll = e.scrollTarget
	for _, role := range []Role{Primary, Secondary} {
		e.detectors[role] = &detector{
			role:     role,
			clock:    e.clock,
			debounce: timing.Debounce,
			focus:    e.focus,
			handle:   func() *Handle { return e.reg.get(role) },
			report:   e.RequestSync,
		}
	}
	return e
}

// RegisterViewport stores c for role, replacing any earlier registration.
// Registering a nil container deregisters the role.
func (e *Engine) RegisterViewport(role Role, c Container) {
	if e.closed || !role.valid() {
		return
	}
	if c == nil {
		e.DeregisterViewport(role)
		return
	}
	e.reg.register(role, c)
	e.log.Debug("viewport registered", "role", role)
	e.sched.resume(role, e.clock.Now())
	e.rearm()
}

// DeregisterViewport clears role's slot and cancels its pending detection.
func (e *Engine) DeregisterViewport(role Role) {
	if e.closed || !role.valid() {
		return
	}
	e.reg.deregister(role)
	e.detectors[role].reset()
	e.log.Debug("viewport deregistered", "role", role)
}

// Registered reports whether a container is registered for role.
func (e *Engine) Registered(role Role) bool {
	return e.reg.get(role) != nil
}

// RequestSync asks the engine to bring id into view in the viewport opposite
// source. Detectors call it after a scroll settles; UIs call it on clicks.
func (e *Engine) RequestSync(id ItemID, source Role) {
	if e.closed {
		return
	}
	e.sched.submit(Request{ItemID: id, Source: source, RequestedAt: e.clock.Now()})
	e.rearm()
}

// OnScroll must be called for every native scroll event of role's viewport.
// Callers must not debounce.
func (e *Engine) OnScroll(role Role) {
	if e.closed || e.reg.get(role) == nil {
		return
	}
	e.detectors[role].onScroll()
}

// Focus exposes the focus state read-only.
func (e *Engine) Focus() FocusReader { return e.focus }

// State returns the scheduler state.
func (e *Engine) State() State { return e.sched.state }

// Reset is used when the view switches to another conversation. Timers,
// detector memory and queued requests are dropped and the focus state returns
// to none. Registrations are kept.
func (e *Engine) Reset() {
	if e.closed {
		return
	}
	e.stopWake()
	for _, d := range e.detectors {
		d.reset()
	}
	e.sched.reset()
	e.log.Debug("engine reset")
}

// Close tears the engine down. Every later call is a no-op.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.Reset()
	e.reg.clear()
	e.closed = true
}

func (e *Engine) scrollTarget(target Role, id ItemID) {
	h := e.reg.get(target)
	if h == nil {
		return
	}
	e.detectors[target].aligned(id)
	e.scroller.scrollTo(h, id)
}

// rearm keeps exactly one wake timer armed for the scheduler's next deadline.
func (e *Engine) rearm() {
	next, ok := e.sched.next()
	if !ok {
		e.stopWake()
		return
	}
	if e.wake != nil && next.Equal(e.wakeAt) {
		return
	}
	e.stopWake()
	d := next.Sub(e.clock.Now())
	if d < 0 {
		d = 0
	}
	e.wakeAt = next
	e.wake = e.clock.AfterFunc(d, e.tick)
}

func (e *Engine) tick() {
	e.wake = nil
	e.wakeAt = time.Time{}
	if e.closed {
		return
	}
	e.sched.advance(e.clock.Now())
	e.rearm()
}

func (e *Engine) stopWake() {
	if e.wake != nil {
		e.wake.Stop()
		e.wake = nil
	}
	e.wakeAt = time.Time{}
}
