package viewsync

import (
	"log/slog"
	"time"
)

// State is the scheduler's position in its state machine.
type State int

const (
	// Idle: nothing in flight, nothing deferred.
	Idle State = iota
	// RateLimited: a request arrived too soon after the last fired sync and
	// waits for the window to close. The latest such request wins.
	RateLimited
	// Syncing: a sync fired and waits out the settle delay before scrolling.
	// A newer request for another item retargets it.
	Syncing
	// Cooldown: the scroll was issued and its animation is presumed to be
	// settling. Requests for other items queue in the single pending slot.
	Cooldown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RateLimited:
		return "rate-limited"
	case Syncing:
		return "syncing"
	case Cooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// scheduler is the sync state machine. It never reads a clock: callers pass
// the time in, and next reports the one deadline a host timer must wake for.
// Each state owns at most one deadline, so replacing due is how a timer of a
// kind cancels its predecessor.
type scheduler struct {
	timing Timing
	focus  *focusStore
	reg    *registry
	log    *slog.Logger
	// scroll moves the target viewport. Set by the engine.
	scroll func(target Role, id ItemID)

	state     State
	due       time.Time
	lastFired time.Time
	current   Request
	pending   *Request
	// parked holds a request whose target viewport was not registered yet.
	parked *Request
}

func newScheduler(t Timing, focus *focusStore, reg *registry, log *slog.Logger) *scheduler {
	return &scheduler{
		timing: t,
		focus:  focus,
		reg:    reg,
		log:    log,
		scroll: func(Role, ItemID) {},
	}
}

func (s *scheduler) next() (time.Time, bool) {
	if s.state == Idle || s.due.IsZero() {
		return time.Time{}, false
	}
	return s.due, true
}

// submit is the single entry point for requests. Overdue transitions are
// applied first so the request sees the state as of its own timestamp.
func (s *scheduler) submit(req Request) {
	s.advance(req.RequestedAt)
	s.request(req)
}

func (s *scheduler) request(req Request) {
	if req.ItemID == "" || !req.Source.valid() {
		return
	}
	active := s.focus.Snapshot().ActiveItemID

	switch s.state {
	case Syncing:
		if req.ItemID == s.current.ItemID {
			return
		}
		if s.reg.get(req.Source.Other()) == nil {
			s.park(req)
			return
		}
		s.log.Debug("sync retargeted", "from", s.current.ItemID, "to", req.ItemID, "source", req.Source)
		s.current = req
		s.parked = nil
		s.focus.set(FocusState{ActiveItemID: req.ItemID, Syncing: true})
		return
	case Cooldown:
		// The new request is dropped; a different item already queued keeps
		// its slot.
		if req.ItemID == active {
			return
		}
		s.log.Debug("sync queued", "item", req.ItemID, "source", req.Source)
		r := req
		s.pending = &r
		s.parked = nil
		return
	}

	if req.ItemID == active {
		if s.state == RateLimited {
			s.clearDeferred()
		}
		return
	}
	if s.reg.get(req.Source.Other()) == nil {
		s.park(req)
		return
	}
	if !s.lastFired.IsZero() && req.RequestedAt.Sub(s.lastFired) < s.timing.RateLimit {
		r := req
		s.pending = &r
		s.parked = nil
		s.state = RateLimited
		s.due = s.lastFired.Add(s.timing.RateLimit)
		return
	}
	s.fire(req)
}

func (s *scheduler) fire(req Request) {
	s.log.Debug("sync fired", "item", req.ItemID, "source", req.Source)
	s.state = Syncing
	s.current = req
	s.pending = nil
	s.parked = nil
	s.lastFired = req.RequestedAt
	s.due = req.RequestedAt.Add(s.timing.Settle)
	s.focus.set(FocusState{ActiveItemID: req.ItemID, Syncing: true})
}

func (s *scheduler) park(req Request) {
	s.log.Debug("sync parked, target viewport missing", "item", req.ItemID, "target", req.Source.Other())
	r := req
	s.parked = &r
}

func (s *scheduler) clearDeferred() {
	s.pending = nil
	s.state = Idle
	s.due = time.Time{}
}

// advance applies every transition due at or before now. Transitions are
// timed from their deadlines, not from when advance happened to run.
func (s *scheduler) advance(now time.Time) {
	for s.state != Idle && !s.due.IsZero() && !now.Before(s.due) {
		at := s.due
		switch s.state {
		case RateLimited:
			req := *s.pending
			s.clearDeferred()
			req.RequestedAt = at
			s.request(req)
		case Syncing:
			target, id := s.current.Source.Other(), s.current.ItemID
			s.state = Cooldown
			s.due = at.Add(s.timing.Cooldown)
			s.scroll(target, id)
		case Cooldown:
			s.state = Idle
			s.due = time.Time{}
			active := s.current.ItemID
			s.focus.set(FocusState{ActiveItemID: active, Syncing: false})
			if p := s.pending; p != nil {
				s.pending = nil
				if p.ItemID != active {
					req := *p
					req.RequestedAt = at
					s.request(req)
				}
			}
		}
	}
}

// resume re-submits a parked request once its target viewport registers.
func (s *scheduler) resume(role Role, now time.Time) {
	if s.parked == nil || s.parked.Source.Other() != role {
		return
	}
	req := *s.parked
	s.parked = nil
	req.RequestedAt = now
	s.submit(req)
}

func (s *scheduler) reset() {
	s.state = Idle
	s.due = time.Time{}
	s.lastFired = time.Time{}
	s.current = Request{}
	s.pending = nil
	s.parked = nil
	s.focus.set(FocusState{})
}
