package viewsync

import "time"

// detector turns a burst of scroll events on one viewport into at most one
// focus report once the viewport has been still for the debounce delay.
type detector struct {
	role     Role
	clock    Clock
	debounce time.Duration
	focus    *focusStore
	handle   func() *Handle
	report   func(id ItemID, source Role)

	lastEvent    time.Time
	timer        Timer
	lastReported ItemID
}

func (d *detector) onScroll() {
	// Programmatic scrolls land here too; while a sync is in flight they are
	// not user input.
	if d.focus.Snapshot().Syncing {
		return
	}
	at := d.clock.Now()
	d.lastEvent = at
	d.stop()
	d.timer = d.clock.AfterFunc(d.debounce, func() { d.fire(at) })
}

func (d *detector) fire(at time.Time) {
	d.timer = nil
	if !at.Equal(d.lastEvent) || d.focus.Snapshot().Syncing {
		return
	}
	h := d.handle()
	if h == nil {
		return
	}
	id, ok := h.Closest()
	if !ok || id == d.lastReported {
		return
	}
	d.lastReported = id
	d.report(id, d.role)
}

// aligned records that the engine itself moved this viewport to id.
func (d *detector) aligned(id ItemID) {
	d.stop()
	d.lastReported = id
}

func (d *detector) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *detector) reset() {
	d.stop()
	d.lastEvent = time.Time{}
	d.lastReported = ""
}
