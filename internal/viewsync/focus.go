package viewsync

import "slices"

// FocusState is the item both viewports are aligned on and whether a
// programmatic scroll is in flight.
type FocusState struct {
	ActiveItemID ItemID
	Syncing      bool
}

// HasActive reports whether an item is focused.
func (s FocusState) HasActive() bool { return s.ActiveItemID != "" }

// FocusReader is the read-only view of the focus state handed to renderers.
type FocusReader interface {
	Snapshot() FocusState
	// Subscribe registers fn to receive every new state. The returned func
	// removes the subscription.
	Subscribe(fn func(FocusState)) (cancel func())
}

type observer struct {
	id int
	fn func(FocusState)
}

// focusStore is written only by the scheduler.
type focusStore struct {
	state     FocusState
	observers []observer
	nextID    int
}

func newFocusStore() *focusStore { return &focusStore{} }

func (f *focusStore) Snapshot() FocusState { return f.state }

func (f *focusStore) Subscribe(fn func(FocusState)) func() {
	if fn == nil {
		return func() {}
	}
	id := f.nextID
	f.nextID++
	f.observers = append(f.observers, observer{id: id, fn: fn})
	return func() {
		f.observers = slices.DeleteFunc(f.observers, func(o observer) bool { return o.id == id })
	}
}

// set replaces the whole state before any observer runs.
func (f *focusStore) set(s FocusState) {
	if s == f.state {
		return
	}
	f.state = s
	for _, o := range slices.Clone(f.observers) {
		o.fn(s)
	}
}
