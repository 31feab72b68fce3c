package viewsync

import (
	"fmt"
	"log/slog"
)

// scroller moves a viewport to an item. It never fails: every problem
// degrades to a no-op.
type scroller struct {
	log      *slog.Logger
	behavior Behavior
}

// scrollTo reports whether the container accepted the scroll.
func (s scroller) scrollTo(h *Handle, id ItemID) (ok bool) {
	if h == nil {
		s.log.Debug("scroll skipped, viewport not registered", "item", id)
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Debug("scroll panicked", "role", h.role, "item", id, "panic", fmt.Sprint(r))
			ok = false
		}
	}()
	el, found := h.Locate(id)
	if !found {
		s.log.Debug("scroll skipped, item not rendered", "role", h.role, "item", id)
		return false
	}
	if err := h.container.ScrollTo(el, s.behavior); err != nil {
		s.log.Debug("scroll failed", "role", h.role, "item", id, "err", err)
		return false
	}
	return true
}
