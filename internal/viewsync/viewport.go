package viewsync

import "math"

// Rect is a vertical extent in the container's content coordinates.
type Rect struct {
	Top    float64
	Bottom float64
}

func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// Intersects reports whether r and o overlap by more than an edge.
func (r Rect) Intersects(o Rect) bool {
	return r.Top < o.Bottom && o.Top < r.Bottom
}

func (r Rect) finite() bool {
	return !math.IsInf(r.Top, 0) && !math.IsInf(r.Bottom, 0) &&
		!math.IsNaN(r.Top) && !math.IsNaN(r.Bottom)
}

// Element is one rendered item tagged with its ItemID.
type Element struct {
	ID     ItemID
	Bounds Rect
}

// Behavior selects how a container scrolls.
type Behavior int

const (
	Smooth Behavior = iota
	Instant
)

func (b Behavior) String() string {
	if b == Instant {
		return "instant"
	}
	return "smooth"
}

// Container is the capability a rendered list exposes to the engine. It is the
// only contract with the rendering layer: every item carries its ItemID.
type Container interface {
	// Bounds is the currently visible box.
	Bounds() Rect
	// Locate finds the rendered element tagged id by direct lookup. It
	// reports false when the item is not rendered.
	Locate(id ItemID) (Element, bool)
	// Rendered lists the currently rendered tagged elements.
	Rendered() []Element
	// ScrollTo scrolls so el is vertically centered.
	ScrollTo(el Element, b Behavior) error
}

// Handle is a registered container together with its role. A new
// registration replaces the handle rather than mutating it.
type Handle struct {
	role      Role
	container Container
}

func (h *Handle) Role() Role { return h.role }

func (h *Handle) Locate(id ItemID) (Element, bool) {
	if id == "" {
		return Element{}, false
	}
	return h.container.Locate(id)
}

// ListVisible returns the rendered elements intersecting the visible bounds.
// Nothing is cached; every call asks the container again.
func (h *Handle) ListVisible() []Element {
	view := h.container.Bounds()
	if !view.finite() {
		return nil
	}
	rendered := h.container.Rendered()
	out := make([]Element, 0, len(rendered))
	for _, el := range rendered {
		if el.ID == "" || !el.Bounds.finite() {
			continue
		}
		if el.Bounds.Intersects(view) {
			out = append(out, el)
		}
	}
	return out
}

// Closest returns the visible item whose centre is nearest the viewport
// centre. Ties keep the first element found. The scan is linear in the
// number of visible items.
func (h *Handle) Closest() (ItemID, bool) {
	center := h.container.Bounds().CenterY()
	var (
		best  ItemID
		dist  = math.Inf(1)
		found bool
	)
	for _, el := range h.ListVisible() {
		d := math.Abs(center - el.Bounds.CenterY())
		if d < dist {
			best, dist, found = el.ID, d, true
		}
	}
	return best, found
}

// registry holds at most one handle per role.
type registry struct {
	handles [2]*Handle
}

func (r *registry) register(role Role, c Container) *Handle {
	h := &Handle{role: role, container: c}
	r.handles[role] = h
	return h
}

func (r *registry) deregister(role Role) {
	r.handles[role] = nil
}

func (r *registry) get(role Role) *Handle {
	if !role.valid() {
		return nil
	}
	return r.handles[role]
}

func (r *registry) clear() {
	r.handles = [2]*Handle{}
}
