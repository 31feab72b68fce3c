package viewsynctest

import (
	"errors"

	"github.com/jask/convolens/internal/viewsync"
)

// Scroll records one ScrollTo call.
type Scroll struct {
	ID       viewsync.ItemID
	Behavior viewsync.Behavior
}

// Container is an in-memory viewport of fixed-height items stacked top to
// bottom. Scrolling it, by ScrollTo or by CenterOn, calls OnScroll the way a
// real pane reports native scroll events.
type Container struct {
	Height float64
	// OnScroll is called after every offset change.
	OnScroll func()
	// Err is returned by ScrollTo when set.
	Err error
	// Panic makes ScrollTo panic.
	Panic bool
	// Scrolls lists every ScrollTo call, including failed ones.
	Scrolls []Scroll

	offset   float64
	elements []viewsync.Element
	index    map[viewsync.ItemID]int
	hidden   map[viewsync.ItemID]bool
}

var _ viewsync.Container = (*Container)(nil)

// NewContainer lays ids out top to bottom, itemHeight each.
func NewContainer(height, itemHeight float64, ids ...viewsync.ItemID) *Container {
	c := &Container{
		Height: height,
		index:  make(map[viewsync.ItemID]int, len(ids)),
		hidden: make(map[viewsync.ItemID]bool),
	}
	top := 0.0
	for i, id := range ids {
		c.elements = append(c.elements, viewsync.Element{
			ID:     id,
			Bounds: viewsync.Rect{Top: top, Bottom: top + itemHeight},
		})
		c.index[id] = i
		top += itemHeight
	}
	return c
}

// Hide marks id as not rendered, as a virtualized list would.
func (c *Container) Hide(id viewsync.ItemID) { c.hidden[id] = true }

func (c *Container) Bounds() viewsync.Rect {
	return viewsync.Rect{Top: c.offset, Bottom: c.offset + c.Height}
}

func (c *Container) Locate(id viewsync.ItemID) (viewsync.Element, bool) {
	i, ok := c.index[id]
	if !ok || c.hidden[id] {
		return viewsync.Element{}, false
	}
	return c.elements[i], true
}

func (c *Container) Rendered() []viewsync.Element {
	out := make([]viewsync.Element, 0, len(c.elements))
	for _, el := range c.elements {
		if !c.hidden[el.ID] {
			out = append(out, el)
		}
	}
	return out
}

func (c *Container) ScrollTo(el viewsync.Element, b viewsync.Behavior) error {
	c.Scrolls = append(c.Scrolls, Scroll{ID: el.ID, Behavior: b})
	if c.Panic {
		panic("viewsynctest: scroll exploded")
	}
	if c.Err != nil {
		return c.Err
	}
	c.SetOffset(el.Bounds.CenterY() - c.Height/2)
	return nil
}

// CenterOn scrolls as a user would so id sits in the middle.
func (c *Container) CenterOn(id viewsync.ItemID) error {
	i, ok := c.index[id]
	if !ok {
		return errors.New("viewsynctest: unknown item " + string(id))
	}
	c.SetOffset(c.elements[i].Bounds.CenterY() - c.Height/2)
	return nil
}

func (c *Container) Offset() float64 { return c.offset }

// SetOffset moves the visible window, clamped to the content.
func (c *Container) SetOffset(y float64) {
	maxOffset := 0.0
	if n := len(c.elements); n > 0 {
		maxOffset = c.elements[n-1].Bounds.Bottom - c.Height
	}
	if y > maxOffset {
		y = maxOffset
	}
	if y < 0 {
		y = 0
	}
	if y == c.offset {
		return
	}
	c.offset = y
	if c.OnScroll != nil {
		c.OnScroll()
	}
}

// ScrolledTo returns the ids of every ScrollTo call in order.
func (c *Container) ScrolledTo() []viewsync.ItemID {
	out := make([]viewsync.ItemID, 0, len(c.Scrolls))
	for _, s := range c.Scrolls {
		out = append(out, s.ID)
	}
	return out
}
