package viewsync

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

type listContainer struct {
	view Rect
	els  []Element
}

func (c listContainer) Bounds() Rect { return c.view }

func (c listContainer) Locate(id ItemID) (Element, bool) {
	for _, el := range c.els {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

func (c listContainer) Rendered() []Element              { return c.els }
func (c listContainer) ScrollTo(Element, Behavior) error { return nil }

func TestHandleListVisibleIntersects(t *testing.T) {
	h := &Handle{role: Primary, container: listContainer{
		view: Rect{Top: 100, Bottom: 200},
		els: []Element{
			{ID: "above", Bounds: Rect{Top: 50, Bottom: 100}},
			{ID: "straddle", Bounds: Rect{Top: 90, Bottom: 110}},
			{ID: "inside", Bounds: Rect{Top: 120, Bottom: 180}},
			{ID: "below", Bounds: Rect{Top: 200, Bottom: 240}},
			{ID: "", Bounds: Rect{Top: 130, Bottom: 140}},
			{ID: "broken", Bounds: Rect{Top: math.NaN(), Bottom: 150}},
		},
	}}

	var ids []ItemID
	for _, el := range h.ListVisible() {
		ids = append(ids, el.ID)
	}
	require.Equal(t, []ItemID{"straddle", "inside"}, ids)
}

func TestHandleClosestToCenter(t *testing.T) {
	h := &Handle{role: Secondary, container: listContainer{
		view: Rect{Top: 0, Bottom: 100},
		els: []Element{
			{ID: "a", Bounds: Rect{Top: 0, Bottom: 30}},
			{ID: "b", Bounds: Rect{Top: 30, Bottom: 60}},
			{ID: "c", Bounds: Rect{Top: 60, Bottom: 100}},
		},
	}}

	id, ok := h.Closest()
	require.True(t, ok)
	require.Equal(t, ItemID("b"), id)
}

func TestHandleClosestEmpty(t *testing.T) {
	h := &Handle{role: Primary, container: listContainer{view: Rect{Top: 0, Bottom: 10}}}
	_, ok := h.Closest()
	require.False(t, ok)

	_, ok = h.Locate("")
	require.False(t, ok)
}

func TestRegistryReplacesHandle(t *testing.T) {
	var r registry
	first := r.register(Primary, listContainer{})
	second := r.register(Primary, listContainer{view: Rect{Top: 1, Bottom: 2}})

	require.NotSame(t, first, second)
	require.Same(t, second, r.get(Primary))
	require.Nil(t, r.get(Secondary))
	require.Nil(t, r.get(Role(-1)))

	r.deregister(Primary)
	require.Nil(t, r.get(Primary))
}

func TestRoleOther(t *testing.T) {
	require.Equal(t, Secondary, Primary.Other())
	require.Equal(t, Primary, Secondary.Other())
	require.Equal(t, "primary", Primary.String())
	require.Equal(t, "secondary", Secondary.String())
}
