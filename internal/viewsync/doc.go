// Package viewsync keeps two independently scrollable viewports focused on the
// same logical item.
//
// A transcript pane (Primary) and an analysis pane (Secondary) register a
// Container with an Engine. Scroll events on either side are debounced by a
// per-role detector, which reports the item nearest the viewport centre. The
// scheduler then scrolls the other viewport to that item, suppressing scroll
// detection while the programmatic scroll settles so the two panes never chase
// each other.
//
// The engine is single-threaded: every method and every timer callback must
// run on the host's event loop. Use LoopClock to route real timers through a
// loop, or viewsynctest.FakeClock to drive time by hand in tests.
package viewsync
