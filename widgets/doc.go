// Package widgets contains dumb render primitives: pane chrome, stacks, the
// popup compositor and the sentiment sparkline. Nothing here handles keys or
// owns application state.
package widgets
