package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/convolens/internal/viewsync"
	"github.com/jask/convolens/widgets"
)

const (
	gutterWidth  = 2
	animFrames   = 6
	animInterval = 16 * time.Millisecond
)

var errNotLaidOut = errors.New("pane has no size yet")

var (
	activeBar  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")).Render("┃")
	cursorMark = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Render("›")
)

// block is the rendered lines of one item.
type block struct {
	id    viewsync.ItemID
	lines []string
}

type span struct {
	id     viewsync.ItemID
	top    int
	height int
}

func (s span) contains(line int) bool { return line >= s.top && line < s.top+s.height }

type animation struct {
	from, to int
	frame    int
	gen      int
	running  bool
	ticking  bool
}

// Pane is one side of the split: a column of tagged blocks scrolled by a
// bubbles viewport. It implements viewsync.Container in line units.
type Pane struct {
	role     viewsync.Role
	title    string
	vp       viewport.Model
	lines    []string
	spans    []span
	index    map[viewsync.ItemID]int
	cursor   int
	anim     animation
	onScroll func()
}

func newPane(role viewsync.Role, title string) *Pane {
	vp := viewport.New(0, 0)
	vp.KeyMap = paneScrollKeys()
	vp.MouseWheelDelta = 2
	return &Pane{role: role, title: title, vp: vp, index: map[viewsync.ItemID]int{}}
}

func (p *Pane) setSize(width, height int) {
	p.vp.Width = max(1, width)
	p.vp.Height = max(1, height)
	p.vp.SetYOffset(p.vp.YOffset)
}

// textWidth is the width available to block lines.
func (p *Pane) textWidth() int { return max(8, p.vp.Width-gutterWidth) }

// setBlocks replaces the content and keeps the offset where possible. Layout
// changes are not reported as scrolls.
func (p *Pane) setBlocks(blocks []block) {
	p.spans = p.spans[:0]
	p.index = make(map[viewsync.ItemID]int, len(blocks))
	p.lines = p.lines[:0]
	for i, b := range blocks {
		p.spans = append(p.spans, span{id: b.id, top: len(p.lines), height: len(b.lines)})
		p.index[b.id] = i
		p.lines = append(p.lines, b.lines...)
	}
	off := p.vp.YOffset
	p.vp.SetContent(strings.Join(p.lines, "\n"))
	p.vp.SetYOffset(off)
	p.cursor = min(p.cursor, max(0, len(p.spans)-1))
}

// resetView jumps to the top without reporting a scroll.
func (p *Pane) resetView() {
	p.anim = animation{gen: p.anim.gen + 1}
	p.cursor = 0
	p.vp.GotoTop()
}

func (p *Pane) Bounds() viewsync.Rect {
	top := float64(p.vp.YOffset)
	return viewsync.Rect{Top: top, Bottom: top + float64(p.vp.Height)}
}

func (p *Pane) Locate(id viewsync.ItemID) (viewsync.Element, bool) {
	i, ok := p.index[id]
	if !ok {
		return viewsync.Element{}, false
	}
	return p.element(i), true
}

func (p *Pane) Rendered() []viewsync.Element {
	out := make([]viewsync.Element, len(p.spans))
	for i := range p.spans {
		out[i] = p.element(i)
	}
	return out
}

func (p *Pane) element(i int) viewsync.Element {
	s := p.spans[i]
	return viewsync.Element{ID: s.id, Bounds: viewsync.Rect{Top: float64(s.top), Bottom: float64(s.top + s.height)}}
}

// ScrollTo centres el. Smooth scrolls animate over a few frames driven by
// frameCmd; Instant moves at once. The cursor follows the target.
func (p *Pane) ScrollTo(el viewsync.Element, b viewsync.Behavior) error {
	if len(p.lines) == 0 {
		return errNotLaidOut
	}
	if i, ok := p.index[el.ID]; ok {
		p.cursor = i
	}
	target := p.clamp(int(math.Round(el.Bounds.CenterY() - float64(p.vp.Height)/2)))
	p.anim = animation{gen: p.anim.gen + 1}
	if b == viewsync.Instant || target == p.vp.YOffset {
		p.setOffset(target)
		return nil
	}
	p.anim.from, p.anim.to, p.anim.running = p.vp.YOffset, target, true
	return nil
}

// frameCmd schedules the next animation frame if one is due and none is
// pending.
func (p *Pane) frameCmd() tea.Cmd {
	if !p.anim.running || p.anim.ticking {
		return nil
	}
	p.anim.ticking = true
	role, gen := p.role, p.anim.gen
	return tea.Tick(animInterval, func(time.Time) tea.Msg { return animFrameMsg{role: role, gen: gen} })
}

func (p *Pane) stepAnimation(gen int) {
	if !p.anim.running || gen != p.anim.gen {
		return
	}
	p.anim.ticking = false
	p.anim.frame++
	t := float64(p.anim.frame) / animFrames
	eased := 1 - math.Pow(1-t, 3)
	y := p.anim.from + int(math.Round(float64(p.anim.to-p.anim.from)*eased))
	if p.anim.frame >= animFrames {
		y = p.anim.to
		p.anim.running = false
	}
	p.setOffset(y)
}

func (p *Pane) animating() bool { return p.anim.running }

// update feeds paging keys and mouse wheel events to the viewport.
func (p *Pane) update(msg tea.Msg) tea.Cmd {
	before := p.vp.YOffset
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	if p.vp.YOffset != before {
		p.anim.running = false
		p.followView()
		p.notify()
	}
	return cmd
}

func (p *Pane) moveCursor(delta int) {
	if len(p.spans) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.spans)-1)
	p.reveal(p.cursor)
}

func (p *Pane) cursorTo(i int) {
	if len(p.spans) == 0 {
		return
	}
	p.cursor = min(max(i, 0), len(p.spans)-1)
	p.reveal(p.cursor)
}

func (p *Pane) cursorID() (viewsync.ItemID, bool) {
	if p.cursor < 0 || p.cursor >= len(p.spans) {
		return "", false
	}
	return p.spans[p.cursor].id, true
}

// reveal scrolls the least distance that shows span i.
func (p *Pane) reveal(i int) {
	s := p.spans[i]
	off := p.vp.YOffset
	switch {
	case s.top < off:
		off = s.top
	case s.top+s.height > off+p.vp.Height:
		off = s.top + s.height - p.vp.Height
		if s.height > p.vp.Height {
			off = s.top
		}
	}
	p.anim.running = false
	p.setOffset(off)
}

// centerOn centres id at once, reporting the scroll.
func (p *Pane) centerOn(id viewsync.ItemID) {
	if el, ok := p.Locate(id); ok {
		_ = p.ScrollTo(el, viewsync.Instant)
	}
}

// followView moves the cursor onto the middle item when a page scroll left
// it off screen.
func (p *Pane) followView() {
	if len(p.spans) == 0 {
		return
	}
	view := p.Bounds()
	if p.element(p.cursor).Bounds.Intersects(view) {
		return
	}
	mid := p.vp.YOffset + p.vp.Height/2
	for i, s := range p.spans {
		if s.contains(mid) || s.top > mid {
			p.cursor = i
			return
		}
	}
	p.cursor = len(p.spans) - 1
}

func (p *Pane) setOffset(y int) {
	y = p.clamp(y)
	if y == p.vp.YOffset {
		return
	}
	p.vp.SetYOffset(y)
	p.notify()
}

func (p *Pane) clamp(y int) int {
	return min(max(y, 0), max(0, len(p.lines)-p.vp.Height))
}

func (p *Pane) notify() {
	if p.onScroll != nil {
		p.onScroll()
	}
}

// view renders the pane with its chrome. The gutter marks the active item
// and, in the focused pane, the cursor.
func (p *Pane) view(width, height int, focused, syncing bool, active viewsync.ItemID) string {
	activeIdx, hasActive := p.index[active]
	rows := make([]string, 0, p.vp.Height)
	for r := 0; r < p.vp.Height; r++ {
		abs := p.vp.YOffset + r
		if abs >= len(p.lines) {
			break
		}
		g0, g1 := " ", " "
		if hasActive && p.spans[activeIdx].contains(abs) {
			g0 = activeBar
		}
		if focused && len(p.spans) > 0 && p.spans[p.cursor].contains(abs) {
			g1 = cursorMark
		}
		rows = append(rows, g0+g1+p.lines[abs])
	}
	footer := ""
	if len(p.spans) > 0 {
		footer = fmt.Sprintf("%d/%d", p.cursor+1, len(p.spans))
	}
	return widgets.Pane{
		Title:   p.title,
		Footer:  footer,
		Content: strings.Join(rows, "\n"),
		Focused: focused,
		Syncing: syncing,
	}.Render(width, height)
}
