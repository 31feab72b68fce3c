package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/convolens/internal/service"
	"github.com/jask/convolens/internal/viewsync"
	"github.com/jask/convolens/widgets"
)

const (
	statusHeight = 1
	chartHeight  = 7
	minChartBody = 18
)

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	p := a.panes[a.focused]
	switch {
	case key.Matches(m, a.keys.Quit):
		a.Close()
		return tea.Quit
	case key.Matches(m, a.keys.SwitchPane):
		a.focused = a.focused.Other()
	case key.Matches(m, a.keys.Up):
		p.moveCursor(-1)
	case key.Matches(m, a.keys.Down):
		p.moveCursor(1)
	case key.Matches(m, a.keys.Top):
		p.cursorTo(0)
	case key.Matches(m, a.keys.Bottom):
		p.cursorTo(len(p.spans) - 1)
	case key.Matches(m, a.keys.Select):
		a.click()
	case key.Matches(m, a.keys.PrevConv):
		return a.switchConversation(-1)
	case key.Matches(m, a.keys.NextConv):
		return a.switchConversation(1)
	case key.Matches(m, a.keys.Search):
		a.search.active = true
		a.search.input.SetValue("")
		a.search.matches = nil
		a.search.sel = 0
		return a.search.input.Focus()
	default:
		return p.update(m)
	}
	return nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Close):
		a.closeSearch()
		return nil
	case key.Matches(m, a.keys.Confirm):
		if len(a.search.matches) > 0 {
			match := a.search.matches[a.search.sel]
			a.panes[a.focused].cursor = match.Index
			a.jump(viewsync.ItemID(match.ID))
		}
		a.closeSearch()
		return nil
	case key.Matches(m, a.keys.NextMatch):
		if n := len(a.search.matches); n > 0 {
			a.search.sel = (a.search.sel + 1) % n
		}
		return nil
	case key.Matches(m, a.keys.PrevMatch):
		if n := len(a.search.matches); n > 0 {
			a.search.sel = (a.search.sel - 1 + n) % n
		}
		return nil
	}
	var cmd tea.Cmd
	before := a.search.input.Value()
	a.search.input, cmd = a.search.input.Update(m)
	if q := a.search.input.Value(); q != before {
		a.search.matches = service.Search(a.transcript.Items, q)
		a.search.sel = 0
	}
	return cmd
}

func (a *App) closeSearch() {
	a.search.active = false
	a.search.input.Blur()
}

// handleMouse scrolls the pane under the pointer.
func (a *App) handleMouse(m tea.MouseMsg) tea.Cmd {
	left := a.panes[viewsync.Primary].vp.Width + 4
	role := viewsync.Primary
	if m.X >= left {
		role = viewsync.Secondary
	}
	if m.Action == tea.MouseActionPress && m.Button == tea.MouseButtonLeft {
		a.focused = role
	}
	return a.panes[role].update(m)
}

// columns returns the outer widths of the two panes.
func (a *App) columns() (int, int) {
	split := a.cfg.UI.Split
	if split <= 0 || split >= 1 {
		split = 0.5
	}
	w := widgets.Split(a.width-1, 2, []float64{split, 1 - split})
	return w[0], w[1]
}

func (a *App) chartRows() int {
	if a.height-statusHeight < minChartBody {
		return 0
	}
	return chartHeight
}

// layout sizes both viewports from the window and re-wraps their content.
func (a *App) layout() {
	if a.width <= 0 || a.height <= 0 {
		return
	}
	lw, rw := a.columns()
	body := a.height - statusHeight
	a.panes[viewsync.Primary].setSize(lw-4, body-2)
	a.panes[viewsync.Secondary].setSize(rw-4, body-a.chartRows()-2)
	a.rebuild()
}

func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return "loading..."
	}
	lw, rw := a.columns()
	body := a.height - statusHeight
	syncing := a.focus.Syncing
	active := a.focus.ActiveItemID

	left := paneWidget{a.panes[viewsync.Primary], a.focused == viewsync.Primary, syncing, active}
	right := widgets.Widget(paneWidget{a.panes[viewsync.Secondary], a.focused == viewsync.Secondary, syncing, active})
	if rows := a.chartRows(); rows > 0 {
		right = widgets.VStack{
			Widgets: []widgets.Widget{
				widgets.Sparkline{
					Title:  "sentiment",
					Points: sentimentPoints(a.transcript.Items),
					Active: analyzedIndex(a.transcript.Items, active),
				},
				right,
			},
			Fixed: []int{rows},
		}
	}
	screen := widgets.VStack{
		Widgets: []widgets.Widget{
			widgets.HStack{Widgets: []widgets.Widget{left, right}, Ratios: []float64{float64(lw), float64(rw)}, Gap: 1},
			statusWidget{a},
		},
		Fixed: []int{body, statusHeight},
	}.Render(a.width, a.height)

	if a.search.active {
		screen = widgets.Popup(screen, a.searchView(), a.width, a.height)
	}
	return screen
}

type paneWidget struct {
	p       *Pane
	focused bool
	syncing bool
	active  viewsync.ItemID
}

func (w paneWidget) Render(width, height int) string {
	return w.p.view(width, height, w.focused, w.syncing, w.active)
}
