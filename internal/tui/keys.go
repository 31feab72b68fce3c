package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
)

type keyMap struct {
	Quit       key.Binding
	SwitchPane key.Binding
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Select     key.Binding
	PrevConv   key.Binding
	NextConv   key.Binding
	Search     key.Binding
	Close      key.Binding
	Confirm    key.Binding
	NextMatch  key.Binding
	PrevMatch  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		SwitchPane: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "pane")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("j/k", "move")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g/G", "top/bottom")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sync")),
		PrevConv:   key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "conversation")),
		NextConv:   key.NewBinding(key.WithKeys("]")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "jump")),
		NextMatch:  key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↑/↓", "match")),
		PrevMatch:  key.NewBinding(key.WithKeys("up", "ctrl+p")),
	}
}

func (k keyMap) browseHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.SwitchPane, k.PrevConv, k.Search, k.Quit}
}

func (k keyMap) searchHelp() []key.Binding {
	return []key.Binding{k.NextMatch, k.Confirm, k.Close}
}

// paneScrollKeys leaves j/k to the cursor; the viewport only pages.
func paneScrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+f", " ")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+b")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Down:         key.NewBinding(key.WithKeys("J", "ctrl+e")),
		Up:           key.NewBinding(key.WithKeys("K", "ctrl+y")),
	}
}
