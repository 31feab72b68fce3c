package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/x/ansi"
)

type statusWidget struct{ a *App }

func (w statusWidget) Render(width, height int) string {
	a := w.a
	left := fmt.Sprintf(" %s", a.engine.State())
	if seq := a.activeSeq(); seq > 0 {
		left += fmt.Sprintf(" · #%d", seq)
	}
	if n := len(a.convs); n > 0 {
		left += fmt.Sprintf(" · conv %d/%d", a.convIdx+1, n)
	}
	msg := styleStatus.Render(a.status)
	if a.failed {
		msg = styleError.Render(a.status)
	}
	help := helpLine(a.keys.browseHelp())
	if a.search.active {
		help = helpLine(a.keys.searchHelp())
	}
	line := styleTime.Render(left) + "  " + msg
	gap := width - ansi.StringWidth(line) - ansi.StringWidth(help) - 1
	if gap < 1 {
		return ansi.Truncate(line, width, "…")
	}
	return line + strings.Repeat(" ", gap) + styleTime.Render(help)
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

func (a *App) searchView() string {
	var b strings.Builder
	b.WriteString(a.search.input.View())
	const shown = 6
	if a.search.input.Value() != "" && len(a.search.matches) == 0 {
		b.WriteString("\n" + styleMuted.Render("no matches"))
	}
	width := max(20, min(60, a.width/2))
	for i, m := range a.search.matches {
		if i == shown {
			b.WriteString(styleMuted.Render(fmt.Sprintf("\n… %d more", len(a.search.matches)-shown)))
			break
		}
		it := a.transcript.Items[m.Index]
		marker := "  "
		if i == a.search.sel {
			marker = cursorMark + " "
		}
		text := fmt.Sprintf("#%d %s: %s", it.Message.Seq, it.Message.Author, it.Message.Body)
		b.WriteString("\n" + marker + ansi.Truncate(text, width, "…"))
	}
	return b.String()
}

// activeSeq is the sequence number of the focused message, 0 when none.
func (a *App) activeSeq() int {
	i := a.transcript.IndexOf(string(a.focus.ActiveItemID))
	if i < 0 {
		return 0
	}
	return a.transcript.Items[i].Message.Seq
}
