package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	colorBorder  = lipgloss.Color("#6c7086")
	colorFocused = lipgloss.Color("#a6e3a1")
	colorSyncing = lipgloss.Color("#f9e2af")
	colorText    = lipgloss.Color("#cdd6f4")
	colorMuted   = lipgloss.Color("#7f849c")
)

// Pane draws a rounded box with a title in the top border and an optional
// footer in the bottom border. Content lines are clipped, never wrapped.
type Pane struct {
	Title   string
	Footer  string
	Content string
	Focused bool
	Syncing bool
}

func (p Pane) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	width = max(width, 4)
	height = max(height, 3)
	inner := width - 2
	contentWidth := max(1, inner-2)

	border := colorBorder
	switch {
	case p.Syncing:
		border = colorSyncing
	case p.Focused:
		border = colorFocused
	}
	bs := lipgloss.NewStyle().Foreground(border)
	titleStyle := lipgloss.NewStyle().Foreground(colorText).Bold(true)
	footStyle := lipgloss.NewStyle().Foreground(colorMuted)

	marker := "  "
	if p.Focused {
		marker = "● "
	}
	top := bs.Render("╭") + borderLabel(bs, titleStyle, marker+p.Title, inner) + bs.Render("╮")
	bottom := bs.Render("╰") + borderLabel(bs, footStyle, p.Footer, inner) + bs.Render("╯")

	lines := strings.Split(p.Content, "\n")
	rows := make([]string, 0, height)
	rows = append(rows, top)
	v := bs.Render("│")
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, v+" "+padRight(line, contentWidth)+" "+v)
	}
	rows = append(rows, bottom)
	return strings.Join(rows, "\n")
}

// borderLabel renders a horizontal border run of width cells with label
// inset one cell from the left.
func borderLabel(bs, ls lipgloss.Style, label string, width int) string {
	label = strings.TrimSpace(label)
	if label == "" || width < 4 {
		return bs.Render(strings.Repeat("─", width))
	}
	text := " " + ansi.Truncate(label, width-3, "…") + " "
	rest := max(0, width-1-ansi.StringWidth(text))
	return bs.Render("─") + ls.Render(text) + bs.Render(strings.Repeat("─", rest))
}
