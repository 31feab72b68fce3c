package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Popup draws body in a bordered card centred over base. Columns of base
// outside the card's painted span on each row stay visible.
func Popup(base, body string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFocused).
		Padding(0, 1).
		Render(body)
	top := splitToLines(lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card), height)
	under := splitToLines(base, height)

	out := make([]string, height)
	for i := range out {
		b := padRight(under[i], width)
		o := padRight(top[i], width)
		start, end, ok := paintedSpan(o)
		if !ok {
			out[i] = b
			continue
		}
		out[i] = padRight(ansi.Truncate(b, start, "")+ansi.Cut(o, start, end)+ansi.Cut(b, end, width), width)
	}
	return strings.Join(out, "\n")
}

// paintedSpan returns the first and one-past-last non-blank columns of line.
func paintedSpan(line string) (start, end int, ok bool) {
	plain := []rune(ansi.Strip(line))
	end = len(plain)
	for end > 0 && plain[end-1] == ' ' {
		end--
	}
	for start < end && plain[start] == ' ' {
		start++
	}
	return start, end, start < end
}
