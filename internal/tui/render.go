package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/convolens/internal/service"
	"github.com/jask/convolens/internal/viewsync"
	"github.com/jask/convolens/widgets"
)

var (
	styleDay      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	styleAuthor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	styleAgent    = lipgloss.NewStyle().Foreground(lipgloss.Color("#cba6f7")).Bold(true)
	styleTime     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	styleBody     = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4"))
	styleIntent   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94e2d5")).Bold(true)
	styleTag      = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c2e7"))
	styleMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")).Italic(true)
	stylePositive = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	styleNegative = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("#bac2de"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true)
)

func wrap(s string, width int) []string {
	return strings.Split(ansi.Wrap(s, max(1, width), ""), "\n")
}

// transcriptBlocks lays out one block per message: an optional day rule, the
// author line and the wrapped body, then a blank spacer.
func transcriptBlocks(items []service.Item, width int, loc *time.Location) []block {
	out := make([]block, 0, len(items))
	for _, it := range items {
		var lines []string
		if it.DayLabel != "" {
			label := " " + it.DayLabel + " "
			rule := strings.Repeat("─", max(0, (width-ansi.StringWidth(label))/2))
			lines = append(lines, styleDay.Render(rule+label+rule))
		}
		author := styleAuthor
		if it.Message.Author == "agent" {
			author = styleAgent
		}
		lines = append(lines, author.Render(it.Message.Author)+" "+styleTime.Render(it.Message.SentAt.In(loc).Format("15:04")))
		for _, l := range wrap(it.Message.Body, width) {
			lines = append(lines, styleBody.Render(l))
		}
		lines = append(lines, "")
		out = append(out, block{id: viewsync.ItemID(it.ID()), lines: lines})
	}
	return out
}

// analysisBlocks lays out the analysis of each message in the same order.
func analysisBlocks(items []service.Item, width int) []block {
	out := make([]block, 0, len(items))
	for _, it := range items {
		lines := []string{fmt.Sprintf("#%d %s", it.Message.Seq, styleTime.Render(it.Message.Author))}
		if !it.Analyzed {
			lines = append(lines, styleMuted.Render("no analysis"), "")
			out = append(out, block{id: viewsync.ItemID(it.ID()), lines: lines})
			continue
		}
		a := it.Analysis
		head := sentimentBadge(a.Sentiment)
		if a.Intent != "" {
			head = styleIntent.Render(a.Intent) + "  " + head
		}
		lines = append(lines, head)
		for _, l := range wrap(a.Summary, width) {
			lines = append(lines, styleBody.Render(l))
		}
		if len(a.Tags) > 0 {
			tags := make([]string, len(a.Tags))
			for i, t := range a.Tags {
				tags[i] = "#" + t
			}
			for _, l := range wrap(strings.Join(tags, " "), width) {
				lines = append(lines, styleTag.Render(l))
			}
		}
		lines = append(lines, "")
		out = append(out, block{id: viewsync.ItemID(it.ID()), lines: lines})
	}
	return out
}

func sentimentBadge(v float64) string {
	const cells = 5
	n := int(min(max(v, -1), 1)*cells + 0.5*sign(v))
	bar := fmt.Sprintf("%+.2f ", v)
	switch {
	case n > 0:
		return stylePositive.Render(bar + strings.Repeat("▮", n))
	case n < 0:
		return styleNegative.Render(bar + strings.Repeat("▮", -n))
	default:
		return styleTime.Render(bar + "·")
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func sentimentPoints(items []service.Item) []widgets.SentimentPoint {
	out := make([]widgets.SentimentPoint, 0, len(items))
	for _, it := range items {
		if it.Analyzed {
			out = append(out, widgets.SentimentPoint{At: it.Message.SentAt, Value: it.Analysis.Sentiment})
		}
	}
	return out
}

// analyzedIndex returns the position of id among analyzed items, or -1.
func analyzedIndex(items []service.Item, id viewsync.ItemID) int {
	n := 0
	for _, it := range items {
		if !it.Analyzed {
			continue
		}
		if viewsync.ItemID(it.ID()) == id {
			return n
		}
		n++
	}
	return -1
}
