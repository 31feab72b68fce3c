package widgets

import (
	"fmt"
	"time"

	tslc "github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
)

// SentimentPoint is one sample on the sentiment timeline.
type SentimentPoint struct {
	At    time.Time
	Value float64 // -1 .. 1
}

// Sparkline plots sentiment over time with a caption naming the active
// sample.
type Sparkline struct {
	Title  string
	Points []SentimentPoint
	Active int // index into Points, -1 for none
}

func (s Sparkline) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	caption := s.caption()
	if len(s.Points) < 2 || width < 12 || height < 4 {
		return fitCanvas(caption, width, height)
	}

	start, end := s.Points[0].At, s.Points[0].At
	for _, p := range s.Points[1:] {
		if p.At.Before(start) {
			start = p.At
		}
		if p.At.After(end) {
			end = p.At
		}
	}
	if !end.After(start) {
		end = start.Add(time.Minute)
	}

	chart := tslc.New(width, height-1)
	chart.SetStyle(lipgloss.NewStyle().Foreground(colorSyncing))
	chart.AxisStyle = lipgloss.NewStyle().Foreground(colorBorder)
	chart.LabelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	chart.SetTimeRange(start, end)
	chart.SetViewTimeRange(start, end)
	chart.SetYRange(-1, 1)
	chart.SetViewYRange(-1, 1)
	for _, p := range s.Points {
		chart.Push(tslc.TimePoint{Time: p.At, Value: clampUnit(p.Value)})
	}
	chart.DrawBraille()
	return fitCanvas(caption+"\n"+chart.View(), width, height)
}

func (s Sparkline) caption() string {
	title := s.Title
	if title == "" {
		title = "sentiment"
	}
	if s.Active < 0 || s.Active >= len(s.Points) {
		return title
	}
	v := s.Points[s.Active].Value
	return fmt.Sprintf("%s  %d/%d %+.2f %s", title, s.Active+1, len(s.Points), v, trend(v))
}

func trend(v float64) string {
	switch {
	case v > 0.15:
		return "▲"
	case v < -0.15:
		return "▼"
	default:
		return "•"
	}
}

func clampUnit(v float64) float64 { return min(max(v, -1), 1) }
