package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VStack stacks widgets top to bottom.
type VStack struct {
	Widgets []Widget
	Ratios  []float64
	// Fixed pins the height of widget i when Fixed[i] > 0; the rest share
	// what remains by Ratios.
	Fixed []int
}

func (v VStack) Render(width, height int) string {
	if len(v.Widgets) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	heights := v.heights(height)
	parts := make([]string, 0, len(v.Widgets))
	for i, w := range v.Widgets {
		if heights[i] <= 0 {
			continue
		}
		parts = append(parts, fitCanvas(w.Render(width, heights[i]), width, heights[i]))
	}
	return strings.Join(parts, "\n")
}

func (v VStack) heights(total int) []int {
	n := len(v.Widgets)
	out := make([]int, n)
	free := total
	var flex []int
	for i := range out {
		if i < len(v.Fixed) && v.Fixed[i] > 0 {
			out[i] = min(v.Fixed[i], free)
			free -= out[i]
			continue
		}
		flex = append(flex, i)
	}
	if len(flex) == 0 {
		return out
	}
	var ratios []float64
	if len(v.Ratios) == n {
		for _, i := range flex {
			ratios = append(ratios, v.Ratios[i])
		}
	}
	for j, h := range Split(free, len(flex), ratios) {
		out[flex[j]] = h
	}
	return out
}

// HStack places widgets side by side separated by Gap blank columns.
type HStack struct {
	Widgets []Widget
	Ratios  []float64
	Gap     int
}

func (h HStack) Render(width, height int) string {
	if len(h.Widgets) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	gap := max(0, h.Gap)
	usable := max(len(h.Widgets), width-gap*(len(h.Widgets)-1))
	widths := Split(usable, len(h.Widgets), h.Ratios)
	cols := make([][]string, len(h.Widgets))
	for i, w := range h.Widgets {
		cols[i] = splitToLines(w.Render(widths[i], height), height)
	}
	sep := strings.Repeat(" ", gap)
	out := make([]string, height)
	row := make([]string, len(cols))
	for line := range out {
		for i := range cols {
			row[i] = padRight(cols[i][line], widths[i])
		}
		out[line] = strings.Join(row, sep)
	}
	return strings.Join(out, "\n")
}

// Split divides total cells into n parts by ratios (equal parts when ratios
// does not have n entries). Remainders go to the leading parts.
func Split(total, n int, ratios []float64) []int {
	if n <= 0 {
		return nil
	}
	total = max(0, total)
	weights := make([]float64, n)
	sum := 0.0
	for i := range weights {
		weights[i] = 1
		if len(ratios) == n && ratios[i] > 0 {
			weights[i] = ratios[i]
		}
		sum += weights[i]
	}
	out := make([]int, n)
	used := 0
	for i, w := range weights {
		out[i] = int(math.Floor(w / sum * float64(total)))
		used += out[i]
	}
	for i := 0; used < total; i = (i + 1) % n {
		out[i]++
		used++
	}
	return out
}

func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func splitToLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func fitCanvas(s string, width, height int) string {
	lines := splitToLines(s, height)
	for i := range lines {
		lines[i] = padRight(lines[i], width)
	}
	return strings.Join(lines, "\n")
}
