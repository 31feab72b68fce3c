package widgets

// Widget renders into a width x height cell box.
type Widget interface {
	Render(width, height int) string
}

// Text is a Widget that renders a fixed string.
type Text string

func (t Text) Render(width, height int) string {
	return fitCanvas(string(t), width, height)
}
