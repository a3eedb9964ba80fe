package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// surface paints segments of one bar or row on a shared background. Styled
// segments end in a full reset, so the spaces between them are painted
// explicitly or the terminal's own background shows through.
type surface struct {
	paint lipgloss.Style
}

func newSurface(color string) surface {
	return surface{paint: lipgloss.NewStyle().Background(lipgloss.Color(color))}
}

// text paints s in style, keeping runs of spaces on the background.
func (p surface) text(s string, style lipgloss.Style) string {
	if s == "" {
		return ""
	}
	style = style.Background(p.paint.GetBackground())

	var b strings.Builder
	for s != "" {
		n := strings.IndexByte(s, ' ')
		switch {
		case n < 0:
			b.WriteString(style.Render(s))
			s = ""
		case n > 0:
			b.WriteString(style.Render(s[:n]))
			s = s[n:]
		default:
			run := len(s) - len(strings.TrimLeft(s, " "))
			b.WriteString(p.gap(run))
			s = s[run:]
		}
	}
	return b.String()
}

// gap paints n blank cells.
func (p surface) gap(n int) string {
	if n <= 0 {
		return ""
	}
	return p.paint.Render(strings.Repeat(" ", n))
}

// join places parts side by side, width cells apart.
func (p surface) join(parts []string, width int) string {
	return strings.Join(parts, p.gap(width))
}

// tabs renders labels one cell apart, labels[active] in on and the rest in
// off. An active index out of range highlights nothing.
func (p surface) tabs(labels []string, active int, on, off lipgloss.Style) string {
	out := make([]string, len(labels))
	for i, l := range labels {
		style := off
		if i == active {
			style = on
		}
		out[i] = p.text(l, style)
	}
	return p.join(out, 1)
}

// fill pads line with the background to the full width.
func (p surface) fill(line string, width int) string {
	return p.paint.Width(width).Render(line)
}
