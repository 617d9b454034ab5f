// Package term provides a terminal surface for summary widgets.
package term

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorValue  = lipgloss.Color("#10B981") // Emerald
	colorLabel  = lipgloss.Color("#06B6D4") // Cyan
	colorBorder = lipgloss.Color("#8B5CF6") // Violet
)

// Surface prints widget text on a terminal, optionally boxed and colored.
type Surface struct {
	UseColor bool
	Border   bool
	Label    string // shown above the value when non-empty
	Width    int    // minimum box width, 0 to fit content

	w        io.Writer
	renderer *lipgloss.Renderer
}

// NewSurface creates a terminal surface writing to w.
func NewSurface(w io.Writer, useColor bool) *Surface {
	return &Surface{UseColor: useColor, w: w, renderer: lipgloss.NewRenderer(w)}
}

// SetText prints text, styled according to the surface options.
func (s *Surface) SetText(text string) error {
	_, err := fmt.Fprintln(s.w, s.View(text))
	return err
}

// View returns the styled representation of text without printing it.
func (s *Surface) View(text string) string {
	value := s.renderer.NewStyle()
	label := s.renderer.NewStyle()
	if s.UseColor {
		value = value.Bold(true).Foreground(colorValue)
		label = label.Foreground(colorLabel)
	}

	content := value.Render(text)
	if s.Label != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, label.Render(s.Label), content)
	}

	if !s.Border {
		return content
	}

	box := s.renderer.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if s.UseColor {
		box = box.BorderForeground(colorBorder)
	}
	if s.Width > 0 {
		box = box.Width(s.Width)
	}
	return box.Render(content)
}

// Resize sets the minimum box width used on the next render.
func (s *Surface) Resize(width, height int) {
	s.Width = width
}
