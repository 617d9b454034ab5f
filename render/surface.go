package render

import (
	"fmt"
	"io"
)

// Surface is a visible text area. SetText replaces its whole content.
type Surface interface {
	SetText(text string) error
}

// Resizer is implemented by surfaces whose layout depends on the display size.
type Resizer interface {
	Resize(width, height int)
}

// WriterSurface prints each new text as a line on w.
type WriterSurface struct {
	w io.Writer
}

// NewWriterSurface creates a surface that writes to w.
func NewWriterSurface(w io.Writer) *WriterSurface {
	return &WriterSurface{w: w}
}

// SetText writes text followed by a newline.
func (s *WriterSurface) SetText(text string) error {
	_, err := fmt.Fprintln(s.w, text)
	return err
}

// BufferSurface keeps the current text in memory.
type BufferSurface struct {
	text   string
	writes int
}

// SetText replaces the held text.
func (s *BufferSurface) SetText(text string) error {
	s.text = text
	s.writes++
	return nil
}

// Text returns the current text.
func (s *BufferSurface) Text() string { return s.text }

// Writes returns how many times the text was set.
func (s *BufferSurface) Writes() int { return s.writes }
