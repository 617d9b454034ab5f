//go:build js && wasm

package dom

import "syscall/js"

// ElementSurface writes widget text into a DOM element.
type ElementSurface struct {
	el js.Value
}

// NewElementSurface creates a surface backed by el.
func NewElementSurface(el js.Value) *ElementSurface {
	return &ElementSurface{el: el}
}

// SetText replaces the element's innerText.
func (s *ElementSurface) SetText(text string) error {
	s.el.Set("innerText", text)
	return nil
}
