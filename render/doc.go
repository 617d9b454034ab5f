// Package render turns a statistic into the text of a widget surface.
//
// A SummaryRenderer owns one Surface and implements the Widget interface
// that widget hosts call into:
//   - Render: compute the statistic for new data and replace the text
//   - Resize: record the new size and redraw the current text
//
// Surfaces provided here:
//   - WriterSurface: one line per render on an io.Writer
//   - BufferSurface: keeps the current text in memory
//
// Values are formatted with FormatNumber (unrounded) or FormatFixed
// (exactly n fractional digits).
package render
