package render

import (
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"github.com/kylesnowschwartz/summary-widget/internal/logging"
	"github.com/kylesnowschwartz/summary-widget/stats"
)

var (
	// ErrUnknownStatistic is returned in strict mode for unrecognized statistics.
	ErrUnknownStatistic = errors.New("unknown statistic")
	// ErrEmptyDataset is returned in strict mode for the mean of no values.
	ErrEmptyDataset = errors.New("mean of empty dataset")
	// ErrNilInput is returned when Render is called without an input.
	ErrNilInput = errors.New("nil input")
)

// Widget is the capability a widget host drives: Render on new data,
// Resize on layout changes.
type Widget interface {
	Render(in *stats.Input) error
	Resize(width, height int)
}

// Option configures a SummaryRenderer.
type Option func(*SummaryRenderer)

// WithLogger sets the logger used for degraded renders.
func WithLogger(l *slog.Logger) Option {
	return func(r *SummaryRenderer) { r.log = l }
}

// WithStrict makes unknown statistics and the mean of an empty dataset
// errors instead of rendering "0" and "NaN".
func WithStrict(strict bool) Option {
	return func(r *SummaryRenderer) { r.Strict = strict }
}

// SummaryRenderer renders a single statistic as the text of a Surface.
// It is not safe for concurrent use; hosts serialize calls per surface.
type SummaryRenderer struct {
	Strict bool
	Width  int
	Height int

	surface  Surface
	log      *slog.Logger
	text     string
	rendered bool
}

// NewSummaryRenderer creates a renderer that owns surface.
func NewSummaryRenderer(surface Surface, opts ...Option) *SummaryRenderer {
	r := &SummaryRenderer{
		surface: surface,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render computes the configured statistic over in.Data and replaces the
// surface text with it. The surface is left untouched on error.
func (r *SummaryRenderer) Render(in *stats.Input) error {
	if in == nil {
		return ErrNilInput
	}
	settings := in.Settings
	if err := settings.Validate(); err != nil {
		return err
	}

	if !stats.IsValidStatistic(settings.Statistic) {
		if r.Strict {
			return errors.Wrapf(ErrUnknownStatistic, "%q", settings.Statistic)
		}
		r.log.Debug("unknown statistic, rendering 0", "statistic", string(settings.Statistic))
	}

	value := in.Value()
	if math.IsNaN(value) && settings.Statistic == stats.StatMean && len(in.Data) == 0 {
		if r.Strict {
			return ErrEmptyDataset
		}
		r.log.Debug("mean of empty dataset")
	}

	text := Format(value, settings.Digits)
	if err := r.surface.SetText(text); err != nil {
		return errors.Wrap(err, "writing surface")
	}

	r.text = text
	r.rendered = true
	return nil
}

// Resize records the new display size and redraws the last rendered text.
// Surfaces implementing Resizer are told the new size first.
func (r *SummaryRenderer) Resize(width, height int) {
	r.Width, r.Height = width, height
	if rs, ok := r.surface.(Resizer); ok {
		rs.Resize(width, height)
	}
	if !r.rendered {
		return
	}
	if err := r.surface.SetText(r.text); err != nil {
		r.log.Warn("redraw after resize failed", "err", err)
	}
}

// Text returns the last rendered text, or "" before the first render.
func (r *SummaryRenderer) Text() string {
	return r.text
}

// Format renders value rounded to digits, or unrounded when digits is nil.
func Format(value float64, digits *int) string {
	if digits == nil {
		return FormatNumber(value)
	}
	return FormatFixed(value, *digits)
}
