package host

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kylesnowschwartz/summary-widget/stats"
)

// Metrics are the Prometheus collectors exported by the host.
type Metrics struct {
	Renders      *prometheus.CounterVec
	RenderErrors prometheus.Counter
	Widgets      prometheus.Gauge
	Subscribers  prometheus.Gauge
}

// NewMetrics creates the host collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summarywidget_renders_total",
			Help: "Successful renders by statistic.",
		}, []string{"statistic"}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "summarywidget_render_errors_total",
			Help: "Renders rejected for invalid input or settings.",
		}),
		Widgets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "summarywidget_widgets",
			Help: "Widgets currently registered.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "summarywidget_subscribers",
			Help: "Open websocket subscriptions.",
		}),
	}
	reg.MustRegister(m.Renders, m.RenderErrors, m.Widgets, m.Subscribers)
	return m
}

// statisticLabel bounds label cardinality: unrecognized names share one label.
func statisticLabel(s stats.Statistic) string {
	if stats.IsValidStatistic(s) {
		return string(s)
	}
	return "unknown"
}
