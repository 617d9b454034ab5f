// Package host serves summary widgets over HTTP.
//
// Each widget owns a SummaryRenderer whose surface is shared with the
// websocket clients subscribed to it: every render pushes the new text.
package host

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kylesnowschwartz/summary-widget/internal/logging"
	"github.com/kylesnowschwartz/summary-widget/render"
	"github.com/kylesnowschwartz/summary-widget/stats"
)

const shutdownTimeout = 5 * time.Second

// ErrWidgetExists is returned when registering a widget id twice.
var ErrWidgetExists = errors.New("widget already exists")

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithRegistry registers metrics with reg and serves them on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithDefaults sets the settings used when a widget is created without any.
func WithDefaults(settings stats.Settings) Option {
	return func(s *Server) { s.defaults = settings }
}

// WithStrict makes every widget reject unknown statistics and empty means.
func WithStrict(strict bool) Option {
	return func(s *Server) { s.strict = strict }
}

// Server is the widget host. It is safe for concurrent use.
type Server struct {
	router   *mux.Router
	log      *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	defaults stats.Settings
	strict   bool
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	widgets map[string]*widget
}

// widget serializes calls into its renderer.
type widget struct {
	mu       sync.Mutex
	id       string
	settings stats.Settings
	renderer *render.SummaryRenderer
	surface  *broadcastSurface
}

// NewServer creates a host with no widgets.
func NewServer(opts ...Option) *Server {
	s := &Server{
		log:     logging.Discard(),
		widgets: make(map[string]*widget),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/widgets", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/widgets/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/widgets/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/widgets/{id}/render", s.handleRender).Methods(http.MethodPost)
	r.HandleFunc("/widgets/{id}/resize", s.handleResize).Methods(http.MethodPost)
	r.HandleFunc("/widgets/{id}/ws", s.handleWebsocket).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddWidget registers a widget under id with the given default settings.
func (s *Server) AddWidget(id string, settings stats.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.widgets[id]; ok {
		return errors.Wrapf(ErrWidgetExists, "%q", id)
	}

	surface := newBroadcastSurface()
	s.widgets[id] = &widget{
		id:       id,
		settings: settings,
		surface:  surface,
		renderer: render.NewSummaryRenderer(surface,
			render.WithLogger(s.log.With("widget", id)),
			render.WithStrict(s.strict)),
	}
	s.metrics.Widgets.Inc()
	s.log.Info("widget added", "widget", id, "statistic", string(settings.Statistic))
	return nil
}

// RemoveWidget unregisters a widget and disconnects its subscribers.
// Returns false if no such widget exists.
func (s *Server) RemoveWidget(id string) bool {
	s.mu.Lock()
	wg, ok := s.widgets[id]
	delete(s.widgets, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	wg.surface.close()
	s.metrics.Widgets.Dec()
	s.log.Info("widget removed", "widget", id)
	return true
}

// Render renders req on the widget id. When req carries no settings the
// widget's defaults apply. Returns the rendered text.
func (s *Server) Render(id string, req *stats.Request) (string, error) {
	wg, ok := s.widget(id)
	if !ok {
		return "", errNotFound
	}

	wg.mu.Lock()
	defer wg.mu.Unlock()

	in := req.Input(wg.settings)
	if err := wg.renderer.Render(in); err != nil {
		s.metrics.RenderErrors.Inc()
		return "", err
	}
	s.metrics.Renders.WithLabelValues(statisticLabel(in.Settings.Statistic)).Inc()
	s.log.Debug("rendered", "widget", id, "text", wg.renderer.Text())
	return wg.renderer.Text(), nil
}

// Resize forwards a layout change to the widget id.
func (s *Server) Resize(id string, width, height int) error {
	wg, ok := s.widget(id)
	if !ok {
		return errNotFound
	}

	wg.mu.Lock()
	defer wg.mu.Unlock()
	wg.renderer.Resize(width, height)
	return nil
}

func (s *Server) widget(id string) (*widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wg, ok := s.widgets[id]
	return wg, ok
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	for _, wg := range s.widgets {
		wg.surface.close()
	}
	s.mu.Unlock()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}
	return nil
}

// writeJSON writes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("encoding response failed", "status", status, "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
