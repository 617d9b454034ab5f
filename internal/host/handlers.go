package host

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/kylesnowschwartz/summary-widget/render"
	"github.com/kylesnowschwartz/summary-widget/stats"
)

var errNotFound = errors.New("widget not found")

// createRequest is the optional body of POST /widgets.
type createRequest struct {
	ID       string          `json:"id,omitempty"`
	Settings *stats.Settings `json:"settings,omitempty"`
}

type createResponse struct {
	ID string `json:"id"`
}

type renderResponse struct {
	Text string `json:"text"`
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type widgetResponse struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Subscribers int    `json:"subscribers"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "decoding request"))
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	settings := s.defaults
	if req.Settings != nil {
		settings = *req.Settings
	}

	if err := s.AddWidget(id, settings); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	wg, ok := s.widget(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	wg.mu.Lock()
	resp := widgetResponse{
		ID:     wg.id,
		Text:   wg.renderer.Text(),
		Width:  wg.renderer.Width,
		Height: wg.renderer.Height,
	}
	wg.mu.Unlock()
	resp.Subscribers = wg.surface.subscriberCount()

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.RemoveWidget(mux.Vars(r)["id"]) {
		s.writeError(w, http.StatusNotFound, errNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.widget(id); !ok {
		s.writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	req, err := stats.DecodeRequest(r.Body)
	if err != nil {
		s.metrics.RenderErrors.Inc()
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	text, err := s.Render(id, req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderResponse{Text: text})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "decoding request"))
		return
	}

	if err := s.Resize(mux.Vars(r)["id"], req.Width, req.Height); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	wg, ok := s.widget(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, errNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "widget", id, "err", err)
		return
	}

	sub := wg.surface.subscribe(conn)
	if sub == nil {
		conn.Close()
		return
	}
	s.metrics.Subscribers.Inc()
	defer s.metrics.Subscribers.Dec()
	s.log.Debug("subscriber connected", "widget", id, "remote", r.RemoteAddr)

	go sub.writeLoop()

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	wg.surface.unsubscribe(sub)
	s.log.Debug("subscriber disconnected", "widget", id)
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch errors.Cause(err) {
	case errNotFound:
		return http.StatusNotFound
	case ErrWidgetExists:
		return http.StatusConflict
	case stats.ErrDigitsRange, render.ErrUnknownStatistic, render.ErrEmptyDataset:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
