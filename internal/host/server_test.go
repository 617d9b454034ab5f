package host

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kylesnowschwartz/summary-widget/internal/logging"
	"github.com/kylesnowschwartz/summary-widget/stats"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(opts...)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestServer_CreateRenderGet(t *testing.T) {
	_, ts := newTestServer(t)

	resp := post(t, ts.URL+"/widgets", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	id := decode[createResponse](t, resp).ID
	if id == "" {
		t.Fatal("create returned empty id")
	}

	resp = post(t, ts.URL+"/widgets/"+id+"/render", `{"data":[1,2,3,4],"settings":{"statistic":"mean","digits":2}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render status = %d, want 200", resp.StatusCode)
	}
	if got := decode[renderResponse](t, resp).Text; got != "2.50" {
		t.Errorf("render text = %q, want 2.50", got)
	}

	getResp, err := http.Get(ts.URL + "/widgets/" + id)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer getResp.Body.Close()
	info := decode[widgetResponse](t, getResp)
	if info.ID != id || info.Text != "2.50" {
		t.Errorf("widget = %+v, want id=%s text=2.50", info, id)
	}
}

func TestServer_RenderScenarios(t *testing.T) {
	s, ts := newTestServer(t)
	if err := s.AddWidget("w", stats.Settings{}); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}

	tests := []struct {
		body string
		want string
	}{
		{`{"data":[1,2,3,4],"settings":{"statistic":"sum","digits":null}}`, "10"},
		{`{"data":[1,2,3,4],"settings":{"statistic":"mean","digits":2}}`, "2.50"},
		{`{"data":[],"settings":{"statistic":"count","digits":null}}`, "0"},
		{`{"data":[5],"settings":{"statistic":"mean","digits":null}}`, "5"},
		{`{"data":[1,2,3],"settings":{"statistic":"unknown","digits":null}}`, "0"},
	}

	for _, tt := range tests {
		resp := post(t, ts.URL+"/widgets/w/render", tt.body)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("render %s: status %d", tt.body, resp.StatusCode)
			continue
		}
		if got := decode[renderResponse](t, resp).Text; got != tt.want {
			t.Errorf("render %s = %q, want %q", tt.body, got, tt.want)
		}
	}

	if got := testutil.ToFloat64(s.metrics.Renders.WithLabelValues("mean")); got != 2 {
		t.Errorf("mean renders = %v, want 2", got)
	}
	if got := testutil.ToFloat64(s.metrics.Renders.WithLabelValues("unknown")); got != 1 {
		t.Errorf("unknown renders = %v, want 1", got)
	}
}

func TestServer_WidgetDefaults(t *testing.T) {
	two := 2
	_, ts := newTestServer(t, WithDefaults(stats.Settings{Statistic: stats.StatSum, Digits: &two}))

	id := decode[createResponse](t, post(t, ts.URL+"/widgets", `{"id":"totals"}`)).ID
	if id != "totals" {
		t.Fatalf("id = %q, want totals", id)
	}

	// No settings in the payload: widget defaults apply.
	resp := post(t, ts.URL+"/widgets/totals/render", `{"data":[1,2]}`)
	if got := decode[renderResponse](t, resp).Text; got != "3.00" {
		t.Errorf("render text = %q, want 3.00", got)
	}

	// Explicit settings win.
	resp = post(t, ts.URL+"/widgets/totals/render", `{"data":[1,2],"settings":{"statistic":"count"}}`)
	if got := decode[renderResponse](t, resp).Text; got != "2" {
		t.Errorf("render text = %q, want 2", got)
	}
}

func TestServer_Errors(t *testing.T) {
	s, ts := newTestServer(t, WithStrict(true))
	if err := s.AddWidget("w", stats.Settings{}); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}

	tests := []struct {
		name string
		url  string
		body string
		want int
	}{
		{"unknown widget", "/widgets/missing/render", `{"data":[1]}`, http.StatusNotFound},
		{"unknown widget bad json", "/widgets/missing/render", `{bad`, http.StatusNotFound},
		{"bad json", "/widgets/w/render", `{bad`, http.StatusBadRequest},
		{"non-numeric data", "/widgets/w/render", `{"data":["x"]}`, http.StatusBadRequest},
		{"digits out of range", "/widgets/w/render", `{"data":[1],"settings":{"statistic":"sum","digits":101}}`, http.StatusUnprocessableEntity},
		{"strict unknown statistic", "/widgets/w/render", `{"data":[1],"settings":{"statistic":"median"}}`, http.StatusUnprocessableEntity},
		{"strict empty mean", "/widgets/w/render", `{"data":[],"settings":{"statistic":"mean"}}`, http.StatusUnprocessableEntity},
		{"duplicate widget", "/widgets", `{"id":"w"}`, http.StatusConflict},
		{"create bad digits", "/widgets", `{"settings":{"digits":-2}}`, http.StatusUnprocessableEntity},
		{"resize unknown", "/widgets/missing/resize", `{"width":1,"height":1}`, http.StatusNotFound},
		{"resize bad json", "/widgets/w/resize", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+tt.url, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	if got := testutil.ToFloat64(s.metrics.RenderErrors); got != 5 {
		t.Errorf("render errors = %v, want 5", got)
	}
}

func TestServer_ResizeKeepsText(t *testing.T) {
	s, ts := newTestServer(t)
	if err := s.AddWidget("w", stats.Settings{Statistic: stats.StatSum}); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	post(t, ts.URL+"/widgets/w/render", `{"data":[4,5]}`)

	resp := post(t, ts.URL+"/widgets/w/resize", `{"width":320,"height":240}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("resize status = %d, want 204", resp.StatusCode)
	}

	getResp, err := http.Get(ts.URL + "/widgets/w")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer getResp.Body.Close()
	info := decode[widgetResponse](t, getResp)
	if info.Text != "9" || info.Width != 320 || info.Height != 240 {
		t.Errorf("widget = %+v, want text=9 320x240", info)
	}
}

func TestServer_Delete(t *testing.T) {
	s, ts := newTestServer(t)
	if err := s.AddWidget("w", stats.Settings{}); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if got := testutil.ToFloat64(s.metrics.Widgets); got != 1 {
		t.Errorf("widgets gauge = %v, want 1", got)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/widgets/w", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
	if got := testutil.ToFloat64(s.metrics.Widgets); got != 0 {
		t.Errorf("widgets gauge = %v, want 0", got)
	}
}

func TestServer_Websocket(t *testing.T) {
	s, ts := newTestServer(t)
	if err := s.AddWidget("w", stats.Settings{Statistic: stats.StatSum}); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if _, err := s.Render("w", &stats.Request{Data: stats.Dataset{1}}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/widgets/w/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	read := func() string {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		return string(msg)
	}

	// Current text arrives on connect.
	if got := read(); got != "1" {
		t.Errorf("initial message = %q, want 1", got)
	}

	post(t, ts.URL+"/widgets/w/render", `{"data":[1,2,3,4]}`)
	if got := read(); got != "10" {
		t.Errorf("pushed message = %q, want 10", got)
	}

	// Removing the widget closes the subscription.
	s.RemoveWidget("w")
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection close after widget removal")
	}
}

func TestServer_WebsocketUnknownWidget(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/widgets/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Dial unknown widget: got nil error")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Dial unknown widget: response %v, want 404", resp)
	}
}

func TestServer_Metrics(t *testing.T) {
	s, ts := newTestServer(t)
	if err := s.AddWidget("w", stats.Settings{Statistic: stats.StatCount}); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if _, err := s.Render("w", &stats.Request{Data: stats.Dataset{1, 2}}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	body := buf.String()
	for _, want := range []string{
		`summarywidget_renders_total{statistic="count"} 1`,
		`summarywidget_widgets 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestServer_ListenAndServeShutdown(t *testing.T) {
	s := NewServer()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, addr) }()

	// Wait for the listener to come up.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("statusFor(other) = %d, want 500", got)
	}
	if got := statusFor(errors.Wrap(errNotFound, "x")); got != http.StatusNotFound {
		t.Errorf("statusFor(wrapped not found) = %d, want 404", got)
	}
}

func TestServer_WriteJSONLogsEncodeError(t *testing.T) {
	var logs bytes.Buffer
	s := NewServer(WithLogger(logging.New(logging.Config{Level: "debug", Output: &logs})))

	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, map[string]float64{"value": math.NaN()})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(logs.String(), "encoding response failed") {
		t.Errorf("expected encode failure in logs, got %q", logs.String())
	}
}
