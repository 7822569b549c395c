package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chatglass/chatglass/pkg/errors"
	"github.com/chatglass/chatglass/pkg/store"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := New(opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) errors.Code {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v (body %q)", err, w.Body.String())
	}
	if env.Error.Message == "" {
		t.Error("error envelope has empty message")
	}
	return env.Error.Code
}

// runsDoc mirrors the runs JSON shape far enough for assertions.
type runsDoc struct {
	Seed       uint64 `json:"seed"`
	IntervalMS int64  `json:"interval_ms"`
	Runs       []struct {
		Key   string `json:"key"`
		Text  string `json:"text"`
		Style *struct {
			Bold  bool   `json:"bold"`
			Color string `json:"color"`
		} `json:"style"`
	} `json:"runs"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
	if resp["version"] == "" {
		t.Error("version should be set")
	}
}

func TestRenderComponent(t *testing.T) {
	s := newTestServer(t, Options{})

	body := `{"component": {"text": "Hello", "color": "red", "bold": true}}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if w.Header().Get("X-Runs-Hash") == "" {
		t.Error("X-Runs-Hash should be set")
	}

	var doc runsDoc
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(doc.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(doc.Runs))
	}
	run := doc.Runs[0]
	if run.Text != "Hello" {
		t.Errorf("text = %q, want Hello", run.Text)
	}
	if run.Style == nil || run.Style.Color != "#FF5555" {
		t.Errorf("style = %+v, want color #FF5555", run.Style)
	}
	if !run.Style.Bold {
		t.Error("bold should be set")
	}
}

func TestRenderLegacy(t *testing.T) {
	s := newTestServer(t, Options{})

	body := `{"legacy": "§cHello"}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
	}

	raw := w.Body.String()
	if !strings.Contains(raw, "#FF5555") {
		t.Errorf("runs should carry the red color, got %q", raw)
	}
	if !strings.Contains(raw, "Hello") {
		t.Errorf("runs should carry the text, got %q", raw)
	}
}

func TestRenderHTML(t *testing.T) {
	s := newTestServer(t, Options{})

	body := `{"component": {"text": "Page"}, "format": "html", "title": "My Page"}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	page := w.Body.String()
	if !strings.Contains(page, "My Page") {
		t.Error("page should contain the title")
	}
	if !strings.Contains(page, "Page") {
		t.Error("page should contain the text")
	}
}

func TestRenderSeedOverride(t *testing.T) {
	s := newTestServer(t, Options{})

	body := `{"component": {"text": "x", "obfuscated": true}, "seed": 7}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %q)", w.Code, w.Body.String())
	}

	var doc runsDoc
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if doc.Seed != 7 {
		t.Errorf("seed = %d, want 7", doc.Seed)
	}
}

func TestRenderErrors(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  errors.Code
	}{
		{
			name:     "empty body",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeInvalidInput,
		},
		{
			name:     "both inputs",
			body:     `{"component": {"text": "a"}, "legacy": "b"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeInvalidInput,
		},
		{
			name:     "malformed json",
			body:     `{nope`,
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown field",
			body:     `{"component": {"text": "a"}, "fromat": "html"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown format",
			body:     `{"component": {"text": "a"}, "format": "pdf"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeInvalidFormat,
		},
		{
			name:     "null component child",
			body:     `{"component": {"text": "a", "extra": [null]}}`,
			wantCode: http.StatusBadRequest,
			wantErr:  errors.ErrCodeInvalidComponent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, "/api/v1/render", tc.body)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d (body %q)", w.Code, tc.wantCode, w.Body.String())
			}
			if code := decodeErrorCode(t, w); code != tc.wantErr {
				t.Errorf("code = %q, want %q", code, tc.wantErr)
			}
		})
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t, Options{})

	body := `{"name": "motd", "component": {"text": "Welcome", "color": "gold"}}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/documents", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d (body %q)", w.Code, http.StatusCreated, w.Body.String())
	}

	var doc store.Document
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("document id should be set")
	}
	if doc.Name != "motd" {
		t.Errorf("name = %q, want motd", doc.Name)
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/documents/"+doc.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d (body %q)", w.Code, w.Body.String())
	}
	var got store.Document
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("id = %q, want %q", got.ID, doc.ID)
	}

	w = doRequest(t, s, http.MethodDelete, "/api/v1/documents/"+doc.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/documents/"+doc.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if code := decodeErrorCode(t, w); code != errors.ErrCodeDocumentNotFound {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeDocumentNotFound)
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	s := newTestServer(t, Options{})

	tests := []struct {
		name    string
		body    string
		wantErr errors.Code
	}{
		{
			name:    "missing name",
			body:    `{"component": {"text": "a"}}`,
			wantErr: errors.ErrCodeInvalidDocument,
		},
		{
			name:    "missing input",
			body:    `{"name": "x"}`,
			wantErr: errors.ErrCodeInvalidInput,
		},
		{
			name:    "bad component",
			body:    `{"name": "x", "component": {"extra": [null]}}`,
			wantErr: errors.ErrCodeInvalidComponent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, "/api/v1/documents", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusBadRequest, w.Body.String())
			}
			if code := decodeErrorCode(t, w); code != tc.wantErr {
				t.Errorf("code = %q, want %q", code, tc.wantErr)
			}
		})
	}
}

func TestPage(t *testing.T) {
	s := newTestServer(t, Options{})

	body := `{"name": "announcement", "legacy": "§6Server §lrestart"}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/documents", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %q)", w.Code, w.Body.String())
	}
	var doc store.Document
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}

	w = doRequest(t, s, http.MethodGet, "/d/"+doc.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("page status = %d (body %q)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	page := w.Body.String()
	if !strings.Contains(page, "announcement") {
		t.Error("page should use the document name as title")
	}
	if !strings.Contains(page, "restart") {
		t.Error("page should contain the rendered text")
	}

	// Second hit serves from the page cache.
	w = doRequest(t, s, http.MethodGet, "/d/"+doc.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("cached page status = %d", w.Code)
	}
	if got := w.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("X-Cache = %q, want hit", got)
	}
}

func TestPageNotFound(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s, http.MethodGet, "/d/00000000-0000-0000-0000-000000000000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if code := decodeErrorCode(t, w); code != errors.ErrCodeDocumentNotFound {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeDocumentNotFound)
	}
}

func TestInvalidDocumentID(t *testing.T) {
	s := newTestServer(t, Options{})

	w := doRequest(t, s, http.MethodGet, "/api/v1/documents/not%20a%20uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusBadRequest, w.Body.String())
	}
	if code := decodeErrorCode(t, w); code != errors.ErrCodeInvalidDocument {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeInvalidDocument)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimit: 1, RateBurst: 1})

	body := `{"component": {"text": "hi"}}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", body)
	if w.Code != http.StatusOK {
		t.Fatalf("first status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/render", body)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if got := w.Header().Get("Retry-After"); got == "" {
		t.Error("Retry-After should be set")
	}
	if code := decodeErrorCode(t, w); code != errors.ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeRateLimited)
	}

	// The health check is exempt from the limit.
	w = doRequest(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestStartShutdown(t *testing.T) {
	s := newTestServer(t, Options{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	// Give the listener a moment, then trigger graceful shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
