package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/cache"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/store"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

type fakeChecker struct {
	calls int
}

func (f *fakeChecker) Detect(_ context.Context, site string) types.ContactCheckResult {
	f.calls++
	return types.Found("https://"+strings.TrimPrefix(site, "https://")+"/contact", "confirmed")
}

func newTestServer() (*Server, *fakeChecker, *store.MemoryStore) {
	checker := &fakeChecker{}
	s := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(checker, s, cache.New(time.Minute, 100), logger), checker, s
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	server, _, _ := newTestServer()
	rr := doRequest(t, server.Router(), http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %s", ct)
	}
}

func TestRunCheck_PersistsAndCaches(t *testing.T) {
	server, checker, s := newTestServer()
	router := server.Router()

	rr := doRequest(t, router, http.MethodPost, "/api/checks", `{"url":"example.com"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if checker.calls != 1 {
		t.Fatalf("expected one detection, got %d", checker.calls)
	}

	var resp checkResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result.Status != types.StatusFound {
		t.Fatalf("unexpected result %+v", resp.Result)
	}

	rec, err := s.Get(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("result must be persisted: %v", err)
	}
	if rec.Status != types.StatusFound {
		t.Fatalf("unexpected stored status %s", rec.Status)
	}

	// The follow-up read is served from cache, not a fresh detection.
	rr = doRequest(t, router, http.MethodGet, "/api/checks/"+url.PathEscape("example.com"), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var cached checkResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cached); err != nil {
		t.Fatalf("decode cached response: %v", err)
	}
	if !cached.Cached {
		t.Fatal("expected cached flag")
	}
	if checker.calls != 1 {
		t.Fatalf("GET must not trigger detection, calls=%d", checker.calls)
	}
}

func TestRunCheck_BadPayload(t *testing.T) {
	server, _, _ := newTestServer()
	rr := doRequest(t, server.Router(), http.MethodPost, "/api/checks", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetCheck_Unknown(t *testing.T) {
	server, _, _ := newTestServer()
	rr := doRequest(t, server.Router(), http.MethodGet, "/api/checks/unknown.com", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHistory(t *testing.T) {
	server, _, s := newTestServer()
	_ = store.Record(context.Background(), s, "example.com", types.NotFound("nothing"))
	_ = store.Record(context.Background(), s, "example.com", types.Found("https://example.com/contact", "confirmed"))

	rr := doRequest(t, server.Router(), http.MethodGet, "/api/checks/example.com/history", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Site    string               `json:"site"`
		History []types.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(payload.History) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(payload.History))
	}
	if payload.History[0].Status != types.StatusFound {
		t.Fatalf("history must be newest first, got %+v", payload.History)
	}
}
