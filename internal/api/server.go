// Package api exposes the detection engine and its stored results over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/batch"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/cache"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/store"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// Server wires the checker, store, and result cache onto an HTTP router.
type Server struct {
	checker batch.Checker
	store   store.Store
	cache   *cache.TTLCache
	logger  *slog.Logger
}

// NewServer constructs the API server. The cache may be nil to disable
// result caching; the store may be nil to disable persistence.
func NewServer(checker batch.Checker, s store.Store, c *cache.TTLCache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{checker: checker, store: s, cache: c, logger: logger}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/checks", s.handleRunCheck)
	r.Get("/api/checks/{site}", s.handleGetCheck)
	r.Get("/api/checks/{site}/history", s.handleHistory)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

type checkPayload struct {
	URL string `json:"url"`
}

type checkResponse struct {
	Site   string                   `json:"site"`
	Result types.ContactCheckResult `json:"result"`
	Cached bool                     `json:"cached"`
}

func (s *Server) handleRunCheck(w http.ResponseWriter, r *http.Request) {
	var p checkPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.URL == "" {
		http.Error(w, "payload must be {\"url\": \"...\"}", http.StatusBadRequest)
		return
	}

	result := s.checker.Detect(r.Context(), p.URL)
	if s.store != nil {
		if err := store.Record(r.Context(), s.store, p.URL, result); err != nil {
			s.logger.Error("persist check failed", "site", p.URL, "error", err)
		}
	}
	if s.cache != nil {
		s.cache.Set(cacheKey(p.URL), result)
	}
	writeJSON(w, http.StatusOK, checkResponse{Site: p.URL, Result: result})
}

func (s *Server) handleGetCheck(w http.ResponseWriter, r *http.Request) {
	site, ok := siteParam(w, r)
	if !ok {
		return
	}

	if s.cache != nil {
		if v, hit := s.cache.Get(cacheKey(site)); hit {
			if result, isResult := v.(types.ContactCheckResult); isResult {
				writeJSON(w, http.StatusOK, checkResponse{Site: site, Result: result, Cached: true})
				return
			}
		}
	}

	if s.store == nil {
		http.Error(w, "no stored result", http.StatusNotFound)
		return
	}
	rec, err := s.store.Get(r.Context(), site)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "no stored result", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("load check failed", "site", site, "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	site, ok := siteParam(w, r)
	if !ok {
		return
	}
	if s.store == nil {
		http.Error(w, "no stored history", http.StatusNotFound)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.store.History(r.Context(), site, limit)
	if err != nil {
		s.logger.Error("load history failed", "site", site, "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"site": site, "history": entries})
}

func siteParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "site")
	site, err := url.PathUnescape(raw)
	if err != nil || site == "" {
		http.Error(w, "invalid site", http.StatusBadRequest)
		return "", false
	}
	return site, true
}

func cacheKey(site string) string {
	return "check:" + site
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
