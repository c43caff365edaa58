package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

const rulesBody = `User-agent: *
Disallow: /private
`

func serveRobots(t *testing.T, fetches *atomic.Int64, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if fetches != nil {
			fetches.Add(1)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(rulesBody))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func target(t *testing.T, base, path string) *url.URL {
	t.Helper()
	u, err := url.Parse(base + path)
	if err != nil {
		t.Fatalf("parse %q: %v", base+path, err)
	}
	return u
}

func TestAllowed_DisallowedPathIsBlocked(t *testing.T) {
	srv := serveRobots(t, nil, http.StatusOK)
	agent := NewAgent(Config{Respect: true, UserAgent: "contactscout/1.0"}, srv.Client())

	if agent.Allowed(context.Background(), target(t, srv.URL, "/private/contact")) {
		t.Fatal("disallowed path must be blocked")
	}
	if !agent.Allowed(context.Background(), target(t, srv.URL, "/contact")) {
		t.Fatal("path outside the disallow rules must be permitted")
	}
}

func TestAllowed_FailsOpenOnErrorStatus(t *testing.T) {
	srv := serveRobots(t, nil, http.StatusInternalServerError)
	agent := NewAgent(Config{Respect: true, UserAgent: "contactscout/1.0"}, srv.Client())

	if !agent.Allowed(context.Background(), target(t, srv.URL, "/private/contact")) {
		t.Fatal("unreachable rules must never block a probe")
	}
}

func TestAllowed_FailsOpenOnFetchError(t *testing.T) {
	srv := serveRobots(t, nil, http.StatusOK)
	base := srv.URL
	client := srv.Client()
	srv.Close()

	agent := NewAgent(Config{Respect: true, UserAgent: "contactscout/1.0"}, client)
	if !agent.Allowed(context.Background(), target(t, base, "/private/contact")) {
		t.Fatal("a dead robots endpoint must never block a probe")
	}
}

func TestAllowed_OverrideHostSkipsRules(t *testing.T) {
	srv := serveRobots(t, nil, http.StatusOK)
	u := target(t, srv.URL, "/private/contact")
	agent := NewAgent(Config{
		Respect:   true,
		UserAgent: "contactscout/1.0",
		Overrides: []string{u.Hostname()},
	}, srv.Client())

	if !agent.Allowed(context.Background(), u) {
		t.Fatal("override host must bypass the disallow rules")
	}
}

func TestAllowed_RespectDisabledAllowsEverything(t *testing.T) {
	srv := serveRobots(t, nil, http.StatusOK)
	agent := NewAgent(Config{Respect: false, UserAgent: "contactscout/1.0"}, srv.Client())

	if !agent.Allowed(context.Background(), target(t, srv.URL, "/private/contact")) {
		t.Fatal("respect disabled must allow every path")
	}
}

func TestAllowed_RulesAreCachedUntilPurge(t *testing.T) {
	var fetches atomic.Int64
	srv := serveRobots(t, &fetches, http.StatusOK)
	agent := NewAgent(Config{
		Respect:   true,
		UserAgent: "contactscout/1.0",
		CacheTTL:  time.Hour,
	}, srv.Client())

	u := target(t, srv.URL, "/contact")
	agent.Allowed(context.Background(), u)
	agent.Allowed(context.Background(), u)
	if got := fetches.Load(); got != 1 {
		t.Fatalf("expected one robots fetch across repeated checks, got %d", got)
	}

	agent.Purge(u.Host)
	agent.Allowed(context.Background(), u)
	if got := fetches.Load(); got != 2 {
		t.Fatalf("expected a refetch after purge, got %d", got)
	}
}
