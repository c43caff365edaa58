package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientFetch_MalformedURLIsFatal(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	for _, raw := range []string{"", "not a url", "ftp://example.com", "/relative/only"} {
		out := c.Fetch(context.Background(), raw)
		if !out.Fatal() {
			t.Fatalf("Fetch(%q): expected fatal outcome, got %v", raw, out.Kind)
		}
	}
}

func TestClientFetch_RecordsFinalURLAfterRedirect(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/contact", http.StatusMovedPermanently)
			return
		}
		w.Write([]byte("<html>contact us</html>"))
	}))
	defer target.Close()

	c, _ := NewClient(Options{})
	out := c.Fetch(context.Background(), target.URL+"/start")
	if !out.Success() {
		t.Fatalf("expected success, got %v (%s)", out.Kind, out.Reason)
	}
	if out.FinalURL == nil || out.FinalURL.Path != "/contact" {
		t.Fatalf("expected final URL path /contact, got %v", out.FinalURL)
	}
}

func TestClientFetch_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, _ := NewClient(Options{UserAgent: "test-agent/1.0"})
	out := c.Fetch(context.Background(), srv.URL)
	if !out.Success() {
		t.Fatalf("expected success, got %v", out.Kind)
	}
	if gotUA != "test-agent/1.0" {
		t.Fatalf("expected custom user agent, got %q", gotUA)
	}
	if gotAccept == "" {
		t.Fatal("expected Accept header to be set")
	}
}

func TestClientFetch_NotFoundIsStillSuccessOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := NewClient(Options{})
	out := c.Fetch(context.Background(), srv.URL)
	if !out.Success() || out.StatusCode != http.StatusNotFound {
		t.Fatalf("404 should be a success outcome carrying the status, got %v (%d)", out.Kind, out.StatusCode)
	}
}

func TestClientFetch_TransientStatuses(t *testing.T) {
	for _, code := range []int{429, 502, 503, 504} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		c, _ := NewClient(Options{})
		out := c.Fetch(context.Background(), srv.URL)
		srv.Close()
		if !out.Transient() {
			t.Fatalf("HTTP %d should classify transient, got %v", code, out.Kind)
		}
		if out.StatusCode != code {
			t.Fatalf("expected status %d recorded, got %d", code, out.StatusCode)
		}
	}
}

// scripted fetcher returning a fixed outcome sequence.
type fakeDoer struct {
	outcomes []Outcome
	calls    int
}

func (f *fakeDoer) Fetch(_ context.Context, _ string) Outcome {
	if f.calls >= len(f.outcomes) {
		return fatal("no more scripted outcomes", nil)
	}
	out := f.outcomes[f.calls]
	f.calls++
	return out
}

func TestRetryClient_RecoversWithinBudget(t *testing.T) {
	f := &fakeDoer{outcomes: []Outcome{
		transient("HTTP 503", 503, nil),
		transient("HTTP 503", 503, nil),
		success(200, nil, []byte("ok")),
	}}
	rc := NewRetryClient(f, 2, time.Millisecond)

	start := time.Now()
	out := rc.Fetch(context.Background(), "https://example.com")
	elapsed := time.Since(start)

	if !out.Success() || out.StatusCode != 200 {
		t.Fatalf("expected the 200 outcome, got %v (%d)", out.Kind, out.StatusCode)
	}
	if f.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.calls)
	}
	// backoff doubles: 1ms then 2ms.
	if elapsed < 3*time.Millisecond {
		t.Fatalf("expected increasing backoff to be waited, elapsed %v", elapsed)
	}
}

func TestRetryClient_ExhaustsWithoutExtraAttempt(t *testing.T) {
	f := &fakeDoer{outcomes: []Outcome{
		transient("HTTP 503", 503, nil),
		transient("HTTP 503", 503, nil),
		transient("HTTP 503", 503, nil),
		transient("HTTP 503", 503, nil),
	}}
	rc := NewRetryClient(f, 2, time.Millisecond)
	out := rc.Fetch(context.Background(), "https://example.com")

	if !out.Transient() || out.StatusCode != 503 {
		t.Fatalf("expected the last 503, got %v (%d)", out.Kind, out.StatusCode)
	}
	if f.calls != 3 {
		t.Fatalf("expected exactly 3 attempts (1 + 2 retries), got %d", f.calls)
	}
}

func TestRetryClient_DoesNotRetryFatal(t *testing.T) {
	f := &fakeDoer{outcomes: []Outcome{fatal("malformed URL", nil)}}
	rc := NewRetryClient(f, 3, time.Millisecond)
	out := rc.Fetch(context.Background(), "::bad::")

	if !out.Fatal() {
		t.Fatalf("expected fatal outcome, got %v", out.Kind)
	}
	if f.calls != 1 {
		t.Fatalf("fatal outcomes must not be retried, got %d attempts", f.calls)
	}
}

func TestRetryClient_RateLimitBacksOffLonger(t *testing.T) {
	rc := NewRetryClient(nil, 2, 10*time.Millisecond)
	if got, want := rc.backoff(0, 429), 40*time.Millisecond; got != want {
		t.Fatalf("429 backoff = %v, want %v", got, want)
	}
	if got, want := rc.backoff(0, 503), 10*time.Millisecond; got != want {
		t.Fatalf("503 backoff = %v, want %v", got, want)
	}
	if got, want := rc.backoff(2, 503), 40*time.Millisecond; got != want {
		t.Fatalf("attempt 2 backoff = %v, want %v", got, want)
	}
}
