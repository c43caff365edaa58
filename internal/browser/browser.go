// Package browser abstracts headless rendering behind a narrow capability
// interface so page verification and form classification can be unit-tested
// against an in-memory fake.
package browser

import (
	"context"
	"net/url"
)

// RenderedPage is the fully rendered document captured after JavaScript
// execution and lazy-load settling.
type RenderedPage struct {
	URL      *url.URL
	FinalURL *url.URL
	Title    string
	HTML     []byte
}

// Browser renders one URL per call. Implementations own the full browser
// lifecycle inside Navigate; the process handle never escapes the call.
type Browser interface {
	Navigate(ctx context.Context, rawURL string) (*RenderedPage, error)
}
