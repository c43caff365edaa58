// Package verifier confirms that a candidate URL is reachable and topically
// consistent with a contact destination.
package verifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/browser"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/extractor"
)

// Paths that unambiguously encode a contact destination. Pages behind these
// are accepted even when their prose is too sparse to match the vocabulary.
var unambiguousPathWords = []string{"contact", "get-in-touch", "reach-us"}

var errorPageMarkers = []string{"404", "page not found", "not found"}

// Verifier renders candidate pages through the browser capability and judges
// whether they plausibly host a contact page.
type Verifier struct {
	browser browser.Browser
	logger  *slog.Logger
}

// New constructs a verifier over the given browser.
func New(b browser.Browser) *Verifier {
	return &Verifier{browser: b, logger: slog.Default()}
}

// Verify renders the URL and reports whether it is accessible and on-topic.
// The rendered page is returned so callers can classify its forms without a
// second browser session.
func (v *Verifier) Verify(ctx context.Context, rawURL string) (*browser.RenderedPage, bool) {
	page, err := v.browser.Navigate(ctx, rawURL)
	if err != nil {
		v.logger.Debug("candidate render failed", "url", rawURL, "error", err)
		return nil, false
	}
	if page == nil || len(page.HTML) == 0 {
		return nil, false
	}

	// The browser capability does not expose the main document's HTTP
	// status, so error pages are recognised from the title. A soft 404 with
	// a bland title slips past this check and has to fail the topic or
	// form checks instead.
	title := strings.ToLower(page.Title)
	for _, marker := range errorPageMarkers {
		if strings.Contains(title, marker) {
			v.logger.Debug("candidate looks like an error page", "url", rawURL, "title", page.Title)
			return nil, false
		}
	}

	if v.onTopic(page) {
		return page, true
	}
	v.logger.Debug("candidate lacks contact vocabulary", "url", rawURL)
	return nil, false
}

func (v *Verifier) onTopic(page *browser.RenderedPage) bool {
	finalURL := ""
	if page.FinalURL != nil {
		finalURL = page.FinalURL.String()
	}

	if pathIsUnambiguous(finalURL) {
		return true
	}

	haystack := strings.ToLower(finalURL + " " + page.Title + " " + string(page.HTML))
	for _, word := range extractor.ContactVocabulary() {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func pathIsUnambiguous(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, word := range unambiguousPathWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
