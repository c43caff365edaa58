// Package detector is the engine's top level: it sequences transport, link
// extraction, rendering, probing, verification, and form classification into
// one contact-page check per site.
package detector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/browser"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/classifier"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/extractor"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/fetcher"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/prober"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/verifier"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// Detector runs the full discovery pipeline for one site per Detect call.
// It holds no per-site state; every invocation starts from scratch.
type Detector struct {
	fetcher  fetcher.Doer
	browser  browser.Browser
	verifier *verifier.Verifier
	prober   *prober.Prober
	budget   time.Duration
	logger   *slog.Logger
}

// New wires a detector from its collaborators. budget bounds the wall clock
// of a single site check; zero means a 3 minute default.
func New(f fetcher.Doer, b browser.Browser, v *verifier.Verifier, p *prober.Prober, budget time.Duration) *Detector {
	if budget <= 0 {
		budget = 3 * time.Minute
	}
	return &Detector{
		fetcher:  f,
		browser:  b,
		verifier: v,
		prober:   p,
		budget:   budget,
		logger:   slog.Default(),
	}
}

// Detect locates and classifies the contact page of one site. Every failure
// path is normalized into the four-way status; no raw error escapes.
func (d *Detector) Detect(ctx context.Context, site string) types.ContactCheckResult {
	ctx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()

	target, err := NormalizeTarget(site)
	if err != nil {
		return types.Error(fmt.Sprintf("invalid site URL %q: %v", site, err))
	}
	logger := d.logger.With("site", target.Site)

	out := d.fetcher.Fetch(ctx, target.URL.String())
	body, origin, errResult := d.resolveHomepage(ctx, target, out, logger)
	if errResult != nil {
		return *errResult
	}

	candidate := extractor.ContactLink(body, origin)
	if candidate != nil {
		logger.Debug("contact link extracted from static HTML",
			"url", candidate.URL.String(), "source", string(candidate.Source))
	}

	if candidate == nil && (extractor.LooksClientRendered(body) || !extractor.HasContactVocabulary(body)) {
		logger.Debug("static HTML inconclusive, rendering homepage")
		if page, err := d.browser.Navigate(ctx, target.URL.String()); err == nil && page != nil {
			renderOrigin := origin
			if page.FinalURL != nil && page.FinalURL.Host != "" {
				renderOrigin = originOf(page.FinalURL)
			}
			candidate = extractor.ContactLink(page.HTML, renderOrigin)
		} else if err != nil {
			logger.Warn("homepage render fallback failed", "error", err)
		}
	}

	if candidate == nil {
		if hit := d.prober.Probe(ctx, origin); hit != nil {
			return types.Found(hit.URL.String(),
				fmt.Sprintf("contact page found at conventional path %s", hit.URL.Path))
		}
		return types.NotFound("no contact link found in navigation, rendered markup, or conventional paths")
	}

	page, ok := d.verifier.Verify(ctx, candidate.URL.String())
	if !ok {
		return types.NotFound(fmt.Sprintf("contact link %s found but page not accessible", candidate.URL))
	}

	contactURL := candidate.URL
	if page.FinalURL != nil && extractor.SameOrigin(page.FinalURL, origin) {
		contactURL = page.FinalURL
	}

	verdict := classifier.Classify(page.HTML)
	if verdict == nil {
		return types.NoForm(contactURL.String(),
			"contact page is live but carries no usable contact form")
	}
	logger.Info("contact form confirmed", "url", contactURL.String(), "fields", verdict.FieldCount)
	return types.Found(contactURL.String(),
		fmt.Sprintf("contact form confirmed (%d fields)", verdict.FieldCount))
}

// resolveHomepage turns the homepage fetch outcome into usable markup and the
// effective origin, or a terminal result. A network-class transient failure
// gets one browser-engine attempt before giving up: some sites reject plain
// HTTP clients but serve a real browser.
func (d *Detector) resolveHomepage(ctx context.Context, target *types.Target, out fetcher.Outcome, logger *slog.Logger) ([]byte, *url.URL, *types.ContactCheckResult) {
	switch {
	case out.Fatal():
		res := types.Error(fmt.Sprintf("homepage unreachable: %s", out.Reason))
		return nil, nil, &res

	case out.Transient():
		if out.StatusCode == 0 {
			logger.Debug("network-class failure, trying browser engine", "reason", out.Reason)
			if page, err := d.browser.Navigate(ctx, target.URL.String()); err == nil && page != nil {
				origin := target.Origin
				if page.FinalURL != nil && page.FinalURL.Host != "" {
					origin = originOf(page.FinalURL)
				}
				return page.HTML, origin, nil
			}
		}
		res := types.Error(fmt.Sprintf("homepage fetch failed after retries: %s", out.Reason))
		return nil, nil, &res
	}

	origin := target.Origin
	if out.FinalURL != nil && !extractor.SameOrigin(out.FinalURL, origin) {
		// Cross-origin redirect: the site moved; follow the final origin.
		origin = originOf(out.FinalURL)
		logger.Debug("homepage redirected cross-origin", "final_origin", origin.String())
	}

	switch {
	case out.StatusCode == http.StatusUnauthorized || out.StatusCode == http.StatusForbidden:
		// The site plausibly exists but blocks automated access.
		res := types.NotFound(fmt.Sprintf("homepage returned HTTP %d (automated access blocked)", out.StatusCode))
		return nil, nil, &res
	case out.StatusCode >= 400 && out.StatusCode < 500:
		res := types.NotFound(fmt.Sprintf("homepage returned HTTP %d", out.StatusCode))
		return nil, nil, &res
	case out.StatusCode >= 500:
		res := types.Error(fmt.Sprintf("homepage returned HTTP %d", out.StatusCode))
		return nil, nil, &res
	}

	return out.Body, origin, nil
}

// NormalizeTarget parses a site URL or bare domain into an immutable target:
// scheme enforced, query and fragment stripped, origin derived.
func NormalizeTarget(site string) (*types.Target, error) {
	trimmed := strings.TrimSpace(site)
	if trimmed == "" {
		return nil, fmt.Errorf("empty site")
	}
	if !hasScheme(trimmed) {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.RawQuery = ""
	u.Fragment = ""

	return &types.Target{
		Site:    site,
		URL:     u,
		Origin:  originOf(u),
		AddedAt: time.Now(),
	}, nil
}

func originOf(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, Host: u.Host}
}

func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ':' {
			return i+2 < len(s) && s[i+1] == '/' && s[i+2] == '/'
		}
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return false
}
