// Package prober tries conventional contact paths when link extraction finds
// nothing. Many sites omit a navigation link to their contact page but still
// serve it under one of a small set of well-known paths.
package prober

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/classifier"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/extractor"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/robots"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/verifier"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// Ordered candidate suffixes, most common first.
var commonPaths = []string{
	"/contact",
	"/contact/",
	"/contact-us",
	"/contact-us/",
	"/contact.html",
	"/contact.php",
	"/contactus",
	"/get-in-touch",
	"/reach-us",
	"/support",
	"/help",
	"/p/contact-us.html",
}

// Hit is a confirmed probe result: a live contact URL plus its form snapshot.
type Hit struct {
	URL     *url.URL
	Verdict types.FormVerdict
}

// Prober verifies and classifies conventional contact paths against an origin.
type Prober struct {
	verifier *verifier.Verifier
	robots   *robots.Agent
	logger   *slog.Logger
}

// New constructs a prober. The robots agent may be nil to probe unconditionally.
func New(v *verifier.Verifier, agent *robots.Agent) *Prober {
	return &Prober{verifier: v, robots: agent, logger: slog.Default()}
}

// Probe iterates the conventional paths in order and returns the first
// candidate that is both accessible and carries a qualifying contact form.
// The search stops at the first confirmed hit.
func (p *Prober) Probe(ctx context.Context, origin *url.URL) *Hit {
	if origin == nil {
		return nil
	}
	for _, suffix := range commonPaths {
		if ctx.Err() != nil {
			return nil
		}
		candidate := *origin
		candidate.Path = suffix

		if p.robots != nil && !p.robots.Allowed(ctx, &candidate) {
			p.logger.Debug("probe path disallowed by robots", "url", candidate.String())
			continue
		}

		page, ok := p.verifier.Verify(ctx, candidate.String())
		if !ok {
			continue
		}
		verdict := classifier.Classify(page.HTML)
		if verdict == nil {
			p.logger.Debug("probe path live but no contact form", "url", candidate.String())
			continue
		}

		// The reported URL must stay on the site's origin. A probe that
		// redirects to a third-party form host is still a hit, but the
		// on-origin probed path is what gets reported.
		resolved := &candidate
		if page.FinalURL != nil && extractor.SameOrigin(page.FinalURL, origin) {
			resolved = page.FinalURL
		}
		p.logger.Info("contact page found by common-path probe", "url", resolved.String())
		return &Hit{URL: resolved, Verdict: *verdict}
	}
	return nil
}
