package detector

import (
	"context"
	"fmt"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/browser"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/config"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/fetcher"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/prober"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/robots"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/internal/verifier"
	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// FromConfig assembles the full detection stack: transport with retries,
// headless browser, verifier, robots-aware prober.
func FromConfig(cfg config.Config) (*Detector, error) {
	client, err := fetcher.NewClient(fetcher.Options{
		UserAgent:    cfg.Transport.UserAgent,
		Headers:      cfg.Transport.Headers,
		Timeout:      cfg.Transport.RequestTimeout.Duration,
		MaxBodyBytes: cfg.Transport.MaxBodyBytes,
		ProxyURL:     cfg.Transport.ProxyURL,
	})
	if err != nil {
		return nil, fmt.Errorf("transport client: %w", err)
	}
	retrying := fetcher.NewRetryClient(client, cfg.Transport.MaxRetries, cfg.Transport.RetryBackoff.Duration)

	b := browser.NewChromedp(browser.Options{
		Timeout:         cfg.Rendering.Timeout.Duration,
		NavigateTimeout: cfg.Rendering.NavigateTimeout.Duration,
		SettleDelay:     cfg.Rendering.SettleDelay.Duration,
		UserAgent:       cfg.Transport.UserAgent,
		MaxBodyBytes:    cfg.Transport.MaxBodyBytes,
		DisableHeadless: cfg.Rendering.DisableHeadless,
	})

	v := verifier.New(b)
	agent := robots.NewAgent(robots.Config{
		Respect:   cfg.Robots.Respect,
		UserAgent: cfg.Robots.UserAgent,
		CacheTTL:  cfg.Robots.CacheTTL.Duration,
		Overrides: cfg.Robots.Overrides,
	}, client.HTTPClient())
	p := prober.New(v, agent)

	return New(retrying, b, v, p, cfg.Detection.SiteBudget.Duration), nil
}

// DetectContactPage is the self-contained entry point: it builds a default
// stack, runs one detection, and tears everything down. Network egress and a
// headless Chrome runtime are the only requirements.
func DetectContactPage(ctx context.Context, siteURLOrDomain string) types.ContactCheckResult {
	d, err := FromConfig(config.Default())
	if err != nil {
		return types.Error(fmt.Sprintf("engine init failed: %v", err))
	}
	return d.Detect(ctx, siteURLOrDomain)
}
