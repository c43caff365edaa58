package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Options configures the chromedp rendering pipeline.
type Options struct {
	// NavigateTimeout bounds the navigation plus DOM-ready wait. A firing
	// timeout is tolerated as long as the tab left about:blank.
	NavigateTimeout time.Duration
	// Timeout bounds the whole session including settle and capture.
	Timeout time.Duration
	// SettleDelay is waited after DOM ready and again after the lazy-load
	// scroll before capturing markup.
	SettleDelay     time.Duration
	UserAgent       string
	MaxBodyBytes    int64
	DisableHeadless bool
}

// Chromedp renders pages in an isolated headless Chrome session per call.
type Chromedp struct {
	opts   Options
	logger *slog.Logger
}

// NewChromedp constructs a renderer. Every Navigate call launches and tears
// down its own browser instance.
func NewChromedp(opts Options) *Chromedp {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.NavigateTimeout <= 0 || opts.NavigateTimeout >= opts.Timeout {
		opts.NavigateTimeout = opts.Timeout * 2 / 3
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 1500 * time.Millisecond
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 * 1024 * 1024
	}
	return &Chromedp{opts: opts, logger: slog.Default()}
}

// Navigate loads the URL, waits for DOM ready, scrolls to the bottom to
// trigger lazy-loaded content, and captures the final markup, URL, and title.
func (c *Chromedp) Navigate(parentCtx context.Context, rawURL string) (*RenderedPage, error) {
	reqURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse render url: %w", err)
	}

	logger := c.logger.With("url", rawURL, "timeout", c.opts.Timeout.String())

	ctx, cancel := context.WithTimeout(parentCtx, c.opts.Timeout)
	defer cancel()

	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", !c.opts.DisableHeadless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	}
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		execOpts = append(execOpts, chromedp.UserAgent(ua))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	start := time.Now()
	if err := c.navigate(chromeCtx, rawURL); err != nil {
		return nil, err
	}

	var html, finalURL, title string
	actions := []chromedp.Action{
		chromedp.Sleep(c.opts.SettleDelay),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(c.opts.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.Title(&title),
	}
	if err := chromedp.Run(chromeCtx, actions...); err != nil {
		logger.Error("chromedp capture failed", "error", err)
		return nil, fmt.Errorf("chromedp capture: %w", err)
	}

	if int64(len(html)) > c.opts.MaxBodyBytes {
		html = html[:c.opts.MaxBodyBytes]
	}

	parsedFinal := reqURL
	if finalURL != "" {
		if u, err := url.Parse(finalURL); err == nil {
			parsedFinal = u
		}
	}

	logger.Debug("chromedp render complete",
		"latency_ms", time.Since(start).Milliseconds(),
		"final_url", parsedFinal.String(),
		"html_bytes", len(html),
	)
	return &RenderedPage{
		URL:      reqURL,
		FinalURL: parsedFinal,
		Title:    title,
		HTML:     []byte(html),
	}, nil
}

// navigate runs navigation plus DOM-ready wait under its own timeout. A
// timeout is tolerated when the tab actually left about:blank; some sites
// never reach readyState complete but have all content long before.
func (c *Chromedp) navigate(chromeCtx context.Context, rawURL string) error {
	navCtx, navCancel := context.WithTimeout(chromeCtx, c.opts.NavigateTimeout)
	defer navCancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(rawURL),
		waitForDocumentReady(),
	)
	if err == nil {
		return nil
	}
	if !errors.Is(err, context.DeadlineExceeded) || chromeCtx.Err() != nil {
		return fmt.Errorf("chromedp navigate: %w", err)
	}

	var location string
	if lerr := chromedp.Run(chromeCtx, chromedp.Location(&location)); lerr != nil {
		return fmt.Errorf("chromedp navigate: %w", err)
	}
	if location == "" || location == "about:blank" {
		return fmt.Errorf("chromedp navigate: %w", err)
	}
	c.logger.Debug("navigation timeout tolerated", "url", rawURL, "location", location)
	return nil
}

func waitForDocumentReady() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			var readyState string
			if err := chromedp.Evaluate(`document.readyState`, &readyState).Do(ctx); err != nil {
				return err
			}
			if readyState == "complete" || readyState == "interactive" {
				return nil
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
}
