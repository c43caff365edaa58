package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Doer is the fetch capability the retry wrapper and the detector depend on.
type Doer interface {
	Fetch(ctx context.Context, rawURL string) Outcome
}

// RetryClient wraps a Client with bounded exponential backoff. Only transient
// outcomes are retried; 429 backs off longer than the 5xx family.
type RetryClient struct {
	Inner      Doer
	MaxRetries int
	BaseDelay  time.Duration
	Logger     *slog.Logger
}

// NewRetryClient builds a retrying fetcher with the given bounds.
func NewRetryClient(inner Doer, maxRetries int, baseDelay time.Duration) *RetryClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &RetryClient{Inner: inner, MaxRetries: maxRetries, BaseDelay: baseDelay, Logger: slog.Default()}
}

// Fetch attempts the URL up to 1+MaxRetries times. The last outcome is
// returned verbatim when retries exhaust.
func (r *RetryClient) Fetch(ctx context.Context, rawURL string) Outcome {
	var out Outcome
	for attempt := 0; ; attempt++ {
		out = r.Inner.Fetch(ctx, rawURL)
		if !out.Transient() || attempt >= r.MaxRetries {
			return out
		}

		delay := r.backoff(attempt, out.StatusCode)
		if r.Logger != nil {
			r.Logger.Debug("transient fetch failure, backing off",
				"url", rawURL,
				"attempt", attempt+1,
				"reason", out.Reason,
				"delay", delay.String(),
			)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return out
		}
	}
}

func (r *RetryClient) backoff(attempt, status int) time.Duration {
	base := r.BaseDelay
	if status == http.StatusTooManyRequests {
		// Rate limiting deserves a noticeably longer wait than flaky gateways.
		base *= 4
	}
	return base << attempt
}
