package fetcher

import (
	"fmt"
	"net/url"
)

// Kind classifies a fetch attempt for the retry and fallback logic above it.
type Kind int

const (
	// KindSuccess means an HTTP response was obtained. The status code may
	// still be an application-level failure (404, 403); bucketing those is
	// the caller's concern, not the transport's.
	KindSuccess Kind = iota
	// KindTransient means the attempt failed in a way a retry, or a real
	// browser engine, might recover from.
	KindTransient
	// KindFatal means no retry within the same invocation can help.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the classified result of a single fetch attempt. Outcomes are
// produced fresh per attempt and never mutated, only replaced across retries.
type Outcome struct {
	Kind       Kind
	StatusCode int
	FinalURL   *url.URL
	Body       []byte
	Reason     string
	Err        error
}

// Success reports whether an HTTP response was obtained.
func (o Outcome) Success() bool { return o.Kind == KindSuccess }

// Transient reports whether the attempt may succeed on retry.
func (o Outcome) Transient() bool { return o.Kind == KindTransient }

// Fatal reports whether retrying is pointless.
func (o Outcome) Fatal() bool { return o.Kind == KindFatal }

func success(status int, finalURL *url.URL, body []byte) Outcome {
	return Outcome{Kind: KindSuccess, StatusCode: status, FinalURL: finalURL, Body: body}
}

func transient(reason string, status int, err error) Outcome {
	return Outcome{Kind: KindTransient, StatusCode: status, Reason: reason, Err: err}
}

func fatal(reason string, err error) Outcome {
	return Outcome{Kind: KindFatal, Reason: reason, Err: err}
}
