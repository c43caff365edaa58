package types

import (
	"net/url"
	"time"
)

// CheckStatus is the four-way terminal outcome of a contact page check.
type CheckStatus string

const (
	// StatusFound means a live contact page with a qualifying form was located.
	StatusFound CheckStatus = "found"
	// StatusNoForm means a contact page exists but carries no usable contact form.
	StatusNoForm CheckStatus = "no_form"
	// StatusNotFound means no contact page could be discovered by any strategy.
	StatusNotFound CheckStatus = "not_found"
	// StatusError means the site could not be checked at all.
	StatusError CheckStatus = "error"
)

// ContactCheckResult is the engine's sole externally visible output for one site.
type ContactCheckResult struct {
	Status     CheckStatus `json:"status"`
	ContactURL string      `json:"contactUrl,omitempty"`
	HasForm    bool        `json:"hasForm"`
	Message    string      `json:"message"`
}

// Found builds a result for a confirmed contact page with a qualifying form.
func Found(contactURL, message string) ContactCheckResult {
	return ContactCheckResult{Status: StatusFound, ContactURL: contactURL, HasForm: true, Message: message}
}

// NoForm builds a result for a live contact page without a qualifying form.
func NoForm(contactURL, message string) ContactCheckResult {
	return ContactCheckResult{Status: StatusNoForm, ContactURL: contactURL, HasForm: false, Message: message}
}

// NotFound builds a result for a site where no contact page was discovered.
func NotFound(message string) ContactCheckResult {
	return ContactCheckResult{Status: StatusNotFound, Message: message}
}

// Error builds a result for a site that could not be checked.
func Error(message string) ContactCheckResult {
	return ContactCheckResult{Status: StatusError, Message: message}
}

// Valid reports whether the status/contactUrl/hasForm triple is consistent.
func (r ContactCheckResult) Valid() bool {
	switch r.Status {
	case StatusFound:
		return r.ContactURL != "" && r.HasForm
	case StatusNoForm:
		return r.ContactURL != "" && !r.HasForm
	case StatusNotFound, StatusError:
		return r.ContactURL == "" && !r.HasForm
	default:
		return false
	}
}

// Target is a normalized check target: the homepage URL plus its derived origin.
type Target struct {
	Site    string
	URL     *url.URL
	Origin  *url.URL
	AddedAt time.Time
}

// LinkSource tags where a candidate contact link was discovered. Diagnostics only.
type LinkSource string

const (
	SourceHeader   LinkSource = "header"
	SourceFooter   LinkSource = "footer"
	SourceNav      LinkSource = "nav"
	SourceMenuItem LinkSource = "menu-item"
	SourceFullPage LinkSource = "full-page-fallback"
	SourceProbe    LinkSource = "common-path-probe"
)

// CandidateLink is a resolved absolute contact-page candidate. Equality is by URL.
type CandidateLink struct {
	URL    *url.URL
	Source LinkSource
}

// FormField describes one interactive element of a form, as seen by the classifier.
type FormField struct {
	Name        string
	ID          string
	Type        string
	Placeholder string
	LabelText   string
	TagName     string
}

// FormVerdict is the per-form scoring snapshot produced by the classifier.
type FormVerdict struct {
	IsContactForm bool `json:"isContactForm"`
	HasName       bool `json:"hasName"`
	HasEmail      bool `json:"hasEmail"`
	HasMessage    bool `json:"hasMessage"`
	HasPhone      bool `json:"hasPhone"`
	FieldCount    int  `json:"fieldCount"`
}

// CheckRecord is the persisted latest-known state for one site.
type CheckRecord struct {
	Site       string      `json:"site"`
	Status     CheckStatus `json:"status"`
	ContactURL string      `json:"contactUrl,omitempty"`
	HasForm    bool        `json:"hasForm"`
	Message    string      `json:"message"`
	CheckedAt  time.Time   `json:"checkedAt"`
}

// HistoryEntry is one append-only audit row of the check history.
type HistoryEntry struct {
	Site       string      `json:"site"`
	Status     CheckStatus `json:"status"`
	ContactURL string      `json:"contactUrl,omitempty"`
	Message    string      `json:"message"`
	CheckedAt  time.Time   `json:"checkedAt"`
}
