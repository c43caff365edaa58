// Package extractor locates contact-page links inside raw HTML without any I/O.
package extractor

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// Ordered contact-path patterns. Order is the only ranking applied.
var contactPatterns = []string{
	"/contact",
	"/contact-us",
	"/contact.html",
	"/contact.php",
	"/get-in-touch",
	"/reach-us",
	"/support",
	"/help",
	"/p/contact-us.html",
}

var assetExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".mjs": {}, ".map": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	".zip": {}, ".gz": {}, ".tar": {}, ".rar": {}, ".7z": {},
	".pdf": {}, ".xml": {}, ".json": {}, ".txt": {},
	".mp4": {}, ".webm": {}, ".mp3": {},
}

var assetDirectories = []string{
	"/wp-content/", "/assets/", "/static/", "/css/", "/js/",
	"/images/", "/img/", "/fonts/", "/plugins/", "/themes/", "/includes/",
}

// region pairs a CSS scope with the provenance tag reported for its matches.
type region struct {
	selector string
	source   types.LinkSource
}

var scopedRegions = []region{
	{"header", types.SourceHeader},
	{"nav", types.SourceNav},
	{"footer", types.SourceFooter},
	{"li", types.SourceMenuItem},
}

// ContactLink returns the first contact-page candidate found in html, scoped
// to navigation regions first and the full document as a fallback. Returns
// nil when nothing qualifies.
func ContactLink(html []byte, origin *url.URL) *types.CandidateLink {
	if len(html) == 0 || origin == nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	for _, reg := range scopedRegions {
		anchors := collectHrefs(doc.Find(reg.selector + " a[href]"))
		if link := firstMatch(anchors, origin, reg.source); link != nil {
			return link
		}
	}

	anchors := collectHrefs(doc.Find("a[href]"))
	return firstMatch(anchors, origin, types.SourceFullPage)
}

func collectHrefs(sel *goquery.Selection) []string {
	var hrefs []string
	sel.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "#") {
			return
		}
		hrefs = append(hrefs, href)
	})
	return hrefs
}

// firstMatch walks the pattern list in priority order and yields the first
// href that resolves to the origin and carries a contact keyword.
func firstMatch(hrefs []string, origin *url.URL, source types.LinkSource) *types.CandidateLink {
	for _, pattern := range contactPatterns {
		for _, href := range hrefs {
			resolved, ok := Resolve(href, origin)
			if !ok {
				continue
			}
			p := strings.ToLower(strings.TrimSuffix(resolved.Path, "/"))
			if !strings.Contains(p, pattern) {
				continue
			}
			if IsAssetPath(resolved.Path) {
				continue
			}
			return &types.CandidateLink{URL: resolved, Source: source}
		}
	}
	return nil
}

// Resolve makes href absolute against origin and checks same-origin
// (host compared modulo a leading www.).
func Resolve(href string, origin *url.URL) (*url.URL, bool) {
	resolved, err := origin.Parse(href)
	if err != nil {
		return nil, false
	}
	resolved.Fragment = ""
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, false
	}
	if !SameOrigin(resolved, origin) {
		return nil, false
	}
	return resolved, true
}

// SameOrigin reports whether a and b share scheme, port, and host modulo a
// leading www. prefix.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	if !strings.EqualFold(a.Scheme, b.Scheme) {
		return false
	}
	if !strings.EqualFold(StripWWW(a.Hostname()), StripWWW(b.Hostname())) {
		return false
	}
	return a.Port() == b.Port()
}

// StripWWW removes one leading www. label from a hostname.
func StripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// IsAssetPath reports whether p points at a static asset rather than a page.
func IsAssetPath(p string) bool {
	lower := strings.ToLower(p)
	if _, ok := assetExtensions[path.Ext(lower)]; ok {
		return true
	}
	for _, dir := range assetDirectories {
		if strings.Contains(lower, dir) {
			return true
		}
	}
	return false
}
