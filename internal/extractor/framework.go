package extractor

import (
	"bytes"
	"strings"
)

// Markers left behind by client-rendering frameworks and their bundlers.
// Any one of them means the static HTML is likely an empty shell and the
// real content only exists after JavaScript runs.
var frameworkMarkers = [][]byte{
	[]byte(`id="root"`),
	[]byte(`id="app"`),
	[]byte(`id="__next"`),
	[]byte(`id="___gatsby"`),
	[]byte(`data-reactroot`),
	[]byte(`data-react-helmet`),
	[]byte(`ng-version=`),
	[]byte(`ng-app`),
	[]byte(`data-v-app`),
	[]byte(`window.__NUXT__`),
	[]byte(`window.__INITIAL_STATE__`),
	[]byte(`/_next/static/`),
	[]byte(`webpackJsonp`),
	[]byte(`data-svelte`),
}

var contactVocabulary = []string{
	"contact", "get in touch", "reach us", "reach out", "support", "help",
}

// LooksClientRendered reports whether the static markup shows signs of a
// JavaScript framework shell that needs a real browser to materialise.
func LooksClientRendered(html []byte) bool {
	for _, marker := range frameworkMarkers {
		if bytes.Contains(html, marker) {
			return true
		}
	}
	return false
}

// HasContactVocabulary reports whether the markup mentions contact topics at
// all. A homepage with zero contact vocabulary and no extracted link is a
// strong hint the visible content was rendered client-side.
func HasContactVocabulary(html []byte) bool {
	lower := strings.ToLower(string(html))
	for _, word := range contactVocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// ContactVocabulary exposes the shared topic word list for the verifier.
func ContactVocabulary() []string {
	out := make([]string, len(contactVocabulary))
	copy(out, contactVocabulary)
	return out
}
