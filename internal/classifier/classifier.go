// Package classifier decides whether a rendered page carries a genuine
// contact form, as opposed to search, login, or newsletter-signup forms.
package classifier

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vishalwebdevnew4/TEQSmartSubmit-sub001/pkg/types"
)

// Intent vocabularies. Each field's name, id, placeholder, and nearest label
// text are folded into one lowercase string and tested against these.
var (
	nameWords    = []string{"name", "vorname", "nachname", "nombre"}
	emailWords   = []string{"email", "e-mail", "mail"}
	messageWords = []string{"message", "msg", "comment", "enquiry", "inquiry", "question", "feedback"}
	phoneWords   = []string{"phone", "tel", "mobile"}

	searchWords     = []string{"search", "query"}
	newsletterWords = []string{"newsletter", "subscribe", "signup", "sign up", "sign-up"}
	loginWords      = []string{"password", "login", "log in", "signin", "sign in", "username", "user name", "passwort"}
)

// Excluded input types: not user-enterable content.
var skippedInputTypes = map[string]struct{}{
	"submit": {}, "button": {}, "hidden": {}, "reset": {}, "image": {},
}

// Classify inspects every form on the page in document order and returns the
// snapshot of the first one that qualifies as a contact form, or nil when no
// form passes.
func Classify(renderedHTML []byte) *types.FormVerdict {
	if len(renderedHTML) == 0 {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(renderedHTML))
	if err != nil {
		return nil
	}

	var verdict *types.FormVerdict
	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		fields := collectFields(form)
		v := score(fields)
		if v.IsContactForm {
			verdict = &v
			return false
		}
		return true
	})
	return verdict
}

// collectFields extracts a descriptor for every interactive element of the
// form, excluding submit/button/hidden/reset controls.
func collectFields(form *goquery.Selection) []types.FormField {
	var fields []types.FormField
	form.Find("input, textarea, select").Each(func(_ int, el *goquery.Selection) {
		tag := tagName(el)
		fieldType := strings.ToLower(strings.TrimSpace(el.AttrOr("type", "")))
		if tag == "input" {
			if _, skip := skippedInputTypes[fieldType]; skip {
				return
			}
		}
		id := el.AttrOr("id", "")
		fields = append(fields, types.FormField{
			Name:        el.AttrOr("name", ""),
			ID:          id,
			Type:        fieldType,
			Placeholder: el.AttrOr("placeholder", ""),
			LabelText:   nearestLabel(form, el, id),
			TagName:     tag,
		})
	})
	return fields
}

func tagName(el *goquery.Selection) string {
	for _, node := range el.Nodes {
		if node.Type == html.ElementNode {
			return strings.ToLower(node.Data)
		}
	}
	return ""
}

// nearestLabel resolves label text by for-attribute first, then by the
// closest ancestor label element.
func nearestLabel(form, el *goquery.Selection, id string) string {
	if id != "" {
		if label := form.Find(`label[for="` + id + `"]`); label.Length() > 0 {
			return strings.TrimSpace(label.First().Text())
		}
	}
	if label := el.Closest("label"); label.Length() > 0 {
		return strings.TrimSpace(label.Text())
	}
	return ""
}

func score(fields []types.FormField) types.FormVerdict {
	v := types.FormVerdict{FieldCount: len(fields)}
	if len(fields) == 0 {
		return v
	}

	var isSearch, isNewsletter, isLogin bool
	for _, f := range fields {
		combined := strings.ToLower(strings.Join([]string{f.Name, f.ID, f.Placeholder, f.LabelText}, " "))

		if f.Type == "email" || containsAny(combined, emailWords) {
			v.HasEmail = true
		}
		if f.TagName == "textarea" || containsAny(combined, messageWords) {
			v.HasMessage = true
		}
		if f.Type == "tel" || containsAny(combined, phoneWords) {
			v.HasPhone = true
		}
		if containsAny(combined, nameWords) && !containsAny(combined, loginWords) {
			v.HasName = true
		}

		lowerName := strings.ToLower(strings.TrimSpace(f.Name))
		if f.Type == "search" || lowerName == "q" || lowerName == "s" || containsAny(combined, searchWords) {
			isSearch = true
		}
		if containsAny(combined, newsletterWords) {
			isNewsletter = true
		}
		if f.Type == "password" || containsAny(combined, loginWords) {
			isLogin = true
		}
	}

	// Search and login forms never qualify; a newsletter form only survives
	// when it also asks for a name or a message.
	if isSearch || isLogin {
		return v
	}
	if isNewsletter && !v.HasName && !v.HasMessage {
		return v
	}

	switch {
	case v.HasEmail:
		v.IsContactForm = true
	case v.HasName && v.HasMessage:
		v.IsContactForm = true
	case v.HasMessage && v.FieldCount >= 2:
		v.IsContactForm = true
	}
	return v
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
