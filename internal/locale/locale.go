// Package locale picks between the English and Spanish variants of catalog
// content and decodes the JSON documents those fields hold.
package locale

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const (
	English = "en"
	Spanish = "es"
)

// Normalize reduces tags such as "es-MX" or "ES_es" to a supported base
// language. Anything else is English.
func Normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	if tag == Spanish {
		return Spanish
	}
	return English
}

// Pick returns es when the locale is Spanish and es is non-empty; the
// English value is the canonical fallback.
func Pick(loc, en, es string) string {
	if Normalize(loc) == Spanish && es != "" {
		return es
	}
	return en
}

var (
	supported = []string{English, Spanish}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Spanish})
)

// Negotiate picks the supported locale that best satisfies an
// Accept-Language header, honouring q-values. Unparseable or unmatched
// headers yield English.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	return supported[idx]
}

// FromRequest reads the locale from ?locale=, the NEXT_LOCALE cookie or
// Accept-Language, in that order.
func FromRequest(r *http.Request) string {
	if q := r.URL.Query().Get("locale"); q != "" {
		return Normalize(q)
	}
	if c, err := r.Cookie("NEXT_LOCALE"); err == nil && c.Value != "" {
		return Normalize(c.Value)
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		return Negotiate(al)
	}
	return English
}
