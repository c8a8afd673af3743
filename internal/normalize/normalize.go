// Package normalize folds text for case- and accent-insensitive matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks, so "Herbáceo" and
// "HERBACEO" fold to the same string.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Matcher tests fields against a folded query.
type Matcher struct {
	query string
}

// NewMatcher prepares query for repeated matching.
func NewMatcher(query string) Matcher {
	return Matcher{query: Fold(query)}
}

// Empty reports whether the query matches everything.
func (m Matcher) Empty() bool {
	return m.query == ""
}

// Match reports whether any field contains the query.
func (m Matcher) Match(fields ...string) bool {
	if m.query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), m.query) {
			return true
		}
	}
	return false
}
