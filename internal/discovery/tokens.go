package discovery

import (
	"strings"
	"unicode"
)

// stopWords are excluded from description keyword matching.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "on": {}, "in": {}, "for": {}, "with": {},
	"of": {}, "to": {}, "from": {}, "about": {},
}

// trimTokens returns the trimmed form of each non-empty token, preserving
// case and order.
func trimTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// lowerTokens returns the trimmed, lowercased form of each non-empty token,
// preserving order.
func lowerTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// tokenSet builds a lowercase membership set from tokens.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range lowerTokens(tokens) {
		set[t] = struct{}{}
	}
	return set
}

// descriptionKeywords extracts lowercase keywords from a description:
// word characters only, longer than 3 characters, stop-words removed.
// The returned slice preserves first-occurrence order; the set enables
// intersection checks.
func descriptionKeywords(description string) ([]string, map[string]struct{}) {
	fields := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var ordered []string
	set := make(map[string]struct{})
	for _, word := range fields {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, seen := set[word]; seen {
			continue
		}
		set[word] = struct{}{}
		ordered = append(ordered, word)
	}
	return ordered, set
}

// titleCase uppercases the first letter of a token for display.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
