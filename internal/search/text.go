// Package search ranks tariff entries against free-text product descriptions.
package search

import (
	"strings"
	"unicode"
)

// StopWords never count toward relevance.
var StopWords = map[string]struct{}{
	"the": {}, "of": {}, "and": {}, "or": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"with": {}, "by": {}, "from": {}, "a": {}, "an": {}, "other": {}, "parts": {}, "nesoi": {}, "nesi": {},
}

// Normalize lowercases text and collapses runs of whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Tokenize splits text into lowercase alphanumeric tokens, dropping stop-words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if _, stop := StopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Keywords returns up to n distinct salient tokens of text, in order.
func Keywords(text string, n int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range Tokenize(text) {
		if len(tok) <= 2 {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == n {
			break
		}
	}
	return out
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
