// Package textsim scores how likely two free-text market descriptions refer
// to the same real-world event.
package textsim

import (
	"regexp"
	"strings"
)

// minTokenLen drops tokens of this length or shorter ("by", "in", "of").
const minTokenLen = 2

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]+`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// Normalize lowercases, replaces punctuation with spaces, collapses whitespace
// and trims. Empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	s = nonAlphanumeric.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits normalized text on whitespace and discards noise tokens.
func Tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= minTokenLen {
			continue
		}
		out = append(out, f)
	}
	return out
}

// TokenSet is Tokenize as a set.
func TokenSet(normalized string) map[string]struct{} {
	tokens := Tokenize(normalized)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard returns |A∩B| / |A∪B|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for t := range small {
		if _, ok := large[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
