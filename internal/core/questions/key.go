package questions

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
)

var (
	reWhitespace    = regexp.MustCompile(`\s+`)
	reTrailingPunct = regexp.MustCompile(`[\s?.!:;]+$`)
)

// Key is the exact-match dedup key: lowercased, whitespace runs collapsed to a single
// space, trimmed, with trailing sentence punctuation dropped.
func Key(s string) string {
	s = strings.ToLower(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return reTrailingPunct.ReplaceAllString(s, "")
}

// Clean trims a question and collapses internal whitespace while keeping its casing.
func Clean(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// IsNoise reports whether a question is too short to be meaningful.
func IsNoise(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) < constants.MinQuestionLength
}

// Dedupe drops blanks and repeats that share a Key, keeping the first-seen spelling and order.
func Dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, q := range in {
		q = Clean(q)
		if q == "" {
			continue
		}
		k := Key(q)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, q)
	}
	return out
}
