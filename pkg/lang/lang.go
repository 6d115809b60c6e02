// Package lang derives the normalized forms stored alongside words and terms.
package lang

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"github.com/kljensen/snowball/english"
)

// Slugify returns the URL-safe, lower-cased form of s.
func Slugify(s string) string {
	return slug.Make(s)
}

// Stem returns the English Porter2 stem of a single word.
func Stem(s string) string {
	return english.Stem(strings.TrimSpace(s), false)
}

// Length counts runes, not bytes.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

var plainNumber = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// IsNumeric reports whether s is a plain decimal such as "42" or "3.14".
// Float spellings like "NaN", "Inf" or "1e5" are words, not numbers.
func IsNumeric(s string) bool {
	return plainNumber.MatchString(strings.TrimSpace(s))
}

// Tokenize splits a term name into its words, dropping punctuation.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

// Unique keeps the first occurrence of each string, preserving order.
func Unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
