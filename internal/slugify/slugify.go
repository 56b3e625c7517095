// Package slugify derives URL-safe anchor identifiers from heading text.
// The mapping is deterministic; duplicate disambiguation (-2, -3, ...) is the
// caller's responsibility so callers can scope counters per document.
package slugify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLength bounds slug length in code points.
const DefaultMaxLength = 80

// accent folding: decompose, drop combining marks, recompose.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug maps heading text to its base slug: accent-folded, lower-cased, runs
// of non-alphanumerics collapsed to single dashes, trimmed, and truncated to
// DefaultMaxLength without splitting mid-word where feasible.
func Slug(text string) string {
	return SlugN(text, DefaultMaxLength)
}

// SlugN is Slug with an explicit maximum length in code points.
func SlugN(text string, maxLen int) string {
	folded, _, err := transform.String(foldMarks, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := true // suppress leading dash
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if maxLen > 0 {
		s = truncate(s, maxLen)
	}
	return s
}

// truncate cuts s to at most maxLen runes, preferring the last dash boundary
// inside the limit so words stay intact.
func truncate(s string, maxLen int) string {
	rs := []rune(s)
	if len(rs) <= maxLen {
		return s
	}
	cut := string(rs[:maxLen])
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}
