package slugify

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSlugBasic(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Install Steps", "install-steps"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Already-dashed", "already-dashed"},
		{"Symbols & Punctuation!?", "symbols-punctuation"},
		{"CAPS and 123 digits", "caps-and-123-digits"},
		{"", ""},
		{"---", ""},
		{"a", "a"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugAccentFolding(t *testing.T) {
	if got := Slug("Résumé préparation"); got != "resume-preparation" {
		t.Errorf("accent folding: got %q", got)
	}
	if got := Slug("Größenordnung"); got != "großenordnung" {
		t.Errorf("sharp s should survive folding: got %q", got)
	}
}

func TestSlugDeterministicAndIdempotent(t *testing.T) {
	in := "Some Heading: With Punctuation (v2)"
	first := Slug(in)
	for i := 0; i < 5; i++ {
		if got := Slug(in); got != first {
			t.Fatalf("Slug not deterministic: %q vs %q", got, first)
		}
	}
	// A slug is a fixed point of the slugifier.
	if got := Slug(first); got != first {
		t.Errorf("Slug not idempotent: Slug(%q) = %q", first, got)
	}
}

func TestSlugTruncationAtWordBoundary(t *testing.T) {
	in := strings.Repeat("word ", 40) // 200 chars before slugging
	got := Slug(in)
	if n := utf8.RuneCountInString(got); n > DefaultMaxLength {
		t.Fatalf("slug length %d exceeds max %d", n, DefaultMaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug has trailing dash: %q", got)
	}
	// Cut must land on a word boundary, not mid-word.
	for _, w := range strings.Split(got, "-") {
		if w != "word" {
			t.Errorf("truncation split a word: %q in %q", w, got)
		}
	}
}

func TestSlugTruncationNoBoundary(t *testing.T) {
	in := strings.Repeat("x", 120)
	got := SlugN(in, 10)
	if got != strings.Repeat("x", 10) {
		t.Errorf("hard cut expected for unbroken word, got %q", got)
	}
}
