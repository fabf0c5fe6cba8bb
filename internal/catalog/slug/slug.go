// Package slug derives URL-safe product identifiers from names and keeps
// them unique.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWord   = regexp.MustCompile(`[^a-z0-9_-]+`)
	hyphenRun = regexp.MustCompile(`-{2,}`)
	validSlug = regexp.MustCompile(`^[a-z0-9_]+(?:-[a-z0-9_]+)*$`)
)

// Generate lower-cases s, strips diacritics, turns whitespace into hyphens
// and drops everything that is not a word character or a hyphen. The
// result may be empty.
func Generate(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripMarks(s)
	// unicode.IsSpace also covers \v, NBSP and the Zs spaces.
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), "-")
	s = nonWord.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate cuts s to at most n bytes without leaving a trailing hyphen.
// Generated slugs are ASCII, so byte and rune lengths agree.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) > n {
		s = s[:n]
	}
	return strings.TrimRight(s, "-")
}

// Valid reports whether s is already in generated form.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
