package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDisallowed = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts s to a URL-safe ASCII slug: accents are decomposed and
// dropped, the result is lowercased, punctuation is removed and runs of
// whitespace or hyphens become a single hyphen.
func Slugify(s string) string {
	// transform chains hold state, so build one per call
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(fold, s)
	if err != nil {
		ascii = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, s)
	}

	ascii = slugDisallowed.ReplaceAllString(strings.ToLower(ascii), "")
	return strings.Trim(slugSeparators.ReplaceAllString(ascii, "-"), "-_")
}
