package bibtex

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownKey is the citation key used when neither an author nor a title
// is available.
const UnknownKey = "unknown"

var yearRe = regexp.MustCompile(`\d{4}`)

// Year returns the first run of four digits in s, or an empty string.
func Year(s string) string {
	return yearRe.FindString(s)
}

// Key builds a citation key: <Family><Year> when a family name is known,
// else <FirstTitleWord><Year>, else UnknownKey.
func Key(family, year, title string) string {
	if base := keyWord(family); base != "" {
		return base + keyWord(year)
	}
	for _, word := range strings.Fields(title) {
		if base := keyWord(word); base != "" {
			return base + keyWord(year)
		}
	}
	return UnknownKey
}

// keyWord folds accents and keeps ASCII letters and digits only.
func keyWord(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
