// CLAUDE:SUMMARY Transliteration modes (lowercase+ASCII fold, lowercase-only, none) applied to speaker fragments and roster names.
package speaker

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Transliterator transforms a name before comparison.
type Transliterator func(string) string

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Letters NFD does not decompose into base + mark.
var foldLetters = strings.NewReplacer(
	"ł", "l", "ø", "o", "đ", "d", "ð", "d", "þ", "th",
	"ß", "ss", "æ", "ae", "œ", "oe", "ı", "i",
)

// LowercaseASCII lowercases, strips diacritics and folds the remaining
// non-ASCII letters (BARRAGÁN -> barragan, Łukasz -> lukasz).
func LowercaseASCII(s string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	out = foldLetters.Replace(out)
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, out)
}

// LowercaseUTF8 lowercases but preserves accents.
func LowercaseUTF8(s string) string {
	return strings.ToLower(s)
}

// None returns the name unchanged.
func None(s string) string {
	return s
}

// ForMode returns the transliterator for the given mode.
// Default is lowercase_ascii.
func ForMode(mode string) Transliterator {
	switch mode {
	case "lowercase_utf8":
		return LowercaseUTF8
	case "none":
		return None
	default:
		return LowercaseASCII
	}
}
