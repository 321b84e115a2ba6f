// Package normalize resolves spreadsheet columns and canonicalizes the text,
// date and year values found in incident exports. Every function is total:
// bad input yields a zero result with ok=false, never a panic.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spaceRun = regexp.MustCompile(`\s+`)

// StripDiacritics removes combining marks ("Año" -> "Ano").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Canonical strips diacritics, trims and uppercases. It is the key form of
// site names and column headers.
func Canonical(s string) string {
	return strings.ToUpper(strings.TrimSpace(StripDiacritics(s)))
}

// Label is Canonical plus newline and whitespace-run collapsing, used for
// free-text labels such as incident types.
func Label(s string) string {
	return Canonical(spaceRun.ReplaceAllString(s, " "))
}

// ResolveColumn returns the index of the first header matching one of the
// aliases, tried in alias order. Matching is exact after canonicalization.
func ResolveColumn(headers []string, aliases ...string) (int, bool) {
	if len(headers) == 0 || len(aliases) == 0 {
		return -1, false
	}

	canon := make([]string, len(headers))
	for i, h := range headers {
		canon[i] = Label(h)
	}
	for _, alias := range aliases {
		want := Label(alias)
		if want == "" {
			continue
		}
		for i, h := range canon {
			if h == want {
				return i, true
			}
		}
	}
	return -1, false
}
