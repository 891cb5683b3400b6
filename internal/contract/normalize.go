package contract

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizers are the text normalizations a column spec can name.
var Normalizers = map[string]func(string) string{
	"trim":  strings.TrimSpace,
	"title": TitleCase,
	"upper": func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) },
	"lower": func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
}

// TitleCase trims s and title-cases every word using Unicode word breaks,
// so "guinea-bissau" becomes "Guinea-Bissau" and "côte d'ivoire" becomes
// "Côte D'ivoire".
func TitleCase(s string) string {
	// Casers carry state and are not shared between goroutines.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// FoldKey reduces a name to its lookup form: trimmed, case-folded and with
// combining accents removed, so "Côte d'Ivoire" and "cote d'ivoire" match.
func FoldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = strings.TrimSpace(s)
	}
	return cases.Fold().String(folded)
}
