// Package identity computes the comparison keys used to recognize the same
// speaker, host or scheduled visit across independently produced snapshots.
//
// Every identity comparison in the module goes through NormalizeName. Comparing
// raw display names anywhere else creates duplicates on the next import.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeySeparator joins the parts of a composite visit key.
const KeySeparator = "|"

// NormalizeName folds case, strips combining diacritics and collapses
// whitespace: "  JOSÉ   Da Silva " and "jose da silva" normalize equally.
func NormalizeName(s string) string {
	// Transformers keep state between calls; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// SameName reports whether two display names denote the same entity.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// CompactName is NormalizeName restricted to letters and digits. It is used
// for similarity scoring where punctuation and spacing carry no meaning.
func CompactName(s string) string {
	var b strings.Builder
	for _, r := range NormalizeName(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CompositeKey builds the natural key of a scheduled event from a speaker name
// and a YYYY-MM-DD date. The date is used verbatim.
func CompositeKey(speakerName, visitDate string) string {
	return NormalizeName(speakerName) + KeySeparator + visitDate
}
