package match

import (
	"strings"
	"unicode"
)

// tokenize lowercases s, folds every non-alphanumeric rune to a space,
// and splits on whitespace. "The Beatles - Let It Be" and
// "let it be - the beatles" produce the same token multiset.
func tokenize(s string) []string {
	folded := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Fields(folded)
}

// Similarity scores two keys on an integer 0-100 scale using the
// Sørensen-Dice coefficient over token multisets. The metric is
// symmetric and invariant to word order; 100 means identical multisets.
//
// Comparison keys differ mostly by capitalization, punctuation, artist
// ordering, and qualifier suffixes like "(Remastered)". A multiset
// overlap absorbs all of those: one extra qualifier token against an
// otherwise identical five-token key still scores 80.
func Similarity(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)

	total := len(ta) + len(tb)
	if total == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ta))
	for _, tok := range ta {
		counts[tok]++
	}

	overlap := 0
	for _, tok := range tb {
		if counts[tok] > 0 {
			counts[tok]--
			overlap++
		}
	}

	// round(200 * overlap / total) in integer arithmetic
	return (400*overlap + total) / (2 * total)
}
