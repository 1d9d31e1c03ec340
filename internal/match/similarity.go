package match

import (
	"strings"
	"unicode"
)

// SimilarityFunc scores two header strings in [0, 1]. Implementations must
// be pure and symmetric.
type SimilarityFunc func(a, b string) float64

// NormalizeHeader normalizes a header or field name for fuzzy comparison:
// camelCase is split, everything is lower-cased, and whitespace, separators
// and punctuation are removed.
//
//	"budgetMin"     -> "budgetmin"
//	"Budget Min ($)" -> "budgetmin"
//	"E-mail"        -> "email"
func NormalizeHeader(s string) string {
	var b strings.Builder
	for _, tok := range tokenizeCamelCase(s) {
		for _, r := range tok {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
	}
	return b.String()
}

// DiceCoefficient is the Sørensen–Dice coefficient over character bigrams of
// the normalized strings. Identical normalized strings score 1; strings with
// fewer than two characters score 0 unless identical.
func DiceCoefficient(a, b string) float64 {
	na, nb := []rune(NormalizeHeader(a)), []rune(NormalizeHeader(b))
	if string(na) == string(nb) {
		if len(na) == 0 {
			return 0
		}
		return 1
	}
	if len(na) < 2 || len(nb) < 2 {
		return 0
	}

	counts := make(map[[2]rune]int, len(na)-1)
	for i := 0; i < len(na)-1; i++ {
		counts[[2]rune{na[i], na[i+1]}]++
	}

	shared := 0
	for i := 0; i < len(nb)-1; i++ {
		bg := [2]rune{nb[i], nb[i+1]}
		if counts[bg] > 0 {
			counts[bg]--
			shared++
		}
	}

	return 2 * float64(shared) / float64(len(na)-1+len(nb)-1)
}

// LevenshteinSimilarity is 1 - distance/maxLen over the normalized strings.
func LevenshteinSimilarity(a, b string) float64 {
	na, nb := NormalizeHeader(a), NormalizeHeader(b)
	if na == "" || nb == "" {
		return 0
	}
	return levenshteinNormalized([]rune(na), []rune(nb))
}

// Levenshtein computes the edit distance between two strings in runes.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	if string(a) == string(b) {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Keep a as the shorter string so the rows stay small.
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}

func levenshteinNormalized(a, b []rune) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// tokenizeCamelCase splits on separators and lower-to-upper transitions.
//
//	"moveInDate" -> ["move", "In", "Date"]
//	"HTTPStatus" -> ["HTTP", "Status"]
func tokenizeCamelCase(s string) []string {
	var tokens []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return tokens
}
