package transform

// coerce.go turns raw cell text into typed values.
//
// CRM exports are messy: budgets arrive as "$1,500" or "(200)", dates in any
// of a dozen layouts, flags as "Y" or "x", and list fields separated by
// commas, semicolons or line breaks. Every function here is total: input it
// cannot interpret yields ok=false (or the zero value) instead of an error.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates a number after currency symbols and separators are
// stripped. Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006", "2 Jan 2006", "2 January 2006",
		"20060102",
	}
)

// truthy lists the case-insensitive spellings read as true. Anything else,
// blank included, is false.
var truthy = map[string]bool{
	"yes":  true,
	"true": true,
	"1":    true,
	"y":    true,
	"x":    true,
}

// isListSeparator splits set-valued cells.
func isListSeparator(r rune) bool {
	return r == ',' || r == ';' || r == '\n' || r == '\r'
}

// ParseAmount parses a currency-formatted number. Currency symbols,
// thousands separators and whitespace are ignored; accounting parentheses
// mean negative.
//
//	"$1,500" "1500" "$1500.00" "1,500" -> 1500
//	"(200)"                            -> -200
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = s[1 : len(s)-1]
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', '\t', '\u00a0':
			return -1
		}
		return r
	}, s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseFlag reads a boolean cell. Only the truthy spellings yield true.
func ParseFlag(s string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}

// ParseDate parses a date in any supported layout. Four-digit-year layouts
// are tried first since they are unambiguous.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// SplitList splits a set-valued cell into canonical tokens. Empty tokens are
// dropped, each token is folded onto vocab when possible, and duplicates are
// removed case-insensitively keeping the first occurrence.
func SplitList(s string, vocab []string) []string {
	parts := strings.FieldsFunc(s, isListSeparator)

	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = Canonicalize(p, vocab)
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// Canonicalize folds token onto a vocabulary term: case-insensitive equality
// first, then substring containment in either direction, in vocabulary
// order. Unmatched tokens are returned unchanged.
func Canonicalize(token string, vocab []string) string {
	lower := strings.ToLower(token)
	for _, term := range vocab {
		if strings.ToLower(term) == lower {
			return term
		}
	}
	for _, term := range vocab {
		t := strings.ToLower(term)
		if strings.Contains(t, lower) || strings.Contains(lower, t) {
			return term
		}
	}
	return token
}
