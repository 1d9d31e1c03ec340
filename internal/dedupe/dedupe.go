// Package dedupe finds imported rows that collide with existing client
// records and partitions an import according to the operator's decisions.
//
// Collisions are detected on normalized email only. Every operation returns
// new slices and leaves its inputs untouched, so a caller can keep a
// snapshot of the matches while the operator edits resolutions.
package dedupe

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/rosterimport/internal/transform"
)

// Resolution is the operator's decision for one duplicate.
type Resolution string

const (
	Skip       Resolution = "skip"
	Overwrite  Resolution = "overwrite"
	Unresolved Resolution = "unresolved"
)

// ParseResolution converts user input into a Resolution.
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case Skip, Overwrite, Unresolved:
		return r, nil
	default:
		return "", fmt.Errorf("invalid resolution %q: expected skip, overwrite or unresolved", s)
	}
}

// ExistingRecordRef is the minimal shape of a stored client. An empty Email
// means the record has none.
type ExistingRecordRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// DuplicateMatch pairs an imported row with the existing client it collides
// with. RowIndex is the row's position in the imported rows.
type DuplicateMatch struct {
	ImportedRow    transform.ParsedClientRow `json:"importedRow"`
	ExistingClient ExistingRecordRef         `json:"existingClient"`
	RowIndex       int                       `json:"rowIndex"`
	Resolution     Resolution                `json:"resolution"`
}

// OverwritePair is an imported row that replaces an existing client.
type OverwritePair struct {
	ExistingID string                    `json:"existingId"`
	Row        transform.ParsedClientRow `json:"row"`
}

// Partition splits imported rows by what the commit should do with them.
type Partition struct {
	ToImport    []transform.ParsedClientRow `json:"toImport"`
	ToSkip      []transform.ParsedClientRow `json:"toSkip"`
	ToOverwrite []OverwritePair             `json:"toOverwrite"`
}

// Total returns the number of rows across all three buckets.
func (p Partition) Total() int {
	return len(p.ToImport) + len(p.ToSkip) + len(p.ToOverwrite)
}

// NormalizeEmail trims and lower-cases an address for comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DetectDuplicates returns one unresolved match for every imported row whose
// email equals an existing record's email after normalization. Rows without
// an email never match. When several existing records share an email the
// first one wins. Matches are in imported order.
func DetectDuplicates(imported []transform.ParsedClientRow, existing []ExistingRecordRef) []DuplicateMatch {
	byEmail := make(map[string]ExistingRecordRef, len(existing))
	for _, ref := range existing {
		key := NormalizeEmail(ref.Email)
		if key == "" {
			continue
		}
		if _, seen := byEmail[key]; !seen {
			byEmail[key] = ref
		}
	}

	matches := []DuplicateMatch{}
	if len(byEmail) == 0 {
		return matches
	}

	for i, row := range imported {
		key := NormalizeEmail(row.Email)
		if key == "" {
			continue
		}
		if ref, ok := byEmail[key]; ok {
			matches = append(matches, DuplicateMatch{
				ImportedRow:    row,
				ExistingClient: ref,
				RowIndex:       i,
				Resolution:     Unresolved,
			})
		}
	}
	return matches
}

// IndexOf returns the position in matches of the match for rowIndex.
func IndexOf(matches []DuplicateMatch, rowIndex int) (int, bool) {
	for i, m := range matches {
		if m.RowIndex == rowIndex {
			return i, true
		}
	}
	return -1, false
}

// UpdateDuplicateResolution returns a copy of matches with the match for
// rowIndex set to resolution. An unknown rowIndex returns an unchanged copy.
func UpdateDuplicateResolution(matches []DuplicateMatch, rowIndex int, resolution Resolution) []DuplicateMatch {
	out := append([]DuplicateMatch(nil), matches...)
	if i, ok := IndexOf(out, rowIndex); ok {
		out[i].Resolution = resolution
	}
	return out
}

// SetAllDuplicateResolutions returns a copy of matches with every match set
// to resolution.
func SetAllDuplicateResolutions(matches []DuplicateMatch, resolution Resolution) []DuplicateMatch {
	out := append([]DuplicateMatch(nil), matches...)
	for i := range out {
		out[i].Resolution = resolution
	}
	return out
}

// FilterDuplicates partitions imported by the resolutions in matches. Rows
// without a match are imported; overwrite matches are paired with the
// existing id; skip and unresolved matches are skipped. Every imported row
// lands in exactly one bucket.
func FilterDuplicates(imported []transform.ParsedClientRow, matches []DuplicateMatch) Partition {
	byRow := make(map[int]DuplicateMatch, len(matches))
	for _, m := range matches {
		byRow[m.RowIndex] = m
	}

	p := Partition{
		ToImport:    []transform.ParsedClientRow{},
		ToSkip:      []transform.ParsedClientRow{},
		ToOverwrite: []OverwritePair{},
	}
	for i, row := range imported {
		m, dup := byRow[i]
		switch {
		case !dup:
			p.ToImport = append(p.ToImport, row)
		case m.Resolution == Overwrite:
			p.ToOverwrite = append(p.ToOverwrite, OverwritePair{ExistingID: m.ExistingClient.ID, Row: row})
		default:
			p.ToSkip = append(p.ToSkip, row)
		}
	}
	return p
}

// CarryOverResolutions copies decisions from previous onto next when the
// same email still collides with the same existing client. It is used after
// a re-mapping re-runs detection and row indexes may have shifted.
func CarryOverResolutions(previous, next []DuplicateMatch) []DuplicateMatch {
	type key struct{ email, id string }

	decided := make(map[key]Resolution, len(previous))
	for _, m := range previous {
		if m.Resolution == Unresolved {
			continue
		}
		decided[key{NormalizeEmail(m.ImportedRow.Email), m.ExistingClient.ID}] = m.Resolution
	}

	out := append([]DuplicateMatch(nil), next...)
	for i := range out {
		if r, ok := decided[key{NormalizeEmail(out[i].ImportedRow.Email), out[i].ExistingClient.ID}]; ok {
			out[i].Resolution = r
		}
	}
	return out
}
