package dedupe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/rosterimport/internal/transform"
)

func rows(emails ...string) []transform.ParsedClientRow {
	out := make([]transform.ParsedClientRow, len(emails))
	for i, e := range emails {
		out[i] = transform.ParsedClientRow{Name: fmt.Sprintf("Client %d", i), Email: e}
	}
	return out
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john@test.com", NormalizeEmail("  JOHN@Test.com \t"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		input   string
		want    Resolution
		wantErr bool
	}{
		{"skip", Skip, false},
		{"OVERWRITE", Overwrite, false},
		{" unresolved ", Unresolved, false},
		{"merge", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseResolution(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectDuplicates(t *testing.T) {
	t.Run("case and whitespace insensitive", func(t *testing.T) {
		existing := []ExistingRecordRef{{ID: "c1", Name: "John", Email: "JOHN@TEST.COM"}}
		matches := DetectDuplicates(rows("  john@test.com  "), existing)

		require.Len(t, matches, 1)
		assert.Equal(t, 0, matches[0].RowIndex)
		assert.Equal(t, "c1", matches[0].ExistingClient.ID)
		assert.Equal(t, Unresolved, matches[0].Resolution)
	})

	t.Run("rows without email never match", func(t *testing.T) {
		existing := []ExistingRecordRef{{ID: "c1", Name: "No Email"}, {ID: "c2", Email: "a@x.com"}}
		matches := DetectDuplicates(rows("", "  "), existing)
		assert.Empty(t, matches)
		assert.NotNil(t, matches)
	})

	t.Run("first existing record wins", func(t *testing.T) {
		existing := []ExistingRecordRef{
			{ID: "first", Email: "dup@x.com"},
			{ID: "second", Email: "DUP@x.com"},
		}
		matches := DetectDuplicates(rows("dup@x.com"), existing)
		require.Len(t, matches, 1)
		assert.Equal(t, "first", matches[0].ExistingClient.ID)
	})

	t.Run("imported order preserved", func(t *testing.T) {
		existing := []ExistingRecordRef{{ID: "b", Email: "b@x.com"}, {ID: "a", Email: "a@x.com"}}
		matches := DetectDuplicates(rows("a@x.com", "new@x.com", "b@x.com"), existing)
		require.Len(t, matches, 2)
		assert.Equal(t, []int{0, 2}, []int{matches[0].RowIndex, matches[1].RowIndex})
	})

	t.Run("only colliding email is flagged", func(t *testing.T) {
		// Eight rows, two emails appearing twice, one of which exists.
		imported := rows(
			"one@x.com", "twin@x.com", "two@x.com", "pair@x.com",
			"three@x.com", "twin@x.com", "four@x.com", "pair@x.com",
		)
		existing := []ExistingRecordRef{{ID: "c9", Email: "Twin@X.com"}}

		matches := DetectDuplicates(imported, existing)
		require.Len(t, matches, 2)
		assert.Equal(t, 1, matches[0].RowIndex)
		assert.Equal(t, 5, matches[1].RowIndex)

		inFile := FindInFileDuplicates(imported)
		assert.Equal(t, []InFileDuplicate{
			{Email: "twin@x.com", RowIndexes: []int{1, 5}},
			{Email: "pair@x.com", RowIndexes: []int{3, 7}},
		}, inFile)
	})
}

func TestUpdateDuplicateResolution(t *testing.T) {
	existing := []ExistingRecordRef{{ID: "a", Email: "a@x.com"}, {ID: "b", Email: "b@x.com"}}
	matches := DetectDuplicates(rows("a@x.com", "b@x.com"), existing)

	updated := UpdateDuplicateResolution(matches, 1, Overwrite)
	assert.Equal(t, Unresolved, updated[0].Resolution)
	assert.Equal(t, Overwrite, updated[1].Resolution)
	// Input is untouched.
	assert.Equal(t, Unresolved, matches[1].Resolution)

	unchanged := UpdateDuplicateResolution(matches, 42, Skip)
	assert.Equal(t, matches, unchanged)

	_, ok := IndexOf(matches, 42)
	assert.False(t, ok)
}

func TestSetAllDuplicateResolutions(t *testing.T) {
	existing := []ExistingRecordRef{{ID: "a", Email: "a@x.com"}, {ID: "b", Email: "b@x.com"}}
	matches := DetectDuplicates(rows("a@x.com", "b@x.com"), existing)

	all := SetAllDuplicateResolutions(matches, Skip)
	for _, m := range all {
		assert.Equal(t, Skip, m.Resolution)
	}
	assert.Equal(t, Unresolved, matches[0].Resolution)
}

func TestFilterDuplicates(t *testing.T) {
	imported := rows("a@x.com", "new1@x.com", "b@x.com", "c@x.com", "")
	existing := []ExistingRecordRef{
		{ID: "ida", Email: "a@x.com"},
		{ID: "idb", Email: "b@x.com"},
		{ID: "idc", Email: "c@x.com"},
	}
	matches := DetectDuplicates(imported, existing)
	matches = UpdateDuplicateResolution(matches, 0, Overwrite)
	matches = UpdateDuplicateResolution(matches, 2, Skip)
	// Row 3 stays unresolved.

	p := FilterDuplicates(imported, matches)

	assert.Equal(t, len(imported), p.Total())
	require.Len(t, p.ToImport, 2)
	assert.Equal(t, "new1@x.com", p.ToImport[0].Email)
	assert.Equal(t, "", p.ToImport[1].Email)

	require.Len(t, p.ToOverwrite, 1)
	assert.Equal(t, OverwritePair{ExistingID: "ida", Row: imported[0]}, p.ToOverwrite[0])

	require.Len(t, p.ToSkip, 2)
	assert.Equal(t, "b@x.com", p.ToSkip[0].Email)
	assert.Equal(t, "c@x.com", p.ToSkip[1].Email)
}

func TestFilterDuplicates_PartitionSums(t *testing.T) {
	existing := []ExistingRecordRef{{ID: "x", Email: "x@x.com"}}
	for _, res := range []Resolution{Skip, Overwrite, Unresolved} {
		imported := rows("x@x.com", "y@x.com", "x@x.com", "")
		matches := SetAllDuplicateResolutions(DetectDuplicates(imported, existing), res)
		p := FilterDuplicates(imported, matches)
		assert.Equal(t, len(imported), p.Total(), string(res))
	}

	p := FilterDuplicates(nil, nil)
	assert.Equal(t, 0, p.Total())
	assert.NotNil(t, p.ToImport)
}

func TestCarryOverResolutions(t *testing.T) {
	existing := []ExistingRecordRef{{ID: "a", Email: "a@x.com"}, {ID: "b", Email: "b@x.com"}}

	previous := DetectDuplicates(rows("a@x.com", "b@x.com"), existing)
	previous = UpdateDuplicateResolution(previous, 0, Overwrite)

	// A new row sorted in front shifts every index.
	next := DetectDuplicates(rows("new@x.com", "A@x.com", "b@x.com"), existing)
	carried := CarryOverResolutions(previous, next)

	require.Len(t, carried, 2)
	assert.Equal(t, 1, carried[0].RowIndex)
	assert.Equal(t, Overwrite, carried[0].Resolution)
	assert.Equal(t, Unresolved, carried[1].Resolution)
	assert.Equal(t, Unresolved, next[0].Resolution)
}

func TestFindInFileDuplicates_None(t *testing.T) {
	assert.Empty(t, FindInFileDuplicates(rows("a@x.com", "b@x.com", "", "")))
}
