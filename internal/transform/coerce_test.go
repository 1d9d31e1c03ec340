package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/rosterimport/internal/schema"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"$1,500", 1500, true},
		{"1500", 1500, true},
		{"$1500.00", 1500, true},
		{"1,500", 1500, true},
		{"  $ 1 500 ", 1500, true},
		{"(200)", -200, true},
		{"(1,234.50)", -1234.5, true},
		{"€2.5", 2.5, true},
		{"£10", 10, true},
		{"-50", -50, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"$", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlag(t *testing.T) {
	truthy := []string{"yes", "YES", "true", "True", "1", "y", "Y", "x", "X", " yes "}
	for _, s := range truthy {
		assert.True(t, ParseFlag(s), "%q", s)
	}

	falsy := []string{"no", "NO", "false", "0", "n", "", "maybe", "t"}
	for _, s := range falsy {
		assert.False(t, ParseFlag(s), "%q", s)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []string{
		"2024-03-15",
		"2024/03/15",
		"03/15/2024",
		"3/15/2024",
		"3-15-2024",
		"Mar 15, 2024",
		"March 15, 2024",
		"15 Mar 2024",
		"20240315",
		"3/15/24",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			got, ok := ParseDate(input)
			assert.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	t.Run("timestamp keeps date", func(t *testing.T) {
		got, ok := ParseDate("2024-03-15T10:30:00Z")
		assert.True(t, ok)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, time.March, got.Month())
		assert.Equal(t, 15, got.Day())
	})

	for _, input := range []string{"", "not a date", "13/45/2024", "next spring"} {
		t.Run("invalid "+input, func(t *testing.T) {
			_, ok := ParseDate(input)
			assert.False(t, ok)
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		vocab []string
		want  []string
	}{
		{
			name:  "canonical casing and mixed separators",
			input: "williamsburg, park slope; DUMBO",
			vocab: schema.NeighborhoodVocabulary,
			want:  []string{"Williamsburg", "Park Slope", "DUMBO"},
		},
		{
			name:  "newline separated",
			input: "Gym\nDoorman",
			vocab: schema.AmenityVocabulary,
			want:  []string{"Gym", "Doorman"},
		},
		{
			name:  "empty tokens dropped and duplicates removed",
			input: "gym,,  ; Gym",
			vocab: schema.AmenityVocabulary,
			want:  []string{"Gym"},
		},
		{
			name:  "substring containment",
			input: "laundry, 2",
			vocab: append(append([]string(nil), schema.AmenityVocabulary...), schema.BedroomVocabulary...),
			want:  []string{"Laundry In Unit", "2BR"},
		},
		{
			name:  "unknown token passes through",
			input: "rooftop pool",
			vocab: schema.AmenityVocabulary,
			want:  []string{"rooftop pool"},
		},
		{
			name:  "no vocabulary dedupes case-insensitively",
			input: "a, b, A",
			want:  []string{"a", "b"},
		},
		{
			name:  "bedrooms",
			input: "studio, 1",
			vocab: schema.BedroomVocabulary,
			want:  []string{"Studio", "1BR"},
		},
		{name: "blank", input: "", want: nil},
		{name: "only separators", input: " , ; ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.input, tt.vocab))
		})
	}
}

func TestCanonicalize_ExactBeforeSubstring(t *testing.T) {
	vocab := []string{"Upper West Side", "West Village"}
	assert.Equal(t, "West Village", Canonicalize("west village", vocab))
	assert.Equal(t, "Upper West Side", Canonicalize("upper west", vocab))
}
