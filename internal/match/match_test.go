package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/rosterimport/internal/schema"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"budgetMin", "budgetmin"},
		{"Budget Min ($)", "budgetmin"},
		{"E-mail", "email"},
		{"moveInDate", "moveindate"},
		{"# Bedrooms", "bedrooms"},
		{"first_name", "firstname"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
		})
	}
}

func TestDiceCoefficient(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "abc", "abc", 1},
		{"identical after normalization", "Budget Min", "budgetMin", 1},
		{"one shared bigram", "night", "nacht", 0.25},
		{"single characters", "a", "b", 0},
		{"both empty", "", "", 0},
		{"one empty", "email", "", 0},
		{"subset", "full name", "Client Full Name", 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DiceCoefficient(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, DiceCoefficient(tt.b, tt.a), 1e-9, "symmetric")
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("same", "same"))
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 4, Levenshtein("", "abcd"))
	assert.Equal(t, 1, Levenshtein("café", "cafe"))

	assert.InDelta(t, 1-3.0/7.0, LevenshteinSimilarity("kitten", "sitting"), 1e-9)
	assert.Equal(t, 0.0, LevenshteinSimilarity("", "abc"))
	assert.Equal(t, 1.0, LevenshteinSimilarity("Move-in Date", "moveInDate"))
}

func TestMatchColumn(t *testing.T) {
	m := NewMatcher(schema.DefaultCatalog())

	tests := []struct {
		name       string
		header     string
		wantTarget string
		wantConf   float64
	}{
		{"exact key", "budgetMin", schema.KeyBudgetMin, ExactConfidence},
		{"exact label", "Budget Min", schema.KeyBudgetMin, ExactConfidence},
		{"label ignores case", "NAME", schema.KeyName, ExactConfidence},
		{"label trimmed", "  Email  ", schema.KeyEmail, ExactConfidence},
		{"alias", "Full Name", schema.KeyName, AliasConfidence},
		{"alias with punctuation", "E-mail", schema.KeyEmail, AliasConfidence},
		{"alias ignores case", "LEAD STATUS", schema.KeyStatus, AliasConfidence},
		{"blank header", "   ", "", 0},
		{"unrelated header", "Zodiac Sign", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchColumn(tt.header)
			assert.Equal(t, tt.wantTarget, got.TargetField)
			assert.Equal(t, tt.wantConf, got.Confidence)
		})
	}
}

func TestMatchColumn_Fuzzy(t *testing.T) {
	m := NewMatcher(schema.DefaultCatalog())

	tests := []struct {
		header     string
		wantTarget string
	}{
		{"Client Full Name", schema.KeyName},
		{"Budget Minimum", schema.KeyBudgetMin},
		{"Phone Numbr", schema.KeyPhone},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := m.MatchColumn(tt.header)
			assert.Equal(t, tt.wantTarget, got.TargetField)
			assert.Greater(t, got.Confidence, DefaultThreshold)
			assert.Less(t, got.Confidence, AliasConfidence)
		})
	}
}

func TestMatchColumn_Threshold(t *testing.T) {
	m := NewMatcher(schema.DefaultCatalog(), WithThreshold(0.9))

	assert.Equal(t, "", m.MatchColumn("Client Full Name").TargetField)
	assert.Equal(t, schema.KeyBudgetMin, m.MatchColumn("Budget Minimum").TargetField)
	assert.Equal(t, 0.9, m.Threshold())

	// Out of range values keep the default.
	assert.Equal(t, DefaultThreshold, NewMatcher(schema.DefaultCatalog(), WithThreshold(1.5)).Threshold())
}

func TestMatchColumn_Algorithm(t *testing.T) {
	dice := NewMatcher(schema.DefaultCatalog())
	assert.Equal(t, "", dice.MatchColumn("Emial").TargetField)

	lev, err := Algorithm("levenshtein")
	require.NoError(t, err)
	m := NewMatcher(schema.DefaultCatalog(), WithSimilarity(lev))
	got := m.MatchColumn("Emial")
	assert.Equal(t, schema.KeyEmail, got.TargetField)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)

	_, err = Algorithm("soundex")
	assert.Error(t, err)
}

func TestMatchAllColumns(t *testing.T) {
	m := NewMatcher(schema.DefaultCatalog())

	headers := []string{"Name", "Email", "Phone", "Budget Min", "Budget Max", "Bedrooms", "Notes"}
	got := m.MatchAllColumns(headers)

	want := []string{
		schema.KeyName, schema.KeyEmail, schema.KeyPhone, schema.KeyBudgetMin,
		schema.KeyBudgetMax, schema.KeyBedrooms, schema.KeyNotes,
	}
	require.Len(t, got, len(headers))
	for i := range headers {
		assert.Equal(t, headers[i], got[i].SourceColumn)
		assert.Equal(t, want[i], got[i].TargetField)
		assert.Equal(t, ExactConfidence, got[i].Confidence)
	}
}

func TestMatchAllColumns_Conflicts(t *testing.T) {
	m := NewMatcher(schema.DefaultCatalog())

	t.Run("higher confidence wins", func(t *testing.T) {
		got := m.MatchAllColumns([]string{"E-mail", "Email", "Zodiac Sign"})
		assert.Equal(t, []ColumnMapping{
			{SourceColumn: "E-mail", TargetField: "", Confidence: 0},
			{SourceColumn: "Email", TargetField: schema.KeyEmail, Confidence: ExactConfidence},
			{SourceColumn: "Zodiac Sign", TargetField: "", Confidence: 0},
		}, got)
	})

	t.Run("tie goes to earlier header", func(t *testing.T) {
		got := m.MatchAllColumns([]string{"Email", "email"})
		assert.Equal(t, schema.KeyEmail, got[0].TargetField)
		assert.Equal(t, "", got[1].TargetField)
		assert.Equal(t, 0.0, got[1].Confidence)
	})

	t.Run("each field claimed at most once", func(t *testing.T) {
		got := m.MatchAllColumns([]string{"Full Name", "Name", "Client Name", "client", "Contact"})
		claimed := map[string]int{}
		for _, mp := range got {
			if mp.Mapped() {
				claimed[mp.TargetField]++
			}
		}
		assert.Equal(t, map[string]int{schema.KeyName: 1}, claimed)
		assert.Equal(t, schema.KeyName, got[1].TargetField)
	})
}

func TestUnmappedRequiredFields(t *testing.T) {
	m := NewMatcher(schema.DefaultCatalog())

	missing := m.UnmappedRequiredFields(m.MatchAllColumns([]string{"Email", "Phone"}))
	require.Len(t, missing, 1)
	assert.Equal(t, schema.KeyName, missing[0].Key)

	assert.Empty(t, m.UnmappedRequiredFields(m.MatchAllColumns([]string{"Client Name"})))
}

func TestUpdateMapping(t *testing.T) {
	start := []ColumnMapping{
		{SourceColumn: "Name", TargetField: schema.KeyName, Confidence: 1},
		{SourceColumn: "Full Name", TargetField: "", Confidence: 0},
		{SourceColumn: "Email", TargetField: schema.KeyEmail, Confidence: 1},
	}
	snapshot := append([]ColumnMapping(nil), start...)

	got := UpdateMapping(start, "Full Name", schema.KeyName)
	want := []ColumnMapping{
		{SourceColumn: "Name", TargetField: "", Confidence: 0},
		{SourceColumn: "Full Name", TargetField: schema.KeyName, Confidence: ExactConfidence},
		{SourceColumn: "Email", TargetField: schema.KeyEmail, Confidence: 1},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, snapshot, start, "input must not be modified")

	t.Run("idempotent", func(t *testing.T) {
		assert.Equal(t, got, UpdateMapping(got, "Full Name", schema.KeyName))
	})

	t.Run("clear target", func(t *testing.T) {
		cleared := UpdateMapping(start, "Email", "")
		assert.Equal(t, "", cleared[2].TargetField)
		assert.Equal(t, 0.0, cleared[2].Confidence)
		assert.Equal(t, schema.KeyName, cleared[0].TargetField)
	})

	t.Run("unknown column", func(t *testing.T) {
		assert.Equal(t, start, UpdateMapping(start, "Shoe Size", schema.KeyNotes))
	})
}

func TestUpdateMapping_RepeatedHeader(t *testing.T) {
	start := []ColumnMapping{
		{SourceColumn: "Email"},
		{SourceColumn: "Email"},
		{SourceColumn: "Name", TargetField: schema.KeyName, Confidence: 1},
	}

	got := UpdateMapping(start, "Email", schema.KeyEmail)
	assert.Equal(t, []ColumnMapping{
		{SourceColumn: "Email", TargetField: schema.KeyEmail, Confidence: ExactConfidence},
		{SourceColumn: "Email"},
		{SourceColumn: "Name", TargetField: schema.KeyName, Confidence: 1},
	}, got)

	moved := UpdateMappingAt(got, 1, schema.KeyEmail)
	assert.Equal(t, "", moved[0].TargetField)
	assert.Equal(t, schema.KeyEmail, moved[1].TargetField)

	for _, mappings := range [][]ColumnMapping{got, moved} {
		seen := map[string]int{}
		for _, mp := range mappings {
			if mp.TargetField != "" {
				seen[mp.TargetField]++
			}
		}
		for target, n := range seen {
			assert.Equal(t, 1, n, "target %s held by %d columns", target, n)
		}
	}
}

func TestUpdateMappingAt_OutOfRange(t *testing.T) {
	start := []ColumnMapping{{SourceColumn: "Name", TargetField: schema.KeyName, Confidence: 1}}
	assert.Equal(t, start, UpdateMappingAt(start, -1, schema.KeyNotes))
	assert.Equal(t, start, UpdateMappingAt(start, 1, schema.KeyNotes))
}

func TestColumnIndex(t *testing.T) {
	mappings := []ColumnMapping{{SourceColumn: "A"}, {SourceColumn: "B"}, {SourceColumn: "B"}}
	assert.Equal(t, 1, ColumnIndex(mappings, "B"))
	assert.Equal(t, -1, ColumnIndex(mappings, "C"))
	assert.True(t, HasColumn(mappings, "A"))
	assert.False(t, HasColumn(mappings, "a"))
}

func TestColumnMapping_JSON(t *testing.T) {
	out, err := json.Marshal([]ColumnMapping{
		{SourceColumn: "Email", TargetField: schema.KeyEmail, Confidence: 1},
		{SourceColumn: "Horoscope"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"sourceColumn": "Email", "targetField": "email", "confidence": 1},
		{"sourceColumn": "Horoscope", "targetField": null, "confidence": 0}
	]`, string(out))

	var back []ColumnMapping
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "", back[1].TargetField)
	assert.False(t, back[1].Mapped())
}

func TestValidateTarget(t *testing.T) {
	m := NewMatcher(schema.DefaultCatalog())
	assert.NoError(t, m.ValidateTarget(""))
	assert.NoError(t, m.ValidateTarget(schema.KeyVibes))
	assert.Error(t, m.ValidateTarget("shoeSize"))
}
