// Package match maps source column headers onto canonical catalogue fields.
//
// Matching is layered: exact key, exact label and exact alias hits carry
// fixed confidences; anything else falls back to fuzzy string similarity
// against every key, label and alias, accepted only above a threshold. When
// several headers land on the same field the most confident one keeps it.
package match

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/rosterimport/internal/schema"
)

// Confidence assigned to exact hits.
const (
	ExactConfidence = 1.0
	AliasConfidence = 0.95
)

// DefaultThreshold is the fuzzy score a header must exceed to be mapped.
const DefaultThreshold = 0.5

// ColumnMapping links one source header to a catalogue field.
// An empty TargetField means the column is not imported.
type ColumnMapping struct {
	SourceColumn string  `json:"sourceColumn"`
	TargetField  string  `json:"targetField"`
	Confidence   float64 `json:"confidence"`
}

// MarshalJSON writes an empty TargetField as null.
func (m ColumnMapping) MarshalJSON() ([]byte, error) {
	var target *string
	if m.TargetField != "" {
		target = &m.TargetField
	}
	return json.Marshal(struct {
		SourceColumn string  `json:"sourceColumn"`
		TargetField  *string `json:"targetField"`
		Confidence   float64 `json:"confidence"`
	}{m.SourceColumn, target, m.Confidence})
}

// Mapped reports whether the column has a target.
func (m ColumnMapping) Mapped() bool {
	return m.TargetField != ""
}

// Result is the outcome of matching a single header.
type Result struct {
	TargetField string
	Confidence  float64
}

// Matcher matches headers against a catalogue.
type Matcher struct {
	catalog    schema.Catalog
	threshold  float64
	similarity SimilarityFunc
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the minimum fuzzy score. Values outside [0, 1) are ignored.
func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		if t >= 0 && t < 1 {
			m.threshold = t
		}
	}
}

// WithSimilarity replaces the fuzzy scoring function.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(m *Matcher) {
		if fn != nil {
			m.similarity = fn
		}
	}
}

// NewMatcher creates a matcher over catalog using Dice similarity and
// DefaultThreshold unless overridden.
func NewMatcher(catalog schema.Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		catalog:    catalog,
		threshold:  DefaultThreshold,
		similarity: DiceCoefficient,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Algorithm returns the similarity function registered under name.
// Known names are "dice" and "levenshtein".
func Algorithm(name string) (SimilarityFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dice":
		return DiceCoefficient, nil
	case "levenshtein":
		return LevenshteinSimilarity, nil
	default:
		return nil, fmt.Errorf("unknown match algorithm %q", name)
	}
}

// Catalog returns the catalogue the matcher was built with.
func (m *Matcher) Catalog() schema.Catalog {
	return m.catalog
}

// Threshold returns the configured fuzzy threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// MatchColumn finds the best field for a single header.
func (m *Matcher) MatchColumn(header string) Result {
	header = strings.TrimSpace(header)
	if header == "" {
		return Result{}
	}

	for _, f := range m.catalog.Fields {
		if header == f.Key {
			return Result{TargetField: f.Key, Confidence: ExactConfidence}
		}
	}
	for _, f := range m.catalog.Fields {
		if strings.EqualFold(header, f.Label) {
			return Result{TargetField: f.Key, Confidence: ExactConfidence}
		}
	}
	for _, f := range m.catalog.Fields {
		for _, alias := range f.Aliases {
			if strings.EqualFold(header, alias) {
				return Result{TargetField: f.Key, Confidence: AliasConfidence}
			}
		}
	}

	var best Result
	for _, f := range m.catalog.Fields {
		score := m.fieldScore(header, f)
		if score > best.Confidence {
			best = Result{TargetField: f.Key, Confidence: score}
		}
	}

	if best.Confidence > m.threshold {
		return best
	}
	return Result{}
}

// fieldScore is the best similarity of header against the field's key,
// label and aliases.
func (m *Matcher) fieldScore(header string, f schema.FieldSpec) float64 {
	best := m.similarity(header, f.Key)
	if s := m.similarity(header, f.Label); s > best {
		best = s
	}
	for _, alias := range f.Aliases {
		if s := m.similarity(header, alias); s > best {
			best = s
		}
	}
	return best
}

// MatchAllColumns matches every header and resolves conflicts so that each
// field is claimed by at most one column: the highest confidence wins, ties
// go to the earlier header. Output order follows headers.
func (m *Matcher) MatchAllColumns(headers []string) []ColumnMapping {
	mappings := make([]ColumnMapping, len(headers))
	for i, h := range headers {
		r := m.MatchColumn(h)
		mappings[i] = ColumnMapping{SourceColumn: h, TargetField: r.TargetField, Confidence: r.Confidence}
	}

	order := make([]int, len(mappings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return mappings[order[a]].Confidence > mappings[order[b]].Confidence
	})

	claimed := make(map[string]bool)
	for _, i := range order {
		target := mappings[i].TargetField
		if target == "" {
			continue
		}
		if claimed[target] {
			mappings[i].TargetField = ""
			mappings[i].Confidence = 0
			continue
		}
		claimed[target] = true
	}

	return mappings
}

// UnmappedRequiredFields returns required fields no mapping targets, in
// catalogue order.
func (m *Matcher) UnmappedRequiredFields(mappings []ColumnMapping) []schema.FieldSpec {
	targeted := make(map[string]bool, len(mappings))
	for _, mp := range mappings {
		if mp.Mapped() {
			targeted[mp.TargetField] = true
		}
	}

	var missing []schema.FieldSpec
	for _, f := range m.catalog.Required() {
		if !targeted[f.Key] {
			missing = append(missing, f)
		}
	}
	return missing
}

// ValidateTarget returns an error unless key is empty (no target) or a
// catalogue field.
func (m *Matcher) ValidateTarget(key string) error {
	if key == "" || m.catalog.Has(key) {
		return nil
	}
	return fmt.Errorf("unknown canonical field %q", key)
}
