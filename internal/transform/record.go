package transform

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/rosterimport/internal/schema"
)

// CandidateRecord is one row after coercion, before validation.
//
// Values holds only present fields, keyed by catalogue key. Value types are
// string (text, status), float64 (number), bool (boolean), time.Time (date)
// and []string (set). Unparsed keeps non-blank number and date cells that
// could not be coerced; those fields are absent from Values.
type CandidateRecord struct {
	Values   map[string]any          `json:"values"`
	Unparsed map[string]UnparsedCell `json:"unparsed,omitempty"`
}

// UnparsedCell is cell text that did not coerce to its field type.
type UnparsedCell struct {
	Raw  string           `json:"raw"`
	Type schema.FieldType `json:"type"`
}

func newCandidateRecord() CandidateRecord {
	return CandidateRecord{Values: make(map[string]any)}
}

func (r *CandidateRecord) markUnparsed(key, raw string, t schema.FieldType) {
	if r.Unparsed == nil {
		r.Unparsed = make(map[string]UnparsedCell)
	}
	r.Unparsed[key] = UnparsedCell{Raw: raw, Type: t}
}

// Text returns the text value of key, or "".
func (r CandidateRecord) Text(key string) string {
	s, _ := r.Values[key].(string)
	return s
}

// Number returns the numeric value of key.
func (r CandidateRecord) Number(key string) (float64, bool) {
	f, ok := r.Values[key].(float64)
	return f, ok
}

// ParsedClientRow is a validated canonical client record.
type ParsedClientRow struct {
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	BudgetMin     *float64   `json:"budgetMin,omitempty"`
	BudgetMax     *float64   `json:"budgetMax,omitempty"`
	Bedrooms      []string   `json:"bedrooms,omitempty"`
	Neighborhoods []string   `json:"neighborhoods,omitempty"`
	Amenities     []string   `json:"amenities,omitempty"`
	Vibes         []string   `json:"vibes,omitempty"`
	Priorities    []string   `json:"priorities,omitempty"`
	MoveInDate    *time.Time `json:"moveInDate,omitempty"`
	Status        string     `json:"status,omitempty"`
	PreApproved   bool       `json:"preApproved"`
	HasPets       bool       `json:"hasPets"`
	Notes         string     `json:"notes,omitempty"`
}

// toClientRow copies the record's values into the typed row.
func (r CandidateRecord) toClientRow() *ParsedClientRow {
	row := &ParsedClientRow{}
	for key, v := range r.Values {
		switch val := v.(type) {
		case string:
			switch key {
			case schema.KeyName:
				row.Name = val
			case schema.KeyEmail:
				row.Email = val
			case schema.KeyPhone:
				row.Phone = val
			case schema.KeyStatus:
				row.Status = val
			case schema.KeyNotes:
				row.Notes = val
			}
		case float64:
			f := val
			switch key {
			case schema.KeyBudgetMin:
				row.BudgetMin = &f
			case schema.KeyBudgetMax:
				row.BudgetMax = &f
			}
		case bool:
			switch key {
			case schema.KeyPreApproved:
				row.PreApproved = val
			case schema.KeyHasPets:
				row.HasPets = val
			}
		case time.Time:
			d := val
			if key == schema.KeyMoveInDate {
				row.MoveInDate = &d
			}
		case []string:
			switch key {
			case schema.KeyBedrooms:
				row.Bedrooms = val
			case schema.KeyNeighborhoods:
				row.Neighborhoods = val
			case schema.KeyAmenities:
				row.Amenities = val
			case schema.KeyVibes:
				row.Vibes = val
			case schema.KeyPriorities:
				row.Priorities = val
			}
		}
	}
	return row
}

// ValidationError is a row-scoped problem. Row is 1-indexed within the
// imported data rows.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ValidatedRow holds either a typed row or the reasons it was rejected.
type ValidatedRow struct {
	Data   *ParsedClientRow  `json:"data,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Valid reports whether the row passed validation.
func (v ValidatedRow) Valid() bool {
	return v.Data != nil
}
