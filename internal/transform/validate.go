package transform

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/rosterimport/internal/match"
	"github.com/JonMunkholm/rosterimport/internal/schema"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9\s+\-().]+$`)
)

// Result is the outcome of validating a whole table.
type Result struct {
	ValidRows   []ParsedClientRow `json:"validRows"`
	SourceRows  []int             `json:"sourceRows"` // Row number of each entry in ValidRows
	Errors      []ValidationError `json:"errors"`
	InvalidRows int               `json:"invalidRows"`
}

// TotalRows returns the number of rows that were validated.
func (r Result) TotalRows() int {
	return len(r.ValidRows) + r.InvalidRows
}

// ValidateRow checks a candidate record and returns either the typed row or
// every problem found.
//
// Rules: name is present and non-blank; email, when present, looks like
// local@domain.tld; phone, when present, only contains digits, spaces and
// + - ( ) .; budgetMin does not exceed budgetMax; no cell failed coercion.
func ValidateRow(record CandidateRecord, rowNumber int) ValidatedRow {
	return validateRecord(record, rowNumber, []string{schema.KeyName})
}

func validateRecord(record CandidateRecord, rowNumber int, required []string) ValidatedRow {
	var errs []ValidationError

	for _, key := range required {
		if _, unparsed := record.Unparsed[key]; unparsed {
			continue
		}
		if !present(record.Values[key]) {
			errs = append(errs, ValidationError{
				Row:     rowNumber,
				Field:   key,
				Message: "required field is empty",
			})
		}
	}

	if email := record.Text(schema.KeyEmail); email != "" && !emailRegex.MatchString(email) {
		errs = append(errs, ValidationError{
			Row:     rowNumber,
			Field:   schema.KeyEmail,
			Message: "invalid email format",
			Value:   email,
		})
	}

	if phone := record.Text(schema.KeyPhone); phone != "" && !phoneRegex.MatchString(phone) {
		errs = append(errs, ValidationError{
			Row:     rowNumber,
			Field:   schema.KeyPhone,
			Message: "invalid phone format",
			Value:   phone,
		})
	}

	minBudget, hasMin := record.Number(schema.KeyBudgetMin)
	maxBudget, hasMax := record.Number(schema.KeyBudgetMax)
	if hasMin && hasMax && minBudget > maxBudget {
		errs = append(errs, ValidationError{
			Row:     rowNumber,
			Field:   schema.KeyBudgetMin,
			Message: "budget min exceeds budget max",
			Value:   formatAmount(minBudget) + " > " + formatAmount(maxBudget),
		})
	}

	keys := make([]string, 0, len(record.Unparsed))
	for key := range record.Unparsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cell := record.Unparsed[key]
		errs = append(errs, ValidationError{
			Row:     rowNumber,
			Field:   key,
			Message: fmt.Sprintf("invalid %s format", cell.Type),
			Value:   cell.Raw,
		})
	}

	if len(errs) > 0 {
		return ValidatedRow{Errors: errs}
	}
	return ValidatedRow{Data: record.toClientRow()}
}

// present reports whether a coerced value counts as provided.
func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []string:
		return len(val) > 0
	default:
		return true
	}
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// validate transforms and validates one row with the plan's required set.
func (p plan) validate(row []string, rowNumber int) ValidatedRow {
	return validateRecord(p.transform(row), rowNumber, p.required)
}

// ValidateAllRows transforms and validates every row in order. Row numbers
// are 1-indexed positions in rows. Fields the catalogue marks required are
// checked in addition to name.
func ValidateAllRows(rows [][]string, headers []string, mappings []match.ColumnMapping, catalog schema.Catalog) Result {
	p := newPlan(headers, mappings, catalog)

	results := make([]ValidatedRow, len(rows))
	for i, row := range rows {
		results[i] = p.validate(row, i+1)
	}
	return collect(results)
}

// collect folds per-row outcomes into a Result, preserving row order.
func collect(results []ValidatedRow) Result {
	res := Result{
		ValidRows:  make([]ParsedClientRow, 0, len(results)),
		SourceRows: make([]int, 0, len(results)),
		Errors:     []ValidationError{},
	}
	for i, vr := range results {
		if vr.Valid() {
			res.ValidRows = append(res.ValidRows, *vr.Data)
			res.SourceRows = append(res.SourceRows, i+1)
			continue
		}
		res.InvalidRows++
		res.Errors = append(res.Errors, vr.Errors...)
	}
	return res
}
