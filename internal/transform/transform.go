// Package transform coerces mapped cells into typed client records and
// validates them.
//
// Transformation never fails: a cell that cannot be coerced leaves its field
// absent. Validation then collects every problem on the row at once so an
// operator can fix a file in one pass. Both stages are pure functions of
// their inputs and safe to run on many rows in parallel.
package transform

import (
	"strings"

	"github.com/JonMunkholm/rosterimport/internal/match"
	"github.com/JonMunkholm/rosterimport/internal/schema"
)

// column is a mapping resolved to a row position.
type column struct {
	index int
	field schema.FieldSpec
}

// plan is the per-import column layout, resolved once and reused per row.
type plan struct {
	columns  []column
	required []string
}

// newPlan resolves mappings against headers. A mapping is located by
// position when the header at its index matches, otherwise by the first
// header with the same name. Mappings to unknown fields, unknown columns,
// or a field already claimed are ignored.
func newPlan(headers []string, mappings []match.ColumnMapping, catalog schema.Catalog) plan {
	var p plan
	claimed := make(map[string]bool)

	for i, mp := range mappings {
		if !mp.Mapped() || claimed[mp.TargetField] {
			continue
		}
		field, ok := catalog.Field(mp.TargetField)
		if !ok {
			continue
		}

		idx := -1
		if i < len(headers) && headers[i] == mp.SourceColumn {
			idx = i
		} else {
			for j, h := range headers {
				if h == mp.SourceColumn {
					idx = j
					break
				}
			}
		}
		if idx < 0 {
			continue
		}

		claimed[mp.TargetField] = true
		p.columns = append(p.columns, column{index: idx, field: field})
	}

	p.required = []string{schema.KeyName}
	for _, f := range catalog.Required() {
		if f.Key != schema.KeyName {
			p.required = append(p.required, f.Key)
		}
	}

	return p
}

// transform coerces one row.
func (p plan) transform(row []string) CandidateRecord {
	rec := newCandidateRecord()

	for _, col := range p.columns {
		cell := ""
		if col.index < len(row) {
			cell = strings.TrimSpace(row[col.index])
		}
		key := col.field.Key

		switch col.field.Type {
		case schema.FieldBool:
			rec.Values[key] = ParseFlag(cell)

		case schema.FieldNumber:
			if cell == "" {
				continue
			}
			if f, ok := ParseAmount(cell); ok {
				rec.Values[key] = f
			} else {
				rec.markUnparsed(key, cell, schema.FieldNumber)
			}

		case schema.FieldDate:
			if cell == "" {
				continue
			}
			if d, ok := ParseDate(cell); ok {
				rec.Values[key] = d
			} else {
				rec.markUnparsed(key, cell, schema.FieldDate)
			}

		case schema.FieldSet:
			if list := SplitList(cell, col.field.Vocabulary); len(list) > 0 {
				rec.Values[key] = list
			}

		case schema.FieldStatus:
			if status, ok := schema.NormalizeStatus(cell); ok {
				rec.Values[key] = status
			}

		default:
			if cell != "" {
				rec.Values[key] = cell
			}
		}
	}

	return rec
}

// TransformRow coerces one row's mapped cells into a CandidateRecord.
// Only mapped, non-blank cells produce values; mapped boolean columns are
// always present.
func TransformRow(row, headers []string, mappings []match.ColumnMapping, catalog schema.Catalog) CandidateRecord {
	return newPlan(headers, mappings, catalog).transform(row)
}
