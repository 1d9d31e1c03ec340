// Package schema defines the canonical client record catalogue that imported
// columns are mapped onto.
//
// A Catalog is a versioned, ordered list of FieldSpecs. The built-in catalogue
// is returned by DefaultCatalog; deployments may override labels, aliases,
// required flags and vocabularies with a YAML file (see LoadCatalogFile).
package schema

import (
	"fmt"
	"strings"
)

// FieldType represents the coercion applied to a mapped cell.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldBool
	FieldDate
	FieldSet
	FieldStatus
)

// String returns the lower-case name used in JSON and YAML.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldNumber:
		return "number"
	case FieldBool:
		return "boolean"
	case FieldDate:
		return "date"
	case FieldSet:
		return "set"
	case FieldStatus:
		return "status"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseFieldType converts a type name back to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "text":
		return FieldText, nil
	case "number":
		return FieldNumber, nil
	case "boolean", "bool":
		return FieldBool, nil
	case "date":
		return FieldDate, nil
	case "set":
		return FieldSet, nil
	case "status":
		return FieldStatus, nil
	default:
		return FieldText, fmt.Errorf("unknown field type %q", s)
	}
}

// FieldSpec describes one canonical client field.
type FieldSpec struct {
	Key        string    `json:"key"`      // Stable identifier, e.g. "budgetMin"
	Label      string    `json:"label"`    // Display name, e.g. "Budget Min"
	Aliases    []string  `json:"aliases"`  // Alternate header spellings seen in CRM exports
	Required   bool      `json:"required"` // Row is rejected when the value is missing
	Type       FieldType `json:"type"`
	Vocabulary []string  `json:"vocabulary,omitempty"` // Canonical terms for set-valued fields
}

// Catalog is an ordered set of field specs. Order is significant: it is the
// order reported for unmapped required fields and the order shown to operators.
type Catalog struct {
	Version string      `json:"version"`
	Fields  []FieldSpec `json:"fields"`
}

// Field returns the definition of the field named key.
func (c Catalog) Field(key string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Has reports whether key names a field in the catalogue.
func (c Catalog) Has(key string) bool {
	_, ok := c.Field(key)
	return ok
}

// Keys returns all field keys in catalogue order.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Required returns the required fields in catalogue order.
func (c Catalog) Required() []FieldSpec {
	var out []FieldSpec
	for _, f := range c.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks that keys are unique and every field has a label.
// All problems are reported together.
func (c Catalog) Validate() error {
	var errs []string
	seen := make(map[string]bool, len(c.Fields))
	for i, f := range c.Fields {
		if f.Key == "" {
			errs = append(errs, fmt.Sprintf("field %d has no key", i))
			continue
		}
		if seen[f.Key] {
			errs = append(errs, fmt.Sprintf("duplicate field key %q", f.Key))
		}
		seen[f.Key] = true
		if f.Label == "" {
			errs = append(errs, fmt.Sprintf("field %q has no label", f.Key))
		}
		if _, ok := builtinTypes[f.Key]; !ok {
			errs = append(errs, fmt.Sprintf("unknown canonical field %q", f.Key))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(errs, "; "))
	}
	return nil
}
