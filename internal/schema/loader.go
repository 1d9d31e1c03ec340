package schema

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// catalogFile is the on-disk override format:
//
//	version: acme-2024
//	fields:
//	  - key: name
//	    label: Client
//	    aliases: [client, household]
//	  - key: hasPets
//	    disabled: true
//
// Listed fields replace the built-in label, aliases, required flag and
// vocabulary where the attribute is present. Fields not listed keep their
// built-in definition. Field types cannot be overridden.
type catalogFile struct {
	Version string      `yaml:"version"`
	Fields  []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	Key        string    `yaml:"key"`
	Label      *string   `yaml:"label"`
	Aliases    *[]string `yaml:"aliases"`
	Required   *bool     `yaml:"required"`
	Vocabulary *[]string `yaml:"vocabulary"`
	Disabled   bool      `yaml:"disabled"`
}

// LoadCatalogFile reads a YAML override file and applies it on top of the
// built-in catalogue.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog applies YAML override content to the built-in catalogue.
func ParseCatalog(data []byte) (Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
	}

	cat := DefaultCatalog()
	if file.Version != "" {
		cat.Version = file.Version
	}

	disabled := make(map[string]bool)
	for _, ff := range file.Fields {
		idx := -1
		for i, f := range cat.Fields {
			if f.Key == ff.Key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Catalog{}, fmt.Errorf("unknown canonical field %q", ff.Key)
		}

		f := &cat.Fields[idx]
		if ff.Label != nil {
			f.Label = *ff.Label
		}
		if ff.Aliases != nil {
			f.Aliases = append([]string(nil), (*ff.Aliases)...)
		}
		if ff.Required != nil {
			f.Required = *ff.Required
		}
		if ff.Vocabulary != nil {
			if f.Type != FieldSet {
				return Catalog{}, fmt.Errorf("field %q is not set-valued and cannot carry a vocabulary", ff.Key)
			}
			f.Vocabulary = append([]string(nil), (*ff.Vocabulary)...)
		}
		if ff.Disabled {
			if f.Key == KeyName {
				return Catalog{}, fmt.Errorf("field %q cannot be disabled", ff.Key)
			}
			disabled[ff.Key] = true
		}
	}

	if len(disabled) > 0 {
		kept := cat.Fields[:0]
		for _, f := range cat.Fields {
			if !disabled[f.Key] {
				kept = append(kept, f)
			}
		}
		cat.Fields = kept
	}

	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}
