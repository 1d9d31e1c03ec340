package store

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/rosterimport/internal/dedupe"
	"github.com/JonMunkholm/rosterimport/internal/tabular"
)

// LoadRefs reads existing client references from a delimited file with
// id, name and email columns (matched case-insensitively, any order). The
// email column is required; id and name may be absent.
func LoadRefs(data []byte, fileName string) ([]dedupe.ExistingRecordRef, error) {
	table, err := tabular.Parse(data, fileName)
	if err != nil {
		return nil, err
	}

	col := map[string]int{"id": -1, "name": -1, "email": -1}
	for i, h := range table.Headers {
		key := strings.ToLower(h)
		if idx, ok := col[key]; ok && idx < 0 {
			col[key] = i
		}
	}
	if col["email"] < 0 {
		return nil, fmt.Errorf("load refs %s: no email column", fileName)
	}

	cell := func(row []string, key string) string {
		if i := col[key]; i >= 0 {
			return row[i]
		}
		return ""
	}

	refs := make([]dedupe.ExistingRecordRef, 0, len(table.Rows))
	for _, row := range table.Rows {
		refs = append(refs, dedupe.ExistingRecordRef{
			ID:    cell(row, "id"),
			Name:  cell(row, "name"),
			Email: cell(row, "email"),
		})
	}
	return refs, nil
}
