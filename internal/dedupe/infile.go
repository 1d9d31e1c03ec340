package dedupe

import "github.com/JonMunkholm/rosterimport/internal/transform"

// InFileDuplicate is an email that appears on more than one imported row.
type InFileDuplicate struct {
	Email      string `json:"email"`
	RowIndexes []int  `json:"rowIndexes"`
}

// FindInFileDuplicates reports emails repeated within the imported rows, in
// order of first appearance. It is informational only; repeated rows are
// still imported unless they also collide with an existing client.
func FindInFileDuplicates(rows []transform.ParsedClientRow) []InFileDuplicate {
	seen := make(map[string][]int)
	var order []string

	for i, row := range rows {
		key := NormalizeEmail(row.Email)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = append(seen[key], i)
	}

	dups := []InFileDuplicate{}
	for _, key := range order {
		if idx := seen[key]; len(idx) > 1 {
			dups = append(dups, InFileDuplicate{Email: key, RowIndexes: idx})
		}
	}
	return dups
}
