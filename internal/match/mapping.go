package match

// UpdateMapping applies an operator override to the first column named
// sourceColumn. See UpdateMappingAt. An unknown sourceColumn leaves the
// mappings unchanged.
func UpdateMapping(mappings []ColumnMapping, sourceColumn, newTarget string) []ColumnMapping {
	return UpdateMappingAt(mappings, ColumnIndex(mappings, sourceColumn), newTarget)
}

// UpdateMappingAt points the column at index at newTarget (empty for "do not
// import") and releases any other column holding newTarget, so no two
// columns ever share a target even when headers repeat. The input slice is
// not modified.
//
// Applying the same update twice yields the same result. An index out of
// range leaves the mappings unchanged.
func UpdateMappingAt(mappings []ColumnMapping, index int, newTarget string) []ColumnMapping {
	out := make([]ColumnMapping, len(mappings))
	copy(out, mappings)

	if index < 0 || index >= len(out) {
		return out
	}

	for i := range out {
		if i == index {
			out[i].TargetField = newTarget
			out[i].Confidence = 0
			if newTarget != "" {
				out[i].Confidence = ExactConfidence
			}
			continue
		}
		if newTarget != "" && out[i].TargetField == newTarget {
			out[i].TargetField = ""
			out[i].Confidence = 0
		}
	}

	return out
}

// ColumnIndex returns the position of the first mapping for sourceColumn,
// or -1.
func ColumnIndex(mappings []ColumnMapping, sourceColumn string) int {
	for i, mp := range mappings {
		if mp.SourceColumn == sourceColumn {
			return i
		}
	}
	return -1
}

// HasColumn reports whether any mapping has the given source column.
func HasColumn(mappings []ColumnMapping, sourceColumn string) bool {
	return ColumnIndex(mappings, sourceColumn) >= 0
}
