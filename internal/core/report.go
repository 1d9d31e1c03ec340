package core

import (
	"github.com/JonMunkholm/rosterimport/internal/dedupe"
	"github.com/JonMunkholm/rosterimport/internal/match"
	"github.com/JonMunkholm/rosterimport/internal/tabular"
	"github.com/JonMunkholm/rosterimport/internal/transform"
)

// report snapshots the session. Slices are copied so the caller can hold the
// report after the session lock is released.
func (sess *session) report(catalogVersion string) *Report {
	status := StatusReady
	if len(sess.unmapped) > 0 {
		status = StatusBlocked
	}

	unmapped := make([]FieldRef, len(sess.unmapped))
	for i, f := range sess.unmapped {
		unmapped[i] = FieldRef{Key: f.Key, Label: f.Label}
	}

	samples := sess.result.ValidRows
	if len(samples) > maxSampleRows {
		samples = samples[:maxSampleRows]
	}

	unresolved := 0
	for _, m := range sess.matches {
		if m.Resolution == dedupe.Unresolved {
			unresolved++
		}
	}

	malformed := sess.table.Malformed
	if malformed == nil {
		malformed = []tabular.MalformedRow{}
	}

	return &Report{
		ImportID:         sess.id,
		FileName:         sess.fileName,
		Status:           status,
		CatalogVersion:   catalogVersion,
		Headers:          append([]string(nil), sess.table.Headers...),
		TotalRows:        sess.table.TotalRows,
		Mappings:         append([]match.ColumnMapping(nil), sess.mappings...),
		UnmappedRequired: unmapped,
		MalformedRows:    append([]tabular.MalformedRow{}, malformed...),
		ValidRows:        len(sess.result.ValidRows),
		InvalidRows:      sess.result.InvalidRows,
		SampleRows:       append([]transform.ParsedClientRow{}, samples...),
		Errors:           append([]transform.ValidationError{}, sess.result.Errors...),
		Duplicates:       append([]dedupe.DuplicateMatch{}, sess.matches...),
		Unresolved:       unresolved,
		InFileDuplicates: append([]dedupe.InFileDuplicate{}, sess.inFile...),
		CreatedAt:        sess.createdAt,
		UpdatedAt:        sess.updatedAt,
		ProcessingTimeMs: sess.elapsed.Milliseconds(),
	}
}
