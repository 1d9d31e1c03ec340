package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/rosterimport/internal/dedupe"
	"github.com/JonMunkholm/rosterimport/internal/match"
	"github.com/JonMunkholm/rosterimport/internal/tabular"
	"github.com/JonMunkholm/rosterimport/internal/transform"
)

// ClientStore is the commit collaborator: it supplies existing clients for
// duplicate detection and persists the partitioned import.
type ClientStore interface {
	ListExistingRefs(ctx context.Context) ([]dedupe.ExistingRecordRef, error)
	ApplyImport(ctx context.Context, batch ImportBatch) (CommitCounts, error)
}

// ImportBatch is what a commit asks the store to write. DefaultStatus is
// applied to created rows whose status could not be determined.
type ImportBatch struct {
	Create        []transform.ParsedClientRow
	Overwrite     []dedupe.OverwritePair
	DefaultStatus string
	Audit         AuditEntry
}

// CommitCounts is what the store actually wrote.
type CommitCounts struct {
	Created     int `json:"created"`
	Overwritten int `json:"overwritten"`
}

// SessionStatus indicates whether a session can be committed.
type SessionStatus string

const (
	// StatusReady sessions have every required field mapped.
	StatusReady SessionStatus = "ready"
	// StatusBlocked sessions have unmapped required fields; no rows were validated.
	StatusBlocked SessionStatus = "blocked"
)

// FieldRef names a canonical field in reports.
type FieldRef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Report is a snapshot of an import session.
type Report struct {
	ImportID         string                      `json:"importId"`
	FileName         string                      `json:"fileName"`
	Status           SessionStatus               `json:"status"`
	CatalogVersion   string                      `json:"catalogVersion"`
	Headers          []string                    `json:"headers"`
	TotalRows        int                         `json:"totalRows"`
	Mappings         []match.ColumnMapping       `json:"mappings"`
	UnmappedRequired []FieldRef                  `json:"unmappedRequired"`
	MalformedRows    []tabular.MalformedRow      `json:"malformedRows"`
	ValidRows        int                         `json:"validRows"`
	InvalidRows      int                         `json:"invalidRows"`
	SampleRows       []transform.ParsedClientRow `json:"sampleRows"`
	Errors           []transform.ValidationError `json:"errors"`
	Duplicates       []dedupe.DuplicateMatch     `json:"duplicates"`
	Unresolved       int                         `json:"unresolvedDuplicates"`
	InFileDuplicates []dedupe.InFileDuplicate    `json:"inFileDuplicates"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
	ProcessingTimeMs int64                       `json:"processingTimeMs"`
}

// Blocked reports whether the session cannot be committed.
func (r *Report) Blocked() bool {
	return r.Status == StatusBlocked
}

// CommitResult summarizes a committed import.
type CommitResult struct {
	ImportID    string                      `json:"importId"`
	FileName    string                      `json:"fileName"`
	Created     int                         `json:"created"`
	Overwritten int                         `json:"overwritten"`
	Skipped     int                         `json:"skipped"`
	InvalidRows int                         `json:"invalidRows"`
	Errors      []transform.ValidationError `json:"errors"`
	DurationMs  int64                       `json:"durationMs"`
}

// maxSampleRows caps SampleRows in reports.
const maxSampleRows = 10
