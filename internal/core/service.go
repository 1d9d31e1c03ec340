package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/rosterimport/internal/dedupe"
	"github.com/JonMunkholm/rosterimport/internal/logging"
	"github.com/JonMunkholm/rosterimport/internal/match"
	"github.com/JonMunkholm/rosterimport/internal/metrics"
	"github.com/JonMunkholm/rosterimport/internal/schema"
	"github.com/JonMunkholm/rosterimport/internal/tabular"
	"github.com/JonMunkholm/rosterimport/internal/transform"
)

// DefaultSessionTTL is how long an idle session survives before the sweeper
// removes it.
const DefaultSessionTTL = time.Hour

// ServiceConfig tunes a Service. Zero values fall back to defaults.
type ServiceConfig struct {
	MaxFileSize     int64
	MaxConcurrent   int
	MaxWait         time.Duration
	SessionTTL      time.Duration
	ValidateWorkers int
	DefaultStatus   string
}

// Service runs the import pipeline and keeps sessions between the preview
// and the commit.
type Service struct {
	store   ClientStore
	matcher *match.Matcher
	limiter *ImportLimiter
	metrics *metrics.Metrics
	cfg     ServiceConfig
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// session is one uploaded file awaiting commit. Its fields are guarded by mu.
type session struct {
	mu sync.Mutex

	id        string
	fileName  string
	table     *tabular.ParsedTable
	existing  []dedupe.ExistingRecordRef
	mappings  []match.ColumnMapping
	unmapped  []schema.FieldSpec
	result    transform.Result
	matches   []dedupe.DuplicateMatch
	inFile    []dedupe.InFileDuplicate
	elapsed   time.Duration
	createdAt time.Time
	updatedAt time.Time
	closed    bool
}

// NewService creates a Service. m may be nil.
func NewService(store ClientStore, matcher *match.Matcher, cfg ServiceConfig, m *metrics.Metrics) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.DefaultStatus == "" {
		cfg.DefaultStatus = schema.StatusActive
	}

	return &Service{
		store:    store,
		matcher:  matcher,
		limiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Catalog returns the catalogue the service matches against.
func (s *Service) Catalog() schema.Catalog {
	return s.matcher.Catalog()
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// StartImport parses data, maps its columns, validates every row and
// detects duplicates against the store. The returned report carries the id
// used by every later call. Parse failures abort the import and leave no
// session behind.
func (s *Service) StartImport(ctx context.Context, fileName string, data []byte) (*Report, error) {
	if s.cfg.MaxFileSize > 0 && int64(len(data)) > s.cfg.MaxFileSize {
		s.metrics.IncrementImport("rejected")
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), s.cfg.MaxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.IncrementImport("rejected")
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	id := uuid.New().String()
	logger := logging.WithFields(ctx, "import_id", id, "file", fileName)

	table, err := tabular.Parse(data, fileName)
	s.metrics.ObserveStage("parse", time.Since(start))
	if err != nil {
		s.metrics.IncrementImport("failed")
		logger.Warn("import rejected", "error", err)
		return nil, err
	}

	existing, err := s.store.ListExistingRefs(ctx)
	if err != nil {
		s.metrics.IncrementImport("failed")
		return nil, fmt.Errorf("load existing clients: %w", err)
	}

	matchStart := time.Now()
	mappings := s.matcher.MatchAllColumns(table.Headers)
	s.metrics.ObserveStage("match", time.Since(matchStart))

	now := s.now()
	sess := &session{
		id:        id,
		fileName:  fileName,
		table:     table,
		existing:  existing,
		createdAt: now,
		updatedAt: now,
	}

	ev, err := s.evaluate(ctx, sess, mappings)
	if err != nil {
		s.metrics.IncrementImport("failed")
		return nil, err
	}
	sess.apply(mappings, ev)
	sess.elapsed = time.Since(start)

	s.mu.Lock()
	s.sessions[id] = sess
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)

	report := sess.report(s.Catalog().Version)
	s.metrics.IncrementImport(string(report.Status))
	s.metrics.AddValidatedRows(report.ValidRows, report.InvalidRows)
	s.metrics.AddDuplicates(len(report.Duplicates))

	logger.Info("import parsed",
		"status", report.Status,
		"rows", report.TotalRows,
		"valid", report.ValidRows,
		"invalid", report.InvalidRows,
		"duplicates", len(report.Duplicates),
		"duration_ms", report.ProcessingTimeMs,
	)

	return report, nil
}

// evaluation is the outcome of validating a session's rows under one set
// of mappings.
type evaluation struct {
	unmapped []schema.FieldSpec
	result   transform.Result
	matches  []dedupe.DuplicateMatch
	inFile   []dedupe.InFileDuplicate
}

// evaluate runs validation and duplicate detection for mappings without
// modifying sess. Mappings with unmapped required fields skip both stages.
func (s *Service) evaluate(ctx context.Context, sess *session, mappings []match.ColumnMapping) (evaluation, error) {
	unmapped := s.matcher.UnmappedRequiredFields(mappings)
	if len(unmapped) > 0 {
		return evaluation{
			unmapped: unmapped,
			result: transform.Result{
				ValidRows:  []transform.ParsedClientRow{},
				SourceRows: []int{},
				Errors:     []transform.ValidationError{},
			},
			matches: []dedupe.DuplicateMatch{},
			inFile:  []dedupe.InFileDuplicate{},
		}, nil
	}

	validateStart := time.Now()
	result, err := transform.ValidateAllRowsConcurrent(ctx, sess.table.Rows, sess.table.Headers,
		mappings, s.Catalog(), s.cfg.ValidateWorkers)
	if err != nil {
		return evaluation{}, fmt.Errorf("validate rows: %w", err)
	}
	s.metrics.ObserveStage("validate", time.Since(validateStart))

	dedupeStart := time.Now()
	matches := dedupe.DetectDuplicates(result.ValidRows, sess.existing)
	if sess.matches != nil {
		matches = dedupe.CarryOverResolutions(sess.matches, matches)
	}
	s.metrics.ObserveStage("dedupe", time.Since(dedupeStart))

	return evaluation{
		result:  result,
		matches: matches,
		inFile:  dedupe.FindInFileDuplicates(result.ValidRows),
	}, nil
}

// apply installs mappings together with their evaluation.
func (sess *session) apply(mappings []match.ColumnMapping, ev evaluation) {
	sess.mappings = mappings
	sess.unmapped = ev.unmapped
	sess.result = ev.result
	sess.matches = ev.matches
	sess.inFile = ev.inFile
}

// lookup returns the session for id, locked. The caller must unlock it.
func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Report returns the current snapshot of a session.
func (s *Service) Report(id string) (*Report, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	return sess.report(s.Catalog().Version), nil
}

// Remap points the first column named sourceColumn at targetField ("" clears
// it) and re-runs validation and duplicate detection. Duplicate resolutions
// survive when the same email still collides with the same client. A failed
// re-run leaves the session as it was.
func (s *Service) Remap(ctx context.Context, id, sourceColumn, targetField string) (*Report, error) {
	return s.remap(ctx, id, targetField, func(mappings []match.ColumnMapping) (int, error) {
		i := match.ColumnIndex(mappings, sourceColumn)
		if i < 0 {
			return 0, fmt.Errorf("%w %q", ErrUnknownColumn, sourceColumn)
		}
		return i, nil
	})
}

// RemapColumn is Remap addressed by column position, for files that repeat
// a header.
func (s *Service) RemapColumn(ctx context.Context, id string, index int, targetField string) (*Report, error) {
	return s.remap(ctx, id, targetField, func(mappings []match.ColumnMapping) (int, error) {
		if index < 0 || index >= len(mappings) {
			return 0, fmt.Errorf("%w at position %d", ErrUnknownColumn, index)
		}
		return index, nil
	})
}

func (s *Service) remap(ctx context.Context, id, targetField string, column func([]match.ColumnMapping) (int, error)) (*Report, error) {
	if err := s.matcher.ValidateTarget(targetField); err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownField, targetField)
	}

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	index, err := column(sess.mappings)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	mappings := match.UpdateMappingAt(sess.mappings, index, targetField)
	ev, err := s.evaluate(ctx, sess, mappings)
	if err != nil {
		return nil, err
	}
	sess.apply(mappings, ev)
	sess.elapsed = time.Since(start)
	sess.updatedAt = s.now()

	logging.WithFields(ctx, "import_id", id).Info("column remapped",
		"column", mappings[index].SourceColumn,
		"position", index,
		"field", targetField,
		"valid", len(sess.result.ValidRows),
		"invalid", sess.result.InvalidRows,
	)

	return sess.report(s.Catalog().Version), nil
}

// ResolveDuplicate sets the resolution of the duplicate at rowIndex.
func (s *Service) ResolveDuplicate(id string, rowIndex int, resolution dedupe.Resolution) (*Report, error) {
	res, err := dedupe.ParseResolution(string(resolution))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResolution, resolution)
	}

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if _, ok := dedupe.IndexOf(sess.matches, rowIndex); !ok {
		return nil, fmt.Errorf("%w for row %d", ErrDuplicateNotFound, rowIndex)
	}

	sess.matches = dedupe.UpdateDuplicateResolution(sess.matches, rowIndex, res)
	sess.updatedAt = s.now()
	return sess.report(s.Catalog().Version), nil
}

// ResolveAllDuplicates applies one resolution to every duplicate.
func (s *Service) ResolveAllDuplicates(id string, resolution dedupe.Resolution) (*Report, error) {
	res, err := dedupe.ParseResolution(string(resolution))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResolution, resolution)
	}

	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	sess.matches = dedupe.SetAllDuplicateResolutions(sess.matches, res)
	sess.updatedAt = s.now()
	return sess.report(s.Catalog().Version), nil
}

// Commit partitions the valid rows by duplicate resolution and hands them to
// the store. Unresolved duplicates are skipped. On success the session is
// closed; on a store failure it stays open so the commit can be retried.
func (s *Service) Commit(ctx context.Context, id string) (*CommitResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if len(sess.unmapped) > 0 {
		return nil, ErrImportBlocked
	}

	start := time.Now()
	logger := logging.WithFields(ctx,
		"import_id", id,
		"file", sess.fileName,
		"operator", OperatorFromContext(ctx),
		"ip", IPAddressFromContext(ctx),
	)

	part := dedupe.FilterDuplicates(sess.result.ValidRows, sess.matches)
	counts, err := s.store.ApplyImport(ctx, ImportBatch{
		Create:        part.ToImport,
		Overwrite:     part.ToOverwrite,
		DefaultStatus: s.cfg.DefaultStatus,
		Audit:         newAuditEntry(ctx, id, sess.fileName, len(part.ToSkip), sess.result.InvalidRows),
	})
	s.metrics.ObserveStage("commit", time.Since(start))
	if err != nil {
		logger.Error("commit failed", "error", err)
		return nil, fmt.Errorf("commit import %s: %w", id, err)
	}

	sess.closed = true
	s.remove(id)

	s.metrics.AddCommitted("created", counts.Created)
	s.metrics.AddCommitted("overwritten", counts.Overwritten)
	s.metrics.AddCommitted("skipped", len(part.ToSkip))

	result := &CommitResult{
		ImportID:    id,
		FileName:    sess.fileName,
		Created:     counts.Created,
		Overwritten: counts.Overwritten,
		Skipped:     len(part.ToSkip),
		InvalidRows: sess.result.InvalidRows,
		Errors:      sess.result.Errors,
		DurationMs:  time.Since(start).Milliseconds(),
	}

	logger.Info("import committed",
		"created", result.Created,
		"overwritten", result.Overwritten,
		"skipped", result.Skipped,
		"invalid", result.InvalidRows,
		"duration_ms", result.DurationMs,
	)

	return result, nil
}

// Discard drops a session without committing it.
func (s *Service) Discard(id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.closed = true
	sess.mu.Unlock()

	s.remove(id)
	return nil
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
