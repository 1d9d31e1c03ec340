package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/rosterimport/internal/core"
	"github.com/JonMunkholm/rosterimport/internal/dedupe"
)

const (
	// multipartOverhead is allowed on top of the file size for form framing.
	multipartOverhead = 1 << 20

	// maxJSONBody bounds mapping and resolution requests.
	maxJSONBody = 64 << 10
)

// MappingRequest is the body of PUT /api/imports/{id}/mappings.
// An empty TargetField stops the column from being imported. ColumnIndex,
// when set, addresses the column by position and takes precedence over
// SourceColumn.
type MappingRequest struct {
	SourceColumn string `json:"sourceColumn,omitempty"`
	ColumnIndex  *int   `json:"columnIndex,omitempty"`
	TargetField  string `json:"targetField"`
}

// ResolutionRequest is the body of the duplicate resolution endpoints.
type ResolutionRequest struct {
	Resolution dedupe.Resolution `json:"resolution"`
}

// handleHealth reports liveness with session and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
		"imports":  s.service.LimiterStatus(),
	})
}

// handleListFields returns the canonical field catalogue.
func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Catalog())
}

// handleStartImport reads the multipart "file" field and starts a session.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	report, err := s.service.StartImport(ctx, header.Filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Report(chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Discard(chi.URLParam(r, "importID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateMapping re-points one source column and returns the
// re-validated report.
func (s *Server) handleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	var req MappingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.SourceColumn == "" && req.ColumnIndex == nil {
		respondError(w, r, fmt.Errorf("%w: sourceColumn or columnIndex is required", core.ErrInvalidRequest))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	id := chi.URLParam(r, "importID")

	var report *core.Report
	var err error
	if req.ColumnIndex != nil {
		report, err = s.service.RemapColumn(ctx, id, *req.ColumnIndex, req.TargetField)
	} else {
		report, err = s.service.Remap(ctx, id, req.SourceColumn, req.TargetField)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleResolveDuplicate(w http.ResponseWriter, r *http.Request) {
	rowIndex, err := strconv.Atoi(chi.URLParam(r, "rowIndex"))
	if err != nil || rowIndex < 0 {
		respondError(w, r, fmt.Errorf("%w: rowIndex must be a non-negative integer", core.ErrInvalidRequest))
		return
	}

	var req ResolutionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	report, err := s.service.ResolveDuplicate(chi.URLParam(r, "importID"), rowIndex, req.Resolution)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleResolveAllDuplicates(w http.ResponseWriter, r *http.Request) {
	var req ResolutionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	report, err := s.service.ResolveAllDuplicates(chi.URLParam(r, "importID"), req.Resolution)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Commit(ctx, chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeJSON reads a single JSON object into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}
