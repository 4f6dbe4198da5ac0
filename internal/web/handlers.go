package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/holtland/datalens/internal/core"
	"github.com/holtland/datalens/internal/explore"
	"github.com/holtland/datalens/internal/ingest"
	"github.com/holtland/datalens/internal/store"
)

// handleIndex serves the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// handleUpload parses a multipart file upload into an upload session and
// returns the session id plus a preview. Nothing is persisted yet.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, fmt.Errorf("file too large or invalid form: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read file: %w", err), http.StatusInternalServerError)
		return
	}

	preview, err := s.service.IngestUpload(header.Filename, data)
	if err != nil {
		respondError(w, r, err, ingestStatus(err))
		return
	}

	writeJSON(w, preview)
}

// handlePersist writes an upload session into the store under a
// user-chosen relation name, replacing any prior relation of that name.
func (s *Server) handlePersist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Relation  string `json:"relation"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.Relation == "" {
		respondError(w, r, fmt.Errorf("session_id and relation are required"), http.StatusBadRequest)
		return
	}

	if err := s.service.Persist(r.Context(), req.SessionID, req.Relation); err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}

	writeJSON(w, map[string]string{"status": "loaded", "relation": req.Relation})
}

// handleListRelations returns the persisted relation names. An empty store
// answers an empty list; the UI renders its "no tables yet" state from it.
func (s *Server) handleListRelations(w http.ResponseWriter, r *http.Request) {
	names, err := s.service.Relations(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, map[string]any{"relations": names})
}

// handleRelation returns an unfiltered view of a relation: preview rows
// plus summary statistics.
func (s *Server) handleRelation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	result, err := s.service.Explore(r.Context(), name, core.ExploreRequest{})
	if err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}
	writeJSON(w, result)
}

// handleDropRelation removes a relation from the store.
func (s *Server) handleDropRelation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.service.DropRelation(r.Context(), name); err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}
	writeJSON(w, map[string]string{"status": "dropped", "relation": name})
}

// handleColumns returns filter-control metadata for a relation's columns:
// numeric ranges and categorical value lists.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	profiles, err := s.service.Profile(r.Context(), name)
	if err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}
	writeJSON(w, map[string]any{"relation": name, "columns": profiles})
}

// handleExplore runs the filter/aggregate pipeline for one interaction and
// returns the render-ready result.
func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	req, err := parseExploreRequest(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.service.Explore(r.Context(), name, req)
	if err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}
	writeJSON(w, result)
}

// handleExport streams the filtered relation as a CSV download named
// <relation>_filtered.csv.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	req, err := parseExploreRequest(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	// Pull the table first so failures still produce a clean error
	// response instead of a truncated download.
	t, err := s.service.FilteredTable(r.Context(), name, req.Filter)
	if err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, core.ExportFileName(name)))

	if err := core.WriteCSV(t, w); err != nil {
		// Headers are sent; log only.
		respondErrorLogged(r, err)
	}
}

// parseExploreRequest extracts the filter and aggregate specs from query
// parameters:
//
//	filter_column, min, max      numeric range filter
//	value (repeated), include_null  categorical filter
//	group_by, target, func       aggregation
func parseExploreRequest(r *http.Request) (core.ExploreRequest, error) {
	q := r.URL.Query()
	var req core.ExploreRequest

	req.Filter.Column = q.Get("filter_column")
	if v := q.Get("min"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid min %q", v)
		}
		req.Filter.Min = &f
	}
	if v := q.Get("max"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid max %q", v)
		}
		req.Filter.Max = &f
	}
	if vals, ok := q["value"]; ok {
		req.Filter.Values = vals
	}
	req.Filter.IncludeNull = q.Get("include_null") == "true"

	groupBy := q.Get("group_by")
	target := q.Get("target")
	fnName := q.Get("func")
	if groupBy != "" && target != "" {
		fn := explore.AggSum
		if fnName != "" {
			var err error
			fn, err = explore.ParseAggFunc(fnName)
			if err != nil {
				return req, err
			}
		}
		req.Aggregate = &explore.AggregateSpec{GroupBy: groupBy, Target: target, Func: fn}
	}

	return req, nil
}

// decodeJSONBody decodes a JSON request body into dst.
func decodeJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if err := unmarshalStrict(data, dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ingestStatus maps an ingest failure to an HTTP status.
func ingestStatus(err error) int {
	var fe *ingest.FormatError
	if errors.As(err, &fe) {
		return http.StatusBadRequest
	}
	if strings.Contains(err.Error(), "file too large") {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// storeStatus maps a store or pipeline failure to an HTTP status.
func storeStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrBadName):
		return http.StatusBadRequest
	case strings.Contains(err.Error(), "session not found"):
		return http.StatusNotFound
	case strings.Contains(err.Error(), "unknown column"),
		strings.Contains(err.Error(), "unknown group-by column"),
		strings.Contains(err.Error(), "unknown target column"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
