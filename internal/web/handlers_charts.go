package web

// handlers_charts.go serves chart fragments: self-contained HTML documents
// rendered server-side and embedded by the dashboard in an iframe.

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/holtland/datalens/internal/charts"
	"github.com/holtland/datalens/internal/dataset"
)

// handleChart renders the grouped aggregation of a relation as a chart.
// Requires group_by and target parameters; type selects the chart shape
// and defaults to bar. A non-numeric target renders an empty fragment,
// matching the silent no-op of the table surface.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	chartType := charts.TypeBar
	if v := r.URL.Query().Get("type"); v != "" {
		var err error
		chartType, err = charts.ParseType(v)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
	}

	req, err := parseExploreRequest(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.Aggregate == nil {
		respondError(w, r, fmt.Errorf("group_by and target are required"), http.StatusBadRequest)
		return
	}

	grouped, ok, err := s.service.GroupedTable(r.Context(), name, req)
	if err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}
	if !ok {
		writeEmptyFragment(w, "The selected column is not numeric; pick a numeric column to aggregate.")
		return
	}

	title := fmt.Sprintf("%s by %s", grouped.Columns[1].Name, grouped.Columns[0].Name)
	renderer, err := charts.FromGrouped(grouped, chartType, title)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderFragment(w, r, renderer)
}

// handleHistogram renders the fixed-bin histogram of one numeric column.
func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	column := chi.URLParam(r, "column")

	t, err := s.service.Retrieve(r.Context(), name)
	if err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}

	col, ok := t.Column(column)
	if !ok {
		respondError(w, r, fmt.Errorf("unknown column %q", column), http.StatusBadRequest)
		return
	}

	buckets := dataset.Histogram(col)
	if buckets == nil {
		writeEmptyFragment(w, "No histogram: the column is not numeric or has no values.")
		return
	}
	renderFragment(w, r, charts.Histogram(col, buckets))
}

// handleCorrelation renders the pairwise correlation heatmap over the
// numeric columns of a relation.
func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	m, err := s.service.Correlation(r.Context(), name)
	if err != nil {
		respondError(w, r, err, storeStatus(err))
		return
	}
	if len(m.Columns) < 2 {
		writeEmptyFragment(w, "Need at least two numeric columns for a correlation heatmap.")
		return
	}
	renderFragment(w, r, charts.CorrelationHeatmap(m))
}

// renderFragment writes a chart as an HTML document.
func renderFragment(w http.ResponseWriter, r *http.Request, renderer charts.Renderer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Render(w); err != nil {
		respondErrorLogged(r, err)
	}
}

// writeEmptyFragment answers a chart request that has nothing to draw with
// a small placeholder document instead of an error.
func writeEmptyFragment(w http.ResponseWriter, note string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><body><p style=\"font-family:sans-serif;color:#666\">%s</p></body></html>", note)
}
