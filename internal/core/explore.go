package core

// explore.go runs the per-interaction pipeline: retrieve the relation,
// apply the single-column filter, optionally group and aggregate, and
// package the result for the table and chart surfaces. Every interaction
// re-runs the whole pipeline against the current relation contents.

import (
	"context"

	"github.com/holtland/datalens/internal/dataset"
	"github.com/holtland/datalens/internal/explore"
)

// ExploreRequest is one dashboard interaction: a filter plus an optional
// aggregation, applied to a named relation.
type ExploreRequest struct {
	Filter    explore.FilterSpec     `json:"filter"`
	Aggregate *explore.AggregateSpec `json:"aggregate,omitempty"`
}

// ExploreResult is the render-ready outcome of one interaction.
type ExploreResult struct {
	Relation string          `json:"relation"`
	Columns  []ColumnInfo    `json:"columns"`
	Summary  dataset.Summary `json:"summary"` // summary of the filtered table

	FilteredRows int     `json:"filtered_rows"`
	Preview      [][]any `json:"preview"` // first PreviewRows filtered rows

	// Grouped is nil when no aggregation was requested or when the target
	// column is not numeric (silent no-op, matching the dashboard).
	Grouped *GroupedResult `json:"grouped,omitempty"`
}

// GroupedResult is a two-column grouped table in row-major form.
type GroupedResult struct {
	GroupBy string  `json:"group_by"`
	Value   string  `json:"value"` // output column name, e.g. "sum_amount"
	Rows    [][]any `json:"rows"`
}

// Explore retrieves a relation and runs the filter/aggregate pipeline.
// The store is opened and closed within this call.
func (s *Service) Explore(ctx context.Context, relation string, req ExploreRequest) (*ExploreResult, error) {
	t, err := s.Retrieve(ctx, relation)
	if err != nil {
		return nil, err
	}
	return s.exploreTable(relation, t, req)
}

// exploreTable applies the pipeline to an already-loaded table.
func (s *Service) exploreTable(relation string, t *dataset.Table, req ExploreRequest) (*ExploreResult, error) {
	filtered, err := explore.Filter(t, req.Filter)
	if err != nil {
		return nil, err
	}

	res := &ExploreResult{
		Relation:     relation,
		Columns:      columnInfos(filtered),
		Summary:      dataset.Summarize(filtered),
		FilteredRows: filtered.NumRows(),
		Preview:      previewRows(filtered, s.cfg.Upload.PreviewRows),
	}

	if req.Aggregate != nil {
		grouped, ok, err := explore.Aggregate(filtered, *req.Aggregate)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Grouped = &GroupedResult{
				GroupBy: grouped.Columns[0].Name,
				Value:   grouped.Columns[1].Name,
				Rows:    previewRows(grouped, grouped.NumRows()),
			}
		}
	}
	return res, nil
}

// FilteredTable retrieves a relation and returns the filtered table itself,
// for the chart and export surfaces that need cells rather than JSON rows.
func (s *Service) FilteredTable(ctx context.Context, relation string, spec explore.FilterSpec) (*dataset.Table, error) {
	t, err := s.Retrieve(ctx, relation)
	if err != nil {
		return nil, err
	}
	return explore.Filter(t, spec)
}

// GroupedTable retrieves a relation, filters it, and aggregates it.
// ok is false when the aggregation target is not numeric.
func (s *Service) GroupedTable(ctx context.Context, relation string, req ExploreRequest) (*dataset.Table, bool, error) {
	filtered, err := s.FilteredTable(ctx, relation, req.Filter)
	if err != nil {
		return nil, false, err
	}
	if req.Aggregate == nil {
		return nil, false, nil
	}
	return explore.Aggregate(filtered, *req.Aggregate)
}

// ColumnProfile describes one column for the filter controls: numeric
// columns carry their observed range, everything else carries the distinct
// non-null values.
type ColumnProfile struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Numeric  bool     `json:"numeric"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Distinct []string `json:"distinct,omitempty"`
}

// maxDistinctValues caps the categorical value list offered by the filter
// control; columns with more distinct values are truncated.
const maxDistinctValues = 500

// Profile builds filter-control metadata for every column of a relation.
func (s *Service) Profile(ctx context.Context, relation string) ([]ColumnProfile, error) {
	t, err := s.Retrieve(ctx, relation)
	if err != nil {
		return nil, err
	}

	profiles := make([]ColumnProfile, len(t.Columns))
	for i := range t.Columns {
		col := &t.Columns[i]
		p := ColumnProfile{Name: col.Name, Kind: col.Kind.String(), Numeric: col.Kind.Numeric()}
		if lo, hi, ok := explore.Range(col); ok {
			p.Min, p.Max = &lo, &hi
		}
		if !p.Numeric {
			distinct := explore.DistinctValues(col)
			if len(distinct) > maxDistinctValues {
				distinct = distinct[:maxDistinctValues]
			}
			p.Distinct = distinct
		}
		profiles[i] = p
	}
	return profiles, nil
}

// Histograms computes the fixed-bin histogram for every numeric column of
// a relation.
func (s *Service) Histograms(ctx context.Context, relation string) (map[string][]dataset.HistogramBucket, error) {
	t, err := s.Retrieve(ctx, relation)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]dataset.HistogramBucket)
	for i := range t.Columns {
		if buckets := dataset.Histogram(&t.Columns[i]); buckets != nil {
			out[t.Columns[i].Name] = buckets
		}
	}
	return out, nil
}

// Correlation computes the pairwise correlation matrix over the numeric
// columns of a relation.
func (s *Service) Correlation(ctx context.Context, relation string) (dataset.CorrelationMatrix, error) {
	t, err := s.Retrieve(ctx, relation)
	if err != nil {
		return dataset.CorrelationMatrix{}, err
	}
	return dataset.Correlate(t), nil
}
