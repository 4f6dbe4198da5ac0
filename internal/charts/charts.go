// Package charts renders grouped results, histograms, and correlation
// matrices as self-contained go-echarts HTML fragments. It is a thin
// presentation layer: all shaping happens in explore and dataset.
package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/holtland/datalens/internal/dataset"
)

// Type selects the chart shape for a grouped result.
type Type string

const (
	TypeBar  Type = "bar"
	TypeLine Type = "line"
	TypeArea Type = "area"
	TypePie  Type = "pie"
)

// ParseType validates a user-supplied chart type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeBar, TypeLine, TypeArea, TypePie:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// Renderer is the subset of a go-echarts chart the web layer needs.
type Renderer interface {
	Render(w io.Writer) error
}

// FromGrouped builds a chart of the requested shape from a two-column
// grouped table (group key, aggregated value), as produced by
// explore.Aggregate.
func FromGrouped(t *dataset.Table, chartType Type, title string) (Renderer, error) {
	if t.NumColumns() != 2 {
		return nil, fmt.Errorf("grouped table must have 2 columns, got %d", t.NumColumns())
	}
	labels, values := groupedSeries(t)

	switch chartType {
	case TypeBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(globalOptions(title)...)
		data := make([]opts.BarData, len(values))
		for i, v := range values {
			data[i] = opts.BarData{Value: v}
		}
		bar.SetXAxis(labels).AddSeries(t.Columns[1].Name, data)
		return bar, nil

	case TypeLine, TypeArea:
		line := charts.NewLine()
		line.SetGlobalOptions(globalOptions(title)...)
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: v}
		}
		line.SetXAxis(labels).AddSeries(t.Columns[1].Name, data)
		if chartType == TypeArea {
			line.SetSeriesOptions(charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.4}))
		}
		return line, nil

	case TypePie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(globalOptions(title)...)
		data := make([]opts.PieData, len(values))
		for i, v := range values {
			data[i] = opts.PieData{Name: labels[i], Value: v}
		}
		pie.AddSeries(t.Columns[1].Name, data)
		return pie, nil

	default:
		return nil, fmt.Errorf("unknown chart type %q", chartType)
	}
}

// groupedSeries flattens a grouped table into labels and values.
// Null aggregation outputs chart as zero.
func groupedSeries(t *dataset.Table) ([]string, []float64) {
	n := t.NumRows()
	labels := make([]string, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		label := dataset.FormatCell(t.Columns[0].Values[i])
		if label == "" {
			label = "(null)"
		}
		labels[i] = label
		if f, ok := dataset.AsFloat(t.Columns[1].Values[i]); ok {
			values[i] = f
		}
	}
	return labels, values
}

// Histogram renders the fixed-bin histogram of a numeric column as a bar
// chart, one bar per bin labelled with the bin's bounds.
func Histogram(col *dataset.Column, buckets []dataset.HistogramBucket) Renderer {
	labels := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = fmt.Sprintf("%.4g – %.4g", b.Low, b.High)
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions("Histogram of " + col.Name)...)
	bar.SetXAxis(labels).AddSeries("count", data)
	return bar
}

// CorrelationHeatmap renders a pairwise correlation matrix. Pairs without
// enough data (NaN) are omitted from the series.
func CorrelationHeatmap(m dataset.CorrelationMatrix) Renderer {
	var data []opts.HeatMapData
	for i := range m.Columns {
		for j := range m.Columns {
			v := m.Cells[i][j]
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{i, j, math.Round(v*100) / 100},
			})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Correlation"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.Columns}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Columns}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:        -1,
			Max:        1,
			Calculable: opts.Bool(true),
		}),
	)
	hm.AddSeries("correlation", data)
	return hm
}

// globalOptions is the shared option set for grouped charts.
func globalOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}
