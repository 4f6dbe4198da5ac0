package cli

import (
	"fmt"
	"math"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/holtland/datalens/internal/dataset"
	"github.com/holtland/datalens/internal/explore"
)

// filterFlags are the filter and aggregation flags shared by show and
// export.
type filterFlags struct {
	Column      string
	Min         float64
	Max         float64
	Values      []string
	IncludeNull bool

	GroupBy string
	Target  string
	Func    string
}

func (f *filterFlags) register(cmd *cobra.Command, withAgg bool) {
	cmd.Flags().StringVar(&f.Column, "filter-column", "", "column to filter on")
	cmd.Flags().Float64Var(&f.Min, "min", math.NaN(), "lower bound for a numeric filter (inclusive)")
	cmd.Flags().Float64Var(&f.Max, "max", math.NaN(), "upper bound for a numeric filter (inclusive)")
	cmd.Flags().StringArrayVar(&f.Values, "value", nil, "categorical value to keep (repeatable)")
	cmd.Flags().BoolVar(&f.IncludeNull, "include-null", false, "keep rows with a null filter value")
	if withAgg {
		cmd.Flags().StringVar(&f.GroupBy, "group-by", "", "column to group by")
		cmd.Flags().StringVar(&f.Target, "target", "", "numeric column to aggregate")
		cmd.Flags().StringVar(&f.Func, "func", "sum", "aggregation function (sum|mean|count|max|min)")
	}
}

func (f *filterFlags) filterSpec(cmd *cobra.Command) explore.FilterSpec {
	spec := explore.FilterSpec{
		Column:      f.Column,
		IncludeNull: f.IncludeNull,
	}
	if cmd.Flags().Changed("value") {
		spec.Values = f.Values
	}
	if !math.IsNaN(f.Min) {
		v := f.Min
		spec.Min = &v
	}
	if !math.IsNaN(f.Max) {
		v := f.Max
		spec.Max = &v
	}
	return spec
}

func (f *filterFlags) aggregateSpec() (*explore.AggregateSpec, error) {
	if f.GroupBy == "" || f.Target == "" {
		return nil, nil
	}
	fn, err := explore.ParseAggFunc(f.Func)
	if err != nil {
		return nil, err
	}
	return &explore.AggregateSpec{GroupBy: f.GroupBy, Target: f.Target, Func: fn}, nil
}

// NewShowCommand creates the show command, which prints a relation as a
// text table, optionally filtered and aggregated.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	flags := &filterFlags{}
	var limit int

	cmd := &cobra.Command{
		Use:   "show <relation>",
		Short: "Print a relation, optionally filtered and aggregated",
		Long: `Print a relation as a text table. The same filter and
aggregation controls as the dashboard apply.

Example:
  datalens show q3_sales
  datalens show q3_sales --filter-column amount --min 100
  datalens show q3_sales --group-by region --target amount --func mean`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, flags, args[0], limit, cmd)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to print (0 for all)")
	return cmd
}

func runShow(opts *RootOptions, flags *filterFlags, relation string, limit int, cmd *cobra.Command) error {
	setupCLILogging(opts)

	service, err := newService(opts)
	if err != nil {
		return err
	}

	t, err := service.FilteredTable(cmd.Context(), relation, flags.filterSpec(cmd))
	if err != nil {
		return err
	}

	agg, err := flags.aggregateSpec()
	if err != nil {
		return err
	}
	if agg != nil {
		grouped, ok, err := explore.Aggregate(t, *agg)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "column %s is not numeric; nothing to aggregate\n", agg.Target)
			return nil
		}
		t = grouped
	}

	renderTable(cmd, t, limit)
	return nil
}

// renderTable prints up to limit rows of a table.
func renderTable(cmd *cobra.Command, t *dataset.Table, limit int) {
	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(t.ColumnNames())

	n := t.NumRows()
	shown := n
	if limit > 0 && shown > limit {
		shown = limit
	}

	record := make([]string, len(t.Columns))
	for i := 0; i < shown; i++ {
		for c := range t.Columns {
			record[c] = dataset.FormatCell(t.Columns[c].Values[i])
		}
		tw.Append(record)
	}
	tw.Render()

	if shown < n {
		fmt.Fprintf(cmd.OutOrStdout(), "(%d of %d rows)\n", shown, n)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "(%d rows)\n", n)
	}
}
