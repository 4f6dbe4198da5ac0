package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/holtland/datalens/internal/core"
)

// NewExportCommand creates the export command, which writes a filtered
// relation as CSV.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	flags := &filterFlags{}
	var out string

	cmd := &cobra.Command{
		Use:   "export <relation>",
		Short: "Export a filtered relation as CSV",
		Long: `Write a relation as CSV with a header row, after applying the
filter. Without --out the file is named <relation>_filtered.csv; use
--out - to write to stdout.

Example:
  datalens export q3_sales
  datalens export q3_sales --filter-column region --value west --out west.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, flags, args[0], out, cmd)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&out, "out", "", "output file (default: <relation>_filtered.csv, - for stdout)")
	return cmd
}

func runExport(opts *RootOptions, flags *filterFlags, relation, out string, cmd *cobra.Command) error {
	setupCLILogging(opts)

	service, err := newService(opts)
	if err != nil {
		return err
	}

	spec := flags.filterSpec(cmd)

	if out == "-" {
		return service.Export(cmd.Context(), relation, spec, cmd.OutOrStdout())
	}

	if out == "" {
		out = core.ExportFileName(relation)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := service.Export(cmd.Context(), relation, spec, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}
