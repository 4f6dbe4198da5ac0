package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command, which lists the persisted
// relations with their shapes.
func NewTablesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the relations in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(opts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	setupCLILogging(opts)

	service, err := newService(opts)
	if err != nil {
		return err
	}

	names, err := service.Relations(cmd.Context())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no tables yet")
		return nil
	}

	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader([]string{"relation", "rows", "columns"})
	for _, name := range names {
		t, err := service.Retrieve(cmd.Context(), name)
		if err != nil {
			return err
		}
		tw.Append([]string{name, strconv.Itoa(t.NumRows()), strconv.Itoa(t.NumColumns())})
	}
	tw.Render()
	return nil
}
