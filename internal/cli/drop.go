package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDropCommand creates the drop command, which removes a relation from
// the store.
func NewDropCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <relation>",
		Short: "Remove a relation from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupCLILogging(opts)

			service, err := newService(opts)
			if err != nil {
				return err
			}
			if err := service.DropRelation(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", args[0])
			return nil
		},
	}
}
