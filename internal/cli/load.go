package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holtland/datalens/internal/ingest"
)

// NewLoadCommand creates the load command, which parses a data file and
// persists it as a relation.
func NewLoadCommand(opts *RootOptions) *cobra.Command {
	var relation string

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a data file into the store",
		Long: `Parse a CSV, XLSX, JSON, or Parquet file and persist it as a
relation, replacing any prior relation of the same name. Without --as the
relation is named after the file.

Example:
  datalens load sales.csv
  datalens load sales.csv --as q3_sales --db ./my_data.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], relation, cmd)
		},
	}

	cmd.Flags().StringVar(&relation, "as", "", "relation name (default: derived from the file name)")
	return cmd
}

func runLoad(opts *RootOptions, path, relation string, cmd *cobra.Command) error {
	setupCLILogging(opts)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	t, err := ingest.Read(filepath.Base(path), data)
	if err != nil {
		return err
	}

	if relation == "" {
		relation = defaultRelationName(path)
	}

	service, err := newService(opts)
	if err != nil {
		return err
	}
	if err := service.PersistTable(cmd.Context(), relation, t); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "loaded %s as %s (%d rows, %d columns)\n",
		path, relation, t.NumRows(), t.NumColumns())
	return nil
}

// defaultRelationName derives a store-safe relation name from a file path.
func defaultRelationName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(strings.TrimSpace(base))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "t_" + name
	}
	return name
}
