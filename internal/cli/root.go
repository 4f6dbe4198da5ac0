// Package cli implements the datalens command line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/holtland/datalens/internal/config"
	"github.com/holtland/datalens/internal/core"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database string // store file override
	Verbose  bool
}

// NewRootCommand creates the root command for the datalens CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "datalens",
		Short: "Explore tabular data files through a local store",
		Long: `Datalens loads CSV, XLSX, JSON, and Parquet files into a local
SQLite store and explores them with filters, aggregations, and charts,
either through the web dashboard (datalens serve) or directly from the
command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the store file (overrides STORE_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewDropCommand(opts))

	return cmd
}

// newService loads the configuration, applies global flag overrides, and
// builds the shared service.
func newService(opts *RootOptions) (*core.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Database != "" {
		cfg.Store.Path = opts.Database
	}
	return core.NewService(cfg), nil
}

// setupCLILogging configures slog for command line use: text on stderr,
// debug level when verbose.
func setupCLILogging(opts *RootOptions) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
