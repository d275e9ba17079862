package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Defaults for the data commands, overridable per command via flags.
	Schemas string // directory of CUE schema files
	Schema  string // schema name to open the container with
	Dir     string // directory holding container databases
}

// envDefaults are picked up from the environment before flag parsing,
// so flags still win.
type envDefaults struct {
	Schemas string `env:"STASH_SCHEMAS" envDefault:"./schemas"`
	Schema  string `env:"STASH_SCHEMA"`
	Dir     string `env:"STASH_DIR" envDefault:"."`
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stash CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	defaults := envDefaults{}
	if err := env.Parse(&defaults); err != nil {
		// Unparseable environment falls back to the built-in defaults
		defaults = envDefaults{Schemas: "./schemas", Dir: "."}
	}

	cmd := &cobra.Command{
		Use:   "stash",
		Short: "stash - schema-described persistent object store",
		Long: `A persistence facade over schema-described entity collections.

Schemas are declared in CUE; each schema gets its own SQLite-backed
container, created on first use. Commands insert, fetch, update, and
delete records through the same facade the library exposes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Schemas, "schemas", defaults.Schemas, "directory of CUE schema files (env STASH_SCHEMAS)")
	cmd.PersistentFlags().StringVar(&opts.Schema, "schema", defaults.Schema, "schema name to open the container with (env STASH_SCHEMA)")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", defaults.Dir, "directory holding container databases (env STASH_DIR)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewFetchCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setupLogging configures the process-wide slog handler.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
