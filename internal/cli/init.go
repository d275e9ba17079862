package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the container for a schema",
		Long: `Open the container for the selected schema, creating the database
file and its entity tables if they do not exist. Re-running init on an
existing container is a no-op.

Example:
  stash init --schemas ./schemas --schema tasks --dir ./data`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, sch, err := openManager(opts)
	if err != nil {
		return err
	}
	defer m.Close()

	// Any operation resolves the container; a no-predicate fetch against
	// the first entity is the cheapest one.
	if _, err := m.Fetch(cmd.Context(), sch.Entities[0].Name, nil, nil); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize container", err)
	}
	if err := m.ResolutionError(); err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize container", err)
	}

	path := filepath.Join(opts.Dir, opts.Schema+".db")
	slog.Info("container ready", "schema", opts.Schema, "path", path)

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"schema": opts.Schema,
			"path":   path,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Container ready: %s\n", path)
	return nil
}
