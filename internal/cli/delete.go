package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Where []string
	All   bool
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <entity>",
		Short: "Delete records from an entity collection",
		Long: `Delete the records matching the --where predicate and save. With
--all the whole collection is emptied in a single save.

Examples:
  stash delete Task --schema tasks --where done=true
  stash delete Task --schema tasks --all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "equality filter as key=value (repeatable, combined with AND)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "delete every record of the collection")

	return cmd
}

func runDelete(opts *DeleteOptions, entity string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.All == (len(opts.Where) > 0) {
		return NewExitError(ExitCommandError, "pass either --where or --all")
	}

	m, sch, err := openManager(opts.RootOptions)
	if err != nil {
		return err
	}
	defer m.Close()

	e, err := entityOf(sch, entity)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var deleted int
	if opts.All {
		deleted, err = m.DeleteAll(ctx, entity, true)
		if err != nil {
			return WrapExitError(ExitFailure, "delete failed", err)
		}
	} else {
		pred, predErr := wherePredicate(e, opts.Where)
		if predErr != nil {
			return WrapExitError(ExitCommandError, "invalid --where", predErr)
		}
		records, fetchErr := m.Fetch(ctx, entity, pred, nil)
		if fetchErr != nil {
			return WrapExitError(ExitFailure, "delete failed", fetchErr)
		}
		for _, rec := range records {
			if err := m.Delete(ctx, rec, false); err != nil {
				return WrapExitError(ExitFailure, "delete failed", err)
			}
		}
		if err := m.Save(ctx); err != nil {
			return WrapExitError(ExitFailure, "delete failed", err)
		}
		deleted = len(records)
	}

	if resErr := m.ResolutionError(); resErr != nil {
		return WrapExitError(ExitCommandError, "container unavailable", resErr)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"entity":  entity,
			"deleted": deleted,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s) from %s\n", deleted, entity)
	return nil
}
