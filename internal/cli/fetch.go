package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stash/internal/store"
	"github.com/roach88/stash/internal/value"
)

// FetchOptions holds flags for the fetch command.
type FetchOptions struct {
	*RootOptions
	Where []string
	Sort  []string
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FetchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fetch <entity>",
		Short: "Fetch records from an entity collection",
		Long: `Fetch all records matching the predicate, in the requested order.
Without --where every record is returned; without --sort records come
back in insertion order.

Examples:
  stash fetch Task --schema tasks
  stash fetch Task --schema tasks --where done=false --sort priority:desc --sort title`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "equality filter as key=value (repeatable, combined with AND)")
	cmd.Flags().StringArrayVar(&opts.Sort, "sort", nil, "sort key as attr or attr:desc (repeatable)")

	return cmd
}

func runFetch(opts *FetchOptions, entity string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
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

	pred, err := wherePredicate(e, opts.Where)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --where", err)
	}
	sort, err := parseSort(e, opts.Sort)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --sort", err)
	}

	records, err := m.Fetch(cmd.Context(), entity, pred, sort)
	if err != nil {
		return WrapExitError(ExitFailure, "fetch failed", err)
	}
	if records == nil {
		if resErr := m.ResolutionError(); resErr != nil {
			return WrapExitError(ExitCommandError, "container unavailable", resErr)
		}
		records = []*store.Record{}
	}

	if opts.Format == "json" {
		rows := make([]map[string]any, len(records))
		for i, rec := range records {
			rows[i] = recordJSON(e, rec)
		}
		return formatter.Success(map[string]any{
			"entity":  entity,
			"count":   len(records),
			"records": rows,
		})
	}

	w := cmd.OutOrStdout()
	for _, rec := range records {
		fields := make([]string, 0, len(e.Attributes))
		for _, attr := range e.Attributes {
			fields = append(fields, fmt.Sprintf("%s=%s", attr.Name, value.Format(rec.Get(attr.Name))))
		}
		fmt.Fprintf(w, "%s  %s\n", rec.ID, strings.Join(fields, "  "))
	}
	fmt.Fprintf(w, "%d record(s)\n", len(records))
	return nil
}
