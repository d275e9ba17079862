package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stash/internal/manager"
	"github.com/roach88/stash/internal/schema"
	"github.com/roach88/stash/internal/store"
	"github.com/roach88/stash/internal/value"
)

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	Set      []string // attribute=value pairs
	Where    []string // dedupe predicate pairs (with --if-absent)
	IfAbsent bool
	NoSave   bool
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <entity>",
		Short: "Insert a record into an entity collection",
		Long: `Insert a new record with the given attribute values and save it.

With --if-absent, the insert is skipped when a record already matches
the --where predicate. Values are parsed per the attribute's declared
kind; the literal "null" clears an attribute.

Examples:
  stash insert Task --schema tasks --set title="Write report" --set done=false
  stash insert Task --schema tasks --if-absent --where title="Write report" --set title="Write report"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "attribute value as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "dedupe predicate as key=value (repeatable, with --if-absent)")
	cmd.Flags().BoolVar(&opts.IfAbsent, "if-absent", false, "skip the insert when a record matches --where")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "leave the insert pending instead of saving")

	return cmd
}

func runInsert(opts *InsertOptions, entity string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.IfAbsent && len(opts.Where) == 0 {
		return NewExitError(ExitCommandError, "--if-absent requires at least one --where pair")
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

	attrs, err := parsePairs(e, opts.Set)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --set", err)
	}
	payload := manager.Payload(attrs)

	ctx := cmd.Context()
	save := !opts.NoSave

	var rec *store.Record
	if opts.IfAbsent {
		pred, predErr := wherePredicate(e, opts.Where)
		if predErr != nil {
			return WrapExitError(ExitCommandError, "invalid --where", predErr)
		}
		rec, err = m.InsertIfAbsent(ctx, entity, pred, payload, save)
	} else {
		rec, err = m.Insert(ctx, entity, payload, save)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "insert failed", err)
	}

	if rec == nil {
		if resErr := m.ResolutionError(); resErr != nil {
			return WrapExitError(ExitCommandError, "container unavailable", resErr)
		}
		// Dedupe hit: a record already matched the predicate
		if opts.Format == "json" {
			return formatter.Success(map[string]any{"inserted": false})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Skipped: matching record exists")
		return nil
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"inserted": true,
			"record":   recordJSON(e, rec),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %s %s\n", entity, rec.ID)
	return nil
}

// recordJSON converts a record to a JSON-friendly map, id included,
// attributes in native types.
func recordJSON(e *schema.Entity, rec *store.Record) map[string]any {
	row := map[string]any{"id": rec.ID}
	for _, attr := range e.Attributes {
		row[attr.Name] = value.Native(rec.Get(attr.Name))
	}
	return row
}
