package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stash/internal/schema"
)

// SchemaSummary describes one compiled schema for command output.
type SchemaSummary struct {
	Name     string          `json:"name"`
	Entities []EntitySummary `json:"entities"`
}

// EntitySummary describes one entity collection for command output.
type EntitySummary struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compile and validate the schema catalog",
		Long: `Compile the CUE schema files and check structural invariants:
identifier-safe names, no duplicate entities or attributes, no reserved
attribute names, known attribute kinds.

Example:
  stash validate --schemas ./schemas
  stash validate --schemas ./schemas --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	catalog, err := schema.LoadDir(opts.Schemas)
	if err != nil {
		_ = formatter.Error(err.Error(), nil)
		return WrapExitError(ExitFailure, "schema validation failed", err)
	}

	summaries := summarize(catalog)
	if opts.Format == "json" {
		return formatter.Success(summaries)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %d schema(s) valid\n", len(summaries))
	for _, s := range summaries {
		fmt.Fprintf(w, "\n%s\n", s.Name)
		for _, e := range s.Entities {
			fmt.Fprintf(w, "  %s (%d attributes)\n", e.Name, len(e.Attributes))
			if opts.Verbose {
				for name, kind := range e.Attributes {
					fmt.Fprintf(w, "    %s: %s\n", name, kind)
				}
			}
		}
	}
	return nil
}

func summarize(catalog *schema.Catalog) []SchemaSummary {
	names := catalog.Names()
	summaries := make([]SchemaSummary, 0, len(names))
	for _, name := range names {
		sch, _ := catalog.Schema(name)
		summary := SchemaSummary{Name: sch.Name}
		for _, e := range sch.Entities {
			attrs := make(map[string]string, len(e.Attributes))
			for _, a := range e.Attributes {
				attrs[a.Name] = string(a.Kind)
			}
			summary.Entities = append(summary.Entities, EntitySummary{
				Name:       e.Name,
				Attributes: attrs,
			})
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
