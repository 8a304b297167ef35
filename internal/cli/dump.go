package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/aspectswrl/internal/ir"
	"github.com/roach88/aspectswrl/internal/store"
)

// DumpResult is the full content of the database.
type DumpResult struct {
	OntologyIRI string             `json:"ontology_iri"`
	Axioms      []string           `json:"axioms"`
	Aspects     []AspectMembership `json:"aspects"`
}

// AspectMembership is one aspect assertion in functional syntax.
type AspectMembership struct {
	Axiom  string `json:"axiom"`
	Aspect string `json:"aspect"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every axiom and aspect assertion in the database",
		Long: `Print the database's axioms in insertion order, followed by its
aspect assertions, in OWL functional-style syntax.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, cmd)
		},
	}
	return cmd
}

func runDump(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.resolveConfig()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	st, err := store.Open(cfg.Database, cfg.OntologyIRI)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	base := st.IRI()

	axioms, err := st.Axioms(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	memberships, err := st.AspectAssertions(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := DumpResult{
		OntologyIRI: base,
		Axioms:      make([]string, len(axioms)),
		Aspects:     make([]AspectMembership, len(memberships)),
	}
	for i, ax := range axioms {
		result.Axioms[i] = ir.FunctionalSyntax(ax, base)
	}
	for i, m := range memberships {
		result.Aspects[i] = AspectMembership{
			Axiom:  ir.FunctionalSyntax(m.Pointcut.Axiom, base),
			Aspect: ir.ExpressionSyntax(m.Aspect.Expression, base),
		}
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Ontology(<%s>\n", base)
	for _, ax := range result.Axioms {
		fmt.Fprintf(f.Writer, "  %s\n", ax)
	}
	fmt.Fprintln(f.Writer, ")")
	for _, m := range result.Aspects {
		fmt.Fprintf(f.Writer, "%s in %s\n", m.Axiom, m.Aspect)
	}
	return nil
}
