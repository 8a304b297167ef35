package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/aspectswrl/internal/ir"
	"github.com/roach88/aspectswrl/internal/store"
)

// AspectsOptions holds flags for the aspects command.
type AspectsOptions struct {
	*RootOptions
	Negative bool
}

// AspectsResult lists the aspects of one axiom.
type AspectsResult struct {
	Axiom   string   `json:"axiom"`
	Aspects []string `json:"aspects"`
}

// NewAspectsCommand creates the aspects command.
func NewAspectsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AspectsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "aspects <property> <subject> <object>",
		Short: "List the aspects an object property assertion holds in",
		Long: `List every aspect, named or anonymous, asserted for
property(subject, object). Names expand against the ontology IRI.

Examples:
  aspectswrl aspects knows alice bob --db family.db
  aspectswrl aspects knows carol alice --negative --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAspects(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Negative, "negative", false, "look up the negative assertion")

	return cmd
}

func listAspects(opts *AspectsOptions, args []string, cmd *cobra.Command) error {
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
	p := ir.ObjectProperty{IRI: ir.ExpandIRI(base, args[0])}
	s := ir.NamedIndividual{IRI: ir.ExpandIRI(base, args[1])}
	o := ir.NamedIndividual{IRI: ir.ExpandIRI(base, args[2])}

	var (
		ax    ir.Axiom
		found bool
	)
	if opts.Negative {
		ax, found, err = st.FindNegativeObjectPropertyAssertion(ctx, p, s, o)
	} else {
		ax, found, err = st.FindObjectPropertyAssertion(ctx, p, s, o)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if !found {
		want := ir.Axiom(ir.ObjectPropertyAssertion{Property: p, Subject: s, Object: o})
		if opts.Negative {
			want = ir.NegativeObjectPropertyAssertion{Property: p, Subject: s, Object: o}
		}
		return f.Fail(ExitFailure, ErrCodeNoSuchAxiom, fmt.Sprintf("no such axiom: %s", ir.FunctionalSyntax(want, base)), nil)
	}

	aspects, err := st.AssertedAspects(ctx, ax)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := AspectsResult{Axiom: ir.FunctionalSyntax(ax, base), Aspects: make([]string, len(aspects))}
	for i, a := range aspects {
		result.Aspects[i] = ir.ExpressionSyntax(a.Expression, base)
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintln(f.Writer, result.Axiom)
	if len(result.Aspects) == 0 {
		fmt.Fprintln(f.Writer, "  (no aspects)")
	}
	for _, a := range result.Aspects {
		fmt.Fprintf(f.Writer, "  %s\n", a)
	}
	return nil
}
