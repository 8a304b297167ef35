package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/aspectswrl/internal/builtin"
	"github.com/roach88/aspectswrl/internal/engine"
	"github.com/roach88/aspectswrl/internal/store"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Rule    string
	Bind    []string // NAME=argument
	Metrics bool
}

// InvokeResult is the outcome of one built-in invocation.
type InvokeResult struct {
	BuiltIn  string              `json:"builtin"`
	Rule     string              `json:"rule"`
	Result   bool                `json:"result"`
	Bindings map[string]string   `json:"bindings"`
	Multi    map[string][]string `json:"multi,omitempty"`
	Metrics  string              `json:"metrics,omitempty"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <builtin> [args...]",
		Short: "Invoke a built-in against the database",
		Long: `Invoke one built-in against the ontology in the database and print
its result and output bindings. Changes the built-in makes are committed.

Arguments:
  ?X                     variable (bound with --bind, otherwise unbound)
  prop:knows             object property
  ind:alice              named individual
  class:Trust            class
  lit:true^^xsd:boolean  typed literal

Local names expand against the ontology IRI.

Examples:
  aspectswrl invoke opa ?A prop:knows ind:alice ind:bob --db family.db
  aspectswrl invoke createOPA prop:knows ?X ind:carol ?A --bind X=ind:alice
  aspectswrl invoke temporal ?A prop:after ind:noon lit:true^^xsd:boolean`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeBuiltIn(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Rule, "rule", "cli", "rule name reported in errors")
	cmd.Flags().StringArrayVar(&opts.Bind, "bind", nil, "initial binding NAME=argument (repeatable)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print built-in metrics after the call")

	return cmd
}

func invokeBuiltIn(opts *InvokeOptions, name string, rawArgs []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.resolveConfig()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	logger := opts.logger(cmd, cfg)

	ids, err := builtin.NewIDGenerator(cfg.IDScheme)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	st, err := store.Open(cfg.Database, cfg.OntologyIRI)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()
	base := st.IRI()

	args, err := builtin.ParseArguments(rawArgs, base)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeArguments, err.Error(), nil)
	}
	bindings, err := parseBindFlags(opts.Bind, base)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeArguments, err.Error(), nil)
	}

	reg := prometheus.NewRegistry()
	lib := builtin.New(st, st,
		builtin.WithIDGenerator(ids),
		builtin.WithLogger(logger),
		builtin.WithMetrics(builtin.NewMetrics(reg)),
	)

	ok, err := lib.Invoke(cmd.Context(), name, builtin.Call{Rule: opts.Rule, Args: args, Bindings: bindings})
	if err != nil {
		var be *builtin.Error
		if errors.As(err, &be) {
			return f.Fail(ExitFailure, ErrCodeBuiltIn, be.Error(), map[string]any{
				"code":    string(be.Code),
				"builtin": be.BuiltIn,
				"rule":    be.Rule,
			})
		}
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := InvokeResult{
		BuiltIn:  name,
		Rule:     opts.Rule,
		Result:   ok,
		Bindings: bindings.Map(base),
		Multi:    multiBindings(bindings, base),
	}
	if opts.Metrics {
		if result.Metrics, err = exposition(reg); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	printInvokeText(f, result)
	return nil
}

// parseBindFlags parses NAME=argument pairs into a binding table.
func parseBindFlags(flags []string, base string) (*engine.Bindings, error) {
	b := engine.NewBindings()
	for _, fl := range flags {
		name, raw, ok := strings.Cut(fl, "=")
		name = strings.TrimPrefix(name, "?")
		if !ok || name == "" {
			return nil, fmt.Errorf("--bind %q: expected NAME=argument", fl)
		}
		arg, err := builtin.ParseArgument(raw, base)
		if err != nil {
			return nil, fmt.Errorf("--bind %s: %w", name, err)
		}
		v, isValue := arg.(builtin.Value)
		if !isValue {
			return nil, fmt.Errorf("--bind %s: %q is not a value", name, raw)
		}
		b.Bind(name, v.Entity)
	}
	return b, nil
}

func multiBindings(b *engine.Bindings, base string) map[string][]string {
	names := b.MultiNames()
	if len(names) == 0 {
		return nil
	}
	out := make(map[string][]string, len(names))
	for _, name := range names {
		vs, _ := b.Multi(name)
		rendered := make([]string, len(vs))
		for i, v := range vs {
			rendered[i] = builtin.FormatEntity(v, base)
		}
		out[name] = rendered
	}
	return out
}

// exposition renders the registry in the Prometheus text format.
func exposition(reg prometheus.Gatherer) (string, error) {
	families, err := reg.Gather()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func printInvokeText(f *OutputFormatter, r InvokeResult) {
	fmt.Fprintf(f.Writer, "%s: %t\n", r.BuiltIn, r.Result)
	for _, name := range sortedKeys(r.Bindings) {
		fmt.Fprintf(f.Writer, "  ?%s = %s\n", name, r.Bindings[name])
	}
	for _, name := range sortedKeys(r.Multi) {
		fmt.Fprintf(f.Writer, "  ?%s in {%s}\n", name, strings.Join(r.Multi[name], ", "))
	}
	if r.Metrics != "" {
		fmt.Fprintln(f.Writer)
		fmt.Fprint(f.Writer, r.Metrics)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
