package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/aspectswrl/internal/compiler"
	"github.com/roach88/aspectswrl/internal/store"
)

// LoadResult is the payload of a successful load.
type LoadResult struct {
	OntologyIRI string `json:"ontology_iri"`
	Database    string `json:"database"`
	Changes     int    `json:"changes"`
	Aspects     int    `json:"aspects"`
	Axioms      int    `json:"axioms"` // total after loading
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <fixture.cue>",
		Short: "Compile a CUE ontology fixture into the database",
		Long: `Compile a CUE ontology fixture and add its axioms and aspect
memberships to the SQLite database. Loading is idempotent: axioms already
present are skipped.

The database records the fixture's ontology IRI on first load; later loads
must use the same IRI.

Example:
  aspectswrl load family.cue --db family.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runLoad(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.resolveConfig()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	logger := opts.logger(cmd, cfg)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("fixture not found: %s", path), nil)
	}

	ont, err := compiler.CompileFile(path)
	if err != nil {
		return failCompile(f, err)
	}
	if cfg.OntologyIRI != "" && cfg.OntologyIRI != ont.IRI {
		return f.Fail(ExitFailure, ErrCodeInvalid,
			fmt.Sprintf("fixture IRI %s does not match configured IRI %s", ont.IRI, cfg.OntologyIRI), nil)
	}

	st, err := store.Open(cfg.Database, ont.IRI)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := ont.Load(ctx, st, st); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	total, err := st.CountAxioms(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	logger.Info("fixture loaded", "fixture", path, "database", cfg.Database, "changes", len(ont.Changes), "aspects", len(ont.Aspects))

	result := LoadResult{
		OntologyIRI: ont.IRI,
		Database:    cfg.Database,
		Changes:     len(ont.Changes),
		Aspects:     len(ont.Aspects),
		Axioms:      total,
	}
	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Loaded %s into %s\n", path, cfg.Database)
	fmt.Fprintf(f.Writer, "  Ontology: %s\n", result.OntologyIRI)
	fmt.Fprintf(f.Writer, "  Changes: %d, aspect assertions: %d, axioms in store: %d\n", result.Changes, result.Aspects, result.Axioms)
	return nil
}

// failCompile reports a fixture compile or validation error.
func failCompile(f *OutputFormatter, err error) error {
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) {
		if f.Format != "json" {
			fmt.Fprintf(f.Writer, "✗ Fixture validation failed with %d error(s):\n", len(verrs))
			for _, e := range verrs {
				fmt.Fprintf(f.Writer, "  %s\n", e.Error())
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(verrs)))
		}
		return f.Fail(ExitFailure, ErrCodeInvalid, fmt.Sprintf("%d validation error(s)", len(verrs)), []compiler.ValidationError(verrs))
	}

	var cerr *compiler.CompileError
	if errors.As(err, &cerr) {
		details := map[string]any{"field": cerr.Field}
		if cerr.Pos.IsValid() {
			details["line"] = cerr.Pos.Line()
			details["column"] = cerr.Pos.Column()
		}
		return f.Fail(ExitFailure, ErrCodeCompileFailed, cerr.Error(), details)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
