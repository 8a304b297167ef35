package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/aspectswrl/internal/compiler"
)

// ValidationResult is the payload of a successful validate.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	OntologyIRI string `json:"ontology_iri"`
	Changes     int    `json:"changes"`
	Aspects     int    `json:"aspects"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixture.cue>",
		Short: "Validate an ontology fixture without loading it",
		Long: `Compile a CUE ontology fixture and check declarations and references
without touching the database. All validation errors are reported, not just
the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("fixture not found: %s", path), nil)
	}

	ont, err := compiler.CompileFile(path)
	if err != nil {
		return failCompile(f, err)
	}
	f.VerboseLog("Compiled %s: %d change(s), %d aspect assertion(s)", path, len(ont.Changes), len(ont.Aspects))

	result := ValidationResult{
		Valid:       true,
		OntologyIRI: ont.IRI,
		Changes:     len(ont.Changes),
		Aspects:     len(ont.Aspects),
	}
	if f.Format == "json" {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "✓ %s is valid (%s, %d changes, %d aspect assertions)\n", path, ont.IRI, result.Changes, result.Aspects)
	return nil
}
