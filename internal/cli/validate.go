package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Circuits int    `json:"circuits,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <batch-file>",
		Short: "Validate a circuit batch file without submitting",
		Long: `Validate a YAML circuit batch file against the batch schema and
check every gate's operands, without contacting the server.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := formatterFor(opts, cmd)

	batch, err := LoadBatch(path)
	if err != nil {
		code := ErrCodeGeneric
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code = loadErr.Code
		}
		formatter.Fail(code, err)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %v", err))
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Circuits: len(batch.Circuits)})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d circuit(s) valid\n", len(batch.Circuits))
	return nil
}
