package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CQCL/tket-iqm/internal/circuit"
	"github.com/CQCL/tket-iqm/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	Level      int
	ShowPasses bool
}

type compileResult struct {
	Level    int              `json:"level"`
	Passes   []string         `json:"passes,omitempty"`
	Circuits []circuitSummary `json:"circuits"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <batch-file>",
		Short: "Compile a circuit batch to the device's native gate set",
		Long: `Compile every circuit in a batch file for the target device: decompose,
optimise at the chosen level, route onto the device connectivity, and
rebase into the native gate set.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Level, "level", "l", 2, "optimisation level (0-2)")
	cmd.Flags().BoolVar(&opts.ShowPasses, "passes", false, "list the pass sequence")
	return cmd
}

func runCompile(rootOpts *RootOptions, opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := formatterFor(rootOpts, cmd)

	batch, err := LoadBatch(path)
	if err != nil {
		formatter.Fail(loadErrorCode(err), err)
		return WrapExitError(ExitCommandError, "load batch", err)
	}

	b, err := connect(cmd.Context(), rootOpts)
	if err != nil {
		formatter.Fail(ErrCodeRemote, err)
		return WrapExitError(GetExitCode(err), "connect", err)
	}

	result := compileResult{Level: opts.Level}
	if opts.ShowPasses {
		seq, err := compiler.DefaultSequence(b.Architecture(), opts.Level)
		if err != nil {
			formatter.Fail(ErrCodeGeneric, err)
			return WrapExitError(ExitCommandError, "build pipeline", err)
		}
		result.Passes = seq.PassNames()
	}

	compiled := make([]*circuit.Circuit, 0, len(batch.Circuits))
	for _, c := range batch.Circuits {
		formatter.VerboseLog("compiling %s at level %d", c.Name, opts.Level)
		out, err := b.Compile(c, opts.Level)
		if err != nil {
			formatter.Fail(ErrCodeGeneric, err)
			return WrapExitError(ExitFailure, fmt.Sprintf("compile %s", c.Name), err)
		}
		compiled = append(compiled, out)
		result.Circuits = append(result.Circuits, summarizeCircuit(out))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if opts.ShowPasses {
		fmt.Fprintf(formatter.Writer, "passes: %v\n", result.Passes)
	}
	for _, c := range compiled {
		renderCircuitText(formatter.Writer, c)
	}
	return nil
}

func loadErrorCode(err error) string {
	if loadErr, ok := err.(*LoadError); ok {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
