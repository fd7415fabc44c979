package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CQCL/tket-iqm/internal/backend"
	"github.com/CQCL/tket-iqm/internal/circuit"
	"github.com/CQCL/tket-iqm/internal/store"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	Level           int
	Shots           int
	Postprocess     bool
	SimplifyInitial bool
}

type submittedJob struct {
	RunID   string `json:"run_id"`
	Circuit string `json:"circuit"`
	Shots   int    `json:"shots"`
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{}

	cmd := &cobra.Command{
		Use:   "submit <batch-file>",
		Short: "Compile and submit a circuit batch, recording handles in the ledger",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Level, "level", "l", 2, "optimisation level (0-2)")
	cmd.Flags().IntVarP(&opts.Shots, "shots", "n", 0, "shot count (overrides the batch file)")
	cmd.Flags().BoolVar(&opts.Postprocess, "postprocess", false, "strip trailing bit-flips and correct outcomes classically")
	cmd.Flags().BoolVar(&opts.SimplifyInitial, "simplify-initial", false, "exploit the all-zero initial state before submission")
	return cmd
}

func runSubmit(rootOpts *RootOptions, opts *SubmitOptions, path string, cmd *cobra.Command) error {
	formatter := formatterFor(rootOpts, cmd)
	ctx := cmd.Context()

	batch, err := LoadBatch(path)
	if err != nil {
		formatter.Fail(loadErrorCode(err), err)
		return WrapExitError(ExitCommandError, "load batch", err)
	}

	shots := opts.Shots
	if shots == 0 {
		shots = batch.Shots
	}
	if shots <= 0 {
		msg := "no shot count: set --shots or a shots field in the batch file"
		_ = formatter.Error(ErrCodeGeneric, msg)
		return NewExitError(ExitCommandError, msg)
	}

	b, err := connect(ctx, rootOpts)
	if err != nil {
		formatter.Fail(ErrCodeRemote, err)
		return WrapExitError(GetExitCode(err), "connect", err)
	}

	ledger, err := store.Open(rootOpts.Ledger)
	if err != nil {
		formatter.Fail(ErrCodeGeneric, err)
		return WrapExitError(ExitCommandError, "open ledger", err)
	}
	defer ledger.Close()

	var jobs []submittedJob
	for _, c := range batch.Circuits {
		compiled, err := b.Compile(c, opts.Level)
		if err != nil {
			formatter.Fail(ErrCodeGeneric, err)
			return WrapExitError(ExitFailure, fmt.Sprintf("compile %s", c.Name), err)
		}

		handles, err := b.Submit(ctx, []*circuit.Circuit{compiled}, shots, backend.SubmitOptions{
			Postprocess:     opts.Postprocess,
			SimplifyInitial: opts.SimplifyInitial,
		})
		if err != nil {
			formatter.Fail(ErrCodeRemote, err)
			return WrapExitError(ExitFailure, fmt.Sprintf("submit %s", c.Name), err)
		}
		h := handles[0]

		if err := ledger.RecordJob(ctx, &store.Job{
			RunID:       h.RunID,
			Device:      rootOpts.Device,
			CircuitName: c.Name,
			Shots:       shots,
			Bits:        compiled.BitOrder(),
			Postprocess: h.Postprocess,
		}); err != nil {
			formatter.Fail(ErrCodeGeneric, err)
			return WrapExitError(ExitCommandError, "record handle", err)
		}

		formatter.VerboseLog("submitted %s as %s", c.Name, h.RunID)
		jobs = append(jobs, submittedJob{RunID: h.RunID.String(), Circuit: c.Name, Shots: shots})
	}

	if formatter.Format == "json" {
		return formatter.Success(jobs)
	}
	for _, j := range jobs {
		fmt.Fprintf(formatter.Writer, "%s  %s  (%d shots)\n", j.RunID, j.Circuit, j.Shots)
	}
	return nil
}
