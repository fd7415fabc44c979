package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/CQCL/tket-iqm/internal/backend"
	"github.com/CQCL/tket-iqm/internal/store"
)

// ResultOptions holds flags for the result command.
type ResultOptions struct {
	Timeout time.Duration
}

type jobResult struct {
	RunID   string         `json:"run_id"`
	Circuit string         `json:"circuit"`
	Shots   int            `json:"shots"`
	Bits    []string       `json:"bits"`
	Table   [][]int        `json:"table"`
	Counts  map[string]int `json:"counts"`
}

// NewResultCommand creates the result command.
func NewResultCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResultOptions{}

	cmd := &cobra.Command{
		Use:   "result <run-id>",
		Short: "Fetch the outcome table of a submitted job, waiting if necessary",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResult(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", backend.DefaultResultTimeout, "how long to wait for an unfinished job")
	return cmd
}

func runResult(rootOpts *RootOptions, opts *ResultOptions, rawID string, cmd *cobra.Command) error {
	formatter := formatterFor(rootOpts, cmd)
	ctx := cmd.Context()

	job, ledger, err := lookupJob(ctx, rootOpts, rawID)
	if err != nil {
		formatter.Fail(ErrCodeNotFound, err)
		return WrapExitError(ExitCommandError, "look up job", err)
	}
	defer ledger.Close()

	table, err := fetchOutcomes(ctx, rootOpts, ledger, job, opts.Timeout)
	if err != nil {
		formatter.Fail(ErrCodeRemote, err)
		return WrapExitError(ExitFailure, "fetch result", err)
	}

	out := jobResult{
		RunID:   job.RunID.String(),
		Circuit: job.CircuitName,
		Shots:   job.Shots,
		Table:   table,
		Counts:  (&backend.Result{Bits: job.Bits, Table: table}).Counts(),
	}
	for _, b := range job.Bits {
		out.Bits = append(out.Bits, b.String())
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	fmt.Fprintf(formatter.Writer, "%s  %s  (%d shots)\n", out.RunID, out.Circuit, out.Shots)
	fmt.Fprintf(formatter.Writer, "bits: %v\n", out.Bits)
	for _, row := range table {
		fmt.Fprintf(formatter.Writer, "  %v\n", row)
	}
	fmt.Fprintln(formatter.Writer, "counts:")
	keys := make([]string, 0, len(out.Counts))
	for k := range out.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(formatter.Writer, "  %s: %d\n", k, out.Counts[k])
	}
	return nil
}

// fetchOutcomes returns the ledger's recorded table, or waits for the
// job and records what arrives.
func fetchOutcomes(ctx context.Context, rootOpts *RootOptions, ledger *store.Store, job *store.Job, timeout time.Duration) ([][]int, error) {
	rec, err := ledger.Result(ctx, job.RunID)
	switch {
	case err == nil && rec.Status == string(backend.StatusCompleted):
		return rec.Table, nil
	case err == nil && rec.Status == string(backend.StatusError):
		return nil, fmt.Errorf("job failed: %s", rec.Message)
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	c, err := client(rootOpts)
	if err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := c.WaitForResults(waitCtx, job.RunID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("no result within %s", timeout)
		}
		return nil, err
	}

	if backend.ClassifyStatus(res.Status) == backend.StatusError {
		if err := ledger.RecordResult(ctx, &store.ResultRecord{
			RunID:   job.RunID,
			Status:  string(backend.StatusError),
			Message: res.Message,
		}); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("job failed: %s", res.Message)
	}

	result, err := backend.ParseOutcomes(res, job.Bits, job.Shots, job.Postprocess)
	if err != nil {
		return nil, err
	}
	if err := ledger.RecordResult(ctx, &store.ResultRecord{
		RunID:  job.RunID,
		Status: string(backend.StatusCompleted),
		Table:  result.Table,
	}); err != nil {
		return nil, err
	}
	return result.Table, nil
}
