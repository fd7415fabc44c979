package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/CQCL/tket-iqm/internal/backend"
	"github.com/CQCL/tket-iqm/internal/store"
)

type jobStatus struct {
	RunID   string `json:"run_id"`
	Circuit string `json:"circuit"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-id>",
		Short: "Poll the status of a submitted job",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, args[0], cmd)
		},
	}
}

func runStatus(rootOpts *RootOptions, rawID string, cmd *cobra.Command) error {
	formatter := formatterFor(rootOpts, cmd)
	ctx := cmd.Context()

	job, ledger, err := lookupJob(ctx, rootOpts, rawID)
	if err != nil {
		formatter.Fail(ErrCodeNotFound, err)
		return WrapExitError(ExitCommandError, "look up job", err)
	}
	defer ledger.Close()

	status, err := pollStatus(ctx, rootOpts, ledger, job)
	if err != nil {
		formatter.Fail(ErrCodeRemote, err)
		return WrapExitError(ExitFailure, "poll status", err)
	}

	out := jobStatus{
		RunID:   job.RunID.String(),
		Circuit: job.CircuitName,
		Status:  string(status.Kind),
		Message: status.Message,
	}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	if out.Message != "" {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s: %s\n", out.RunID, out.Circuit, out.Status, out.Message)
	} else {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s\n", out.RunID, out.Circuit, out.Status)
	}
	return nil
}

// lookupJob parses a run ID and fetches its ledger row.
func lookupJob(ctx context.Context, rootOpts *RootOptions, rawID string) (*store.Job, *store.Store, error) {
	runID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid run id %q: %w", rawID, err)
	}
	ledger, err := store.Open(rootOpts.Ledger)
	if err != nil {
		return nil, nil, err
	}
	job, err := ledger.Job(ctx, runID)
	if err != nil {
		ledger.Close()
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("run %s is not in the ledger", runID)
		}
		return nil, nil, err
	}
	return job, ledger, nil
}

// pollStatus answers from the ledger's recorded terminal result when one
// exists, otherwise queries the server once.
func pollStatus(ctx context.Context, rootOpts *RootOptions, ledger *store.Store, job *store.Job) (backend.Status, error) {
	if rec, err := ledger.Result(ctx, job.RunID); err == nil {
		return backend.Status{Kind: backend.StatusKind(rec.Status), Message: rec.Message}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return backend.Status{}, err
	}

	c, err := client(rootOpts)
	if err != nil {
		return backend.Status{}, err
	}
	res, err := c.Run(ctx, job.RunID)
	if err != nil {
		return backend.Status{}, err
	}

	kind := backend.ClassifyStatus(res.Status)
	status := backend.Status{Kind: kind, Message: res.Message}
	if kind == backend.StatusError {
		if err := ledger.RecordResult(ctx, &store.ResultRecord{
			RunID:   job.RunID,
			Status:  string(kind),
			Message: res.Message,
		}); err != nil {
			return backend.Status{}, err
		}
	}
	return status, nil
}
