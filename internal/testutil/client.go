// Package testutil provides a scripted in-memory stand-in for the remote
// quantum service, used by backend and CLI tests.
package testutil

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/CQCL/tket-iqm/internal/iqm"
)

// FakeClient implements iqm.Client over scripted responses. Configure
// the architecture and per-job result scripts up front; every submission
// is recorded for inspection.
type FakeClient struct {
	// Arch is returned by Architecture. Defaults to LineArchitecture(3)
	// when nil.
	Arch *iqm.QuantumArchitecture

	// NextIDs are consumed in order by Submit; when exhausted, fresh
	// random IDs are issued.
	NextIDs []uuid.UUID

	// Script maps a job ID to the sequence of results successive polls
	// observe. The last entry repeats once the script runs out. Jobs
	// without a script report ready with empty measurements.
	Script map[uuid.UUID][]*iqm.RunResult

	// DefaultResult, when set, is reported for submitted jobs that have
	// no script entry.
	DefaultResult *iqm.RunResult

	// ArchErr and SubmitErr force the corresponding calls to fail.
	ArchErr   error
	SubmitErr error

	// Submitted records every run request in order.
	Submitted []*iqm.RunRequest

	polls map[uuid.UUID]int
	known map[uuid.UUID]bool
}

var _ iqm.Client = (*FakeClient)(nil)

// LineArchitecture describes an n-qubit device connected in a chain with
// the standard native operation set.
func LineArchitecture(n int) *iqm.QuantumArchitecture {
	arch := &iqm.QuantumArchitecture{
		Name:       "fake",
		Operations: []string{"phased_rx", "cz", "measurement", "barrier"},
	}
	for i := 1; i <= n; i++ {
		arch.Qubits = append(arch.Qubits, fmt.Sprintf("QB%d", i))
		if i > 1 {
			arch.QubitConnectivity = append(arch.QubitConnectivity,
				[2]string{fmt.Sprintf("QB%d", i-1), fmt.Sprintf("QB%d", i)})
		}
	}
	return arch
}

// Architecture implements iqm.Client.
func (f *FakeClient) Architecture(ctx context.Context) (*iqm.QuantumArchitecture, error) {
	if f.ArchErr != nil {
		return nil, f.ArchErr
	}
	if f.Arch == nil {
		return LineArchitecture(3), nil
	}
	return f.Arch, nil
}

// Submit implements iqm.Client.
func (f *FakeClient) Submit(ctx context.Context, req *iqm.RunRequest) (uuid.UUID, error) {
	if f.SubmitErr != nil {
		return uuid.Nil, f.SubmitErr
	}
	f.Submitted = append(f.Submitted, req)

	var id uuid.UUID
	if len(f.NextIDs) > 0 {
		id = f.NextIDs[0]
		f.NextIDs = f.NextIDs[1:]
	} else {
		id = uuid.New()
	}
	if f.known == nil {
		f.known = make(map[uuid.UUID]bool)
	}
	f.known[id] = true
	return id, nil
}

// Run implements iqm.Client.
func (f *FakeClient) Run(ctx context.Context, id uuid.UUID) (*iqm.RunResult, error) {
	if !f.known[id] {
		if _, scripted := f.Script[id]; !scripted {
			return nil, &iqm.APIError{StatusCode: 404, Message: "no such job"}
		}
	}

	script := f.Script[id]
	if len(script) == 0 {
		if f.DefaultResult != nil {
			return f.DefaultResult, nil
		}
		return &iqm.RunResult{Status: iqm.StatusReady, Measurements: []iqm.Measurements{{}}}, nil
	}

	if f.polls == nil {
		f.polls = make(map[uuid.UUID]int)
	}
	i := f.polls[id]
	if i >= len(script) {
		i = len(script) - 1
	}
	f.polls[id]++
	return script[i], nil
}

// WaitForResults implements iqm.Client.
func (f *FakeClient) WaitForResults(ctx context.Context, id uuid.UUID) (*iqm.RunResult, error) {
	for {
		res, err := f.Run(ctx, id)
		if err != nil {
			return nil, err
		}
		if iqm.StatusTerminal(res.Status) {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}
}

// ReadyResult builds a ready run result with one shot table per
// measurement key.
func ReadyResult(meas iqm.Measurements) *iqm.RunResult {
	return &iqm.RunResult{Status: iqm.StatusReady, Measurements: []iqm.Measurements{meas}}
}

// AllZeroResult builds a ready result reporting shots all-zero rows for
// the given measurement keys.
func AllZeroResult(shots int, keys ...string) *iqm.RunResult {
	meas := make(iqm.Measurements, len(keys))
	for _, key := range keys {
		rows := make([][]int, shots)
		for i := range rows {
			rows[i] = []int{0}
		}
		meas[key] = rows
	}
	return ReadyResult(meas)
}
