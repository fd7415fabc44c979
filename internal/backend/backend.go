package backend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CQCL/tket-iqm/internal/circuit"
	"github.com/CQCL/tket-iqm/internal/compiler"
)

// Backend is the plugin contract a circuit compiler drives: report device
// capabilities, compile circuits onto the device, submit them, and poll
// for outcomes.
type Backend interface {
	// Capabilities returns the predicates a circuit must satisfy before
	// submission. Compile establishes them for any input circuit.
	Capabilities() []compiler.Predicate

	// Compile runs the pass pipeline for an optimisation level in
	// {0, 1, 2} over the circuit.
	Compile(c *circuit.Circuit, level int) (*circuit.Circuit, error)

	// Submit queues the circuits for execution with the given shot count
	// and returns one handle per circuit, in submission order.
	Submit(ctx context.Context, circuits []*circuit.Circuit, shots int, opts SubmitOptions) ([]Handle, error)

	// Status polls the job once and returns its current state. The
	// transition to a terminal state is recorded so repeated calls do not
	// re-query the server.
	Status(ctx context.Context, h Handle) (Status, error)

	// Result returns the outcome table for a handle, blocking until the
	// job finishes or opts.Timeout elapses.
	Result(ctx context.Context, h Handle, opts ResultOptions) (*Result, error)
}

// Handle identifies one submitted circuit. It is the sole key for status
// and result lookups. Postprocess carries the serialized classical
// correction stripped from the circuit at submission, or is empty.
type Handle struct {
	RunID       uuid.UUID
	Postprocess string
}

// SubmitOptions selects per-submission behaviour. Postprocess and
// SimplifyInitial are independent switches.
type SubmitOptions struct {
	// Postprocess strips trailing classical bit-flips before submission
	// and replays them over the raw outcomes at retrieval.
	Postprocess bool

	// SimplifyInitial exploits the all-|0> initial state to drop or
	// canonicalise leading gates just before submission.
	SimplifyInitial bool
}

// DefaultResultTimeout bounds the blocking wait in Result when the
// caller does not choose one.
const DefaultResultTimeout = 900 * time.Second

// ResultOptions configures result retrieval.
type ResultOptions struct {
	// Timeout bounds the wait for an unfinished job. Zero means
	// DefaultResultTimeout.
	Timeout time.Duration
}

// StatusKind is the client-side view of a job's lifecycle.
type StatusKind string

const (
	// StatusSubmitted covers every pending server state.
	StatusSubmitted StatusKind = "SUBMITTED"

	// StatusCompleted means outcomes are parsed and cached.
	StatusCompleted StatusKind = "COMPLETED"

	// StatusError means the server reported a terminal failure.
	StatusError StatusKind = "ERROR"
)

// Status is a job state tagged with the vendor's message for failures.
type Status struct {
	Kind    StatusKind
	Message string
}

// Result is the outcome table of one completed circuit: Table[shot][col]
// is the 0/1 outcome of classical bit Bits[col] on that shot. Column
// order is the order of first appearance of each bit across the
// circuit's measurements.
type Result struct {
	Bits  []circuit.Bit
	Table [][]int
}

// Counts aggregates the shot table into readout frequencies. Keys are
// the rows rendered as "01"-style bit strings in column order, so the
// counts sum to the shot count.
func (r *Result) Counts() map[string]int {
	counts := make(map[string]int)
	key := make([]byte, len(r.Bits))
	for _, row := range r.Table {
		for i, v := range row {
			key[i] = '0' + byte(v)
		}
		counts[string(key)]++
	}
	return counts
}
