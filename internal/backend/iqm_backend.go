package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/CQCL/tket-iqm/internal/circuit"
	"github.com/CQCL/tket-iqm/internal/compiler"
	"github.com/CQCL/tket-iqm/internal/iqm"
)

// nativeInstructions is the operation family this adapter models. A
// device exposing anything else (notably the resonator "move" family) is
// rejected at construction.
var nativeInstructions = map[string]bool{
	instrPhasedRX:    true,
	instrCZ:          true,
	instrMeasurement: true,
	instrBarrier:     true,
}

// DeviceInfo is the immutable identity of the device an adapter targets.
type DeviceInfo struct {
	Device string
	Qubits []circuit.Node
	Edges  [][2]circuit.Node
}

// IQMBackend adapts a remote IQM device to the Backend contract. One
// instance serves one logical owner sequentially; the result cache has no
// concurrent-writer protocol.
type IQMBackend struct {
	client iqm.Client
	info   DeviceInfo
	arch   *compiler.Architecture
	log    *slog.Logger
	cache  map[Handle]*cacheEntry
}

type cacheEntry struct {
	status   Status
	result   *Result
	metadata *iqm.RunMetadata
	bits     []circuit.Bit
	shots    int
}

// NewOption configures an IQMBackend.
type NewOption func(*IQMBackend)

// WithLogger sets the adapter logger.
func WithLogger(log *slog.Logger) NewOption {
	return func(b *IQMBackend) { b.log = log }
}

// New queries the device's architecture over client and builds an
// adapter for it. It fails with an unsupported-device error if the
// device exposes an operation family this adapter does not model, and
// with an invalid-topology error if the reported connectivity references
// a qubit outside the device's qubit list.
func New(ctx context.Context, client iqm.Client, device string, opts ...NewOption) (*IQMBackend, error) {
	b := &IQMBackend{
		client: client,
		log:    slog.Default(),
		cache:  make(map[Handle]*cacheEntry),
	}
	for _, opt := range opts {
		opt(b)
	}

	qa, err := client.Architecture(ctx)
	if err != nil {
		return nil, fmt.Errorf("query device %s: %w", device, err)
	}

	for _, op := range qa.Operations {
		if !nativeInstructions[op] {
			return nil, &Error{
				Code:    ErrCodeUnsupportedDevice,
				Message: fmt.Sprintf("device operation %q is not modeled by this backend", op),
				Device:  device,
			}
		}
	}

	nodes := make([]circuit.Node, len(qa.Qubits))
	for i, name := range qa.Qubits {
		n, err := circuit.ParseNodeName(name)
		if err != nil {
			return nil, &Error{
				Code:    ErrCodeUnsupportedDevice,
				Message: err.Error(),
				Device:  device,
			}
		}
		nodes[i] = n
	}
	edges := make([][2]circuit.Node, len(qa.QubitConnectivity))
	for i, e := range qa.QubitConnectivity {
		for j, name := range e {
			n, err := circuit.ParseNodeName(name)
			if err != nil {
				return nil, &Error{
					Code:    ErrCodeInvalidTopology,
					Message: err.Error(),
					Device:  device,
				}
			}
			edges[i][j] = n
		}
	}

	arch, err := compiler.NewArchitecture(nodes, edges)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeInvalidTopology,
			Message: err.Error(),
			Device:  device,
		}
	}

	b.arch = arch
	b.info = DeviceInfo{Device: device, Qubits: arch.Nodes(), Edges: arch.Edges()}
	b.log.Debug("device adapter ready", "device", device, "qubits", len(nodes), "edges", len(edges))
	return b, nil
}

// Device returns the adapter's device identity.
func (b *IQMBackend) Device() DeviceInfo { return b.info }

// Architecture returns the device connectivity graph.
func (b *IQMBackend) Architecture() *compiler.Architecture { return b.arch }

// Capabilities implements Backend.
func (b *IQMBackend) Capabilities() []compiler.Predicate {
	return []compiler.Predicate{
		compiler.GateSetPredicate{Ops: map[circuit.OpType]bool{
			circuit.PhasedX: true,
			circuit.CZ:      true,
			circuit.Measure: true,
			circuit.Barrier: true,
		}},
		compiler.ConnectivityPredicate{Arch: b.arch},
		compiler.NoClassicalControlPredicate{},
		compiler.NoMidMeasurePredicate{},
		compiler.MaxTwoQubitGatesPredicate{},
	}
}

// Compile implements Backend.
func (b *IQMBackend) Compile(c *circuit.Circuit, level int) (*circuit.Circuit, error) {
	seq, err := compiler.DefaultSequence(b.arch, level)
	if err != nil {
		return nil, err
	}
	out, _, err := seq.Apply(c)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", c.Name, err)
	}
	return out, nil
}

// Submit implements Backend. Each circuit is queued as its own job, so
// two submissions of the same circuit always yield distinct handles.
func (b *IQMBackend) Submit(ctx context.Context, circuits []*circuit.Circuit, shots int, opts SubmitOptions) ([]Handle, error) {
	handles := make([]Handle, 0, len(circuits))
	for _, c := range circuits {
		h, err := b.submitOne(ctx, c, shots, opts)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

func (b *IQMBackend) submitOne(ctx context.Context, c *circuit.Circuit, shots int, opts SubmitOptions) (Handle, error) {
	payload := ""
	if opts.Postprocess {
		stripped, mask := StripFlips(c)
		c = stripped
		var err error
		payload, err = mask.Marshal()
		if err != nil {
			return Handle{}, err
		}
	}
	if opts.SimplifyInitial {
		simplified, _, err := compiler.SimplifyInitial{}.Apply(c)
		if err != nil {
			return Handle{}, fmt.Errorf("simplify %s: %w", c.Name, err)
		}
		c = simplified
	}

	instrs, err := Translate(c)
	if err != nil {
		return Handle{}, fmt.Errorf("translate %s: %w", c.Name, err)
	}

	// The instruction list already names physical qubits, so the wire
	// mapping is the identity over the circuit's register.
	mapping := make([]iqm.QubitMapping, 0, c.NumQubits)
	for _, q := range c.Qubits() {
		mapping = append(mapping, iqm.QubitMapping{
			LogicalName:  q.Name(),
			PhysicalName: q.Name(),
		})
	}

	req := &iqm.RunRequest{
		Circuits:     []iqm.Circuit{{Name: c.Name, Instructions: instrs}},
		Shots:        shots,
		QubitMapping: mapping,
	}
	id, err := b.client.Submit(ctx, req)
	if err != nil {
		return Handle{}, fmt.Errorf("submit %s: %w", c.Name, err)
	}

	h := Handle{RunID: id, Postprocess: payload}
	b.cache[h] = &cacheEntry{
		status: Status{Kind: StatusSubmitted},
		bits:   c.BitOrder(),
		shots:  shots,
	}
	b.log.Debug("circuit submitted", "run", id, "name", c.Name, "shots", shots)
	return h, nil
}

// Status implements Backend.
func (b *IQMBackend) Status(ctx context.Context, h Handle) (Status, error) {
	entry, ok := b.cache[h]
	if !ok {
		return Status{}, b.notRun(h)
	}
	if entry.status.Kind != StatusSubmitted {
		return entry.status, nil
	}

	res, err := b.client.Run(ctx, h.RunID)
	if err != nil {
		return Status{}, fmt.Errorf("poll run %s: %w", h.RunID, err)
	}
	return b.absorb(h, entry, res)
}

// Result implements Backend.
func (b *IQMBackend) Result(ctx context.Context, h Handle, opts ResultOptions) (*Result, error) {
	entry, ok := b.cache[h]
	if !ok {
		return nil, b.notRun(h)
	}

	if entry.status.Kind == StatusSubmitted {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultResultTimeout
		}
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		res, err := b.client.WaitForResults(waitCtx, h.RunID)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &Error{
					Code:    ErrCodeTimeout,
					Message: fmt.Sprintf("no result within %s", timeout),
					RunID:   h.RunID,
				}
			}
			return nil, fmt.Errorf("wait for run %s: %w", h.RunID, err)
		}
		if _, err := b.absorb(h, entry, res); err != nil {
			return nil, err
		}
	}

	if entry.status.Kind == StatusError {
		return nil, &Error{
			Code:    ErrCodeJobFailed,
			Message: entry.status.Message,
			RunID:   h.RunID,
		}
	}
	return entry.result, nil
}

// Metadata returns the execution metadata the server recorded for a
// submitted job: the calibration set it ran against and the request as
// received. Available in every job state, not just terminal ones.
func (b *IQMBackend) Metadata(ctx context.Context, h Handle) (*iqm.RunMetadata, error) {
	entry, ok := b.cache[h]
	if !ok {
		return nil, b.notRun(h)
	}
	if entry.metadata != nil {
		return entry.metadata, nil
	}

	res, err := b.client.Run(ctx, h.RunID)
	if err != nil {
		return nil, fmt.Errorf("poll run %s: %w", h.RunID, err)
	}
	if _, err := b.absorb(h, entry, res); err != nil {
		return nil, err
	}
	if entry.metadata == nil {
		return nil, fmt.Errorf("run %s reported no metadata", h.RunID)
	}
	return entry.metadata, nil
}

// absorb applies one server status observation to a cache entry and
// returns the resulting client-side state.
func (b *IQMBackend) absorb(h Handle, entry *cacheEntry, res *iqm.RunResult) (Status, error) {
	if res.Metadata != nil {
		entry.metadata = res.Metadata
	}
	switch ClassifyStatus(res.Status) {
	case StatusCompleted:
		result, err := ParseOutcomes(res, entry.bits, entry.shots, h.Postprocess)
		if err != nil {
			return Status{}, fmt.Errorf("run %s: %w", h.RunID, err)
		}
		entry.result = result
		entry.status = Status{Kind: StatusCompleted}
	case StatusError:
		entry.status = Status{Kind: StatusError, Message: res.Message}
	default:
		entry.status = Status{Kind: StatusSubmitted}
	}
	return entry.status, nil
}

// ClassifyStatus maps a server job status to the client-side state.
func ClassifyStatus(status string) StatusKind {
	switch status {
	case iqm.StatusReady:
		return StatusCompleted
	case iqm.StatusFailed, iqm.StatusAborted:
		return StatusError
	default:
		return StatusSubmitted
	}
}

// ParseOutcomes shapes a ready run's raw per-key shot lists into the
// fixed-width outcome table and replays the stripped classical
// correction carried in postprocess over it. Column order follows bits.
func ParseOutcomes(res *iqm.RunResult, bits []circuit.Bit, shots int, postprocess string) (*Result, error) {
	if len(res.Measurements) != 1 {
		return nil, fmt.Errorf("expected measurements for 1 circuit, got %d", len(res.Measurements))
	}
	meas := res.Measurements[0]

	table := make([][]int, shots)
	for i := range table {
		table[i] = make([]int, len(bits))
	}
	for col, bit := range bits {
		shotList, ok := meas[bit.String()]
		if !ok {
			return nil, fmt.Errorf("no measurements for %s", bit)
		}
		if len(shotList) != shots {
			return nil, fmt.Errorf("%s has %d shots, expected %d", bit, len(shotList), shots)
		}
		for row, outcome := range shotList {
			if len(outcome) != 1 {
				return nil, fmt.Errorf("%s shot %d has %d entries", bit, row, len(outcome))
			}
			table[row][col] = outcome[0]
		}
	}

	mask, err := ParseFlipMask(postprocess)
	if err != nil {
		return nil, err
	}
	mask.Apply(table, bits)
	return &Result{Bits: bits, Table: table}, nil
}

func (b *IQMBackend) notRun(h Handle) error {
	return &Error{
		Code:    ErrCodeNotRun,
		Message: "handle was not produced by a submission on this backend",
		RunID:   h.RunID,
	}
}
