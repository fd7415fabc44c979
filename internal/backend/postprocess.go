package backend

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// FlipMask records which classical bits had their final value inverted by
// gates stripped from the submitted circuit. It is the serialized
// post-processing payload carried inside a job handle, so the correction
// can be replayed after a process restart.
type FlipMask struct {
	FlipBits []int `json:"flip_bits"`
}

// StripFlips removes trailing gates reducible to classical bit-flips from
// a circuit: runs of half-turn rotations sitting directly before a
// qubit's measurement. The returned mask holds, per measured bit, the net
// parity of the stripped flips. Applying the mask to raw outcomes
// restores the original circuit's semantics.
func StripFlips(c *circuit.Circuit) (*circuit.Circuit, *FlipMask) {
	// pending[q] indexes the current run of flip gates on q with nothing
	// else on q after them.
	pending := make(map[circuit.Node][]int)
	remove := make(map[int]bool)
	flipped := make(map[int]bool)

	for i, cmd := range c.Commands {
		switch {
		case isFlipGate(cmd):
			q := cmd.Qubits[0]
			pending[q] = append(pending[q], i)
		case cmd.Op == circuit.Measure:
			q := cmd.Qubits[0]
			run := pending[q]
			for _, idx := range run {
				remove[idx] = true
			}
			if len(run)%2 == 1 {
				flipped[int(cmd.Bits[0])] = true
			}
			delete(pending, q)
		default:
			for _, q := range cmd.Qubits {
				delete(pending, q)
			}
		}
	}

	out := c.Clone()
	out.Commands = nil
	for i, cmd := range c.Commands {
		if !remove[i] {
			out.Commands = append(out.Commands, cmd)
		}
	}

	mask := &FlipMask{FlipBits: []int{}}
	for b := range flipped {
		mask.FlipBits = append(mask.FlipBits, b)
	}
	sort.Ints(mask.FlipBits)
	return out, mask
}

// isFlipGate reports whether the command deterministically inverts its
// qubit in the measurement basis: a half-turn PhasedX of any phase, or a
// plain X.
func isFlipGate(cmd circuit.Command) bool {
	switch cmd.Op {
	case circuit.X:
		return true
	case circuit.PhasedX:
		return math.Abs(math.Abs(circuit.NormTurns(cmd.Params[0]))-1) < 1e-11
	}
	return false
}

// Apply replays the inverse of the stripped flips over a raw outcome
// table in place. Columns follow bitOrder; bits outside the order are
// ignored.
func (m *FlipMask) Apply(rows [][]int, bitOrder []circuit.Bit) {
	if m == nil || len(m.FlipBits) == 0 {
		return
	}
	flip := make(map[circuit.Bit]bool, len(m.FlipBits))
	for _, b := range m.FlipBits {
		flip[circuit.Bit(b)] = true
	}
	for col, b := range bitOrder {
		if !flip[b] {
			continue
		}
		for _, row := range rows {
			row[col] ^= 1
		}
	}
}

// Marshal serializes the mask for embedding in a job handle.
func (m *FlipMask) Marshal() (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode flip mask: %w", err)
	}
	return string(raw), nil
}

// ParseFlipMask deserializes a handle's post-processing payload. An empty
// payload means no post-processing was requested.
func ParseFlipMask(payload string) (*FlipMask, error) {
	if payload == "" {
		return nil, nil
	}
	var m FlipMask
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("decode flip mask: %w", err)
	}
	return &m, nil
}
