package compiler

import (
	"fmt"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// DecomposeComposites rewrites the accepted composite gate set into
// {TK1, CX, PhasedX, CZ, Measure, Barrier}. Fixed-gate identities are used
// where they exist so the pass stays exact including global phase.
type DecomposeComposites struct{}

// Name implements Pass.
func (DecomposeComposites) Name() string { return "DecomposeComposites" }

// Apply implements Pass.
func (DecomposeComposites) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	out := c.Clone()
	out.Commands = nil
	changed := false

	for _, cmd := range c.Commands {
		switch cmd.Op {
		case circuit.PhasedX, circuit.CZ, circuit.CX, circuit.TK1, circuit.Measure, circuit.Barrier:
			out.Commands = append(out.Commands, cmd)

		case circuit.H:
			out.AddGate(circuit.TK1, []float64{0.5, 0.5, 0.5}, cmd.Qubits[0])
			out.AddPhase(0.5)
			changed = true
		case circuit.X:
			out.AddGate(circuit.PhasedX, []float64{1, 0}, cmd.Qubits[0])
			out.AddPhase(0.5)
			changed = true
		case circuit.Y:
			out.AddGate(circuit.PhasedX, []float64{1, 0.5}, cmd.Qubits[0])
			out.AddPhase(0.5)
			changed = true
		case circuit.Z:
			out.AddGate(circuit.TK1, []float64{1, 0, 0}, cmd.Qubits[0])
			out.AddPhase(0.5)
			changed = true
		case circuit.S:
			out.AddGate(circuit.TK1, []float64{0.5, 0, 0}, cmd.Qubits[0])
			out.AddPhase(0.25)
			changed = true
		case circuit.Sdg:
			out.AddGate(circuit.TK1, []float64{-0.5, 0, 0}, cmd.Qubits[0])
			out.AddPhase(-0.25)
			changed = true
		case circuit.T:
			out.AddGate(circuit.TK1, []float64{0.25, 0, 0}, cmd.Qubits[0])
			out.AddPhase(0.125)
			changed = true
		case circuit.Rx:
			out.AddGate(circuit.TK1, []float64{0, cmd.Params[0], 0}, cmd.Qubits[0])
			changed = true
		case circuit.Ry:
			out.AddGate(circuit.TK1, []float64{0.5, cmd.Params[0], -0.5}, cmd.Qubits[0])
			changed = true
		case circuit.Rz:
			out.AddGate(circuit.TK1, []float64{0, 0, cmd.Params[0]}, cmd.Qubits[0])
			changed = true

		case circuit.SWAP:
			a, b := cmd.Qubits[0], cmd.Qubits[1]
			out.AddGate(circuit.CX, nil, a, b)
			out.AddGate(circuit.CX, nil, b, a)
			out.AddGate(circuit.CX, nil, a, b)
			changed = true

		default:
			return nil, false, fmt.Errorf("cannot decompose operation %s", cmd.Op)
		}
	}
	return out, changed, nil
}

// FlattenRegisters compacts the qubit register so that exactly the nodes
// referenced by commands remain, renumbered contiguously from 0 in
// ascending order. Classical bits are untouched.
type FlattenRegisters struct{}

// Name implements Pass.
func (FlattenRegisters) Name() string { return "FlattenRegisters" }

// Apply implements Pass.
func (FlattenRegisters) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	used := make(map[circuit.Node]bool)
	for _, cmd := range c.Commands {
		for _, q := range cmd.Qubits {
			used[q] = true
		}
	}

	remap := make(map[circuit.Node]circuit.Node, len(used))
	next := circuit.Node(0)
	for q := circuit.Node(0); int(q) < c.NumQubits; q++ {
		if used[q] {
			remap[q] = next
			next++
		}
	}
	if len(remap) == c.NumQubits {
		return c, false, nil
	}

	out := c.Clone()
	out.NumQubits = len(remap)
	for i, cmd := range out.Commands {
		qs := make([]circuit.Node, len(cmd.Qubits))
		for j, q := range cmd.Qubits {
			qs[j] = remap[q]
		}
		out.Commands[i].Qubits = qs
	}
	return out, true, nil
}
