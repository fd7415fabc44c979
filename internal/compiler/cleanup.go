package compiler

import (
	"fmt"
	"math"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// DelayMeasures moves every measurement to the end of the circuit,
// preserving the relative order of measurements. The hardware measures
// once per qubit at the end of a shot, so a measured qubit must not be
// used afterwards; if it is, the pass fails.
type DelayMeasures struct{}

// Name implements Pass.
func (DelayMeasures) Name() string { return "DelayMeasures" }

// Apply implements Pass.
func (DelayMeasures) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	out := c.Clone()
	out.Commands = nil
	var measures []circuit.Command
	measured := make(map[circuit.Node]bool)
	changed := false

	for _, cmd := range c.Commands {
		if cmd.Op == circuit.Measure {
			measures = append(measures, cmd)
			measured[cmd.Qubits[0]] = true
			continue
		}
		for _, q := range cmd.Qubits {
			if measured[q] {
				return nil, false, fmt.Errorf("qubit %s is used after measurement and cannot be delayed", q.Name())
			}
		}
		if len(measures) > 0 {
			changed = true
		}
		out.Commands = append(out.Commands, cmd)
	}
	out.Commands = append(out.Commands, measures...)
	return out, changed, nil
}

const angleTol = 1e-11

// RemoveRedundancies performs local cleanups on a rebased circuit:
// adjacent PhasedX gates with equal phase are merged, rotations whose
// angle reduces to a multiple of two half-turns are dropped, and adjacent
// identical self-inverse two-qubit pairs cancel.
type RemoveRedundancies struct{}

// Name implements Pass.
func (RemoveRedundancies) Name() string { return "RemoveRedundancies" }

// Apply implements Pass.
func (RemoveRedundancies) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	out := c.Clone()
	out.Commands = nil
	changed := false

	// lastPX[q] is the index in out.Commands of a trailing PhasedX on q
	// with nothing after it on q.
	lastPX := make(map[circuit.Node]int)

	for _, cmd := range c.Commands {
		if cmd.Op == circuit.PhasedX {
			q := cmd.Qubits[0]
			angle := circuit.NormTurns(cmd.Params[0])
			if math.Abs(angle) < angleTol {
				changed = true
				continue
			}
			if i, ok := lastPX[q]; ok && sameAngle(out.Commands[i].Params[1], cmd.Params[1]) {
				merged := circuit.NormTurns(out.Commands[i].Params[0] + cmd.Params[0])
				changed = true
				if math.Abs(merged) < angleTol {
					out.Commands = append(out.Commands[:i], out.Commands[i+1:]...)
					reindex(lastPX, i)
					delete(lastPX, q)
				} else {
					out.Commands[i] = circuit.Command{
						Op:     circuit.PhasedX,
						Params: []float64{merged, out.Commands[i].Params[1]},
						Qubits: []circuit.Node{q},
					}
				}
				continue
			}
			lastPX[q] = len(out.Commands)
			out.Commands = append(out.Commands, cmd)
			continue
		}

		for _, q := range cmd.Qubits {
			delete(lastPX, q)
		}
		if cmd.Op == circuit.Barrier && len(cmd.Qubits) == 0 {
			lastPX = make(map[circuit.Node]int)
		}
		out.Commands = append(out.Commands, cmd)
	}

	next, pairChanged := cancelTwoQubitPairs(out)
	return next, changed || pairChanged, nil
}

// sameAngle compares half-turn values modulo the two-turn period.
func sameAngle(a, b float64) bool {
	return math.Abs(circuit.NormTurns(a-b)) < angleTol
}

// reindex shifts stale indices after a removal at position i.
func reindex(m map[circuit.Node]int, i int) {
	for q, idx := range m {
		if idx > i {
			m[q] = idx - 1
		}
	}
}

// SimplifyInitial exploits the fact that every qubit starts each shot in
// the |0> state. Leading gates that fix |0> up to phase are dropped;
// leading gates that take |0> to |1> are replaced by the fixed calibration
// circuit for X, a PhasedX(1, 0) with a global phase offset of 0.5.
type SimplifyInitial struct{}

// Name implements Pass.
func (SimplifyInitial) Name() string { return "SimplifyInitial" }

// Apply implements Pass.
func (SimplifyInitial) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	out := c.Clone()
	out.Commands = nil
	changed := false

	initial := make(map[circuit.Node]bool, c.NumQubits)
	for i := 0; i < c.NumQubits; i++ {
		initial[circuit.Node(i)] = true
	}

	for _, cmd := range c.Commands {
		u, err := commandMat(cmd)
		if err != nil || !initial[cmd.Qubits[0]] {
			for _, q := range cmd.Qubits {
				initial[q] = false
			}
			out.Commands = append(out.Commands, cmd)
			continue
		}

		q := cmd.Qubits[0]
		// Action on |0> is the first column of the unitary.
		switch {
		case cmplxAbs(u[1][0]) < matTol:
			// |0> -> |0> up to phase: the gate is invisible this early.
			changed = true
		case cmplxAbs(u[0][0]) < matTol:
			// |0> -> |1> up to phase: canonical X preparation.
			out.AddGate(circuit.PhasedX, []float64{1, 0}, q)
			out.AddPhase(0.5)
			initial[q] = false
			if cmd.Op != circuit.PhasedX || !sameAngle(cmd.Params[0], 1) || !sameAngle(cmd.Params[1], 0) {
				changed = true
			}
		default:
			initial[q] = false
			out.Commands = append(out.Commands, cmd)
		}
	}
	return out, changed, nil
}

func cmplxAbs(v complex128) float64 {
	return math.Hypot(real(v), imag(v))
}
