package compiler

import (
	"fmt"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// RebaseIQM rewrites every gate into the IQM native set {PhasedX, CZ}
// (measurements and barriers pass through).
//
// Two fixed substitution templates do all the work:
//
//   - CX(control, target) becomes
//     PhasedX(-0.5, 0.5) target; CZ control target; PhasedX(0.5, 0.5) target
//     an exact circuit identity with no free parameters.
//
//   - TK1(a, b, c) becomes
//     PhasedX(-1, (a-c)/2) then PhasedX(1+b, a)
//     a closed form reproducing the source unitary for all real a, b, c.
//
// Any other single-qubit unitary is first converted to TK1 via its Euler
// angles; SWAP goes through three CX. Unknown operations are a contract
// violation: upstream passes guarantee the incoming gate set.
type RebaseIQM struct{}

// Name implements Pass.
func (RebaseIQM) Name() string { return "RebaseIQM" }

// Apply implements Pass.
func (r RebaseIQM) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	out := c.Clone()
	out.Commands = nil
	changed := false

	for _, cmd := range c.Commands {
		switch cmd.Op {
		case circuit.PhasedX, circuit.CZ, circuit.Measure, circuit.Barrier:
			out.Commands = append(out.Commands, cmd)

		case circuit.CX:
			rebaseCX(out, cmd.Qubits[0], cmd.Qubits[1])
			changed = true

		case circuit.SWAP:
			a, b := cmd.Qubits[0], cmd.Qubits[1]
			rebaseCX(out, a, b)
			rebaseCX(out, b, a)
			rebaseCX(out, a, b)
			changed = true

		case circuit.TK1:
			rebaseTK1(out, cmd.Qubits[0], cmd.Params[0], cmd.Params[1], cmd.Params[2])
			changed = true

		default:
			u, err := commandMat(cmd)
			if err != nil {
				return nil, false, fmt.Errorf("operation %s cannot be rebased to the native gate set", cmd.Op)
			}
			a, b, tc := eulerAngles(u)
			rebaseTK1(out, cmd.Qubits[0], a, b, tc)
			changed = true
		}
	}
	return out, changed, nil
}

// rebaseCX appends the fixed CX replacement template.
func rebaseCX(out *circuit.Circuit, control, target circuit.Node) {
	out.AddGate(circuit.PhasedX, []float64{-0.5, 0.5}, target)
	out.AddGate(circuit.CZ, nil, control, target)
	out.AddGate(circuit.PhasedX, []float64{0.5, 0.5}, target)
}

// rebaseTK1 appends the closed-form two-rotation replacement for
// TK1(a, b, c). The constants are emitted verbatim; RemoveRedundancies
// later drops any rotation whose angle reduces to zero.
func rebaseTK1(out *circuit.Circuit, q circuit.Node, a, b, c float64) {
	out.AddGate(circuit.PhasedX, []float64{-1, (a - c) / 2}, q)
	out.AddGate(circuit.PhasedX, []float64{1 + b, a}, q)
}
