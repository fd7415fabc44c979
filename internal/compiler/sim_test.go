package compiler

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// Test-local state-vector simulator, enough to check that substitution
// templates and full pipelines preserve circuit semantics. Qubit q is bit
// q of the amplitude index (little-endian).

func applyGate(t *testing.T, state []complex128, n int, cmd circuit.Command) {
	t.Helper()
	switch cmd.Op {
	case circuit.CZ:
		a, b := int(cmd.Qubits[0]), int(cmd.Qubits[1])
		for i := range state {
			if i>>a&1 == 1 && i>>b&1 == 1 {
				state[i] = -state[i]
			}
		}
	case circuit.CX:
		ctl, tgt := int(cmd.Qubits[0]), int(cmd.Qubits[1])
		for i := range state {
			if i>>ctl&1 == 1 && i>>tgt&1 == 0 {
				j := i | 1<<tgt
				state[i], state[j] = state[j], state[i]
			}
		}
	case circuit.SWAP:
		a, b := int(cmd.Qubits[0]), int(cmd.Qubits[1])
		for i := range state {
			if i>>a&1 == 1 && i>>b&1 == 0 {
				j := i&^(1<<a) | 1<<b
				state[i], state[j] = state[j], state[i]
			}
		}
	case circuit.Barrier, circuit.Measure:
		// no unitary action
	default:
		u, err := commandMat(cmd)
		require.NoError(t, err)
		q := int(cmd.Qubits[0])
		for i := range state {
			if i>>q&1 == 0 {
				j := i | 1<<q
				s0, s1 := state[i], state[j]
				state[i] = u[0][0]*s0 + u[0][1]*s1
				state[j] = u[1][0]*s0 + u[1][1]*s1
			}
		}
	}
}

// simulate runs the circuit's unitary part on |0...0> over n qubits.
func simulate(t *testing.T, c *circuit.Circuit, n int) []complex128 {
	t.Helper()
	state := make([]complex128, 1<<n)
	state[0] = 1
	for _, cmd := range c.Commands {
		applyGate(t, state, n, cmd)
	}
	return state
}

// statesEqualUpToPhase compares state vectors up to one global phase.
func statesEqualUpToPhase(a, b []complex128) bool {
	if len(a) != len(b) {
		return false
	}
	var phase complex128
	for i := range a {
		if cmplx.Abs(b[i]) > 1e-9 {
			phase = a[i] / b[i]
			break
		}
	}
	if phase == 0 {
		return false
	}
	for i := range a {
		if cmplx.Abs(a[i]-phase*b[i]) > 1e-7 {
			return false
		}
	}
	return true
}

// circuitUnitary builds the full 2^n x 2^n unitary by simulating basis
// states.
func circuitUnitary(t *testing.T, c *circuit.Circuit, n int) [][]complex128 {
	t.Helper()
	dim := 1 << n
	u := make([][]complex128, dim)
	for col := 0; col < dim; col++ {
		state := make([]complex128, dim)
		state[col] = 1
		for _, cmd := range c.Commands {
			applyGate(t, state, n, cmd)
		}
		for row := 0; row < dim; row++ {
			if u[row] == nil {
				u[row] = make([]complex128, dim)
			}
			u[row][col] = state[row]
		}
	}
	return u
}

func unitariesEqualUpToPhase(a, b [][]complex128) bool {
	var phase complex128
	for i := range b {
		for j := range b[i] {
			if cmplx.Abs(b[i][j]) > 1e-9 {
				phase = a[i][j] / b[i][j]
				goto compare
			}
		}
	}
	return false
compare:
	for i := range a {
		for j := range a[i] {
			if cmplx.Abs(a[i][j]-phase*b[i][j]) > 1e-7 {
				return false
			}
		}
	}
	return true
}
