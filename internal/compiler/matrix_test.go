package compiler

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// cmplxExpTurns returns e^(i*pi*p), the factor of a global phase of p
// half-turns.
func cmplxExpTurns(p float64) complex128 {
	return cmplx.Exp(complex(0, math.Pi*p))
}

var eulerGrid = []float64{-1.7, -1, -0.5, -0.25, 0, 0.25, 1.0 / 3, 0.5, 0.75, 1, 1.3}

// TestEulerAngles_RoundTrip re-synthesises TK1 matrices from their
// extracted angles across a grid of parameters.
func TestEulerAngles_RoundTrip(t *testing.T) {
	for _, a := range eulerGrid {
		for _, b := range eulerGrid {
			for _, c := range eulerGrid {
				u := tk1Mat(a, b, c)
				ea, eb, ec := eulerAngles(u)
				assert.True(t, equalUpToPhase(tk1Mat(ea, eb, ec), u),
					"TK1(%v, %v, %v) -> (%v, %v, %v)", a, b, c, ea, eb, ec)
			}
		}
	}
}

// TestEulerAngles_FixedGates checks the decomposition on non-TK1 inputs.
func TestEulerAngles_FixedGates(t *testing.T) {
	for _, op := range []circuit.OpType{circuit.H, circuit.X, circuit.Y, circuit.Z, circuit.S, circuit.Sdg, circuit.T} {
		cmd := circuit.Command{Op: op, Qubits: []circuit.Node{0}}
		u, err := commandMat(cmd)
		assert.NoError(t, err)
		a, b, c := eulerAngles(u)
		assert.True(t, equalUpToPhase(tk1Mat(a, b, c), u), "op %s", op)
	}
}

// TestPhasedXMat_KnownIdentities pins down the axis convention.
func TestPhasedXMat_KnownIdentities(t *testing.T) {
	// PhasedX(theta, 0) is a plain X rotation.
	assert.True(t, equalUpToPhase(phasedXMat(0.3, 0), rxMat(0.3)))
	// PhasedX(theta, 0.5) is a Y rotation.
	ry := mul(rzMat(0.5), mul(rxMat(0.3), rzMat(-0.5)))
	assert.True(t, equalUpToPhase(phasedXMat(0.3, 0.5), ry))
	// PhasedX(1, 0) is X up to phase.
	xm := mat2{{0, 1}, {1, 0}}
	assert.True(t, equalUpToPhase(phasedXMat(1, 0), xm))
}

// TestDecomposeIdentities verifies the fixed-gate identities used by
// DecomposeComposites are exact including global phase.
func TestDecomposeIdentities(t *testing.T) {
	phaseFactor := func(p float64) complex128 {
		return cmplxExpTurns(p)
	}

	cases := []struct {
		name  string
		gate  mat2
		repl  mat2
		phase float64
	}{
		{"H", mat2{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}, tk1Mat(0.5, 0.5, 0.5), 0.5},
		{"X", mat2{{0, 1}, {1, 0}}, phasedXMat(1, 0), 0.5},
		{"Y", mat2{{0, -1i}, {1i, 0}}, phasedXMat(1, 0.5), 0.5},
		{"Z", mat2{{1, 0}, {0, -1}}, tk1Mat(1, 0, 0), 0.5},
		{"S", mat2{{1, 0}, {0, 1i}}, tk1Mat(0.5, 0, 0), 0.25},
	}
	for _, tc := range cases {
		got := scale(tc.repl, phaseFactor(tc.phase))
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.InDelta(t, real(tc.gate[i][j]), real(got[i][j]), 1e-9, "%s [%d][%d] real", tc.name, i, j)
				assert.InDelta(t, imag(tc.gate[i][j]), imag(got[i][j]), 1e-9, "%s [%d][%d] imag", tc.name, i, j)
			}
		}
	}
}
