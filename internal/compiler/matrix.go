package compiler

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// mat2 is a 2x2 complex matrix, the unitary of a single-qubit gate.
type mat2 [2][2]complex128

var identity2 = mat2{{1, 0}, {0, 1}}

func mul(a, b mat2) mat2 {
	var out mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return out
}

func scale(m mat2, s complex128) mat2 {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			m[i][j] *= s
		}
	}
	return m
}

// rzMat returns Rz(t) for t in half-turns.
func rzMat(t float64) mat2 {
	h := complex(0, math.Pi*t/2)
	return mat2{{cmplx.Exp(-h), 0}, {0, cmplx.Exp(h)}}
}

// rxMat returns Rx(t) for t in half-turns.
func rxMat(t float64) mat2 {
	c := complex(math.Cos(math.Pi*t/2), 0)
	s := complex(0, -math.Sin(math.Pi*t/2))
	return mat2{{c, s}, {s, c}}
}

// phasedXMat returns PhasedX(angle, phase) = Rz(phase) Rx(angle) Rz(-phase).
func phasedXMat(angle, phase float64) mat2 {
	return mul(rzMat(phase), mul(rxMat(angle), rzMat(-phase)))
}

// tk1Mat returns TK1(a, b, c) = Rz(a) Rx(b) Rz(c).
func tk1Mat(a, b, c float64) mat2 {
	return mul(rzMat(a), mul(rxMat(b), rzMat(c)))
}

const invSqrt2 = 1 / math.Sqrt2

// commandMat returns the unitary of a single-qubit gate command. It
// returns an error for measurements, barriers and multi-qubit gates.
func commandMat(cmd circuit.Command) (mat2, error) {
	p := cmd.Params
	switch cmd.Op {
	case circuit.PhasedX:
		return phasedXMat(p[0], p[1]), nil
	case circuit.TK1:
		return tk1Mat(p[0], p[1], p[2]), nil
	case circuit.Rx:
		return rxMat(p[0]), nil
	case circuit.Ry:
		return mul(rzMat(0.5), mul(rxMat(p[0]), rzMat(-0.5))), nil
	case circuit.Rz:
		return rzMat(p[0]), nil
	case circuit.H:
		return mat2{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}}, nil
	case circuit.X:
		return mat2{{0, 1}, {1, 0}}, nil
	case circuit.Y:
		return mat2{{0, -1i}, {1i, 0}}, nil
	case circuit.Z:
		return mat2{{1, 0}, {0, -1}}, nil
	case circuit.S:
		return mat2{{1, 0}, {0, 1i}}, nil
	case circuit.Sdg:
		return mat2{{1, 0}, {0, -1i}}, nil
	case circuit.T:
		return mat2{{1, 0}, {0, cmplx.Exp(complex(0, math.Pi/4))}}, nil
	default:
		return mat2{}, fmt.Errorf("operation %s has no single-qubit unitary", cmd.Op)
	}
}

const matTol = 1e-9

// eulerAngles decomposes a single-qubit unitary into TK1 half-turn angles
// (a, b, c) with U proportional to Rz(a) Rx(b) Rz(c). The decomposition is
// exact up to global phase for every unitary input.
func eulerAngles(u mat2) (a, b, c float64) {
	// Normalise the determinant so u is special unitary (up to sign).
	det := u[0][0]*u[1][1] - u[0][1]*u[1][0]
	if s := cmplx.Sqrt(det); s != 0 {
		u = scale(u, 1/s)
	}

	cb := cmplx.Abs(u[0][0])
	sb := cmplx.Abs(u[1][0])
	b = 2 / math.Pi * math.Atan2(sb, cb)

	switch {
	case sb < matTol:
		// Diagonal: pure Rz. Fold everything into a.
		a = circuit.NormTurns(-2 / math.Pi * cmplx.Phase(u[0][0]))
		b, c = 0, 0
	case cb < matTol:
		// Anti-diagonal: full X rotation.
		b = 1
		a = circuit.NormTurns(2 / math.Pi * (cmplx.Phase(u[1][0]) + math.Pi/2))
		c = 0
	default:
		sum := -2 / math.Pi * cmplx.Phase(u[0][0])
		diff := 2 / math.Pi * (cmplx.Phase(u[1][0]) + math.Pi/2)
		a = circuit.NormTurns((sum + diff) / 2)
		c = circuit.NormTurns((sum - diff) / 2)
	}
	return a, b, c
}

// equalUpToPhase reports whether two single-qubit unitaries agree up to a
// global phase factor.
func equalUpToPhase(u, v mat2) bool {
	// Find the largest entry of v to fix the relative phase.
	var ref complex128
	var refU complex128
	best := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if m := cmplx.Abs(v[i][j]); m > best {
				best = m
				ref = v[i][j]
				refU = u[i][j]
			}
		}
	}
	if best < matTol {
		return false
	}
	if cmplx.Abs(refU) < matTol {
		return false
	}
	phase := refU / ref
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.Abs(u[i][j]-phase*v[i][j]) > 1e-7 {
				return false
			}
		}
	}
	return true
}

// isIdentityUpToPhase reports whether u acts as the identity up to global
// phase.
func isIdentityUpToPhase(u mat2) bool {
	return equalUpToPhase(u, identity2)
}
