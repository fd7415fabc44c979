package circuit

import "fmt"

// OpType identifies a gate or operation kind.
type OpType int

// Native operations (directly executable on IQM hardware) come first,
// followed by the composite set accepted by the compiler before rebasing.
const (
	// PhasedX is the parameterised single-qubit rotation PhasedX(angle,
	// phase) = Rz(phase) Rx(angle) Rz(-phase), parameters in half-turns.
	PhasedX OpType = iota
	// CZ is the two-qubit controlled-Z entangler.
	CZ
	// Measure reads one qubit into one classical bit.
	Measure
	// Barrier is a scheduling hint with no unitary action.
	Barrier

	H
	X
	Y
	Z
	S
	Sdg
	T
	Rx
	Ry
	Rz
	CX
	SWAP
	// TK1 is the generic single-qubit unitary Rz(a) Rx(b) Rz(c).
	TK1
)

var opNames = map[OpType]string{
	PhasedX: "PhasedX",
	CZ:      "CZ",
	Measure: "Measure",
	Barrier: "Barrier",
	H:       "H",
	X:       "X",
	Y:       "Y",
	Z:       "Z",
	S:       "S",
	Sdg:     "Sdg",
	T:       "T",
	Rx:      "Rx",
	Ry:      "Ry",
	Rz:      "Rz",
	CX:      "CX",
	SWAP:    "SWAP",
	TK1:     "TK1",
}

var opByName = func() map[string]OpType {
	m := make(map[string]OpType, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

func (t OpType) String() string {
	if name, ok := opNames[t]; ok {
		return name
	}
	return fmt.Sprintf("OpType(%d)", int(t))
}

// ParseOpType returns the OpType with the given name.
func ParseOpType(name string) (OpType, error) {
	op, ok := opByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown operation %q", name)
	}
	return op, nil
}

// NumParams returns the number of half-turn parameters the operation takes.
func (t OpType) NumParams() int {
	switch t {
	case PhasedX:
		return 2
	case Rx, Ry, Rz:
		return 1
	case TK1:
		return 3
	default:
		return 0
	}
}

// NumQubits returns the number of qubit operands the operation takes.
// Barrier is variadic and reports 0.
func (t OpType) NumQubits() int {
	switch t {
	case CZ, CX, SWAP:
		return 2
	case Barrier:
		return 0
	default:
		return 1
	}
}

// IsNative reports whether the operation belongs to the IQM native set.
func (t OpType) IsNative() bool {
	switch t {
	case PhasedX, CZ, Measure, Barrier:
		return true
	default:
		return false
	}
}
