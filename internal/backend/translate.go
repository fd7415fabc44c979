package backend

import (
	"fmt"

	"github.com/CQCL/tket-iqm/internal/circuit"
	"github.com/CQCL/tket-iqm/internal/iqm"
)

// Wire-format instruction names.
const (
	instrPhasedRX    = "phased_rx"
	instrCZ          = "cz"
	instrMeasurement = "measurement"
	instrBarrier     = "barrier"
)

// Translate converts a native-gate circuit into the server's instruction
// list, preserving program order. Angles are converted from half-turns to
// the server's full-turn convention, so PhasedX(theta, phi) becomes
// phased_rx with angle_t = theta/2 and phase_t = phi/2 exactly.
//
// The circuit must already be rebased: any operation outside the native
// set is a contract violation and fails.
func Translate(c *circuit.Circuit) ([]iqm.Instruction, error) {
	instrs := make([]iqm.Instruction, 0, len(c.Commands))
	for _, cmd := range c.Commands {
		switch cmd.Op {
		case circuit.PhasedX:
			instrs = append(instrs, iqm.Instruction{
				Name:   instrPhasedRX,
				Qubits: []string{cmd.Qubits[0].Name()},
				Args: map[string]any{
					"angle_t": cmd.Params[0] / 2,
					"phase_t": cmd.Params[1] / 2,
				},
			})
		case circuit.CZ:
			instrs = append(instrs, iqm.Instruction{
				Name:   instrCZ,
				Qubits: []string{cmd.Qubits[0].Name(), cmd.Qubits[1].Name()},
				Args:   map[string]any{},
			})
		case circuit.Measure:
			instrs = append(instrs, iqm.Instruction{
				Name:   instrMeasurement,
				Qubits: []string{cmd.Qubits[0].Name()},
				Args:   map[string]any{"key": cmd.Bits[0].String()},
			})
		case circuit.Barrier:
			qubits := make([]string, len(cmd.Qubits))
			for i, q := range cmd.Qubits {
				qubits[i] = q.Name()
			}
			instrs = append(instrs, iqm.Instruction{
				Name:   instrBarrier,
				Qubits: qubits,
				Args:   map[string]any{},
			})
		default:
			return nil, fmt.Errorf("operation %s is not in the native gate set", cmd.Op)
		}
	}
	return instrs, nil
}

// Untranslate converts a server instruction list back into a circuit. It
// is the inverse of Translate: full-turn arguments are doubled back into
// half-turns and qubit names are parsed into node indices.
func Untranslate(name string, instrs []iqm.Instruction) (*circuit.Circuit, error) {
	maxNode, maxBit := -1, -1
	for _, in := range instrs {
		for _, q := range in.Qubits {
			n, err := circuit.ParseNodeName(q)
			if err != nil {
				return nil, err
			}
			if int(n) > maxNode {
				maxNode = int(n)
			}
		}
		if in.Name == instrMeasurement {
			b, err := measurementBit(in)
			if err != nil {
				return nil, err
			}
			if int(b) > maxBit {
				maxBit = int(b)
			}
		}
	}

	c := circuit.New(maxNode+1, maxBit+1)
	c.Name = name
	for _, in := range instrs {
		nodes := make([]circuit.Node, len(in.Qubits))
		for i, q := range in.Qubits {
			nodes[i], _ = circuit.ParseNodeName(q)
		}
		switch in.Name {
		case instrPhasedRX:
			angle, err := numericArg(in, "angle_t")
			if err != nil {
				return nil, err
			}
			phase, err := numericArg(in, "phase_t")
			if err != nil {
				return nil, err
			}
			c.AddGate(circuit.PhasedX, []float64{angle * 2, phase * 2}, nodes[0])
		case instrCZ:
			c.AddGate(circuit.CZ, nil, nodes[0], nodes[1])
		case instrMeasurement:
			b, _ := measurementBit(in)
			c.AddMeasure(nodes[0], b)
		case instrBarrier:
			c.AddBarrier(nodes...)
		default:
			return nil, fmt.Errorf("unknown instruction %q", in.Name)
		}
	}
	return c, nil
}

func measurementBit(in iqm.Instruction) (circuit.Bit, error) {
	key, ok := in.Args["key"].(string)
	if !ok {
		return 0, fmt.Errorf("measurement on %v has no key", in.Qubits)
	}
	return circuit.ParseBitName(key)
}

func numericArg(in iqm.Instruction, name string) (float64, error) {
	switch v := in.Args[name].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("instruction %s has no numeric %s argument", in.Name, name)
}
