package compiler

import (
	"fmt"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// Predicate is a verifiable property of a circuit. The backend requires a
// fixed predicate list to hold before submission; compilation pipelines
// are built to establish them.
type Predicate interface {
	Name() string
	Verify(c *circuit.Circuit) error
}

// GateSetPredicate requires every command to use one of the allowed
// operation types.
type GateSetPredicate struct {
	Ops map[circuit.OpType]bool
}

// Name implements Predicate.
func (GateSetPredicate) Name() string { return "GateSet" }

// Verify implements Predicate.
func (p GateSetPredicate) Verify(c *circuit.Circuit) error {
	for _, cmd := range c.Commands {
		if !p.Ops[cmd.Op] {
			return fmt.Errorf("operation %s is outside the permitted gate set", cmd.Op)
		}
	}
	return nil
}

// ConnectivityPredicate requires every multi-qubit gate to act on a
// connected pair of device qubits.
type ConnectivityPredicate struct {
	Arch *Architecture
}

// Name implements Predicate.
func (ConnectivityPredicate) Name() string { return "Connectivity" }

// Verify implements Predicate.
func (p ConnectivityPredicate) Verify(c *circuit.Circuit) error {
	for _, cmd := range c.Commands {
		if len(cmd.Qubits) != 2 || cmd.Op == circuit.Barrier {
			continue
		}
		if !p.Arch.HasEdge(cmd.Qubits[0], cmd.Qubits[1]) {
			return fmt.Errorf("gate %s acts on unconnected qubits %s and %s",
				cmd.Op, cmd.Qubits[0].Name(), cmd.Qubits[1].Name())
		}
	}
	return nil
}

// NoMidMeasurePredicate requires all measurements to be terminal: once a
// qubit is measured it must not appear in a later command.
type NoMidMeasurePredicate struct{}

// Name implements Predicate.
func (NoMidMeasurePredicate) Name() string { return "NoMidMeasure" }

// Verify implements Predicate.
func (NoMidMeasurePredicate) Verify(c *circuit.Circuit) error {
	measured := make(map[circuit.Node]bool)
	for _, cmd := range c.Commands {
		for _, q := range cmd.Qubits {
			if measured[q] {
				return fmt.Errorf("qubit %s is used after measurement", q.Name())
			}
		}
		if cmd.Op == circuit.Measure {
			measured[cmd.Qubits[0]] = true
		}
	}
	return nil
}

// NoClassicalControlPredicate rejects gates conditioned on classical
// bits. The only commands that may touch bits are measurements; any
// other command carrying bit operands is a classical control.
type NoClassicalControlPredicate struct{}

// Name implements Predicate.
func (NoClassicalControlPredicate) Name() string { return "NoClassicalControl" }

// Verify implements Predicate.
func (NoClassicalControlPredicate) Verify(c *circuit.Circuit) error {
	for _, cmd := range c.Commands {
		if cmd.Op != circuit.Measure && len(cmd.Bits) > 0 {
			return fmt.Errorf("gate %s is conditioned on classical bits", cmd.Op)
		}
	}
	return nil
}

// MaxTwoQubitGatesPredicate rejects gates on three or more qubits.
type MaxTwoQubitGatesPredicate struct{}

// Name implements Predicate.
func (MaxTwoQubitGatesPredicate) Name() string { return "MaxTwoQubitGates" }

// Verify implements Predicate.
func (MaxTwoQubitGatesPredicate) Verify(c *circuit.Circuit) error {
	for _, cmd := range c.Commands {
		if cmd.Op != circuit.Barrier && len(cmd.Qubits) > 2 {
			return fmt.Errorf("gate %s acts on %d qubits", cmd.Op, len(cmd.Qubits))
		}
	}
	return nil
}
