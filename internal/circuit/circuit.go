package circuit

import (
	"fmt"
	"math"
)

// Command is a single operation applied to an ordered list of qubits.
// Params are in half-turns. Measure commands carry exactly one qubit and
// one bit. A Command is a value; once appended to a circuit it is never
// mutated.
type Command struct {
	Op     OpType
	Params []float64
	Qubits []Node
	Bits   []Bit
}

// Circuit is an ordered gate list over NumQubits qubits and NumBits
// classical bits. Phase accumulates the global phase in half-turns; it has
// no observable effect on measurement outcomes but is tracked so that
// substitution templates compose exactly.
type Circuit struct {
	Name      string
	NumQubits int
	NumBits   int
	Phase     float64
	Commands  []Command
}

// New creates an empty circuit with the given register sizes.
func New(qubits, bits int) *Circuit {
	return &Circuit{NumQubits: qubits, NumBits: bits}
}

// AddGate appends a unitary gate. It validates operand and parameter
// counts against the operation type.
func (c *Circuit) AddGate(op OpType, params []float64, qubits ...Node) *Circuit {
	if op == Measure {
		panic("AddGate: use AddMeasure for measurements")
	}
	if want := op.NumParams(); len(params) != want {
		panic(fmt.Sprintf("AddGate: %s takes %d params, got %d", op, want, len(params)))
	}
	if want := op.NumQubits(); want != 0 && len(qubits) != want {
		panic(fmt.Sprintf("AddGate: %s takes %d qubits, got %d", op, want, len(qubits)))
	}
	for _, q := range qubits {
		if int(q) < 0 || int(q) >= c.NumQubits {
			panic(fmt.Sprintf("AddGate: qubit %d out of range [0,%d)", q, c.NumQubits))
		}
	}
	c.Commands = append(c.Commands, Command{Op: op, Params: params, Qubits: qubits})
	return c
}

// AddMeasure appends a measurement of qubit q into classical bit b.
func (c *Circuit) AddMeasure(q Node, b Bit) *Circuit {
	if int(q) < 0 || int(q) >= c.NumQubits {
		panic(fmt.Sprintf("AddMeasure: qubit %d out of range [0,%d)", q, c.NumQubits))
	}
	if int(b) < 0 || int(b) >= c.NumBits {
		panic(fmt.Sprintf("AddMeasure: bit %d out of range [0,%d)", b, c.NumBits))
	}
	c.Commands = append(c.Commands, Command{Op: Measure, Qubits: []Node{q}, Bits: []Bit{b}})
	return c
}

// AddBarrier appends a barrier across the given qubits.
func (c *Circuit) AddBarrier(qubits ...Node) *Circuit {
	c.Commands = append(c.Commands, Command{Op: Barrier, Qubits: qubits})
	return c
}

// AddPhase adds a global phase, in half-turns.
func (c *Circuit) AddPhase(p float64) *Circuit {
	c.Phase = NormTurns(c.Phase + p)
	return c
}

// MeasureAll appends a measurement of every qubit i into bit i. The bit
// register is grown if needed.
func (c *Circuit) MeasureAll() *Circuit {
	if c.NumBits < c.NumQubits {
		c.NumBits = c.NumQubits
	}
	for i := 0; i < c.NumQubits; i++ {
		c.AddMeasure(Node(i), Bit(i))
	}
	return c
}

// Clone returns a deep copy of the circuit.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{
		Name:      c.Name,
		NumQubits: c.NumQubits,
		NumBits:   c.NumBits,
		Phase:     c.Phase,
		Commands:  make([]Command, len(c.Commands)),
	}
	copy(out.Commands, c.Commands)
	return out
}

// Qubits returns every node index in register order.
func (c *Circuit) Qubits() []Node {
	nodes := make([]Node, c.NumQubits)
	for i := range nodes {
		nodes[i] = Node(i)
	}
	return nodes
}

// BitOrder returns the classical bits in order of first appearance across
// the circuit's measurements. This is the column order of reported
// measurement outcomes.
func (c *Circuit) BitOrder() []Bit {
	seen := make(map[Bit]bool)
	var order []Bit
	for _, cmd := range c.Commands {
		if cmd.Op != Measure {
			continue
		}
		for _, b := range cmd.Bits {
			if !seen[b] {
				seen[b] = true
				order = append(order, b)
			}
		}
	}
	return order
}

// NormTurns reduces a half-turn value into (-1, 1].
func NormTurns(t float64) float64 {
	t = math.Mod(t, 2)
	if t > 1 {
		t -= 2
	} else if t <= -1 {
		t += 2
	}
	return t
}
