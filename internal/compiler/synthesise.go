package compiler

import (
	"github.com/CQCL/tket-iqm/internal/circuit"
)

// SynthesiseGeneric squashes every maximal run of single-qubit gates into
// at most one TK1 gate by multiplying unitaries and re-extracting Euler
// angles. Correct up to global phase. Multi-qubit gates, measurements and
// barriers act as run boundaries.
type SynthesiseGeneric struct{}

// Name implements Pass.
func (SynthesiseGeneric) Name() string { return "SynthesiseGeneric" }

// Apply implements Pass.
func (SynthesiseGeneric) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	out := c.Clone()
	out.Commands = nil

	pending := make(map[circuit.Node]mat2)
	// pendingLen tracks how many gates each pending unitary absorbed, to
	// report whether squashing changed anything.
	pendingLen := make(map[circuit.Node]int)
	changed := false

	flush := func(q circuit.Node) {
		u, ok := pending[q]
		if !ok {
			return
		}
		delete(pending, q)
		n := pendingLen[q]
		delete(pendingLen, q)

		if isIdentityUpToPhase(u) {
			if n > 0 {
				changed = true
			}
			return
		}
		a, b, tc := eulerAngles(u)
		out.Commands = append(out.Commands, circuit.Command{
			Op:     circuit.TK1,
			Params: []float64{a, b, tc},
			Qubits: []circuit.Node{q},
		})
		if n > 1 {
			changed = true
		}
	}

	for _, cmd := range c.Commands {
		if u, err := commandMat(cmd); err == nil {
			q := cmd.Qubits[0]
			if _, ok := pending[q]; !ok {
				pending[q] = identity2
			}
			pending[q] = mul(u, pending[q])
			pendingLen[q]++
			if cmd.Op != circuit.TK1 {
				changed = true
			}
			continue
		}

		// Boundary: flush the operand qubits, then emit the command. A
		// barrier with no operands is a full boundary.
		if cmd.Op == circuit.Barrier && len(cmd.Qubits) == 0 {
			for q := circuit.Node(0); int(q) < c.NumQubits; q++ {
				flush(q)
			}
		}
		for _, q := range cmd.Qubits {
			flush(q)
		}
		out.Commands = append(out.Commands, cmd)
	}
	for q := circuit.Node(0); int(q) < c.NumQubits; q++ {
		flush(q)
	}
	return out, changed, nil
}

// FullPeephole alternates single-qubit synthesis with cancellation of
// adjacent self-inverse two-qubit pairs until a fixed point (bounded).
type FullPeephole struct{}

// Name implements Pass.
func (FullPeephole) Name() string { return "FullPeephole" }

// Apply implements Pass.
func (FullPeephole) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	return peepholeFixpoint(c)
}

// StructuralSimplify is the post-routing cleanup for level 2: the same
// peephole loop, run after swap insertion so that routing artefacts get
// folded as well. Kept as a distinct pass so pipelines report it by name.
type StructuralSimplify struct{}

// Name implements Pass.
func (StructuralSimplify) Name() string { return "StructuralSimplify" }

// Apply implements Pass.
func (StructuralSimplify) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	return peepholeFixpoint(c)
}

const maxPeepholeRounds = 10

func peepholeFixpoint(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	anyChange := false
	for round := 0; round < maxPeepholeRounds; round++ {
		next, ch1, err := SynthesiseGeneric{}.Apply(c)
		if err != nil {
			return nil, false, err
		}
		next, ch2 := cancelTwoQubitPairs(next)
		c = next
		if !ch1 && !ch2 {
			break
		}
		anyChange = true
	}
	return c, anyChange, nil
}

// cancelTwoQubitPairs removes adjacent identical self-inverse two-qubit
// gates (CZ, CX, SWAP on the same operands with nothing on either qubit in
// between).
func cancelTwoQubitPairs(c *circuit.Circuit) (*circuit.Circuit, bool) {
	type lastGate struct {
		index int
		cmd   circuit.Command
	}
	out := c.Clone()
	cmds := append([]circuit.Command(nil), c.Commands...)
	removed := make([]bool, len(cmds))
	// last open two-qubit gate per qubit, invalidated by any intervening
	// command on that qubit
	open := make(map[circuit.Node]*lastGate)
	changed := false

	samePair := func(a, b circuit.Command) bool {
		if a.Op != b.Op {
			return false
		}
		if a.Qubits[0] == b.Qubits[0] && a.Qubits[1] == b.Qubits[1] {
			return true
		}
		// CZ and SWAP are symmetric in their operands.
		if a.Op == circuit.CZ || a.Op == circuit.SWAP {
			return a.Qubits[0] == b.Qubits[1] && a.Qubits[1] == b.Qubits[0]
		}
		return false
	}

	for i, cmd := range cmds {
		isPair := cmd.Op == circuit.CZ || cmd.Op == circuit.CX || cmd.Op == circuit.SWAP
		if isPair {
			a, b := cmd.Qubits[0], cmd.Qubits[1]
			ga, gb := open[a], open[b]
			if ga != nil && ga == gb && samePair(ga.cmd, cmd) {
				removed[ga.index] = true
				removed[i] = true
				delete(open, a)
				delete(open, b)
				changed = true
				continue
			}
			g := &lastGate{index: i, cmd: cmd}
			open[a], open[b] = g, g
			continue
		}
		for _, q := range cmd.Qubits {
			delete(open, q)
		}
		if cmd.Op == circuit.Barrier && len(cmd.Qubits) == 0 {
			open = make(map[circuit.Node]*lastGate)
		}
	}

	if !changed {
		return c, false
	}
	out.Commands = nil
	for i, cmd := range cmds {
		if !removed[i] {
			out.Commands = append(out.Commands, cmd)
		}
	}
	return out, true
}
