package compiler

import (
	"fmt"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// Route places the circuit onto the device connectivity graph, inserting
// SWAP gates so that every two-qubit gate acts on a connected pair.
//
// The strategy is a deterministic greedy mapper: logical qubit i starts on
// the i-th device node; when a two-qubit gate spans disconnected nodes the
// pass swaps one operand along a shortest path until the pair is adjacent,
// updating the placement permanently. Inserted SWAPs are decomposed by the
// rebase pass that follows routing in every pipeline.
type Route struct {
	Arch *Architecture
}

// Name implements Pass.
func (*Route) Name() string { return "Route" }

// Apply implements Pass.
func (r *Route) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	nodes := r.Arch.Nodes()
	if c.NumQubits > len(nodes) {
		return nil, false, fmt.Errorf("circuit has %d qubits but device has %d", c.NumQubits, len(nodes))
	}

	// placement maps logical qubit to device node; occupant is the
	// inverse for the swap bookkeeping.
	placement := make(map[circuit.Node]circuit.Node, c.NumQubits)
	occupant := make(map[circuit.Node]circuit.Node, c.NumQubits)
	for i := 0; i < c.NumQubits; i++ {
		placement[circuit.Node(i)] = nodes[i]
		occupant[nodes[i]] = circuit.Node(i)
	}

	maxNode := circuit.Node(0)
	for _, n := range nodes {
		if n > maxNode {
			maxNode = n
		}
	}
	out := c.Clone()
	out.NumQubits = int(maxNode) + 1
	out.Commands = nil
	changed := false

	swapAlong := func(from, to circuit.Node) {
		// Swap the occupant of from towards to, stopping one hop short.
		path := r.Arch.ShortestPath(from, to)
		for i := 0; i+2 < len(path); i++ {
			a, b := path[i], path[i+1]
			out.Commands = append(out.Commands, circuit.Command{Op: circuit.SWAP, Qubits: []circuit.Node{a, b}})
			la, okA := occupant[a]
			lb, okB := occupant[b]
			if okA {
				placement[la] = b
				occupant[b] = la
			} else {
				delete(occupant, b)
			}
			if okB {
				placement[lb] = a
				occupant[a] = lb
			} else {
				delete(occupant, a)
			}
		}
	}

	for _, cmd := range c.Commands {
		switch len(cmd.Qubits) {
		case 2:
			a, b := placement[cmd.Qubits[0]], placement[cmd.Qubits[1]]
			if !r.Arch.HasEdge(a, b) {
				if r.Arch.ShortestPath(a, b) == nil {
					return nil, false, fmt.Errorf("qubits %s and %s are not connected on the device", a.Name(), b.Name())
				}
				swapAlong(a, b)
				changed = true
				a, b = placement[cmd.Qubits[0]], placement[cmd.Qubits[1]]
			}
			mapped := cmd
			mapped.Qubits = []circuit.Node{a, b}
			out.Commands = append(out.Commands, mapped)
		default:
			mapped := cmd
			if len(cmd.Qubits) > 0 {
				qs := make([]circuit.Node, len(cmd.Qubits))
				for i, q := range cmd.Qubits {
					qs[i] = placement[q]
				}
				mapped.Qubits = qs
			}
			out.Commands = append(out.Commands, mapped)
		}
	}

	if out.NumQubits != c.NumQubits {
		changed = true
	}
	return out, changed, nil
}
