package compiler

import (
	"fmt"
	"sort"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// Architecture is a device connectivity graph. Edges are undirected.
type Architecture struct {
	nodes []circuit.Node
	adj   map[circuit.Node][]circuit.Node
}

// NewArchitecture builds a connectivity graph from a qubit list and edge
// list. Every edge endpoint must be in the qubit list.
func NewArchitecture(nodes []circuit.Node, edges [][2]circuit.Node) (*Architecture, error) {
	present := make(map[circuit.Node]bool, len(nodes))
	for _, n := range nodes {
		present[n] = true
	}

	a := &Architecture{
		nodes: append([]circuit.Node(nil), nodes...),
		adj:   make(map[circuit.Node][]circuit.Node, len(nodes)),
	}
	sort.Slice(a.nodes, func(i, j int) bool { return a.nodes[i] < a.nodes[j] })

	for _, e := range edges {
		for _, end := range e {
			if !present[end] {
				return nil, fmt.Errorf("connectivity edge (%s, %s) references qubit %s not in device",
					e[0].Name(), e[1].Name(), end.Name())
			}
		}
		if e[0] == e[1] {
			return nil, fmt.Errorf("connectivity edge (%s, %s) is a self-loop", e[0].Name(), e[1].Name())
		}
		if !a.HasEdge(e[0], e[1]) {
			a.adj[e[0]] = append(a.adj[e[0]], e[1])
			a.adj[e[1]] = append(a.adj[e[1]], e[0])
		}
	}

	// Deterministic neighbour order for deterministic routing.
	for n := range a.adj {
		ns := a.adj[n]
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
	}
	return a, nil
}

// Nodes returns the device qubits in ascending order.
func (a *Architecture) Nodes() []circuit.Node {
	return append([]circuit.Node(nil), a.nodes...)
}

// NumNodes returns the number of device qubits.
func (a *Architecture) NumNodes() int { return len(a.nodes) }

// HasEdge reports whether x and y are directly connected.
func (a *Architecture) HasEdge(x, y circuit.Node) bool {
	for _, n := range a.adj[x] {
		if n == y {
			return true
		}
	}
	return false
}

// Edges returns the undirected edge list with each edge reported once,
// smaller node first, in ascending order.
func (a *Architecture) Edges() [][2]circuit.Node {
	var edges [][2]circuit.Node
	for _, x := range a.nodes {
		for _, y := range a.adj[x] {
			if x < y {
				edges = append(edges, [2]circuit.Node{x, y})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// ShortestPath returns a minimal-length node path from x to y, inclusive
// of both endpoints, or nil if y is unreachable. BFS with deterministic
// neighbour order.
func (a *Architecture) ShortestPath(x, y circuit.Node) []circuit.Node {
	if x == y {
		return []circuit.Node{x}
	}
	prev := map[circuit.Node]circuit.Node{x: x}
	queue := []circuit.Node{x}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range a.adj[cur] {
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			if n == y {
				var path []circuit.Node
				for at := y; ; at = prev[at] {
					path = append([]circuit.Node{at}, path...)
					if at == x {
						return path
					}
				}
			}
			queue = append(queue, n)
		}
	}
	return nil
}
