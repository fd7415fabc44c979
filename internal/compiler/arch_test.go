package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

func TestNewArchitecture_RejectsUnknownEndpoint(t *testing.T) {
	_, err := NewArchitecture(
		[]circuit.Node{0, 1},
		[][2]circuit.Node{{0, 2}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in device")
}

func TestNewArchitecture_RejectsSelfLoop(t *testing.T) {
	_, err := NewArchitecture(
		[]circuit.Node{0, 1},
		[][2]circuit.Node{{1, 1}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "self-loop")
}

func TestArchitecture_EdgesDeduplicated(t *testing.T) {
	arch, err := NewArchitecture(
		[]circuit.Node{0, 1, 2},
		[][2]circuit.Node{{0, 1}, {1, 0}, {2, 1}},
	)
	require.NoError(t, err)
	assert.Equal(t, [][2]circuit.Node{{0, 1}, {1, 2}}, arch.Edges())
	assert.True(t, arch.HasEdge(1, 0))
	assert.False(t, arch.HasEdge(0, 2))
}

func TestArchitecture_ShortestPath(t *testing.T) {
	arch := lineArch(t, 5)
	assert.Equal(t, []circuit.Node{1, 2, 3}, arch.ShortestPath(1, 3))
	assert.Equal(t, []circuit.Node{2}, arch.ShortestPath(2, 2))
}

func TestArchitecture_ShortestPathUnreachable(t *testing.T) {
	arch, err := NewArchitecture(
		[]circuit.Node{0, 1, 2},
		[][2]circuit.Node{{0, 1}},
	)
	require.NoError(t, err)
	assert.Nil(t, arch.ShortestPath(0, 2))
}

func TestArchitecture_StarTopology(t *testing.T) {
	// A star through a central node, as in devices with a computational
	// resonator hub.
	arch, err := NewArchitecture(
		[]circuit.Node{0, 1, 2, 3},
		[][2]circuit.Node{{0, 1}, {0, 2}, {0, 3}},
	)
	require.NoError(t, err)
	assert.Equal(t, []circuit.Node{1, 0, 2}, arch.ShortestPath(1, 2))
	assert.Equal(t, 4, arch.NumNodes())
}
