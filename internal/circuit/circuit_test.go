package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuit_AddGate(t *testing.T) {
	c := New(2, 0)
	c.AddGate(PhasedX, []float64{0.5, 0}, 0)
	c.AddGate(CZ, nil, 0, 1)

	require.Len(t, c.Commands, 2)
	assert.Equal(t, PhasedX, c.Commands[0].Op)
	assert.Equal(t, []float64{0.5, 0}, c.Commands[0].Params)
	assert.Equal(t, []Node{0, 1}, c.Commands[1].Qubits)
}

func TestCircuit_AddGate_Validation(t *testing.T) {
	c := New(1, 0)

	assert.Panics(t, func() { c.AddGate(PhasedX, []float64{0.5}, 0) }, "wrong param count")
	assert.Panics(t, func() { c.AddGate(Rz, []float64{0.5}, 1) }, "qubit out of range")
	assert.Panics(t, func() { c.AddGate(Measure, nil, 0) }, "measure via AddGate")
}

func TestCircuit_MeasureAll(t *testing.T) {
	c := New(3, 0).MeasureAll()

	assert.Equal(t, 3, c.NumBits)
	require.Len(t, c.Commands, 3)
	for i, cmd := range c.Commands {
		assert.Equal(t, Measure, cmd.Op)
		assert.Equal(t, []Node{Node(i)}, cmd.Qubits)
		assert.Equal(t, []Bit{Bit(i)}, cmd.Bits)
	}
}

// TestCircuit_BitOrder follows first appearance, not numeric order.
func TestCircuit_BitOrder(t *testing.T) {
	c := New(3, 3)
	c.AddMeasure(0, 2)
	c.AddMeasure(1, 0)
	c.AddMeasure(2, 1)

	assert.Equal(t, []Bit{2, 0, 1}, c.BitOrder())
}

func TestCircuit_Clone_Isolated(t *testing.T) {
	c := New(1, 1)
	c.AddGate(X, nil, 0)

	clone := c.Clone()
	clone.AddMeasure(0, 0)

	assert.Len(t, c.Commands, 1)
	assert.Len(t, clone.Commands, 2)
}

func TestCircuit_AddPhase_Normalises(t *testing.T) {
	c := New(1, 0)
	c.AddPhase(0.5).AddPhase(0.75)
	assert.InDelta(t, -0.75, c.Phase, 1e-12)

	c2 := New(1, 0)
	c2.AddPhase(-1.5)
	assert.InDelta(t, 0.5, c2.Phase, 1e-12)
}

func TestNormTurns(t *testing.T) {
	assert.InDelta(t, 0.0, NormTurns(2), 1e-12)
	assert.InDelta(t, 1.0, NormTurns(1), 1e-12)
	assert.InDelta(t, 1.0, NormTurns(-1), 1e-12)
	assert.InDelta(t, -0.5, NormTurns(1.5), 1e-12)
}
