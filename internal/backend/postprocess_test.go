package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

func TestStripFlips_TrailingFlipBeforeMeasure(t *testing.T) {
	c := circuit.New(2, 2)
	c.AddGate(circuit.PhasedX, []float64{0.5, 0}, 0)
	c.AddGate(circuit.PhasedX, []float64{1, 0}, 1)
	c.AddMeasure(0, 0)
	c.AddMeasure(1, 1)

	stripped, mask := StripFlips(c)
	require.Len(t, stripped.Commands, 3)
	assert.Equal(t, []float64{0.5, 0}, stripped.Commands[0].Params)
	assert.Equal(t, []int{1}, mask.FlipBits)
}

func TestStripFlips_EvenRunCancels(t *testing.T) {
	c := circuit.New(1, 1)
	c.AddGate(circuit.PhasedX, []float64{1, 0}, 0)
	c.AddGate(circuit.PhasedX, []float64{1, 0.25}, 0)
	c.AddMeasure(0, 0)

	stripped, mask := StripFlips(c)
	require.Len(t, stripped.Commands, 1)
	assert.Equal(t, circuit.Measure, stripped.Commands[0].Op)
	assert.Empty(t, mask.FlipBits)
}

func TestStripFlips_InterveningGateBlocksRun(t *testing.T) {
	c := circuit.New(2, 1)
	c.AddGate(circuit.PhasedX, []float64{1, 0}, 0)
	c.AddGate(circuit.CZ, nil, 0, 1)
	c.AddMeasure(0, 0)

	stripped, mask := StripFlips(c)
	assert.Len(t, stripped.Commands, 3)
	assert.Empty(t, mask.FlipBits)
}

func TestStripFlips_NonHalfTurnIsNotAFlip(t *testing.T) {
	c := circuit.New(1, 1)
	c.AddGate(circuit.PhasedX, []float64{0.5, 0}, 0)
	c.AddMeasure(0, 0)

	stripped, mask := StripFlips(c)
	assert.Len(t, stripped.Commands, 2)
	assert.Empty(t, mask.FlipBits)
}

// TestFlipMask_IdentityRoundTrip: a mask with no flips leaves a
// synthetic all-zero outcome table untouched.
func TestFlipMask_IdentityRoundTrip(t *testing.T) {
	mask := &FlipMask{FlipBits: []int{}}
	payload, err := mask.Marshal()
	require.NoError(t, err)

	back, err := ParseFlipMask(payload)
	require.NoError(t, err)

	rows := [][]int{{0, 0}, {0, 0}}
	back.Apply(rows, []circuit.Bit{0, 1})
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, rows)
}

func TestFlipMask_AppliesXOR(t *testing.T) {
	mask := &FlipMask{FlipBits: []int{1}}
	rows := [][]int{{0, 0}, {1, 1}}
	mask.Apply(rows, []circuit.Bit{0, 1})
	assert.Equal(t, [][]int{{0, 1}, {1, 0}}, rows)
}

func TestFlipMask_MarshalRoundTrip(t *testing.T) {
	mask := &FlipMask{FlipBits: []int{0, 2}}
	payload, err := mask.Marshal()
	require.NoError(t, err)

	back, err := ParseFlipMask(payload)
	require.NoError(t, err)
	assert.Equal(t, mask, back)
}

func TestParseFlipMask_EmptyPayload(t *testing.T) {
	mask, err := ParseFlipMask("")
	require.NoError(t, err)
	assert.Nil(t, mask)

	// A nil mask applies as the identity.
	rows := [][]int{{1}}
	mask.Apply(rows, []circuit.Bit{0})
	assert.Equal(t, [][]int{{1}}, rows)
}
