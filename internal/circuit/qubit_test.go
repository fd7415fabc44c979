package circuit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNodeName_RoundTrip verifies to_name/to_node are inverse for all
// valid indices.
func TestNodeName_RoundTrip(t *testing.T) {
	for i := 0; i < 64; i++ {
		name := Node(i).Name()
		node, err := ParseNodeName(name)
		require.NoError(t, err)
		assert.Equal(t, Node(i), node)
	}

	// And the reverse direction, starting from names.
	for n := 1; n <= 64; n++ {
		name := fmt.Sprintf("QB%d", n)
		node, err := ParseNodeName(name)
		require.NoError(t, err)
		assert.Equal(t, name, node.Name())
	}
}

// TestNodeName_OneBased checks the off-by-one convention explicitly.
func TestNodeName_OneBased(t *testing.T) {
	assert.Equal(t, "QB1", Node(0).Name())
	assert.Equal(t, "QB5", Node(4).Name())
}

// TestParseNodeName_ResonatorAlias maps the reserved resonator name to
// node 0.
func TestParseNodeName_ResonatorAlias(t *testing.T) {
	node, err := ParseNodeName(ResonatorName)
	require.NoError(t, err)
	assert.Equal(t, Node(0), node)
}

// TestParseNodeName_Invalid rejects malformed and zero-based names.
func TestParseNodeName_Invalid(t *testing.T) {
	for _, name := range []string{"", "QB", "QB0", "QB-1", "QBx", "qb1", "1"} {
		_, err := ParseNodeName(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestBitName_RoundTrip(t *testing.T) {
	for i := 0; i < 16; i++ {
		name := Bit(i).String()
		bit, err := ParseBitName(name)
		require.NoError(t, err)
		assert.Equal(t, Bit(i), bit)
	}
	assert.Equal(t, "c[3]", Bit(3).String())
}

func TestParseBitName_Invalid(t *testing.T) {
	for _, name := range []string{"", "c", "c[", "c[]", "c[-1]", "c[1", "b[0]"} {
		_, err := ParseBitName(name)
		assert.Error(t, err, "name %q", name)
	}
}
