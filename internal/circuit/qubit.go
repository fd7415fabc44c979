package circuit

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a zero-based logical qubit index.
type Node int

// Bit is a zero-based classical bit index.
type Bit int

// ResonatorName is the reserved name some IQM stations expose for a shared
// computational resonator. It is not a numbered qubit; it maps to node 0.
const ResonatorName = "COMP_R"

// Name returns the one-based IQM qubit name for the node, e.g. node 0 is
// "QB1".
func (n Node) Name() string {
	return fmt.Sprintf("QB%d", int(n)+1)
}

// ParseNodeName converts an IQM qubit name back to a node index. The
// reserved resonator alias maps to node 0; every other valid name is
// "QB<n>" with n >= 1.
func ParseNodeName(name string) (Node, error) {
	if name == ResonatorName {
		return Node(0), nil
	}
	rest, ok := strings.CutPrefix(name, "QB")
	if !ok {
		return 0, fmt.Errorf("invalid qubit name %q", name)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid qubit name %q", name)
	}
	return Node(n - 1), nil
}

// String returns the classical bit in register form, e.g. "c[0]". This is
// the form used as the measurement key on the wire.
func (b Bit) String() string {
	return fmt.Sprintf("c[%d]", int(b))
}

// ParseBitName converts a register-form bit name back to a bit index.
func ParseBitName(name string) (Bit, error) {
	rest, ok := strings.CutPrefix(name, "c[")
	if !ok || !strings.HasSuffix(rest, "]") {
		return 0, fmt.Errorf("invalid bit name %q", name)
	}
	i, err := strconv.Atoi(strings.TrimSuffix(rest, "]"))
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid bit name %q", name)
	}
	return Bit(i), nil
}
