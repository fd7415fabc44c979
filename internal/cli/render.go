package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// circuitSummary is the JSON shape of a circuit in command output.
type circuitSummary struct {
	Name     string   `json:"name"`
	Qubits   int      `json:"qubits"`
	Bits     int      `json:"bits"`
	Commands []string `json:"commands"`
}

func summarizeCircuit(c *circuit.Circuit) circuitSummary {
	s := circuitSummary{
		Name:     c.Name,
		Qubits:   c.NumQubits,
		Bits:     c.NumBits,
		Commands: make([]string, len(c.Commands)),
	}
	for i, cmd := range c.Commands {
		s.Commands[i] = renderCommand(cmd)
	}
	return s
}

func renderCommand(cmd circuit.Command) string {
	var b strings.Builder
	b.WriteString(cmd.Op.String())
	if len(cmd.Params) > 0 {
		parts := make([]string, len(cmd.Params))
		for i, p := range cmd.Params {
			parts[i] = fmt.Sprintf("%g", p)
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(parts, ", "))
	}
	for i, q := range cmd.Qubits {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(q.Name())
	}
	if cmd.Op == circuit.Measure {
		fmt.Fprintf(&b, " -> %s", cmd.Bits[0])
	}
	return b.String()
}

func renderCircuitText(w io.Writer, c *circuit.Circuit) {
	fmt.Fprintf(w, "%s: %d qubits, %d bits\n", c.Name, c.NumQubits, c.NumBits)
	for _, cmd := range c.Commands {
		fmt.Fprintf(w, "  %s\n", renderCommand(cmd))
	}
}
