package cli

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

//go:embed schema.cue
var batchSchemaCUE string

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // File read error
	ErrCodeParseFailed = "E003" // YAML parse error
	ErrCodeSchema      = "E004" // Batch schema violation
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeNoToken     = "E006" // No credentials resolved
	ErrCodeRemote      = "E007" // Remote service error

	// Circuit construction errors
	ErrCodeUnknownOp   = "E101" // Unknown operation name
	ErrCodeBadOperands = "E102" // Wrong operand/parameter counts or ranges
)

// LoadError represents an error that occurred during batch loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Batch is a loaded circuit batch file.
type Batch struct {
	Circuits []*circuit.Circuit
	Shots    int // 0 when the file does not set one
}

type batchFile struct {
	Circuits []circuitSpec `yaml:"circuits"`
	Shots    int           `yaml:"shots"`
}

type circuitSpec struct {
	Name   string     `yaml:"name"`
	Qubits int        `yaml:"qubits"`
	Bits   int        `yaml:"bits"`
	Gates  []gateSpec `yaml:"gates"`
}

type gateSpec struct {
	Op     string    `yaml:"op"`
	Params []float64 `yaml:"params"`
	Qubits []int     `yaml:"qubits"`
	Bits   []int     `yaml:"bits"`
}

// LoadBatch reads a YAML circuit batch file, validates it against the
// embedded CUE schema, and builds the circuits.
func LoadBatch(path string) (*Batch, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("batch file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	// Generic decode for schema validation, typed decode for building.
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	if err := validateBatchSchema(doc); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("%s: %v", path, err)}
	}

	var file batchFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	batch := &Batch{Shots: file.Shots}
	for _, spec := range file.Circuits {
		c, err := buildCircuit(spec)
		if err != nil {
			return nil, err
		}
		batch.Circuits = append(batch.Circuits, c)
	}
	return batch, nil
}

// validateBatchSchema unifies the decoded document with the embedded CUE
// schema. Definitions are closed, so unknown fields are rejected too.
func validateBatchSchema(doc any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(batchSchemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal schema error: %w", err)
	}
	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return err
	}
	unified := schema.Unify(value)
	return unified.Validate(cue.Concrete(true))
}

// buildCircuit turns one validated spec into a circuit, checking operand
// counts and ranges so malformed gates fail with an error rather than a
// panic.
func buildCircuit(spec circuitSpec) (*circuit.Circuit, error) {
	c := circuit.New(spec.Qubits, spec.Bits)
	// NFC normalize at the input boundary: the name travels to the wire
	// and into the ledger, and lookups compare it byte-wise.
	c.Name = norm.NFC.String(spec.Name)

	for i, g := range spec.Gates {
		op, err := circuit.ParseOpType(g.Op)
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeUnknownOp,
				Message: fmt.Sprintf("circuit %s gate %d: %v", spec.Name, i, err),
			}
		}

		bad := func(format string, args ...any) error {
			return &LoadError{
				Code:    ErrCodeBadOperands,
				Message: fmt.Sprintf("circuit %s gate %d (%s): %s", spec.Name, i, op, fmt.Sprintf(format, args...)),
			}
		}

		for _, q := range g.Qubits {
			if q < 0 || q >= spec.Qubits {
				return nil, bad("qubit %d out of range [0,%d)", q, spec.Qubits)
			}
		}

		switch op {
		case circuit.Measure:
			if len(g.Qubits) != 1 || len(g.Bits) != 1 {
				return nil, bad("takes 1 qubit and 1 bit")
			}
			if g.Bits[0] < 0 || g.Bits[0] >= spec.Bits {
				return nil, bad("bit %d out of range [0,%d)", g.Bits[0], spec.Bits)
			}
			c.AddMeasure(circuit.Node(g.Qubits[0]), circuit.Bit(g.Bits[0]))
		case circuit.Barrier:
			c.AddBarrier(toNodes(g.Qubits)...)
		default:
			if len(g.Params) != op.NumParams() {
				return nil, bad("takes %d params, got %d", op.NumParams(), len(g.Params))
			}
			if len(g.Qubits) != op.NumQubits() {
				return nil, bad("takes %d qubits, got %d", op.NumQubits(), len(g.Qubits))
			}
			c.AddGate(op, g.Params, toNodes(g.Qubits)...)
		}
	}
	return c, nil
}

func toNodes(qubits []int) []circuit.Node {
	nodes := make([]circuit.Node, len(qubits))
	for i, q := range qubits {
		nodes[i] = circuit.Node(q)
	}
	return nodes
}
