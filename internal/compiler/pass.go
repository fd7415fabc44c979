package compiler

import (
	"fmt"

	"github.com/CQCL/tket-iqm/internal/circuit"
)

// Pass is a single compilation transform. Apply returns the transformed
// circuit and whether anything changed. The input circuit is never
// modified.
type Pass interface {
	Name() string
	Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error)
}

// Sequence applies passes in order. Order is a correctness contract, not a
// tuning knob: callers must not reorder a sequence they did not build.
type Sequence struct {
	Passes []Pass
}

// Name implements Pass.
func (s *Sequence) Name() string { return "Sequence" }

// Apply runs every pass in order, threading the circuit through.
func (s *Sequence) Apply(c *circuit.Circuit) (*circuit.Circuit, bool, error) {
	changed := false
	for _, p := range s.Passes {
		next, ch, err := p.Apply(c)
		if err != nil {
			return nil, false, fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		c = next
		changed = changed || ch
	}
	return c, changed, nil
}

// PassNames returns the names of the passes in order. Used by tests and
// the CLI to report the pipeline shape.
func (s *Sequence) PassNames() []string {
	names := make([]string, len(s.Passes))
	for i, p := range s.Passes {
		names[i] = p.Name()
	}
	return names
}

// DefaultSequence builds the compilation pipeline for an optimisation
// level in {0, 1, 2}. Levels are monotonically more aggressive:
//
//	0: decompose composites, flatten, rebase
//	1: additionally a generic synthesis simplification before routing
//	2: additionally full peephole optimisation before routing and a
//	   structural simplification after routing
//
// All levels end with routing, measurement deferral, the native rebase and
// redundancy removal, in that fixed order. Levels 1 and 2 append an
// initial-state simplification that exploits qubits starting in |0>.
func DefaultSequence(arch *Architecture, level int) (*Sequence, error) {
	if level < 0 || level > 2 {
		return nil, fmt.Errorf("optimisation level %d out of range [0, 2]", level)
	}

	passes := []Pass{DecomposeComposites{}, FlattenRegisters{}}
	switch level {
	case 0:
		// Rebase early so the two-qubit gate count is bounded before
		// routing even when no optimisation is requested.
		passes = append(passes, RebaseIQM{})
	case 1:
		passes = append(passes, SynthesiseGeneric{})
	case 2:
		passes = append(passes, FullPeephole{})
	}
	passes = append(passes, &Route{Arch: arch})
	if level == 2 {
		passes = append(passes, StructuralSimplify{})
	}
	passes = append(passes, DelayMeasures{}, RebaseIQM{}, RemoveRedundancies{})
	if level >= 1 {
		passes = append(passes, SimplifyInitial{})
	}
	return &Sequence{Passes: passes}, nil
}
