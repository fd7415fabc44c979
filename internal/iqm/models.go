package iqm

import (
	"github.com/google/uuid"
)

// Instruction is a single native operation in the server's wire format.
// Args values must be JSON-serialisable; angles are given in full turns.
type Instruction struct {
	Name   string         `json:"name"`
	Qubits []string       `json:"qubits"`
	Args   map[string]any `json:"args"`
}

// Circuit is one circuit of a run request.
type Circuit struct {
	Name         string            `json:"name"`
	Instructions []Instruction     `json:"instructions"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// QubitMapping maps one logical circuit qubit onto a physical qubit name.
type QubitMapping struct {
	LogicalName  string `json:"logical_name"`
	PhysicalName string `json:"physical_name"`
}

// RunRequest is the payload of a job submission.
type RunRequest struct {
	Circuits         []Circuit      `json:"circuits"`
	Shots            int            `json:"shots"`
	QubitMapping     []QubitMapping `json:"qubit_mapping,omitempty"`
	CalibrationSetID string         `json:"calibration_set_id,omitempty"`
}

// Job statuses reported by the server. A job moves from the pending
// states to exactly one of ready, failed or aborted.
const (
	StatusPendingCompilation = "pending compilation"
	StatusPendingExecution   = "pending execution"
	StatusReady              = "ready"
	StatusFailed             = "failed"
	StatusAborted            = "aborted"
)

// StatusTerminal reports whether a job status can no longer change.
func StatusTerminal(status string) bool {
	switch status {
	case StatusReady, StatusFailed, StatusAborted:
		return true
	}
	return false
}

// Measurements holds the shot table for one circuit: measurement key to
// a [shots][qubits] matrix of 0/1 outcomes.
type Measurements map[string][][]int

// RunMetadata echoes the parameters a job was executed with: the
// calibration set the server chose and the submitted request.
type RunMetadata struct {
	CalibrationSetID string      `json:"calibration_set_id,omitempty"`
	Request          *RunRequest `json:"request,omitempty"`
}

// RunResult is the server's view of a submitted job.
type RunResult struct {
	Status       string         `json:"status"`
	Measurements []Measurements `json:"measurements,omitempty"`
	Metadata     *RunMetadata   `json:"metadata,omitempty"`
	Message      string         `json:"message,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// SubmitResponse carries the server-assigned job ID.
type SubmitResponse struct {
	ID uuid.UUID `json:"id"`
}

// QuantumArchitecture describes a device: its physical qubit names, the
// connected qubit pairs, and the native operation names it accepts.
type QuantumArchitecture struct {
	Name              string      `json:"name"`
	Qubits            []string    `json:"qubits"`
	QubitConnectivity [][2]string `json:"qubit_connectivity"`
	Operations        []string    `json:"operations"`
}

// HasOperation reports whether the device supports the named operation.
func (a *QuantumArchitecture) HasOperation(name string) bool {
	for _, op := range a.Operations {
		if op == name {
			return true
		}
	}
	return false
}

type architectureResponse struct {
	QuantumArchitecture QuantumArchitecture `json:"quantum_architecture"`
}
