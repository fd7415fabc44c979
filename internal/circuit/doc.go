// Package circuit defines the quantum circuit value types shared by the
// compiler and the backend adapter.
//
// A Circuit is an ordered list of Commands over integer-indexed qubits
// (Node) and classical bits (Bit). Rotation parameters are expressed in
// half-turns, so a parameter of 1 is a rotation by pi radians. Commands are
// immutable once appended; passes produce new command lists rather than
// editing in place.
//
// The package also owns the mapping between the zero-based node scheme used
// internally and the one-based "QB<n>" naming scheme used by the IQM
// service.
package circuit
