// Package compiler implements the deterministic pass pipeline that lowers
// arbitrary circuits into the IQM native gate set {PhasedX, CZ, Measure,
// Barrier} and routes them onto a device connectivity graph.
//
// Passes are stateless transforms: each takes a circuit and returns a new
// circuit plus a changed flag. The pipeline for a given optimisation level
// is fixed; in particular routing always precedes the final rebase, so the
// connectivity guarantee established by routing is never invalidated.
package compiler
