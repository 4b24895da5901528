// Package circuit implements the gate builder (C1), arithmetic kernels
// (C2), panic channel (C3), circuit finalizer (C5), circuit evaluator (C6)
// and bit-layout helpers (C7) of the compilation pipeline described in
// spec §4. A Builder is built up by lowering (package lower, C4) and
// consumed exactly once by Build to produce an immutable Circuit.
package circuit

// Wire is a nonnegative integer index identifying one boolean signal.
// Wire 0 denotes constant false, wire 1 denotes constant true, the next
// sum(input widths) indices are party input wires in party order, and every
// gate appended afterwards allocates exactly one new wire equal to its own
// position in the gate sequence (spec §3).
type Wire int

const (
	// FalseWire is the reserved constant-false wire.
	FalseWire Wire = 0
	// TrueWire is the reserved constant-true wire.
	TrueWire Wire = 1
)
