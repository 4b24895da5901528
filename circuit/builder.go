package circuit

import (
	"github.com/getamis/circuitc/config"
)

// Builder is the mutable, single-owner state that lowering (C4) drives to
// produce gates. It interns gates for sub-expression sharing, applies
// peephole algebra on every push, and carries the Panic Channel (C3) state
// for the path currently being lowered. Build consumes it exactly once.
type Builder struct {
	opts *config.Options

	inputWidths []int
	// shift is the index of the first gate-allocated wire: 2 reserved
	// constant wires plus every party's input wires.
	shift int

	gates       []builderGate
	cache       map[builderGate]Wire
	negated     map[Wire]Wire
	gateCounter int

	gatesOptimized int

	panics PanicLayout
}

// NewBuilder allocates a Builder for the given per-party input widths. Wire
// 0/1 are reserved for constant false/true; the next sum(inputWidths) wires
// are the party inputs, in party order (spec §3).
func NewBuilder(inputWidths []int, opts *config.Options) *Builder {
	if opts == nil {
		opts = config.Default()
	}
	shift := 2
	for _, w := range inputWidths {
		shift += w
	}
	return &Builder{
		opts:        opts,
		inputWidths: append([]int(nil), inputWidths...),
		shift:       shift,
		cache:       make(map[builderGate]Wire),
		negated:     make(map[Wire]Wire),
		gateCounter: shift,
		panics:      emptyPanicLayout(opts.PanicWordWidth),
	}
}

// InputWire returns the wire of bit `bit` (0-indexed from the start of that
// party's region) of party p's input vector.
func (b *Builder) InputWire(party, bit int) Wire {
	offset := 2
	for i := 0; i < party; i++ {
		offset += b.inputWidths[i]
	}
	return Wire(offset + bit)
}

// isGateWire reports whether w refers to a gate this builder produced
// (as opposed to a constant or input wire).
func (b *Builder) isGateWire(w Wire) bool {
	return int(w) >= b.shift
}

func (b *Builder) gateAt(w Wire) builderGate {
	return b.gates[int(w)-b.shift]
}

// optimizeGate is the bounded-depth contextual rewriter of spec §4.1: given
// a wire and a wire `isTrue` known to be true on this path, it descends up
// to MaxOptimizationDepth levels, replacing isTrue by TRUE and re-running
// algebraic rules.
func (b *Builder) optimizeGate(w, isTrue Wire, depth int) Wire {
	if depth >= b.opts.MaxOptimizationDepth {
		return w
	}
	if w == isTrue {
		return TrueWire
	}
	if b.isGateWire(w) {
		g := b.gateAt(w)
		switch g.op {
		case opXor:
			if opt, ok := b.optimizeXor(g.a, g.b, isTrue, depth+1); ok {
				return opt
			}
		case opAnd:
			if opt, ok := b.optimizeAnd(g.a, g.b, isTrue, depth+1); ok {
				return opt
			}
		}
	}
	return w
}

func (b *Builder) optimizeXor(x, y, isTrue Wire, depth int) (Wire, bool) {
	x = b.optimizeGate(x, isTrue, depth)
	y = b.optimizeGate(y, isTrue, depth)
	if x == FalseWire {
		return y, true
	}
	if y == FalseWire {
		return x, true
	}
	if x == y {
		return FalseWire, true
	}
	if xNeg, ok := b.negated[x]; ok {
		if xNeg == y {
			return TrueWire, true
		}
		if y == TrueWire {
			return xNeg, true
		}
	} else if yNeg, ok := b.negated[y]; ok {
		if yNeg == x {
			return TrueWire, true
		}
		if x == TrueWire {
			return yNeg, true
		}
	}
	if w, ok := b.cache[normalizedGate(opXor, x, y)]; ok {
		return w, true
	}
	return 0, false
}

func (b *Builder) optimizeAnd(x, y, isTrue Wire, depth int) (Wire, bool) {
	x = b.optimizeGate(x, isTrue, depth)
	y = b.optimizeGate(y, isTrue, depth)
	if x == FalseWire || y == FalseWire {
		return FalseWire, true
	}
	if x == TrueWire {
		return y, true
	}
	if y == TrueWire || x == y {
		return x, true
	}
	if xNeg, ok := b.negated[x]; ok {
		if xNeg == y {
			return FalseWire, true
		}
	} else if yNeg, ok := b.negated[y]; ok {
		if yNeg == x {
			return FalseWire, true
		}
	}
	if w, ok := b.cache[normalizedGate(opAnd, x, y)]; ok {
		return w, true
	}
	return 0, false
}

func (b *Builder) allocate(gate builderGate) Wire {
	b.gates = append(b.gates, gate)
	wire := Wire(b.gateCounter)
	b.gateCounter++
	b.cache[gate] = wire
	return wire
}

// PushXor appends (or reuses) an XOR gate, after applying the algebraic
// identities x^0=x, x^x=0, x^!x=1, x^1=!x (spec §4.1).
func (b *Builder) PushXor(x, y Wire) Wire {
	if w, ok := b.optimizeXor(x, y, TrueWire, 0); ok {
		b.gatesOptimized++
		return w
	}
	gate := normalizedGate(opXor, x, y)
	wire := b.allocate(gate)
	if x == TrueWire {
		b.negated[y] = wire
		b.negated[wire] = y
	}
	if y == TrueWire {
		b.negated[x] = wire
		b.negated[wire] = x
	}
	return wire
}

// PushAnd appends (or reuses) an AND gate. Before applying the ordinary
// identities, each operand is simplified under the assumption that the
// *other* operand is true (spec §4.1): this captures x & (!x | y) == x & y
// without general Boolean minimization.
func (b *Builder) PushAnd(x, y Wire) Wire {
	x2 := b.optimizeGate(x, y, 0)
	y2 := b.optimizeGate(y, x2, 0)
	if w, ok := b.optimizeAnd(x2, y2, TrueWire, b.opts.MaxOptimizationDepth); ok {
		b.gatesOptimized++
		return w
	}
	gate := normalizedGate(opAnd, x2, y2)
	return b.allocate(gate)
}

// PushNot is push_xor(x, TRUE): NOT is never a distinct builder gate, which
// keeps the interning key space small (spec §3).
func (b *Builder) PushNot(x Wire) Wire {
	return b.PushXor(x, TrueWire)
}

// PushOr computes x|y as (x^y)^(x&y).
func (b *Builder) PushOr(x, y Wire) Wire {
	xorW := b.PushXor(x, y)
	andW := b.PushAnd(x, y)
	return b.PushXor(xorW, andW)
}

// PushEq computes x==y as !(x^y).
func (b *Builder) PushEq(x, y Wire) Wire {
	xorW := b.PushXor(x, y)
	return b.PushNot(xorW)
}

// PushMux computes mux(s, x0, x1) = (x0&s) ^ (x1&!s); if x0==x1 it returns
// x0 directly with no new gates.
func (b *Builder) PushMux(s, x0, x1 Wire) Wire {
	if x0 == x1 {
		return x0
	}
	notS := b.PushNot(s)
	sel0 := b.PushAnd(x0, s)
	sel1 := b.PushAnd(x1, notS)
	return b.PushXor(sel0, sel1)
}

// GatesOptimized returns the number of push calls that resolved to an
// existing or constant wire instead of allocating a new gate. Diagnostic
// only (spec §4.5/§9).
func (b *Builder) GatesOptimized() int {
	return b.gatesOptimized
}

// GateCount returns the number of gates allocated so far (pre-finalization).
func (b *Builder) GateCount() int {
	return len(b.gates)
}
