package circuit

// PanicReason is the small integer packed, MSB-first, into a PanicLayout's
// Reason field (spec §4.3).
type PanicReason int

const (
	// PanicReasonOverflow covers signed +,-,*,unary-, and unsigned +,-,*
	// carry/borrow-out overflow (spec §4.4/§7).
	PanicReasonOverflow PanicReason = 1
	// PanicReasonDivByZero is raised when a / or % divisor is all-zero.
	PanicReasonDivByZero PanicReason = 2
	// PanicReasonOutOfBounds is raised by an array access/assignment whose
	// index is out of range.
	PanicReasonOutOfBounds PanicReason = 3
	// PanicReasonMatchFailed is raised when no match arm's guard is set.
	// spec §9 flags the original source's reuse of Overflow for this case
	// as an open question; this design introduces the dedicated reason the
	// spec's authors recommend instead.
	PanicReasonMatchFailed PanicReason = 4
)

func (r PanicReason) String() string {
	switch r {
	case PanicReasonOverflow:
		return "overflow"
	case PanicReasonDivByZero:
		return "div-by-zero"
	case PanicReasonOutOfBounds:
		return "out-of-bounds"
	case PanicReasonMatchFailed:
		return "match-failed"
	default:
		return "unknown"
	}
}

// PanicLayout is the set of wires carrying "did a runtime failure occur,
// and if so where and why" (spec §3/glossary). It is threaded through the
// whole lowering and merged at every join point; the evaluator decodes it
// into an EvalPanic only once a concrete input is evaluated.
type PanicLayout struct {
	HasPanicked Wire
	// Reason, StartLine, StartColumn, EndLine, EndColumn are each W wires
	// wide, MSB-first, where W is config.Options.PanicWordWidth.
	Reason      []Wire
	StartLine   []Wire
	StartColumn []Wire
	EndLine     []Wire
	EndColumn   []Wire
}

func emptyPanicLayout(width int) PanicLayout {
	return PanicLayout{
		HasPanicked: FalseWire,
		Reason:      constWires(width),
		StartLine:   constWires(width),
		StartColumn: constWires(width),
		EndLine:     constWires(width),
		EndColumn:   constWires(width),
	}
}

func constWires(width int) []Wire {
	w := make([]Wire, width)
	for i := range w {
		w[i] = FalseWire
	}
	return w
}

func clonePanicLayout(p PanicLayout) PanicLayout {
	return PanicLayout{
		HasPanicked: p.HasPanicked,
		Reason:      append([]Wire(nil), p.Reason...),
		StartLine:   append([]Wire(nil), p.StartLine...),
		StartColumn: append([]Wire(nil), p.StartColumn...),
		EndLine:     append([]Wire(nil), p.EndLine...),
		EndColumn:   append([]Wire(nil), p.EndColumn...),
	}
}

// Span is the minimal location information threaded into the panic layout.
// It mirrors ast.Span without importing the ast package, keeping circuit
// free of an upstream dependency.
type Span struct {
	StartLine, StartColumn int
	EndLine, EndColumn     int
}

// PushPanicIf folds a new conditional panic into the channel: if cond is
// true and no panic has been recorded yet on this path, reason/span become
// the recorded panic; otherwise the first-recorded panic is preserved. This
// makes the channel report the first panic in program order (spec §4.3,
// §8 "Panic ordering").
func (b *Builder) PushPanicIf(cond Wire, reason PanicReason, span Span) {
	alreadyPanicked := b.panics.HasPanicked
	b.panics.HasPanicked = b.PushOr(b.panics.HasPanicked, cond)

	width := len(b.panics.Reason)
	reasonBits := unsignedWireConst(uint64(reason), width)
	startLine := unsignedWireConst(uint64(span.StartLine), width)
	startCol := unsignedWireConst(uint64(span.StartColumn), width)
	endLine := unsignedWireConst(uint64(span.EndLine), width)
	endCol := unsignedWireConst(uint64(span.EndColumn), width)

	for i := 0; i < width; i++ {
		b.panics.Reason[i] = b.PushMux(alreadyPanicked, b.panics.Reason[i], reasonBits[i])
		b.panics.StartLine[i] = b.PushMux(alreadyPanicked, b.panics.StartLine[i], startLine[i])
		b.panics.StartColumn[i] = b.PushMux(alreadyPanicked, b.panics.StartColumn[i], startCol[i])
		b.panics.EndLine[i] = b.PushMux(alreadyPanicked, b.panics.EndLine[i], endLine[i])
		b.panics.EndColumn[i] = b.PushMux(alreadyPanicked, b.panics.EndColumn[i], endCol[i])
	}
}

// unsignedWireConst materializes n, MSB-first, as width constant wires
// (FalseWire/TrueWire), without going through the builder's push functions
// since these are fixed literal constants, not algebraic expressions.
func unsignedWireConst(n uint64, width int) []Wire {
	out := make([]Wire, width)
	for i := 0; i < width; i++ {
		bit := (n >> uint(width-1-i)) & 1
		if bit == 1 {
			out[i] = TrueWire
		} else {
			out[i] = FalseWire
		}
	}
	return out
}

// PeekPanic returns the panic state accumulated so far on the current path.
func (b *Builder) PeekPanic() PanicLayout {
	return clonePanicLayout(b.panics)
}

// ReplacePanicWith swaps in p as the builder's current panic state and
// returns the previous one. Nested constructs (fold iterations, function
// inlines) use this to save/restore the channel so that a conditionally
// reached panic only contributes through a join-point mux (spec §4.3).
func (b *Builder) ReplacePanicWith(p PanicLayout) PanicLayout {
	old := b.panics
	b.panics = p
	return old
}

// MuxPanic muxes every field of two panic layouts by condition, used at
// if/else and match join points (spec §4.3/§4.4).
func (b *Builder) MuxPanic(condition Wire, t, f PanicLayout) PanicLayout {
	width := len(t.Reason)
	out := emptyPanicLayout(width)
	out.HasPanicked = b.PushMux(condition, t.HasPanicked, f.HasPanicked)
	for i := 0; i < width; i++ {
		out.Reason[i] = b.PushMux(condition, t.Reason[i], f.Reason[i])
		out.StartLine[i] = b.PushMux(condition, t.StartLine[i], f.StartLine[i])
		out.StartColumn[i] = b.PushMux(condition, t.StartColumn[i], f.StartColumn[i])
		out.EndLine[i] = b.PushMux(condition, t.EndLine[i], f.EndLine[i])
		out.EndColumn[i] = b.PushMux(condition, t.EndColumn[i], f.EndColumn[i])
	}
	return out
}
