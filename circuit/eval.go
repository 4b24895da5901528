package circuit

import (
	"errors"
	"fmt"

	"github.com/getamis/circuitc/logger"
)

// ErrPartyCount is returned by Eval when the number of supplied input
// vectors does not match len(Circuit.InputWidths).
var ErrPartyCount = errors.New("circuit: wrong number of party input vectors")

// ErrInputWidth is returned by Eval when a supplied party input vector's
// length does not match that party's declared input width. Distinct from
// EvalPanic: this is a caller precondition violation, not a circuit-level
// runtime failure (spec §4.4/§6 distinguish the two explicitly).
var ErrInputWidth = errors.New("circuit: party input vector has the wrong width")

// EvalPanic is the decoded Panic Channel state for one evaluation: the
// concrete reason and source span of the first runtime failure encountered,
// decoded only once HasPanicked is set for this particular input (spec
// §4.3).
type EvalPanic struct {
	Reason      PanicReason
	StartLine   uint64
	StartColumn uint64
	EndLine     uint64
	EndColumn   uint64
}

// EvalOutcome is the result of evaluating a Circuit on concrete inputs. Per
// spec §4.6, Outputs is a per-wire diagnostic view: it has exactly
// len(totalInputs)+len(Gates) entries, the same index-to-wire mapping the
// circuit itself uses, with every non-output wire left nil so a caller can
// still correlate a value back to the wire that produced it. Panic is set
// exactly when the computation panicked (spec §4.4's "panics are data"
// model); Eval itself never returns an error for a circuit-level panic.
type EvalOutcome struct {
	Outputs     []*bool
	Panic       *EvalPanic
	outputWires []Wire
}

// OutputBits compacts Outputs down to the circuit's declared output wires,
// in declared order. Every entry is non-nil here: OutputWires are always
// among the wires Eval populates.
func (o *EvalOutcome) OutputBits() []bool {
	out := make([]bool, len(o.outputWires))
	for i, w := range o.outputWires {
		out[i] = *o.Outputs[w]
	}
	return out
}

// Eval runs the strict, single-threaded topological evaluator of spec §4.4
// over partyInputs (one []bool per party, MSB-first, matching
// Circuit.InputWidths). It never fans out work across goroutines: gate i
// only ever depends on wires with index < i, so a single left-to-right pass
// over Gates is sufficient and keeps evaluation trivially deterministic.
func (c *Circuit) Eval(partyInputs [][]bool) (*EvalOutcome, error) {
	if len(partyInputs) != len(c.InputWidths) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrPartyCount, len(partyInputs), len(c.InputWidths))
	}
	for i, in := range partyInputs {
		if len(in) != c.InputWidths[i] {
			return nil, fmt.Errorf("%w: party %d got %d bits, want %d", ErrInputWidth, i, len(in), c.InputWidths[i])
		}
	}

	totalInputs := 0
	for _, w := range c.InputWidths {
		totalInputs += w
	}

	values := make([]bool, totalInputs+len(c.Gates))
	offset := 0
	for _, in := range partyInputs {
		copy(values[offset:], in)
		offset += len(in)
	}

	for i, g := range c.Gates {
		idx := totalInputs + i
		switch g.Op {
		case GateXOR:
			values[idx] = values[g.A] != values[g.B]
		case GateAND:
			values[idx] = values[g.A] && values[g.B]
		case GateNOT:
			values[idx] = !values[g.A]
		}
	}

	logger.Logger().Debug("evaluated circuit", "gates", len(c.Gates), "outputs", len(c.OutputWires))

	if values[c.Panic.HasPanicked] {
		return &EvalOutcome{Panic: &EvalPanic{
			Reason:      PanicReason(decodeBits(values, c.Panic.Reason)),
			StartLine:   decodeBits(values, c.Panic.StartLine),
			StartColumn: decodeBits(values, c.Panic.StartColumn),
			EndLine:     decodeBits(values, c.Panic.EndLine),
			EndColumn:   decodeBits(values, c.Panic.EndColumn),
		}}, nil
	}

	outputs := make([]*bool, len(values))
	for _, w := range c.OutputWires {
		v := values[w]
		outputs[w] = &v
	}
	return &EvalOutcome{Outputs: outputs, outputWires: append([]Wire(nil), c.OutputWires...)}, nil
}

func decodeBits(values []bool, wires []Wire) uint64 {
	var v uint64
	for _, w := range wires {
		v <<= 1
		if values[w] {
			v |= 1
		}
	}
	return v
}
