package circuit

import (
	"errors"

	"github.com/getamis/circuitc/logger"
)

// ErrNoInputs is returned by Build when a program declares zero total input
// bits across all parties: finalization materializes the constant-false
// wire as a self-XOR of the first input wire, so at least one input bit
// must exist.
var ErrNoInputs = errors.New("circuit: program declares no input wires")

// Circuit is the immutable, finalized output of the compilation pipeline
// (spec §4.5/§6): a topologically ordered gate DAG plus the output wires
// and the Panic Channel layout, ready for the downstream S-MPC evaluator or
// for this package's own cleartext Eval.
type Circuit struct {
	InputWidths []int
	Gates       []Gate
	OutputWires []Wire
	Panic       PanicLayout
}

// Build consumes the Builder and produces a Circuit whose output wires are
// outputs, in order. It performs two independent passes (spec §4.5):
//
//  1. A reachability sweep prunes every builder-form gate that neither
//     outputs nor the panic layout depend on (skipped, keeping every gate,
//     when Options.PruneDeadGates is false).
//  2. An index-shift pass drops the builder's reserved constant wires 0/1
//     and instead materializes them as the first two gates of the final
//     circuit (Gate[n]=XOR(input0,input0) is false, Gate[n+1]=NOT(Gate[n])
//     is true, where n is the total input width) — the downstream gate
//     format has no notion of a reserved constant wire, only inputs and
//     gates. Builder-form XOR(x, TRUE) gates become real NOT gates here.
func (b *Builder) Build(outputs []Wire) (*Circuit, error) {
	inputCount := b.shift - 2
	if inputCount <= 0 {
		return nil, ErrNoInputs
	}

	roots := make([]Wire, 0, len(outputs)+5*len(b.panics.Reason)+1)
	roots = append(roots, outputs...)
	roots = append(roots, b.panics.HasPanicked)
	roots = append(roots, b.panics.Reason...)
	roots = append(roots, b.panics.StartLine...)
	roots = append(roots, b.panics.StartColumn...)
	roots = append(roots, b.panics.EndLine...)
	roots = append(roots, b.panics.EndColumn...)

	needed := make([]bool, len(b.gates))
	for _, w := range roots {
		if b.isGateWire(w) {
			needed[int(w)-b.shift] = true
		}
	}
	if !b.opts.PruneDeadGates {
		for i := range needed {
			needed[i] = true
		}
	}
	for i := len(b.gates) - 1; i >= 0; i-- {
		if !needed[i] {
			continue
		}
		g := b.gates[i]
		if b.isGateWire(g.a) {
			needed[int(g.a)-b.shift] = true
		}
		if b.isGateWire(g.b) {
			needed[int(g.b)-b.shift] = true
		}
	}

	unusedBefore := make([]int, len(b.gates)+1)
	for i := 0; i < len(b.gates); i++ {
		unusedBefore[i+1] = unusedBefore[i]
		if !needed[i] {
			unusedBefore[i+1]++
		}
	}

	prunedOps := make([]builderOp, 0, len(b.gates))
	prunedA := make([]Wire, 0, len(b.gates))
	prunedB := make([]Wire, 0, len(b.gates))
	for i, g := range b.gates {
		if !needed[i] {
			continue
		}
		prunedOps = append(prunedOps, g.op)
		prunedA = append(prunedA, g.a)
		prunedB = append(prunedB, g.b)
	}

	finalShift := func(w Wire) Wire {
		switch {
		case w == FalseWire:
			return Wire(inputCount)
		case w == TrueWire:
			return Wire(inputCount + 1)
		case int(w) < b.shift:
			return Wire(int(w) - 2)
		default:
			local := int(w) - b.shift - unusedBefore[int(w)-b.shift]
			return Wire(inputCount + 2 + local)
		}
	}

	gates := make([]Gate, 0, len(prunedOps)+2)
	gates = append(gates, Gate{Op: GateXOR, A: 0, B: 0})
	gates = append(gates, Gate{Op: GateNOT, A: Wire(inputCount)})
	for i := range prunedOps {
		if prunedOps[i] == opXor && (prunedA[i] == TrueWire || prunedB[i] == TrueWire) {
			operand := prunedA[i]
			if prunedA[i] == TrueWire {
				operand = prunedB[i]
			}
			gates = append(gates, Gate{Op: GateNOT, A: finalShift(operand)})
			continue
		}
		op := GateXOR
		if prunedOps[i] == opAnd {
			op = GateAND
		}
		gates = append(gates, Gate{Op: op, A: finalShift(prunedA[i]), B: finalShift(prunedB[i])})
	}

	outputWires := make([]Wire, len(outputs))
	for i, w := range outputs {
		outputWires[i] = finalShift(w)
	}

	panicFinal := PanicLayout{
		HasPanicked: finalShift(b.panics.HasPanicked),
		Reason:      finalShiftAll(b.panics.Reason, finalShift),
		StartLine:   finalShiftAll(b.panics.StartLine, finalShift),
		StartColumn: finalShiftAll(b.panics.StartColumn, finalShift),
		EndLine:     finalShiftAll(b.panics.EndLine, finalShift),
		EndColumn:   finalShiftAll(b.panics.EndColumn, finalShift),
	}

	logger.Logger().Debug("finalized circuit",
		"builderGates", len(b.gates), "prunedGates", len(b.gates)-len(prunedOps),
		"finalGates", len(gates), "gatesOptimized", b.gatesOptimized)

	return &Circuit{
		InputWidths: append([]int(nil), b.inputWidths...),
		Gates:       gates,
		OutputWires: outputWires,
		Panic:       panicFinal,
	}, nil
}

func finalShiftAll(ws []Wire, shift func(Wire) Wire) []Wire {
	out := make([]Wire, len(ws))
	for i, w := range ws {
		out[i] = shift(w)
	}
	return out
}
