package lower

import (
	"errors"
	"fmt"

	"github.com/getamis/circuitc/ast"
	"github.com/getamis/circuitc/circuit"
	"github.com/getamis/circuitc/config"
	"github.com/getamis/circuitc/logger"
)

// ErrUnknownIdentifier, ErrUnknownFunction and ErrRecursiveCall are the
// lowering-time failures a malformed (but already type-checked) program can
// still trigger; spec's Non-goals exclude type-checking and parsing, but
// lowering still needs to fail cleanly rather than panic the Go process.
var (
	ErrUnknownIdentifier = errors.New("lower: reference to an unbound identifier")
	ErrUnknownFunction   = errors.New("lower: call to an undefined function")
	ErrRecursiveCall     = errors.New("lower: function calls cannot be recursive")
)

// Lowering is the per-compilation state threaded through every lowerExpr
// call: the circuit being built, the lexical environment, the program
// being compiled (for struct/enum/function lookups), and which functions
// are currently being inlined (cycle guard).
type Lowering struct {
	b        *circuit.Builder
	env      *Env
	prog     *ast.Program
	opts     *config.Options
	inlining map[string]bool
}

// Compile lowers program's main function to a finalized circuit.Circuit.
// Every ast.MainParam becomes a contiguous slice of a party's input wires,
// in declaration order; the main body's result becomes the circuit's
// output wires.
func Compile(program *ast.Program, opts *config.Options) (*circuit.Circuit, error) {
	if opts == nil {
		opts = config.Default()
	}

	partyCount := program.PartyCount()
	inputWidths := make([]int, partyCount)
	paramOffsets := make([]int, len(program.MainParams))
	for i, p := range program.MainParams {
		paramOffsets[i] = inputWidths[p.Party]
		inputWidths[p.Party] += circuit.LayoutWidth(p.Type)
	}

	b := circuit.NewBuilder(inputWidths, opts)
	lw := &Lowering{
		b:        b,
		env:      NewEnv(),
		prog:     program,
		opts:     opts,
		inlining: make(map[string]bool),
	}

	for i, p := range program.MainParams {
		width := circuit.LayoutWidth(p.Type)
		wires := make([]circuit.Wire, width)
		for bit := 0; bit < width; bit++ {
			wires[bit] = b.InputWire(int(p.Party), paramOffsets[i]+bit)
		}
		lw.env.Define(p.Name, wires)
	}

	logger.Logger().Info("lowering main", "parties", partyCount, "params", len(program.MainParams))

	outputs, err := lw.lowerExpr(program.MainBody)
	if err != nil {
		return nil, err
	}
	return b.Build(outputs)
}

func (lw *Lowering) lowerExpr(e *ast.Expr) ([]circuit.Wire, error) {
	switch k := e.Kind.(type) {
	case ast.True:
		return []circuit.Wire{circuit.TrueWire}, nil
	case ast.False:
		return []circuit.Wire{circuit.FalseWire}, nil
	case ast.NumUnsigned:
		return circuit.UnsignedBits(k.Value, e.Type.Width), nil
	case ast.NumSigned:
		return circuit.SignedBits(k.Value, e.Type.Width), nil
	case ast.Identifier:
		w, ok := lw.env.Lookup(k.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIdentifier, k.Name)
		}
		return w, nil
	case ast.UnaryOpExpr:
		return lw.lowerUnaryOp(k, e)
	case ast.BinOpExpr:
		return lw.lowerBinOp(k, e)
	case ast.Block:
		return lw.lowerExpr(k.Body)
	case ast.Let:
		return lw.lowerLet(k)
	case ast.Assign:
		return lw.lowerAssign(k)
	case ast.If:
		return lw.lowerIf(k)
	case ast.Match:
		return lw.lowerMatch(k)
	case ast.Cast:
		return lw.lowerCast(k, e)
	case ast.FnCall:
		return lw.lowerFnCall(k)
	case ast.ArrayLiteral:
		return lw.lowerArrayLiteral(k)
	case ast.ArrayRepeatLiteral:
		return lw.lowerArrayRepeatLiteral(k)
	case ast.ArrayAccess:
		return lw.lowerArrayAccess(k, e)
	case ast.ArrayAssignment:
		return lw.lowerArrayAssignment(k, e)
	case ast.TupleLiteral:
		return lw.lowerTupleLiteral(k)
	case ast.TupleAccess:
		return lw.lowerTupleAccess(k)
	case ast.StructLiteral:
		return lw.lowerStructLiteral(k)
	case ast.StructAccess:
		return lw.lowerStructAccess(k)
	case ast.EnumLiteral:
		return lw.lowerEnumLiteral(k, e)
	case ast.Fold:
		return lw.lowerFold(k)
	case ast.Map:
		return lw.lowerMap(k)
	case ast.For:
		return lw.lowerFor(k)
	default:
		return nil, fmt.Errorf("lower: unsupported expression kind %T", k)
	}
}

func (lw *Lowering) lowerUnaryOp(k ast.UnaryOpExpr, e *ast.Expr) ([]circuit.Wire, error) {
	x, err := lw.lowerExpr(k.Operand)
	if err != nil {
		return nil, err
	}
	switch k.Op {
	case ast.Not:
		out := make([]circuit.Wire, len(x))
		for i, w := range x {
			out[i] = lw.b.PushNot(w)
		}
		return out, nil
	case ast.Neg:
		neg, overflow := lw.b.NegationCircuit(x)
		lw.b.PushPanicIf(overflow, circuit.PanicReasonOverflow, spanOf(e.Span))
		return neg, nil
	default:
		return nil, fmt.Errorf("lower: unsupported unary op %v", k.Op)
	}
}

func (lw *Lowering) lowerBinOp(k ast.BinOpExpr, e *ast.Expr) ([]circuit.Wire, error) {
	left, err := lw.lowerExpr(k.Left)
	if err != nil {
		return nil, err
	}
	right, err := lw.lowerExpr(k.Right)
	if err != nil {
		return nil, err
	}
	b := lw.b
	signed := k.Left.Type.Kind == ast.KindSigned

	switch k.Op {
	case ast.Add:
		sum, carryOut, carryIntoMSB := b.AdditionCircuit(left, right)
		overflow := signedOrUnsignedOverflow(b, signed, carryOut, carryIntoMSB)
		b.PushPanicIf(overflow, circuit.PanicReasonOverflow, spanOf(e.Span))
		return sum, nil
	case ast.Sub:
		diff, overflow := b.SubtractionCircuit(left, right, signed)
		b.PushPanicIf(overflow, circuit.PanicReasonOverflow, spanOf(e.Span))
		return diff, nil
	case ast.Mul:
		product, overflow := b.MultiplicationCircuit(left, right, signed)
		b.PushPanicIf(overflow, circuit.PanicReasonOverflow, spanOf(e.Span))
		return product, nil
	case ast.Div:
		if signed {
			q, _, divByZero := b.SignedDivisionCircuit(left, right)
			b.PushPanicIf(divByZero, circuit.PanicReasonDivByZero, spanOf(e.Span))
			return q, nil
		}
		q, _, divByZero := b.UnsignedDivisionCircuit(left, right)
		b.PushPanicIf(divByZero, circuit.PanicReasonDivByZero, spanOf(e.Span))
		return q, nil
	case ast.Mod:
		if signed {
			_, r, divByZero := b.SignedDivisionCircuit(left, right)
			b.PushPanicIf(divByZero, circuit.PanicReasonDivByZero, spanOf(e.Span))
			return r, nil
		}
		_, r, divByZero := b.UnsignedDivisionCircuit(left, right)
		b.PushPanicIf(divByZero, circuit.PanicReasonDivByZero, spanOf(e.Span))
		return r, nil
	case ast.BitAnd, ast.ShortCircuitAnd:
		return elementwise(b, left, right, (*circuit.Builder).PushAnd), nil
	case ast.BitOr, ast.ShortCircuitOr:
		return elementwise(b, left, right, (*circuit.Builder).PushOr), nil
	case ast.BitXor:
		return elementwise(b, left, right, (*circuit.Builder).PushXor), nil
	case ast.GreaterThan:
		gt, _, _ := b.ComparatorCircuit(left, right, signed)
		return []circuit.Wire{gt}, nil
	case ast.LessThan:
		_, lt, _ := b.ComparatorCircuit(left, right, signed)
		return []circuit.Wire{lt}, nil
	case ast.Eq:
		return []circuit.Wire{vectorEq(b, left, right)}, nil
	case ast.NotEq:
		return []circuit.Wire{b.PushNot(vectorEq(b, left, right))}, nil
	case ast.ShiftLeft:
		return b.BarrelShiftLeft(left, right), nil
	case ast.ShiftRight:
		if signed {
			return b.BarrelShiftRightArithmetic(left, right), nil
		}
		return b.BarrelShiftRightLogical(left, right), nil
	default:
		return nil, fmt.Errorf("lower: unsupported binary op %v", k.Op)
	}
}

func signedOrUnsignedOverflow(b *circuit.Builder, signed bool, carryOut, carryIntoMSB circuit.Wire) circuit.Wire {
	if signed {
		return b.PushXor(carryOut, carryIntoMSB)
	}
	return carryOut
}

func elementwise(b *circuit.Builder, x, y []circuit.Wire, op func(*circuit.Builder, circuit.Wire, circuit.Wire) circuit.Wire) []circuit.Wire {
	out := make([]circuit.Wire, len(x))
	for i := range x {
		out[i] = op(b, x[i], y[i])
	}
	return out
}

func (lw *Lowering) lowerLet(k ast.Let) ([]circuit.Wire, error) {
	lw.env.Push()
	defer lw.env.Pop()
	for _, binding := range k.Bindings {
		wires, err := lw.lowerExpr(binding.Value)
		if err != nil {
			return nil, err
		}
		if err := lw.bindIrrefutable(binding.Pattern, binding.Value.Type, wires); err != nil {
			return nil, err
		}
	}
	return lw.lowerExpr(k.Body)
}

func (lw *Lowering) lowerAssign(k ast.Assign) ([]circuit.Wire, error) {
	wires, err := lw.lowerExpr(k.Value)
	if err != nil {
		return nil, err
	}
	if !lw.env.Assign(k.Name, wires) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdentifier, k.Name)
	}
	return wires, nil
}

// lowerIf lowers both branches unconditionally (the circuit model has no
// true control flow) and selects the taken branch's value and panic state
// with PushMux/MuxPanic (spec §4.4).
func (lw *Lowering) lowerIf(k ast.If) ([]circuit.Wire, error) {
	condWires, err := lw.lowerExpr(k.Cond)
	if err != nil {
		return nil, err
	}
	cond := condWires[0]
	b := lw.b

	saved := b.PeekPanic()
	thenWires, err := lw.lowerExpr(k.Then)
	if err != nil {
		return nil, err
	}
	thenPanic := b.ReplacePanicWith(saved)

	elseWires, err := lw.lowerExpr(k.Else)
	if err != nil {
		return nil, err
	}
	elsePanic := b.PeekPanic()

	merged := b.MuxPanic(cond, thenPanic, elsePanic)
	b.ReplacePanicWith(merged)

	return b.MuxVec(cond, thenWires, elseWires), nil
}

// lowerMatch evaluates every arm's guard condition and body unconditionally,
// then folds them right-to-left so the first matching arm (in source
// order) wins, mirroring push_mux-based if/else chaining. If no guard
// matches (only possible for a non-exhaustive match, which the language's
// type checker is expected to reject, but lowering defends against it
// anyway) a PanicReasonMatchFailed panic fires.
func (lw *Lowering) lowerMatch(k ast.Match) ([]circuit.Wire, error) {
	scrutinee, err := lw.lowerExpr(k.Scrutinee)
	if err != nil {
		return nil, err
	}
	b := lw.b
	saved := b.PeekPanic()

	type armResult struct {
		cond   circuit.Wire
		wires  []circuit.Wire
		panics circuit.PanicLayout
	}
	arms := make([]armResult, len(k.Arms))
	anyMatched := circuit.FalseWire
	for i, arm := range k.Arms {
		lw.env.Push()
		b.ReplacePanicWith(saved)
		cond, err := lw.matchCondition(arm.Pattern, k.Scrutinee.Type, scrutinee)
		if err != nil {
			lw.env.Pop()
			return nil, err
		}
		wires, err := lw.lowerExpr(arm.Body)
		lw.env.Pop()
		if err != nil {
			return nil, err
		}
		arms[i] = armResult{cond: cond, wires: wires, panics: b.PeekPanic()}
		anyMatched = b.PushOr(anyMatched, cond)
	}

	b.ReplacePanicWith(saved)
	b.PushPanicIf(b.PushNot(anyMatched), circuit.PanicReasonMatchFailed, spanOf(k.Scrutinee.Span))

	if len(arms) == 0 {
		return nil, fmt.Errorf("lower: match with no arms")
	}
	resultWires := arms[len(arms)-1].wires
	resultPanic := arms[len(arms)-1].panics
	for i := len(arms) - 2; i >= 0; i-- {
		resultWires = b.MuxVec(arms[i].cond, arms[i].wires, resultWires)
		resultPanic = b.MuxPanic(arms[i].cond, arms[i].panics, resultPanic)
	}
	merged := b.MuxPanic(anyMatched, resultPanic, b.PeekPanic())
	b.ReplacePanicWith(merged)
	return resultWires, nil
}

func (lw *Lowering) lowerCast(k ast.Cast, e *ast.Expr) ([]circuit.Wire, error) {
	x, err := lw.lowerExpr(k.Operand)
	if err != nil {
		return nil, err
	}
	width := circuit.LayoutWidth(k.Target)
	if width <= len(x) {
		return x[len(x)-width:], nil
	}
	if k.Operand.Type.Kind == ast.KindSigned {
		return lw.b.SignExtend(x, width), nil
	}
	return lw.b.ZeroExtend(x, width), nil
}

func (lw *Lowering) lowerFnCall(k ast.FnCall) ([]circuit.Wire, error) {
	fn, ok := lw.prog.Funcs[k.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, k.Name)
	}
	if lw.inlining[k.Name] {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveCall, k.Name)
	}
	args := make([][]circuit.Wire, len(k.Args))
	for i, arg := range k.Args {
		w, err := lw.lowerExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = w
	}

	lw.inlining[k.Name] = true
	lw.env.Push()
	for i, param := range fn.Params {
		lw.env.Define(param.Name, args[i])
	}
	result, err := lw.lowerExpr(fn.Body)
	lw.env.Pop()
	delete(lw.inlining, k.Name)
	return result, err
}

func (lw *Lowering) lowerArrayLiteral(k ast.ArrayLiteral) ([]circuit.Wire, error) {
	var out []circuit.Wire
	for _, elem := range k.Elems {
		w, err := lw.lowerExpr(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, w...)
	}
	return out, nil
}

func (lw *Lowering) lowerArrayRepeatLiteral(k ast.ArrayRepeatLiteral) ([]circuit.Wire, error) {
	elem, err := lw.lowerExpr(k.Elem)
	if err != nil {
		return nil, err
	}
	out := make([]circuit.Wire, 0, len(elem)*k.Count)
	for i := 0; i < k.Count; i++ {
		out = append(out, elem...)
	}
	return out, nil
}

// arrayInBounds reports whether idx can ever address past the end of an
// n-element array, and if so the "idx < n" wire. When idx's width can't
// represent any value >= n (the index space is entirely in range), no
// check is needed: ok is false and callers must skip the panic.
func arrayInBounds(b *circuit.Builder, idx []circuit.Wire, n int) (inBounds circuit.Wire, ok bool) {
	width := len(idx)
	if width < 64 && uint64(n) >= uint64(1)<<uint(width) {
		return 0, false
	}
	constN := circuit.UnsignedBits(uint64(n), width)
	_, lt, _ := b.ComparatorCircuit(idx, constN, false)
	return lt, true
}

// lowerArrayAccess selects arr[idx] with the binary mux tree of spec §4.4
// (IndexedSelect), keyed one bit of idx at a time, rather than an N-way
// linear scan of equality comparators.
func (lw *Lowering) lowerArrayAccess(k ast.ArrayAccess, e *ast.Expr) ([]circuit.Wire, error) {
	arr, err := lw.lowerExpr(k.Array)
	if err != nil {
		return nil, err
	}
	idx, err := lw.lowerExpr(k.Index)
	if err != nil {
		return nil, err
	}
	elemType := *k.Array.Type.Elem
	elemWidth := circuit.LayoutWidth(elemType)
	n := k.Array.Type.Len

	b := lw.b
	slots := make([][]circuit.Wire, n)
	for i := 0; i < n; i++ {
		slots[i] = arr[i*elemWidth : (i+1)*elemWidth]
	}
	fill := make([]circuit.Wire, elemWidth)
	for i := range fill {
		fill[i] = circuit.TrueWire
	}
	result := b.IndexedSelect(slots, idx, fill)

	if inBounds, ok := arrayInBounds(b, idx, n); ok {
		b.PushPanicIf(b.PushNot(inBounds), circuit.PanicReasonOutOfBounds, spanOf(e.Span))
	}
	return result, nil
}

// lowerArrayAssignment overwrites arr[idx] with value via a per-element
// chain of index-bit muxes (spec §4.4, grounded on the reference
// compiler's ArrayAssignment lowering): for element i, the chain freezes
// onto the element's own current value as soon as one index bit fails to
// match i's bit pattern, and otherwise carries value through to the end.
func (lw *Lowering) lowerArrayAssignment(k ast.ArrayAssignment, e *ast.Expr) ([]circuit.Wire, error) {
	arr, err := lw.lowerExpr(k.Array)
	if err != nil {
		return nil, err
	}
	idx, err := lw.lowerExpr(k.Index)
	if err != nil {
		return nil, err
	}
	value, err := lw.lowerExpr(k.Value)
	if err != nil {
		return nil, err
	}
	elemType := *k.Array.Type.Elem
	elemWidth := circuit.LayoutWidth(elemType)
	n := k.Array.Type.Len

	b := lw.b
	out := append([]circuit.Wire(nil), arr...)

	if inBounds, ok := arrayInBounds(b, idx, n); ok {
		b.PushPanicIf(b.PushNot(inBounds), circuit.PanicReasonOutOfBounds, spanOf(e.Span))
	}

	idxNeg := make([]circuit.Wire, len(idx))
	for i, w := range idx {
		idxNeg[i] = b.PushNot(w)
	}
	for i := 0; i < n; i++ {
		for bit := 0; bit < elemWidth; bit++ {
			x1 := value[bit]
			for s := 0; s < len(idx); s++ {
				sel := idx[s]
				if (i>>(len(idx)-s-1))&1 != 0 {
					sel = idxNeg[s]
				}
				x0 := out[i*elemWidth+bit]
				x1 = b.PushMux(sel, x0, x1)
			}
			out[i*elemWidth+bit] = x1
		}
	}
	return out, nil
}

func (lw *Lowering) lowerTupleLiteral(k ast.TupleLiteral) ([]circuit.Wire, error) {
	var out []circuit.Wire
	for _, elem := range k.Elems {
		w, err := lw.lowerExpr(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, w...)
	}
	return out, nil
}

func (lw *Lowering) lowerTupleAccess(k ast.TupleAccess) ([]circuit.Wire, error) {
	tuple, err := lw.lowerExpr(k.Tuple)
	if err != nil {
		return nil, err
	}
	offset := 0
	for i := 0; i < k.Index; i++ {
		offset += circuit.LayoutWidth(k.Tuple.Type.Fields[i].Type)
	}
	width := circuit.LayoutWidth(k.Tuple.Type.Fields[k.Index].Type)
	return tuple[offset : offset+width], nil
}

func (lw *Lowering) lowerStructLiteral(k ast.StructLiteral) ([]circuit.Wire, error) {
	def, ok := lw.prog.Structs[k.Name]
	if !ok {
		return nil, fmt.Errorf("lower: unknown struct %s", k.Name)
	}
	var out []circuit.Wire
	for _, field := range def.Fields {
		for _, init := range k.Fields {
			if init.Name == field.Name {
				w, err := lw.lowerExpr(init.Value)
				if err != nil {
					return nil, err
				}
				out = append(out, w...)
				break
			}
		}
	}
	return out, nil
}

func (lw *Lowering) lowerStructAccess(k ast.StructAccess) ([]circuit.Wire, error) {
	s, err := lw.lowerExpr(k.Struct)
	if err != nil {
		return nil, err
	}
	def := lw.prog.Structs[k.Struct.Type.Struct.Name]
	offset := 0
	for _, field := range def.Fields {
		w := circuit.LayoutWidth(field.Type)
		if field.Name == k.Field {
			return s[offset : offset+w], nil
		}
		offset += w
	}
	return nil, fmt.Errorf("lower: unknown field %s on struct %s", k.Field, def.Name)
}

func (lw *Lowering) lowerEnumLiteral(k ast.EnumLiteral, e *ast.Expr) ([]circuit.Wire, error) {
	def, ok := lw.prog.Enums[k.EnumName]
	if !ok {
		return nil, fmt.Errorf("lower: unknown enum %s", k.EnumName)
	}
	idx := enumVariantIndex(def, k.Variant)
	tagBits := def.TagBits()
	maxPayload := circuit.LayoutWidth(e.Type) - tagBits

	out := circuit.UnsignedBits(uint64(idx), tagBits)
	var payload []circuit.Wire
	for _, p := range k.Payload {
		w, err := lw.lowerExpr(p)
		if err != nil {
			return nil, err
		}
		payload = append(payload, w...)
	}
	for len(payload) < maxPayload {
		payload = append(payload, circuit.FalseWire)
	}
	return append(out, payload...), nil
}

func (lw *Lowering) lowerFold(k ast.Fold) ([]circuit.Wire, error) {
	arr, err := lw.lowerExpr(k.Array)
	if err != nil {
		return nil, err
	}
	acc, err := lw.lowerExpr(k.Init)
	if err != nil {
		return nil, err
	}
	elemType := *k.Array.Type.Elem
	elemWidth := circuit.LayoutWidth(elemType)
	n := k.Array.Type.Len

	for i := 0; i < n; i++ {
		lw.env.Push()
		lw.env.Define(k.Closure.Params[0].Name, acc)
		lw.env.Define(k.Closure.Params[1].Name, arr[i*elemWidth:(i+1)*elemWidth])
		next, err := lw.lowerExpr(k.Closure.Body)
		lw.env.Pop()
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

func (lw *Lowering) lowerMap(k ast.Map) ([]circuit.Wire, error) {
	arr, err := lw.lowerExpr(k.Array)
	if err != nil {
		return nil, err
	}
	elemType := *k.Array.Type.Elem
	elemWidth := circuit.LayoutWidth(elemType)
	n := k.Array.Type.Len

	var out []circuit.Wire
	for i := 0; i < n; i++ {
		lw.env.Push()
		lw.env.Define(k.Closure.Params[0].Name, arr[i*elemWidth:(i+1)*elemWidth])
		w, err := lw.lowerExpr(k.Closure.Body)
		lw.env.Pop()
		if err != nil {
			return nil, err
		}
		out = append(out, w...)
	}
	return out, nil
}

func (lw *Lowering) lowerFor(k ast.For) ([]circuit.Wire, error) {
	arr, err := lw.lowerExpr(k.Array)
	if err != nil {
		return nil, err
	}
	elemType := *k.Array.Type.Elem
	elemWidth := circuit.LayoutWidth(elemType)
	n := k.Array.Type.Len

	for i := 0; i < n; i++ {
		lw.env.Push()
		lw.env.Define(k.Closure.Params[0].Name, arr[i*elemWidth:(i+1)*elemWidth])
		_, err := lw.lowerExpr(k.Closure.Body)
		lw.env.Pop()
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func spanOf(s ast.Span) circuit.Span {
	return circuit.Span{
		StartLine:   s.StartLine,
		StartColumn: s.StartColumn,
		EndLine:     s.EndLine,
		EndColumn:   s.EndColumn,
	}
}
