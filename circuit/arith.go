package circuit

// This file implements the arithmetic kernels (spec §4.2): every kernel is
// built purely out of Builder.Push* primitives, so sub-expression sharing
// and peephole simplification apply to arithmetic the same as to anything
// else lowering emits. Every bit vector is MSB-first: index 0 is the most
// significant bit, matching the Panic Channel's word encoding (panic.go)
// and the bit-layout helpers (layout.go).

// FullAdder returns sum and carry-out of a+b+carryIn, the one-bit building
// block of the ripple-carry adder below.
func (b *Builder) FullAdder(a, c, carryIn Wire) (sum, carryOut Wire) {
	axorc := b.PushXor(a, c)
	sum = b.PushXor(axorc, carryIn)
	aAndC := b.PushAnd(a, c)
	t := b.PushAnd(axorc, carryIn)
	carryOut = b.PushOr(aAndC, t)
	return sum, carryOut
}

// AdditionCircuit ripple-carry adds two equal-width bit vectors. carryOut is
// the carry out of the MSB; carryIntoMSB is the carry into the MSB position,
// which together with carryOut detects signed overflow (carryOut !=
// carryIntoMSB) without a separate comparator (spec §4.2).
func (b *Builder) AdditionCircuit(a, c []Wire) (sum []Wire, carryOut, carryIntoMSB Wire) {
	n := len(a)
	sum = make([]Wire, n)
	carry := FalseWire
	for i := n - 1; i >= 0; i-- {
		if i == 0 {
			carryIntoMSB = carry
		}
		s, cOut := b.FullAdder(a[i], c[i], carry)
		sum[i] = s
		carry = cOut
	}
	carryOut = carry
	return sum, carryOut, carryIntoMSB
}

// NegationCircuit computes the two's-complement negation of a (invert every
// bit, add one). overflow is set exactly when a is the most negative signed
// value of its width, the one input whose negation cannot be represented.
func (b *Builder) NegationCircuit(a []Wire) (neg []Wire, overflow Wire) {
	inverted := make([]Wire, len(a))
	for i, w := range a {
		inverted[i] = b.PushNot(w)
	}
	one := unsignedConst(1, len(a))
	sum, carryOut, carryIntoMSB := b.AdditionCircuit(inverted, one)
	overflow = b.PushXor(carryOut, carryIntoMSB)
	return sum, overflow
}

// SubtractionCircuit computes a-c by extending both operands by one bit
// (sign-extended if signed, zero-extended otherwise) and adding a + (-c) in
// the extended width, then truncating (spec §4.2). overflow reports signed
// overflow or unsigned borrow-out, whichever signedness was requested.
func (b *Builder) SubtractionCircuit(a, c []Wire, signed bool) (diff []Wire, overflow Wire) {
	n := len(a)
	var aExt, cExt []Wire
	if signed {
		aExt = b.SignExtend(a, n+1)
		cExt = b.SignExtend(c, n+1)
	} else {
		aExt = b.ZeroExtend(a, n+1)
		cExt = b.ZeroExtend(c, n+1)
	}
	negC, _ := b.NegationCircuit(cExt)
	sum, _, _ := b.AdditionCircuit(aExt, negC)
	diff = sum[1:]
	if signed {
		overflow = b.PushXor(sum[0], sum[1])
	} else {
		overflow = sum[0]
	}
	return diff, overflow
}

// ComparatorCircuit compares a and c MSB-to-LSB, accumulating "decided
// greater" / "decided less" flags that latch on the first differing bit
// (spec §4.2). For a signed comparison both sign bits are flipped first,
// which turns it into the equivalent unsigned comparison.
func (b *Builder) ComparatorCircuit(a, c []Wire, signed bool) (gt, lt, eq Wire) {
	n := len(a)
	aCmp := append([]Wire(nil), a...)
	cCmp := append([]Wire(nil), c...)
	if signed && n > 0 {
		aCmp[0] = b.PushNot(a[0])
		cCmp[0] = b.PushNot(c[0])
	}
	accGt, accLt := FalseWire, FalseWire
	for i := 0; i < n; i++ {
		bitGt := b.PushAnd(aCmp[i], b.PushNot(cCmp[i]))
		bitLt := b.PushAnd(b.PushNot(aCmp[i]), cCmp[i])
		undecided := b.PushNot(b.PushOr(accGt, accLt))
		accGt = b.PushOr(accGt, b.PushAnd(undecided, bitGt))
		accLt = b.PushOr(accLt, b.PushAnd(undecided, bitLt))
	}
	return accGt, accLt, b.PushNot(b.PushOr(accGt, accLt))
}

// MuxVec applies PushMux element-wise; t and f must have equal length.
func (b *Builder) MuxVec(cond Wire, t, f []Wire) []Wire {
	out := make([]Wire, len(t))
	for i := range t {
		out[i] = b.PushMux(cond, t[i], f[i])
	}
	return out
}

func (b *Builder) isZero(bits []Wire) Wire {
	return b.PushNot(b.isNonZero(bits))
}

func (b *Builder) isNonZero(bits []Wire) Wire {
	acc := FalseWire
	for _, w := range bits {
		acc = b.PushOr(acc, w)
	}
	return acc
}

// UnsignedDivisionCircuit performs restoring division, processing one
// dividend bit per iteration MSB-first (spec §4.2). divByZero is set when
// divisor is all-zero; quotient/remainder are still produced (as the
// all-ones/all-dividend degenerate result of the algorithm) but lowering
// must treat them as undefined once divByZero fires a panic.
func (b *Builder) UnsignedDivisionCircuit(dividend, divisor []Wire) (quotient, remainder []Wire, divByZero Wire) {
	n := len(dividend)
	divByZero = b.isZero(divisor)
	rem := make([]Wire, n)
	for i := range rem {
		rem[i] = FalseWire
	}
	quotient = make([]Wire, n)
	for i := 0; i < n; i++ {
		rem = append(append([]Wire{}, rem[1:]...), dividend[i])
		diff, borrow := b.SubtractionCircuit(rem, divisor, false)
		canSubtract := b.PushNot(borrow)
		quotient[i] = canSubtract
		rem = b.MuxVec(canSubtract, diff, rem)
	}
	remainder = rem
	return quotient, remainder, divByZero
}

// SignedDivisionCircuit divides via the absolute-value trick (spec §4.2):
// take the magnitude of both operands, run the unsigned kernel, then
// reapply the sign of the mathematical quotient to the quotient and the
// sign of the dividend to the remainder (matching truncating-toward-zero
// semantics).
func (b *Builder) SignedDivisionCircuit(dividend, divisor []Wire) (quotient, remainder []Wire, divByZero Wire) {
	dSign, vSign := dividend[0], divisor[0]
	negD, _ := b.NegationCircuit(dividend)
	negV, _ := b.NegationCircuit(divisor)
	absD := b.MuxVec(dSign, negD, dividend)
	absV := b.MuxVec(vSign, negV, divisor)
	uq, ur, dz := b.UnsignedDivisionCircuit(absD, absV)
	resultSign := b.PushXor(dSign, vSign)
	negQ, _ := b.NegationCircuit(uq)
	negR, _ := b.NegationCircuit(ur)
	quotient = b.MuxVec(resultSign, negQ, uq)
	remainder = b.MuxVec(dSign, negR, ur)
	divByZero = dz
	return quotient, remainder, divByZero
}

// shiftConstLeft shifts a fixed-width bit vector left by a compile-time-known
// constant amount, filling vacated low bits with fill. It costs no gates:
// the result is a structural rearrangement of existing wires.
func shiftConstLeft(bits []Wire, amount int, fill Wire) []Wire {
	n := len(bits)
	out := make([]Wire, n)
	for i := 0; i < n; i++ {
		if i+amount < n {
			out[i] = bits[i+amount]
		} else {
			out[i] = fill
		}
	}
	return out
}

// MultiplicationCircuit computes the n-bit product of a and c via
// sign-magnitude shift-and-add (spec §4.2, resolved here since neither the
// distilled spec nor the reference source fixes an exact overflow scheme
// for multiply; see DESIGN.md). Operands are reduced to their unsigned
// magnitude, multiplied into a 2n-bit accumulator, then the result sign is
// reapplied; overflow fires when the discarded high half is nonzero, or
// when reapplying the sign does not reproduce the expected sign bit.
func (b *Builder) MultiplicationCircuit(a, c []Wire, signed bool) (product []Wire, overflow Wire) {
	n := len(a)
	aMag, cMag := a, c
	var signA, signC Wire
	if signed {
		signA, signC = a[0], c[0]
		negA, _ := b.NegationCircuit(a)
		negC, _ := b.NegationCircuit(c)
		aMag = b.MuxVec(signA, negA, a)
		cMag = b.MuxVec(signC, negC, c)
	}
	wideA := b.ZeroExtend(aMag, 2*n)
	acc := make([]Wire, 2*n)
	for i := range acc {
		acc[i] = FalseWire
	}
	zero := make([]Wire, 2*n)
	for i := range zero {
		zero[i] = FalseWire
	}
	for i := 0; i < n; i++ {
		bit := cMag[n-1-i]
		shifted := shiftConstLeft(wideA, i, FalseWire)
		addend := b.MuxVec(bit, shifted, zero)
		sum, _, _ := b.AdditionCircuit(acc, addend)
		acc = sum
	}
	high, low := acc[:n], acc[n:]
	overflowMag := b.isNonZero(high)
	if !signed {
		return low, overflowMag
	}
	resultSign := b.PushXor(signA, signC)
	negLow, _ := b.NegationCircuit(low)
	product = b.MuxVec(resultSign, negLow, low)
	signMismatch := b.PushXor(product[0], resultSign)
	overflow = b.PushOr(overflowMag, b.PushAnd(b.isNonZero(low), signMismatch))
	return product, overflow
}

// IndexedSelect selects slots[idx] via a binary mux tree (spec §4.4,
// grounded on the reference compiler's ArrayAccess lowering): processing
// idx one bit at a time from least to most significant, each layer halves
// the candidate list by muxing adjacent pairs together, reaching a single
// selected slot after len(idx) layers regardless of len(slots). A slot
// without a pairing partner (when the candidate count is odd) is paired
// against fill instead, so out-of-range indices still produce some value
// rather than an out-of-bounds read; callers needing an explicit
// out-of-bounds panic check that separately.
func (b *Builder) IndexedSelect(slots [][]Wire, idx []Wire, fill []Wire) []Wire {
	cur := append([][]Wire(nil), slots...)
	for layer := len(idx) - 1; layer >= 0; layer-- {
		s := idx[layer]
		next := make([][]Wire, 0, (len(cur)+1)/2)
		for i := 0; i < len(cur); i += 2 {
			a0 := cur[i]
			a1 := fill
			if i+1 < len(cur) {
				a1 = cur[i+1]
			}
			merged := make([]Wire, len(a0))
			for bitIdx := range merged {
				merged[bitIdx] = b.PushMux(s, a1[bitIdx], a0[bitIdx])
			}
			next = append(next, merged)
		}
		cur = next
	}
	if len(cur) == 0 {
		return nil
	}
	return cur[0]
}

// barrelShift implements the 8-layer barrel shifter of spec §4.2: one mux
// layer per bit of the (always u8) shift amount, each layer conditionally
// applying a constant shift of 2^k, where k is that amount bit's position
// counted from the LSB (amount is MSB-first, so amount[layer] has
// k = len(amount)-1-layer).
func (b *Builder) barrelShift(bits, amount []Wire, left bool, fill Wire) []Wire {
	cur := append([]Wire(nil), bits...)
	n := len(bits)
	for layer := 0; layer < len(amount); layer++ {
		shiftAmt := 1 << uint(len(amount)-1-layer)
		shifted := make([]Wire, n)
		for i := 0; i < n; i++ {
			var srcIdx int
			var ok bool
			if left {
				srcIdx, ok = i+shiftAmt, i+shiftAmt < n
			} else {
				srcIdx, ok = i-shiftAmt, i-shiftAmt >= 0
			}
			if ok {
				shifted[i] = cur[srcIdx]
			} else {
				shifted[i] = fill
			}
		}
		cur = b.MuxVec(amount[layer], shifted, cur)
	}
	return cur
}

// BarrelShiftLeft shifts bits left by amount (an 8-bit, MSB-first shift
// count), filling vacated low bits with zero.
func (b *Builder) BarrelShiftLeft(bits, amount []Wire) []Wire {
	return b.barrelShift(bits, amount, true, FalseWire)
}

// BarrelShiftRightLogical shifts bits right, filling vacated high bits with
// zero (unsigned >>).
func (b *Builder) BarrelShiftRightLogical(bits, amount []Wire) []Wire {
	return b.barrelShift(bits, amount, false, FalseWire)
}

// BarrelShiftRightArithmetic shifts bits right, filling vacated high bits
// with the original sign bit (signed >>).
func (b *Builder) BarrelShiftRightArithmetic(bits, amount []Wire) []Wire {
	fill := FalseWire
	if len(bits) > 0 {
		fill = bits[0]
	}
	return b.barrelShift(bits, amount, false, fill)
}

func unsignedConst(n uint64, width int) []Wire {
	return unsignedWireConst(n, width)
}
