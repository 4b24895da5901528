package circuit

import "github.com/getamis/circuitc/ast"

// This file implements the bit-layout helpers (spec §4.6/C7): computing the
// fixed wire-width a value of a given ast.Type occupies, and converting
// between that flat MSB-first wire representation and Go integers for
// literal lowering and output decoding.

// LayoutWidth returns the number of wires a value of type t occupies.
func LayoutWidth(t ast.Type) int {
	switch t.Kind {
	case ast.KindBool:
		return 1
	case ast.KindUnsigned, ast.KindSigned:
		return t.Width
	case ast.KindArray:
		return LayoutWidth(*t.Elem) * t.Len
	case ast.KindTuple, ast.KindStruct:
		width := 0
		for _, f := range t.Fields {
			width += LayoutWidth(f.Type)
		}
		return width
	case ast.KindEnum:
		return t.Enum.TagBits() + maxVariantPayloadWidth(t.Enum)
	default:
		return 0
	}
}

func maxVariantPayloadWidth(e *ast.EnumDef) int {
	max := 0
	for _, v := range e.Variants {
		w := 0
		for _, p := range v.Payload {
			w += LayoutWidth(p)
		}
		if w > max {
			max = w
		}
	}
	return max
}

// ZeroExtend grows bits to width by prepending zero (MSB-side) wires. If
// bits is already at least width wide, it is returned unchanged (layout
// widths never shrink through a zero-extend).
func (b *Builder) ZeroExtend(bits []Wire, width int) []Wire {
	if width <= len(bits) {
		return bits
	}
	pad := make([]Wire, width-len(bits))
	for i := range pad {
		pad[i] = FalseWire
	}
	return append(pad, bits...)
}

// SignExtend grows bits to width by prepending copies of the current sign
// (MSB) bit.
func (b *Builder) SignExtend(bits []Wire, width int) []Wire {
	if width <= len(bits) {
		return bits
	}
	var sign Wire = FalseWire
	if len(bits) > 0 {
		sign = bits[0]
	}
	pad := make([]Wire, width-len(bits))
	for i := range pad {
		pad[i] = sign
	}
	return append(pad, bits...)
}

// UnsignedBits encodes n as width MSB-first constant wires.
func UnsignedBits(n uint64, width int) []Wire {
	return unsignedWireConst(n, width)
}

// SignedBits encodes n, in two's complement, as width MSB-first constant
// wires.
func SignedBits(n int64, width int) []Wire {
	return unsignedWireConst(uint64(n)&widthMask(width), width)
}

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// BitsToUnsigned decodes width MSB-first boolean wires into a uint64. Used
// to decode evaluator output; width must be <= 64.
func BitsToUnsigned(bits []bool) uint64 {
	var v uint64
	for _, bit := range bits {
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v
}

// BitsToSigned decodes width MSB-first boolean wires into an int64 via
// two's complement sign extension.
func BitsToSigned(bits []bool) int64 {
	v := BitsToUnsigned(bits)
	width := uint(len(bits))
	if width == 0 || width >= 64 {
		return int64(v)
	}
	signBit := uint64(1) << (width - 1)
	if v&signBit != 0 {
		v -= uint64(1) << width
	}
	return int64(v)
}
