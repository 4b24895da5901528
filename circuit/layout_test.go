package circuit_test

import (
	"testing"

	"github.com/getamis/circuitc/ast"
	"github.com/getamis/circuitc/circuit"
	"github.com/stretchr/testify/assert"
)

func TestLayoutWidthPrimitives(t *testing.T) {
	assert.Equal(t, 1, circuit.LayoutWidth(ast.Bool()))
	assert.Equal(t, 32, circuit.LayoutWidth(ast.Unsigned(32)))
	assert.Equal(t, 8, circuit.LayoutWidth(ast.Signed(8)))
}

func TestLayoutWidthArrayAndTuple(t *testing.T) {
	arr := ast.Array(ast.Unsigned(8), 4)
	assert.Equal(t, 32, circuit.LayoutWidth(arr))

	tuple := ast.Tuple(ast.Unsigned(8), ast.Bool())
	assert.Equal(t, 9, circuit.LayoutWidth(tuple))
}

func TestLayoutWidthEnumIsTagPlusMaxPayload(t *testing.T) {
	def := &ast.EnumDef{Name: "Shape", Variants: []ast.Variant{
		{Name: "Point"},
		{Name: "Circle", Payload: []ast.Type{ast.Unsigned(32)}},
		{Name: "Rect", Payload: []ast.Type{ast.Unsigned(16), ast.Unsigned(16)}},
	}}
	// 3 variants -> 2 tag bits; widest payload is Rect at 32 bits.
	assert.Equal(t, 2, def.TagBits())
	assert.Equal(t, 34, circuit.LayoutWidth(ast.EnumType(def)))
}

func TestBitsRoundTrip(t *testing.T) {
	assert.Equal(t, uint64(200), circuit.BitsToUnsigned(toBools(circuit.UnsignedBits(200, 8))))
	assert.Equal(t, int64(-5), circuit.BitsToSigned(toBools(circuit.SignedBits(-5, 8))))
}

func toBools(ws []circuit.Wire) []bool {
	out := make([]bool, len(ws))
	for i, w := range ws {
		out[i] = w == circuit.TrueWire
	}
	return out
}
