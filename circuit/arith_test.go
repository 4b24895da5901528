package circuit_test

import (
	"testing"

	"github.com/getamis/circuitc/circuit"
	"github.com/getamis/circuitc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wires(b *circuit.Builder, party, offset, width int) []circuit.Wire {
	out := make([]circuit.Wire, width)
	for i := 0; i < width; i++ {
		out[i] = b.InputWire(party, offset+i)
	}
	return out
}

func evalOne(t *testing.T, b *circuit.Builder, out []circuit.Wire, aBits, cBits []bool) []bool {
	t.Helper()
	c, err := b.Build(out)
	require.NoError(t, err)
	outcome, err := c.Eval([][]bool{append(append([]bool{}, aBits...), cBits...)})
	require.NoError(t, err)
	require.Nil(t, outcome.Panic)
	return outcome.OutputBits()
}

func bits(n uint64, width int) []bool {
	out := make([]bool, width)
	for i := 0; i < width; i++ {
		out[i] = (n>>uint(width-1-i))&1 == 1
	}
	return out
}

func TestAdditionCircuit(t *testing.T) {
	const width = 4
	b := circuit.NewBuilder([]int{2 * width}, config.Default())
	a := wires(b, 0, 0, width)
	c := wires(b, 0, width, width)
	sum, _, _ := b.AdditionCircuit(a, c)

	out := evalOne(t, b, sum, bits(5, width), bits(3, width))
	assert.Equal(t, uint64(8), circuit.BitsToUnsigned(out))
}

func TestSubtractionCircuitUnsignedBorrow(t *testing.T) {
	const width = 4
	b := circuit.NewBuilder([]int{2 * width}, config.Default())
	a := wires(b, 0, 0, width)
	c := wires(b, 0, width, width)
	diff, overflow := b.SubtractionCircuit(a, c, false)

	bd, err := b.Build(append(append([]circuit.Wire{}, diff...), overflow))
	require.NoError(t, err)
	outcome, err := bd.Eval([][]bool{append(bits(3, width), bits(5, width)...)})
	require.NoError(t, err)
	require.Nil(t, outcome.Panic)
	out := outcome.OutputBits()
	borrowed := out[len(out)-1]
	assert.True(t, borrowed, "3-5 in 4 unsigned bits must borrow")
}

func TestMultiplicationCircuitUnsigned(t *testing.T) {
	const width = 4
	b := circuit.NewBuilder([]int{2 * width}, config.Default())
	a := wires(b, 0, 0, width)
	c := wires(b, 0, width, width)
	product, _ := b.MultiplicationCircuit(a, c, false)

	out := evalOne(t, b, product, bits(3, width), bits(4, width))
	assert.Equal(t, uint64(12), circuit.BitsToUnsigned(out))
}

func TestUnsignedDivisionCircuit(t *testing.T) {
	const width = 4
	b := circuit.NewBuilder([]int{2 * width}, config.Default())
	a := wires(b, 0, 0, width)
	c := wires(b, 0, width, width)
	q, r, divByZero := b.UnsignedDivisionCircuit(a, c)

	out := evalOne(t, b, append(append([]circuit.Wire{}, q...), r...), bits(13, width), bits(4, width))
	assert.Equal(t, uint64(3), circuit.BitsToUnsigned(out[:width]))
	assert.Equal(t, uint64(1), circuit.BitsToUnsigned(out[width:]))

	circ, err := b.Build([]circuit.Wire{divByZero})
	require.NoError(t, err)
	outcome, err := circ.Eval([][]bool{append(bits(13, width), bits(0, width)...)})
	require.NoError(t, err)
	require.Nil(t, outcome.Panic)
	assert.True(t, outcome.OutputBits()[0])
}

func TestComparatorCircuitSigned(t *testing.T) {
	const width = 4
	b := circuit.NewBuilder([]int{2 * width}, config.Default())
	a := wires(b, 0, 0, width)
	c := wires(b, 0, width, width)
	gt, lt, eq := b.ComparatorCircuit(a, c, true)

	negOne := circuit.SignedBits(-1, width)
	negOneBits := make([]bool, width)
	for i, w := range negOne {
		negOneBits[i] = w == circuit.TrueWire
	}

	out := evalOne(t, b, []circuit.Wire{gt, lt, eq}, negOneBits, bits(1, width))
	assert.False(t, out[0], "-1 > 1 must be false")
	assert.True(t, out[1], "-1 < 1 must be true")
	assert.False(t, out[2])
}

func TestBarrelShiftLeft(t *testing.T) {
	const width = 8
	b := circuit.NewBuilder([]int{width + 8}, config.Default())
	v := wires(b, 0, 0, width)
	amount := wires(b, 0, width, 8)
	shifted := b.BarrelShiftLeft(v, amount)

	out := evalOne(t, b, shifted, bits(1, width), bits(3, 8))
	assert.Equal(t, uint64(8), circuit.BitsToUnsigned(out))
}
