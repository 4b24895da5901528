package circuit_test

import (
	"testing"

	"github.com/getamis/circuitc/circuit"
	"github.com/getamis/circuitc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalRejectsWrongPartyCount(t *testing.T) {
	b := circuit.NewBuilder([]int{1}, config.Default())
	x := b.InputWire(0, 0)
	c, err := b.Build([]circuit.Wire{x})
	require.NoError(t, err)

	_, err = c.Eval([][]bool{})
	assert.ErrorIs(t, err, circuit.ErrPartyCount)
}

func TestEvalRejectsWrongInputWidth(t *testing.T) {
	b := circuit.NewBuilder([]int{2}, config.Default())
	x := b.InputWire(0, 0)
	c, err := b.Build([]circuit.Wire{x})
	require.NoError(t, err)

	_, err = c.Eval([][]bool{{true}})
	assert.ErrorIs(t, err, circuit.ErrInputWidth)
}

func TestEvalDecodesFirstPanicInProgramOrder(t *testing.T) {
	b := circuit.NewBuilder([]int{1}, config.Default())
	x := b.InputWire(0, 0)
	b.PushPanicIf(x, circuit.PanicReasonOverflow, circuit.Span{StartLine: 1, StartColumn: 2, EndLine: 1, EndColumn: 5})
	b.PushPanicIf(x, circuit.PanicReasonDivByZero, circuit.Span{StartLine: 9, StartColumn: 9, EndLine: 9, EndColumn: 9})

	c, err := b.Build([]circuit.Wire{x})
	require.NoError(t, err)

	outcome, err := c.Eval([][]bool{{true}})
	require.NoError(t, err)
	require.NotNil(t, outcome.Panic)
	assert.Equal(t, circuit.PanicReasonOverflow, outcome.Panic.Reason)
	assert.Equal(t, uint64(1), outcome.Panic.StartLine)
}
