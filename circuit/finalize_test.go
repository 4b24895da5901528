package circuit_test

import (
	"testing"

	"github.com/getamis/circuitc/circuit"
	"github.com/getamis/circuitc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrunesUnreachableGates(t *testing.T) {
	b := circuit.NewBuilder([]int{2}, config.Default())
	x, y := b.InputWire(0, 0), b.InputWire(0, 1)
	used := b.PushAnd(x, y)
	_ = b.PushXor(x, y) // unreachable from the chosen output

	c, err := b.Build([]circuit.Wire{used})
	require.NoError(t, err)

	outcome, err := c.Eval([][]bool{{true, true}})
	require.NoError(t, err)
	require.Nil(t, outcome.Panic)
	assert.Equal(t, []bool{true}, outcome.OutputBits())
	assert.Less(t, len(c.Gates), 4, "the unused xor gate should have been pruned")
}

func TestBuildRejectsZeroInputPrograms(t *testing.T) {
	b := circuit.NewBuilder([]int{}, config.Default())
	_, err := b.Build([]circuit.Wire{circuit.TrueWire})
	assert.ErrorIs(t, err, circuit.ErrNoInputs)
}

func TestBuildRewritesBuilderNotIntoFinalNot(t *testing.T) {
	b := circuit.NewBuilder([]int{1}, config.Default())
	x := b.InputWire(0, 0)
	notX := b.PushNot(x)

	c, err := b.Build([]circuit.Wire{notX})
	require.NoError(t, err)

	var sawNot bool
	// Gates[0] and Gates[1] are the materialized constants (Gates[1] is
	// always a NOT), so only the gates after them are inspected.
	for _, g := range c.Gates[2:] {
		if g.Op == circuit.GateNOT {
			sawNot = true
		}
	}
	assert.True(t, sawNot, "finalized circuit must materialize a real NOT gate")
}
