package circuit_test

import (
	"github.com/getamis/circuitc/circuit"
	"github.com/getamis/circuitc/config"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	var b *circuit.Builder

	BeforeEach(func() {
		b = circuit.NewBuilder([]int{4}, config.Default())
	})

	Context("algebraic identities", func() {
		It("x xor false is x", func() {
			x := b.InputWire(0, 0)
			Expect(b.PushXor(x, circuit.FalseWire)).To(Equal(x))
		})

		It("x xor x is false", func() {
			x := b.InputWire(0, 1)
			Expect(b.PushXor(x, x)).To(Equal(circuit.FalseWire))
		})

		It("x xor true is not x, and not-x xor true is x again", func() {
			x := b.InputWire(0, 0)
			notX := b.PushNot(x)
			Expect(b.PushXor(notX, circuit.TrueWire)).To(Equal(x))
		})

		It("x and false is false", func() {
			x := b.InputWire(0, 0)
			Expect(b.PushAnd(x, circuit.FalseWire)).To(Equal(circuit.FalseWire))
		})

		It("x and true is x", func() {
			x := b.InputWire(0, 0)
			Expect(b.PushAnd(x, circuit.TrueWire)).To(Equal(x))
		})

		It("x and x is x", func() {
			x := b.InputWire(0, 2)
			Expect(b.PushAnd(x, x)).To(Equal(x))
		})

		It("x and not-x is false", func() {
			x := b.InputWire(0, 0)
			notX := b.PushNot(x)
			Expect(b.PushAnd(x, notX)).To(Equal(circuit.FalseWire))
		})
	})

	Context("sub-expression sharing", func() {
		It("pushing the same xor twice returns the same wire", func() {
			x, y := b.InputWire(0, 0), b.InputWire(0, 1)
			before := b.GateCount()
			w1 := b.PushXor(x, y)
			w2 := b.PushXor(x, y)
			Expect(w2).To(Equal(w1))
			Expect(b.GateCount()).To(Equal(before + 1))
		})

		It("is commutativity-aware", func() {
			x, y := b.InputWire(0, 0), b.InputWire(0, 1)
			w1 := b.PushAnd(x, y)
			w2 := b.PushAnd(y, x)
			Expect(w2).To(Equal(w1))
		})
	})

	Context("mux", func() {
		It("returns x0 unchanged when x0 equals x1, with no new gates", func() {
			x := b.InputWire(0, 0)
			s := b.InputWire(0, 1)
			before := b.GateCount()
			Expect(b.PushMux(s, x, x)).To(Equal(x))
			Expect(b.GateCount()).To(Equal(before))
		})

		It("selects x0 when s is true and x1 when s is false", func() {
			x0, x1 := b.InputWire(0, 0), b.InputWire(0, 1)
			Expect(b.PushMux(circuit.TrueWire, x0, x1)).To(Equal(x0))
			Expect(b.PushMux(circuit.FalseWire, x0, x1)).To(Equal(x1))
		})
	})
})
