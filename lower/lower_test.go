package lower_test

import (
	"github.com/getamis/circuitc/ast"
	"github.com/getamis/circuitc/circuit"
	"github.com/getamis/circuitc/config"
	"github.com/getamis/circuitc/lower"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Compile", func() {
	It("adds two u8 party inputs and panics with Overflow on wraparound", func() {
		prog := newProgram()
		prog.MainParams = []ast.MainParam{
			{Name: "a", Type: ast.Unsigned(8), Party: 0},
			{Name: "b", Type: ast.Unsigned(8), Party: 1},
		}
		prog.MainBody = binOp(ast.Add, ident("a", ast.Unsigned(8)), ident("b", ast.Unsigned(8)), ast.Unsigned(8))

		c, err := lower.Compile(prog, config.Default())
		Expect(err).NotTo(HaveOccurred())

		outcome, err := c.Eval([][]bool{bitsFor(200, 8), bitsFor(10, 8)})
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Panic).To(BeNil())
		Expect(circuit.BitsToUnsigned(outcome.OutputBits())).To(Equal(uint64(210)))

		overflowed, err := c.Eval([][]bool{bitsFor(200, 8), bitsFor(100, 8)})
		Expect(err).NotTo(HaveOccurred())
		Expect(overflowed.Panic).NotTo(BeNil())
		Expect(overflowed.Panic.Reason).To(Equal(circuit.PanicReasonOverflow))
	})

	It("panics with DivByZero when the divisor is zero", func() {
		prog := newProgram()
		prog.MainParams = []ast.MainParam{
			{Name: "a", Type: ast.Unsigned(8), Party: 0},
			{Name: "b", Type: ast.Unsigned(8), Party: 0},
		}
		prog.MainBody = binOp(ast.Div, ident("a", ast.Unsigned(8)), ident("b", ast.Unsigned(8)), ast.Unsigned(8))

		c, err := lower.Compile(prog, config.Default())
		Expect(err).NotTo(HaveOccurred())

		outcome, err := c.Eval([][]bool{append(bitsFor(10, 8), bitsFor(0, 8)...)})
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Panic).NotTo(BeNil())
		Expect(outcome.Panic.Reason).To(Equal(circuit.PanicReasonDivByZero))
	})

	It("lowers an if/else into a mux over both branches", func() {
		prog := newProgram()
		prog.MainParams = []ast.MainParam{{Name: "flag", Type: ast.Bool(), Party: 0}}
		prog.MainBody = &ast.Expr{
			Kind: ast.If{
				Cond: ident("flag", ast.Bool()),
				Then: litU(1, 8),
				Else: litU(2, 8),
			},
			Type: ast.Unsigned(8),
		}

		c, err := lower.Compile(prog, config.Default())
		Expect(err).NotTo(HaveOccurred())

		whenTrue, err := c.Eval([][]bool{{true}})
		Expect(err).NotTo(HaveOccurred())
		Expect(circuit.BitsToUnsigned(whenTrue.OutputBits())).To(Equal(uint64(1)))

		whenFalse, err := c.Eval([][]bool{{false}})
		Expect(err).NotTo(HaveOccurred())
		Expect(circuit.BitsToUnsigned(whenFalse.OutputBits())).To(Equal(uint64(2)))
	})

	It("panics with OutOfBounds on an array access past the end", func() {
		prog := newProgram()
		prog.MainParams = []ast.MainParam{{Name: "idx", Type: ast.Unsigned(8), Party: 0}}
		arrType := ast.Array(ast.Unsigned(8), 2)
		arrayExpr := &ast.Expr{
			Kind: ast.ArrayLiteral{Elems: []*ast.Expr{litU(10, 8), litU(20, 8)}},
			Type: arrType,
		}
		prog.MainBody = &ast.Expr{
			Kind: ast.ArrayAccess{Array: arrayExpr, Index: ident("idx", ast.Unsigned(8))},
			Type: ast.Unsigned(8),
		}

		c, err := lower.Compile(prog, config.Default())
		Expect(err).NotTo(HaveOccurred())

		ok, err := c.Eval([][]bool{bitsFor(1, 8)})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok.Panic).To(BeNil())
		Expect(circuit.BitsToUnsigned(ok.OutputBits())).To(Equal(uint64(20)))

		oob, err := c.Eval([][]bool{bitsFor(5, 8)})
		Expect(err).NotTo(HaveOccurred())
		Expect(oob.Panic).NotTo(BeNil())
		Expect(oob.Panic.Reason).To(Equal(circuit.PanicReasonOutOfBounds))
	})
})

func bitsFor(n uint64, width int) []bool {
	out := make([]bool, width)
	for i := 0; i < width; i++ {
		out[i] = (n>>uint(width-1-i))&1 == 1
	}
	return out
}
