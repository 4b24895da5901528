// Package lower implements C4: lowering a typed ast.Program to a
// circuit.Circuit by driving a circuit.Builder expression-by-expression.
// It is grounded on the shape of the reference compiler's compile()
// dispatch over ExprEnum, reworked so every branch also threads the Panic
// Channel (circuit.PanicLayout) instead of using Go-level control flow or
// Result-returning evaluation.
package lower

import "github.com/getamis/circuitc/circuit"

// Env is a stack of lexical scopes mapping a bound name to its flat wire
// vector. Lowering pushes a scope for every let, fold/map/for iteration,
// and inlined function call, and pops it once that construct's body has
// been lowered.
type Env struct {
	scopes []map[string][]circuit.Wire
}

// NewEnv returns an Env with a single, empty top-level scope.
func NewEnv() *Env {
	return &Env{scopes: []map[string][]circuit.Wire{{}}}
}

// Push opens a new, innermost scope.
func (e *Env) Push() {
	e.scopes = append(e.scopes, map[string][]circuit.Wire{})
}

// Pop discards the innermost scope.
func (e *Env) Pop() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Define binds name to wires in the innermost scope.
func (e *Env) Define(name string, wires []circuit.Wire) {
	e.scopes[len(e.scopes)-1][name] = wires
}

// Lookup searches scopes innermost-first.
func (e *Env) Lookup(name string) ([]circuit.Wire, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if w, ok := e.scopes[i][name]; ok {
			return w, true
		}
	}
	return nil, false
}

// Assign rebinds an already-declared name in whichever scope currently
// holds it (mutation through `let mut`/plain assignment), innermost-first.
// It reports whether an existing binding was found.
func (e *Env) Assign(name string, wires []circuit.Wire) bool {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i][name]; ok {
			e.scopes[i][name] = wires
			return true
		}
	}
	return false
}
