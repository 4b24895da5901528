// Package ast defines the typed, fully-resolved abstract syntax tree that the
// compiler core consumes. Lexing, parsing and type checking are external
// collaborators (see spec §1); by the time a Program reaches this package
// every identifier is bound, every type is resolved, every array size and
// loop bound is a compile-time constant, and every function call graph is
// recursion-free.
package ast

// Span is the source location of a node, threaded through to the Panic
// Channel so that a runtime panic can report where it occurred.
type Span struct {
	StartLine, StartColumn int
	EndLine, EndColumn     int
}

// Kind discriminates the shapes a Type can take.
type Kind int

const (
	KindBool Kind = iota
	KindUnsigned
	KindSigned
	KindArray
	KindTuple
	KindStruct
	KindEnum
)

// Type is a fully-resolved, statically-sized type. Every Type has a fixed
// layout width in wires (see circuit.LayoutWidth); there are no generics, no
// recursive types and no dynamically-sized values.
type Type struct {
	Kind Kind

	// Width is the bit width of KindUnsigned/KindSigned values.
	Width int

	// Elem/Len describe a KindArray.
	Elem *Type
	Len  int

	// Fields describes a KindTuple (names are "0", "1", ... by convention)
	// or a KindStruct (true field names, in declaration order).
	Fields []Field

	// Struct carries the declaration for a KindStruct, Enum for a KindEnum.
	Struct *StructDef
	Enum   *EnumDef
}

// Field is one element of a tuple or struct type.
type Field struct {
	Name string
	Type Type
}

// StructDef is a top-level struct type definition. Field order is part of
// the type and must be stable, since it determines wire layout.
type StructDef struct {
	Name   string
	Fields []Field
}

// EnumDef is a top-level sum-type definition.
type EnumDef struct {
	Name     string
	Variants []Variant
}

// Variant is one arm of an enum. A Unit variant has an empty Payload.
type Variant struct {
	Name    string
	Payload []Type
}

// TagBits returns the number of wires in the enum's tag, ceil(log2) of the
// variant count (0 for an enum with a single variant).
func (e *EnumDef) TagBits() int {
	n := len(e.Variants)
	bits := 0
	for (1 << bits) < n {
		bits++
	}
	return bits
}

func boolType() Type   { return Type{Kind: KindBool} }
func Bool() Type       { return boolType() }
func Unsigned(w int) Type { return Type{Kind: KindUnsigned, Width: w} }
func Signed(w int) Type   { return Type{Kind: KindSigned, Width: w} }
func Array(elem Type, n int) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e, Len: n}
}
func Tuple(fields ...Type) Type {
	fs := make([]Field, len(fields))
	for i, t := range fields {
		fs[i] = Field{Name: itoa(i), Type: t}
	}
	return Type{Kind: KindTuple, Fields: fs}
}
func StructType(def *StructDef) Type {
	return Type{Kind: KindStruct, Struct: def, Fields: def.Fields}
}
func EnumType(def *EnumDef) Type {
	return Type{Kind: KindEnum, Enum: def}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// Party identifies the input's owning party. Party inputs are allocated
// wires in party order, per spec §3.
type Party int

// MainParam is one of the entry function's parameters, tagged with the
// party that supplies it at evaluation time.
type MainParam struct {
	Name  string
	Type  Type
	Party Party
}

// Param is a plain (non-entry) function or closure parameter.
type Param struct {
	Name string
	Type Type
}

// FnDef is a top-level, non-recursive, non-first-class function definition.
type FnDef struct {
	Name       string
	Params     []Param
	ReturnType Type
	Body       *Expr
	Span       Span
}

// Program is a whole compilation unit: its struct/enum definitions, its
// helper functions, and the distinguished entry function with its
// party-tagged parameters.
type Program struct {
	Structs map[string]*StructDef
	Enums   map[string]*EnumDef
	Funcs   map[string]*FnDef

	MainParams []MainParam
	MainBody   *Expr
	MainType   Type
	MainSpan   Span
}

// PartyCount returns one more than the highest party index used by any
// main parameter.
func (p *Program) PartyCount() int {
	n := 0
	for _, mp := range p.MainParams {
		if int(mp.Party)+1 > n {
			n = int(mp.Party) + 1
		}
	}
	return n
}
