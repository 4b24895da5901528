package lower

import (
	"fmt"

	"github.com/getamis/circuitc/ast"
	"github.com/getamis/circuitc/circuit"
)

// bindIrrefutable destructures wires (of type t) according to pattern p and
// defines every name it introduces in the current innermost scope. It is
// used for let-bindings, whose patterns are expected to always match: only
// identifier, tuple and struct patterns are accepted, and any other pattern
// kind (literal, range or enum), at any nesting depth, makes it return an
// error. Match arms use matchCondition below instead.
func (lw *Lowering) bindIrrefutable(p ast.Pattern, t ast.Type, wires []circuit.Wire) error {
	switch k := p.Kind.(type) {
	case ast.PatternIdentifier:
		if k.Name != "_" {
			lw.env.Define(k.Name, wires)
		}
		return nil
	case ast.PatternTuple:
		offset := 0
		for i, elemPat := range k.Elems {
			fw := t.Fields[i].Type
			w := circuit.LayoutWidth(fw)
			if err := lw.bindIrrefutable(elemPat, fw, wires[offset:offset+w]); err != nil {
				return err
			}
			offset += w
		}
		return nil
	case ast.PatternStruct:
		def := lw.prog.Structs[k.Name]
		offset := 0
		for _, field := range def.Fields {
			w := circuit.LayoutWidth(field.Type)
			for _, fp := range k.Fields {
				if fp.Name == field.Name {
					if err := lw.bindIrrefutable(fp.Pattern, field.Type, wires[offset:offset+w]); err != nil {
						return err
					}
					break
				}
			}
			offset += w
		}
		return nil
	default:
		return fmt.Errorf("lower: pattern kind %T is not irrefutable, cannot use in a let binding", k)
	}
}

// matchCondition computes the single-wire condition under which pattern p
// matches a scrutinee of type t occupying wires, and binds p's names in the
// current innermost scope so the arm body can reference them. Compound
// patterns AND together the conditions of their sub-patterns; an enum
// pattern additionally requires the tag to equal the named variant.
func (lw *Lowering) matchCondition(p ast.Pattern, t ast.Type, wires []circuit.Wire) (circuit.Wire, error) {
	b := lw.b
	switch k := p.Kind.(type) {
	case ast.PatternIdentifier:
		if k.Name != "_" {
			lw.env.Define(k.Name, wires)
		}
		return circuit.TrueWire, nil

	case ast.PatternBool:
		if k.Value {
			return wires[0], nil
		}
		return b.PushNot(wires[0]), nil

	case ast.PatternNumUnsigned:
		return vectorEqConst(b, wires, circuit.UnsignedBits(k.Value, len(wires))), nil

	case ast.PatternNumSigned:
		return vectorEqConst(b, wires, circuit.SignedBits(k.Value, len(wires))), nil

	case ast.PatternUnsignedRange:
		lo := circuit.UnsignedBits(k.Min, len(wires))
		hi := circuit.UnsignedBits(k.Max, len(wires))
		_, ltLo, _ := b.ComparatorCircuit(wires, lo, false)
		gtHi, _, _ := b.ComparatorCircuit(wires, hi, false)
		return b.PushNot(b.PushOr(ltLo, gtHi)), nil

	case ast.PatternSignedRange:
		lo := circuit.SignedBits(k.Min, len(wires))
		hi := circuit.SignedBits(k.Max, len(wires))
		_, ltLo, _ := b.ComparatorCircuit(wires, lo, true)
		gtHi, _, _ := b.ComparatorCircuit(wires, hi, true)
		return b.PushNot(b.PushOr(ltLo, gtHi)), nil

	case ast.PatternTuple:
		cond := circuit.TrueWire
		offset := 0
		for i, elemPat := range k.Elems {
			fw := t.Fields[i].Type
			w := circuit.LayoutWidth(fw)
			c, err := lw.matchCondition(elemPat, fw, wires[offset:offset+w])
			if err != nil {
				return 0, err
			}
			cond = b.PushAnd(cond, c)
			offset += w
		}
		return cond, nil

	case ast.PatternStruct:
		def := lw.prog.Structs[k.Name]
		cond := circuit.TrueWire
		offset := 0
		for _, field := range def.Fields {
			w := circuit.LayoutWidth(field.Type)
			for _, fp := range k.Fields {
				if fp.Name == field.Name {
					c, err := lw.matchCondition(fp.Pattern, field.Type, wires[offset:offset+w])
					if err != nil {
						return 0, err
					}
					cond = b.PushAnd(cond, c)
					break
				}
			}
			offset += w
		}
		return cond, nil

	case ast.PatternEnumUnit:
		return lw.enumTagCondition(t, k.EnumName, k.Variant, wires), nil

	case ast.PatternEnumTuple:
		def := lw.prog.Enums[k.EnumName]
		variantIdx := enumVariantIndex(def, k.Variant)
		tagBits := def.TagBits()
		tagCond := lw.enumTagCondition(t, k.EnumName, k.Variant, wires)
		payload := wires[tagBits:]
		cond := tagCond
		offset := 0
		for i, elemPat := range k.Elems {
			fw := def.Variants[variantIdx].Payload[i]
			w := circuit.LayoutWidth(fw)
			c, err := lw.matchCondition(elemPat, fw, payload[offset:offset+w])
			if err != nil {
				return 0, err
			}
			cond = b.PushAnd(cond, c)
			offset += w
		}
		return cond, nil

	default:
		return 0, fmt.Errorf("lower: unsupported pattern kind %T", k)
	}
}

func (lw *Lowering) enumTagCondition(t ast.Type, enumName, variant string, wires []circuit.Wire) circuit.Wire {
	def := lw.prog.Enums[enumName]
	idx := enumVariantIndex(def, variant)
	tagBits := def.TagBits()
	tagConst := circuit.UnsignedBits(uint64(idx), tagBits)
	return vectorEqConst(lw.b, wires[:tagBits], tagConst)
}

func enumVariantIndex(def *ast.EnumDef, name string) int {
	for i, v := range def.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// vectorEqConst returns a single wire that is true iff wires equals the
// constant bit vector c, bit for bit.
func vectorEqConst(b *circuit.Builder, wires []circuit.Wire, c []circuit.Wire) circuit.Wire {
	acc := circuit.TrueWire
	for i := range wires {
		acc = b.PushAnd(acc, b.PushEq(wires[i], c[i]))
	}
	return acc
}

// vectorEq returns a single wire that is true iff x and y are bit-for-bit
// equal.
func vectorEq(b *circuit.Builder, x, y []circuit.Wire) circuit.Wire {
	acc := circuit.TrueWire
	for i := range x {
		acc = b.PushAnd(acc, b.PushEq(x[i], y[i]))
	}
	return acc
}
