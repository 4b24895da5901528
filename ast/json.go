package ast

import (
	"encoding/json"
	"fmt"
)

// Expr and Pattern carry an interface-typed Kind field, so the default
// encoding/json behavior cannot round-trip them: MarshalJSON/UnmarshalJSON
// wrap the concrete variant in a {"Kind": "...", "Data": ...} envelope,
// keyed by the variant's Go type name. This is the only place a JSON
// encoding is needed (cmd/circuitc reads/writes ast.Program as its
// interchange format); lowering itself never serializes an Expr.

type exprEnvelope struct {
	Kind string
	Data json.RawMessage
	Type Type
	Span Span
}

func (e Expr) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Kind)
	if err != nil {
		return nil, fmt.Errorf("ast: marshaling expr kind: %w", err)
	}
	return json.Marshal(exprEnvelope{
		Kind: exprKindName(e.Kind),
		Data: data,
		Type: e.Type,
		Span: e.Span,
	})
}

func (e *Expr) UnmarshalJSON(data []byte) error {
	var env exprEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("ast: unmarshaling expr envelope: %w", err)
	}
	kind, err := decodeExprKind(env.Kind, env.Data)
	if err != nil {
		return err
	}
	e.Kind = kind
	e.Type = env.Type
	e.Span = env.Span
	return nil
}

func exprKindName(k ExprKind) string {
	switch k.(type) {
	case True:
		return "True"
	case False:
		return "False"
	case NumUnsigned:
		return "NumUnsigned"
	case NumSigned:
		return "NumSigned"
	case Identifier:
		return "Identifier"
	case ArrayLiteral:
		return "ArrayLiteral"
	case ArrayRepeatLiteral:
		return "ArrayRepeatLiteral"
	case ArrayAccess:
		return "ArrayAccess"
	case ArrayAssignment:
		return "ArrayAssignment"
	case TupleLiteral:
		return "TupleLiteral"
	case TupleAccess:
		return "TupleAccess"
	case StructLiteral:
		return "StructLiteral"
	case StructAccess:
		return "StructAccess"
	case EnumLiteral:
		return "EnumLiteral"
	case Match:
		return "Match"
	case UnaryOpExpr:
		return "UnaryOpExpr"
	case BinOpExpr:
		return "BinOpExpr"
	case Block:
		return "Block"
	case Let:
		return "Let"
	case Assign:
		return "Assign"
	case FnCall:
		return "FnCall"
	case If:
		return "If"
	case Cast:
		return "Cast"
	case Fold:
		return "Fold"
	case Map:
		return "Map"
	case For:
		return "For"
	default:
		return fmt.Sprintf("%T", k)
	}
}

func decodeExprKind(kind string, data json.RawMessage) (ExprKind, error) {
	var v ExprKind
	switch kind {
	case "True":
		v = True{}
	case "False":
		v = False{}
	case "NumUnsigned":
		var k NumUnsigned
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "NumSigned":
		var k NumSigned
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Identifier":
		var k Identifier
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "ArrayLiteral":
		var k ArrayLiteral
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "ArrayRepeatLiteral":
		var k ArrayRepeatLiteral
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "ArrayAccess":
		var k ArrayAccess
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "ArrayAssignment":
		var k ArrayAssignment
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "TupleLiteral":
		var k TupleLiteral
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "TupleAccess":
		var k TupleAccess
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "StructLiteral":
		var k StructLiteral
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "StructAccess":
		var k StructAccess
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "EnumLiteral":
		var k EnumLiteral
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Match":
		var k Match
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "UnaryOpExpr":
		var k UnaryOpExpr
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "BinOpExpr":
		var k BinOpExpr
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Block":
		var k Block
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Let":
		var k Let
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Assign":
		var k Assign
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "FnCall":
		var k FnCall
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "If":
		var k If
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Cast":
		var k Cast
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Fold":
		var k Fold
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "Map":
		var k Map
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "For":
		var k For
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, fmt.Errorf("ast: unknown expr kind %q", kind)
	}
	return v, nil
}

type patternEnvelope struct {
	Kind string
	Data json.RawMessage
	Span Span
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(p.Kind)
	if err != nil {
		return nil, fmt.Errorf("ast: marshaling pattern kind: %w", err)
	}
	return json.Marshal(patternEnvelope{
		Kind: patternKindName(p.Kind),
		Data: data,
		Span: p.Span,
	})
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	var env patternEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("ast: unmarshaling pattern envelope: %w", err)
	}
	kind, err := decodePatternKind(env.Kind, env.Data)
	if err != nil {
		return err
	}
	p.Kind = kind
	p.Span = env.Span
	return nil
}

func patternKindName(k PatternKind) string {
	switch k.(type) {
	case PatternIdentifier:
		return "PatternIdentifier"
	case PatternBool:
		return "PatternBool"
	case PatternNumUnsigned:
		return "PatternNumUnsigned"
	case PatternNumSigned:
		return "PatternNumSigned"
	case PatternUnsignedRange:
		return "PatternUnsignedRange"
	case PatternSignedRange:
		return "PatternSignedRange"
	case PatternTuple:
		return "PatternTuple"
	case PatternStruct:
		return "PatternStruct"
	case PatternEnumUnit:
		return "PatternEnumUnit"
	case PatternEnumTuple:
		return "PatternEnumTuple"
	default:
		return fmt.Sprintf("%T", k)
	}
}

func decodePatternKind(kind string, data json.RawMessage) (PatternKind, error) {
	switch kind {
	case "PatternIdentifier":
		var k PatternIdentifier
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternBool":
		var k PatternBool
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternNumUnsigned":
		var k PatternNumUnsigned
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternNumSigned":
		var k PatternNumSigned
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternUnsignedRange":
		var k PatternUnsignedRange
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternSignedRange":
		var k PatternSignedRange
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternTuple":
		var k PatternTuple
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternStruct":
		var k PatternStruct
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternEnumUnit":
		var k PatternEnumUnit
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	case "PatternEnumTuple":
		var k PatternEnumTuple
		if err := json.Unmarshal(data, &k); err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, fmt.Errorf("ast: unknown pattern kind %q", kind)
	}
}
