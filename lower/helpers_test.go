package lower_test

import "github.com/getamis/circuitc/ast"

func ident(name string, t ast.Type) *ast.Expr {
	return &ast.Expr{Kind: ast.Identifier{Name: name}, Type: t}
}

func litU(v uint64, width int) *ast.Expr {
	return &ast.Expr{Kind: ast.NumUnsigned{Value: v}, Type: ast.Unsigned(width)}
}

func binOp(op ast.BinOp, l, r *ast.Expr, resultType ast.Type) *ast.Expr {
	return &ast.Expr{Kind: ast.BinOpExpr{Op: op, Left: l, Right: r}, Type: resultType}
}

func boolLit(v bool) *ast.Expr {
	if v {
		return &ast.Expr{Kind: ast.True{}, Type: ast.Bool()}
	}
	return &ast.Expr{Kind: ast.False{}, Type: ast.Bool()}
}

func newProgram() *ast.Program {
	return &ast.Program{
		Structs: map[string]*ast.StructDef{},
		Enums:   map[string]*ast.EnumDef{},
		Funcs:   map[string]*ast.FnDef{},
	}
}
