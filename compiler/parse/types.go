package parse

import (
	"context"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// Type is Void, i64, String, Untrusted, Array<Type> or a custom name.
	Type struct{}

	typeNode struct {
		ast.Type
	}
)

func (p Type) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = skip(b, st)

	for _, t := range []struct {
		kw string
		t  ast.Type
	}{
		{"Void", ast.Void{}},
		{"i64", ast.Integer{}},
		{"String", ast.String{}},
		{"Untrusted", ast.Untrusted{}},
	} {
		if _, j, err := Keyword(t.kw).Parse(ctx, b, i); err == nil {
			return typeNode{t.t}, j, nil
		}
	}

	r := AllOf{
		Keyword("Array"),
		Tok("<"),
		Type{},
		Tok(">"),
	}

	if x, j, err := r.Parse(ctx, b, i); err == nil {
		return typeNode{ast.Array{Elem: typeOf(nodes(x)[2])}}, j, nil
	}

	x, j, err := Ident{}.Parse(ctx, b, i)
	if err != nil {
		return nil, st, expected(ctx, i, "type")
	}

	return typeNode{ast.Custom{Name: x.(*ast.Ident).Name}}, j, nil
}

func typeOf(x ast.Node) ast.Type {
	t, _ := x.(typeNode)
	return t.Type
}
