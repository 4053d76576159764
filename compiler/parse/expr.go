package parse

import (
	"context"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// Expr is a comparison chain, the lowest precedence level.
	Expr struct{}

	Sum struct{}

	Product struct{}

	// Postfix is a primary followed by any number of [index] suffixes.
	Postfix struct{}

	Primary struct{}

	SpawnExpr struct{}

	AwaitExpr struct{}

	// InfraCall is call svc.method(args) { timeout: N }.
	InfraCall struct{}

	JSONField struct{}

	CallExpr struct{}

	ArrayLit struct{}

	Paren struct{}
)

func (p Expr) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := LeftToRight{
		Op:  Comparison,
		Arg: Sum{},
	}

	return r.Parse(ctx, b, st)
}

func (p Sum) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := LeftToRight{
		Op:  Additive,
		Arg: Product{},
	}

	return r.Parse(ctx, b, st)
}

func (p Product) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := LeftToRight{
		Op:  Multiplicative,
		Arg: Postfix{},
	}

	return r.Parse(ctx, b, st)
}

func (p Postfix) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = Primary{}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	idx := Context{Pre: Tok("["), Of: Expr{}, Post: Tok("]")}

	for {
		y, j, err := idx.Parse(ctx, b, i)
		if err != nil {
			break
		}

		arr := x.(ast.Expr)

		x = &ast.Index{
			Base:  ast.Base{Pos: arr.Span().Pos, End: j},
			Array: arr,
			Index: y.(ast.Expr),
		}
		i = j
	}

	return x, i, nil
}

func (p Primary) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := Spaced(AnyOf{
		SpawnExpr{},
		AwaitExpr{},
		InfraCall{},
		JSONField{},
		CallExpr{},
		ArrayLit{},
		Int{},
		Str{},
		Bool{},
		Ident{},
		Paren{},
	}, SpaceAll)

	return r.Parse(ctx, b, st)
}

func (p SpawnExpr) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{Keyword("spawn"), Expr{}}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return &ast.Spawn{
		Base: ast.Base{Pos: st, End: i},
		X:    nodes(x)[1].(ast.Expr),
	}, i, nil
}

func (p AwaitExpr) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{Keyword("await"), Expr{}}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return &ast.Await{
		Base: ast.Base{Pos: st, End: i},
		X:    nodes(x)[1].(ast.Expr),
	}, i, nil
}

func (p InfraCall) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("call"),
		Spaced(Ident{}, SpaceAll),
		Tok("."),
		Spaced(Ident{}, SpaceAll),
		Tok("("),
		args(),
		Tok(")"),
		Tok("{"),
		Kw("timeout"),
		Tok(":"),
		Spaced(Int{}, SpaceAll),
		Tok("}"),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.Infra{
		Base:    ast.Base{Pos: st, End: i},
		Service: xt[1].(*ast.Ident).Name,
		Method:  xt[3].(*ast.Ident).Name,
		Args:    exprs(xt[5]),
		Timeout: xt[10].(*ast.Int).Value,
	}, i, nil
}

func (p JSONField) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("json"),
		Tok("("),
		Expr{},
		Tok(","),
		Spaced(Str{}, SpaceAll),
		Tok(")"),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.JSONField{
		Base:   ast.Base{Pos: st, End: i},
		Source: xt[2].(ast.Expr),
		Key:    xt[4].(*ast.Str).Value,
	}, i, nil
}

func (p CallExpr) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Optional{Keyword("call")},
		Spaced(AnyOf{DottedIdent{}, Ident{}}, SpaceAll),
		Tok("("),
		args(),
		Tok(")"),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.Call{
		Base: ast.Base{Pos: st, End: i},
		Name: xt[1].(*ast.Ident).Name,
		Args: exprs(xt[3]),
	}, i, nil
}

func (p ArrayLit) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{Const("["), args(), Tok("]")}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return &ast.ArrayLit{
		Base:  ast.Base{Pos: st, End: i},
		Elems: exprs(nodes(x)[1]),
	}, i, nil
}

func (p Paren) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	return Context{Pre: Const("("), Of: Expr{}, Post: Tok(")")}.Parse(ctx, b, st)
}

func args() Parser {
	return SepBy{Elem: Expr{}, Sep: Tok(",")}
}

func exprs(x ast.Node) []ast.Expr {
	l := nodes(x)
	if len(l) == 0 {
		return nil
	}

	r := make([]ast.Expr, len(l))

	for i, x := range l {
		r[i] = x.(ast.Expr)
	}

	return r
}
