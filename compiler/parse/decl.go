package parse

import (
	"context"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// Program is one or more function declarations.
	Program struct{}

	// Func is [purity] fn name(params) [-> Type] { ... }.
	Func struct{}

	Param struct{}

	purityNode ast.Purity
)

func (p Program) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = Many{Of: Func{}, Min: 1}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	prog := &ast.Program{
		Base: ast.Base{Pos: skip(b, st), End: i},
	}

	for _, f := range nodes(x) {
		prog.Funcs = append(prog.Funcs, f.(*ast.Func))
	}

	return prog, i, nil
}

func (p Func) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Optional{Spaced(AnyOf{
			purityKw("nondeterministic", ast.Nondeterministic),
			purityKw("deterministic", ast.Deterministic),
		}, SpaceAll)},
		Kw("fn"),
		Spaced(Ident{}, SpaceAll),
		Tok("("),
		SepBy{Elem: Param{}, Sep: Tok(",")},
		Tok(")"),
		Optional{AllOf{Tok("->"), Type{}}},
		Block{},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	f := &ast.Func{
		Base:   ast.Base{Pos: skip(b, st), End: i},
		Name:   xt[2].(*ast.Ident).Name,
		Return: ast.Void{},
		Body:   xt[7].(*ast.Block),
	}

	if pur, ok := xt[0].(purityNode); ok {
		f.Purity = ast.Purity(pur)
	}

	for _, p := range nodes(xt[4]) {
		f.Params = append(f.Params, p.(ast.Param))
	}

	if ret := nodes(xt[6]); ret != nil {
		f.Return = typeOf(ret[1])
	}

	return f, i, nil
}

func (p Param) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{Spaced(Ident{}, SpaceAll), Tok(":"), Type{}}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return ast.Param{
		Name: xt[0].(*ast.Ident).Name,
		Type: typeOf(xt[2]),
	}, i, nil
}

type purityParser struct {
	kw Keyword
	p  ast.Purity
}

func purityKw(kw string, p ast.Purity) purityParser {
	return purityParser{kw: Keyword(kw), p: p}
}

func (p purityParser) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	_, i, err = p.kw.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return purityNode(p.p), i, nil
}
