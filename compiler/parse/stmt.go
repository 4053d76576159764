package parse

import (
	"context"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// Block is { Stmt* }.
	Block struct{}

	// Stmt is any statement optionally followed by a semicolon.
	Stmt struct{}

	Let struct{}

	Assignment struct{}

	If struct{}

	While struct{}

	For struct{}

	ScopeStmt struct{}

	Validate struct{}

	Return struct{}

	ExprStmt struct{}
)

func (p Block) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Tok("{"),
		Many{Of: Stmt{}},
		Tok("}"),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	l := nodes(nodes(x)[1])

	blk := &ast.Block{
		Base: ast.Base{Pos: skip(b, st), End: i},
	}

	for _, s := range l {
		blk.Stmts = append(blk.Stmts, s.(ast.Stmt))
	}

	return blk, i, nil
}

func (p Stmt) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := Spaced(AnyOf{
		Let{},
		If{},
		While{},
		For{},
		ScopeStmt{},
		Validate{},
		Assignment{},
		Return{},
		ExprStmt{},
	}, SpaceAll)

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	if _, j, err := Tok(";").Parse(ctx, b, i); err == nil {
		i = j
	}

	return x, i, nil
}

func (p Let) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("let"),
		Spaced(Ident{}, SpaceAll),
		Tok("="),
		Expr{},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.Let{
		Base:  ast.Base{Pos: st, End: i},
		Name:  xt[1].(*ast.Ident).Name,
		Value: xt[3].(ast.Expr),
	}, i, nil
}

func (p Assignment) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Ident{},
		Tok("="),
		Expr{},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.Assign{
		Base:  ast.Base{Pos: st, End: i},
		Name:  xt[0].(*ast.Ident).Name,
		Value: xt[2].(ast.Expr),
	}, i, nil
}

func (p If) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("if"),
		Expr{},
		Block{},
		Optional{AllOf{
			Kw("else"),
			AnyOf{
				Spaced(If{}, SpaceAll),
				Block{},
			},
		}},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	s := &ast.If{
		Base: ast.Base{Pos: st, End: i},
		Cond: xt[1].(ast.Expr),
		Then: xt[2].(*ast.Block),
	}

	if els := nodes(xt[3]); els != nil {
		switch e := els[1].(type) {
		case *ast.Block:
			s.Else = e
		case *ast.If:
			s.Else = &ast.Block{
				Base:  e.Base,
				Stmts: []ast.Stmt{e},
			}
		}
	}

	return s, i, nil
}

func (p While) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{Keyword("while"), Expr{}, Block{}}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.While{
		Base: ast.Base{Pos: st, End: i},
		Cond: xt[1].(ast.Expr),
		Body: xt[2].(*ast.Block),
	}, i, nil
}

func (p For) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("for"),
		Spaced(Ident{}, SpaceAll),
		Kw("in"),
		Expr{},
		Tok(".."),
		Expr{},
		Optional{AllOf{Kw("by"), Expr{}}},
		Block{},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	s := &ast.For{
		Base:  ast.Base{Pos: st, End: i},
		Var:   xt[1].(*ast.Ident).Name,
		Start: xt[3].(ast.Expr),
		End:   xt[5].(ast.Expr),
		Body:  xt[7].(*ast.Block),
	}

	if by := nodes(xt[6]); by != nil {
		s.Step = by[1].(ast.Expr)
	}

	return s, i, nil
}

func (p ScopeStmt) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{Keyword("scope"), Spaced(Ident{}, SpaceAll), Block{}}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.ScopeBlock{
		Base: ast.Base{Pos: st, End: i},
		Name: xt[1].(*ast.Ident).Name,
		Body: xt[2].(*ast.Block),
	}, i, nil
}

func (p Validate) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{
		Keyword("validate"),
		Spaced(Ident{}, SpaceAll),
		Tok("{"),
		Kw("success"),
		Tok(":"),
		Block{},
		Tok("}"),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := nodes(x)

	return &ast.Validate{
		Base:    ast.Base{Pos: st, End: i},
		Target:  xt[1].(*ast.Ident).Name,
		Schema:  ast.DefaultSchema,
		OnFail:  &ast.Block{Base: ast.Base{Pos: i, End: i}},
		Success: xt[5].(*ast.Block),
	}, i, nil
}

func (p Return) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{Keyword("return"), Optional{Expr{}}}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	s := &ast.Return{
		Base: ast.Base{Pos: st, End: i},
	}

	if v, ok := nodes(x)[1].(ast.Expr); ok {
		s.Value = v
	}

	return s, i, nil
}

func (p ExprStmt) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = Expr{}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	e := x.(ast.Expr)

	return &ast.ExprStmt{
		Base: e.Span(),
		X:    e,
	}, i, nil
}
