package gen

import (
	"github.com/gojolang/gojo/compiler/ast"
	"github.com/gojolang/gojo/compiler/tp"
)

type (
	fn struct {
		*gen

		f    *ast.Func
		pure bool
		ret  tp.Type

		tmp int
	}
)

func (g *gen) function(b []byte, f *ast.Func) (_ []byte, err error) {
	sig, _ := g.cls.Sig(f.Name)

	c := &fn{
		gen:  g,
		f:    f,
		pure: g.cls.Pure(f.Name),
		ret:  sig.Out,
	}

	s := (*env)(nil).enter()

	b = app(b, 0, "func %s(", funcName(f.Name))

	if sig.Ctx {
		g.useCtx = true
		b = append(b, "ctx context.Context"...)
	}

	for i, p := range f.Params {
		if i != 0 || sig.Ctx {
			b = append(b, ", "...)
		}

		gn := c.varName(s, p.Name)
		s = s.bind(p.Name, gn, sig.In[i])

		b = app(b, 0, "%s %s", gn, c.goType(sig.In[i]))
	}

	b = append(b, ')')

	if _, ok := sig.Out.(tp.Void); !ok {
		b = app(b, 0, " %s", c.goType(sig.Out))
	}

	b = append(b, " {\n"...)

	b, err = c.stmts(b, s, f.Body.Stmts, 1)
	if err != nil {
		return nil, err
	}

	if _, ok := sig.Out.(tp.Void); !ok && !endsWithReturn(f.Body) {
		b = app(b, 1, "panic(%s)\n", c.rtName("MissingReturn"))
	}

	b = append(b, "}\n"...)

	return b, nil
}

func (g *fn) block(b []byte, s *env, x *ast.Block, d int) ([]byte, error) {
	return g.stmts(b, s.enter(), x.Stmts, d)
}

func (g *fn) stmts(b []byte, s *env, l []ast.Stmt, d int) (_ []byte, err error) {
	for _, x := range l {
		b, s, err = g.stmt(b, s, x, d)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (g *fn) stmt(b []byte, s *env, x ast.Stmt, d int) (_ []byte, _ *env, err error) {
	switch x := x.(type) {
	case *ast.Let:
		return g.let(b, s, x, d)
	case *ast.Assign:
		b, err = g.assign(b, s, x, d)
	case *ast.If:
		b = app(b, d, "")
		b, err = g.ifStmt(b, s, x, d)
	case *ast.While:
		b, err = g.while(b, s, x, d)
	case *ast.For:
		b, err = g.forStmt(b, s, x, d)
	case *ast.ScopeBlock:
		b, err = g.scope(b, s, x, d)
	case *ast.Validate:
		b, err = g.validate(b, s, x, d)
	case *ast.ExprStmt:
		b, err = g.exprStmt(b, s, x.X, d)
	case *ast.Return:
		b, err = g.returnStmt(b, s, x, d)
	default:
		return nil, nil, g.errorf(g.f, x.Span().Pos, "unsupported statement: %T", x)
	}

	return b, s, err
}

func (g *fn) let(b []byte, s *env, x *ast.Let, d int) ([]byte, *env, error) {
	code, t, err := g.expr(s, x.Value)
	if err != nil {
		return nil, nil, err
	}

	if _, ok := t.(tp.Void); ok {
		return nil, nil, g.errorf(g.f, x.Value.Span().Pos, "void value assigned to %v", x.Name)
	}

	gn := g.varName(s, x.Name)

	b = app(b, d, "var %s %s = %s\n", gn, g.goType(t), code)
	b = app(b, d, "_ = %s\n", gn)

	return b, s.bind(x.Name, gn, t), nil
}

func (g *fn) assign(b []byte, s *env, x *ast.Assign, d int) ([]byte, error) {
	v := s.lookup(x.Name)
	if v == nil {
		return nil, g.errorf(g.f, x.Pos, "undefined: %v", x.Name)
	}

	code, err := g.exprAs(s, x.Value, v.t)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "%s = %s\n", v.goName, code)

	return b, nil
}

// ifStmt expects the line to be indented already.
func (g *fn) ifStmt(b []byte, s *env, x *ast.If, d int) (_ []byte, err error) {
	cond, err := g.cond(s, x.Cond)
	if err != nil {
		return nil, err
	}

	b = app(b, 0, "if %s {\n", cond)

	b, err = g.block(b, s, x.Then, d+1)
	if err != nil {
		return nil, err
	}

	if x.Else == nil {
		b = app(b, d, "}\n")
		return b, nil
	}

	if len(x.Else.Stmts) == 1 {
		if elif, ok := x.Else.Stmts[0].(*ast.If); ok {
			b = app(b, d, "} else ")

			return g.ifStmt(b, s, elif, d)
		}
	}

	b = app(b, d, "} else {\n")

	b, err = g.block(b, s, x.Else, d+1)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "}\n")

	return b, nil
}

func (g *fn) while(b []byte, s *env, x *ast.While, d int) (_ []byte, err error) {
	cond, err := g.cond(s, x.Cond)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "for %s {\n", cond)

	b, err = g.block(b, s, x.Body, d+1)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "}\n")

	return b, nil
}

// forStmt evaluates start, end and step once each.
// The loop runs while the induction variable has not passed end
// in the direction of step. Zero step never runs.
func (g *fn) forStmt(b []byte, s *env, x *ast.For, d int) (_ []byte, err error) {
	start, err := g.exprAs(s, x.Start, tp.Int{})
	if err != nil {
		return nil, err
	}

	end, err := g.exprAs(s, x.End, tp.Int{})
	if err != nil {
		return nil, err
	}

	step := "1"

	if x.Step != nil {
		step, err = g.exprAs(s, x.Step, tp.Int{})
		if err != nil {
			return nil, err
		}
	}

	s = s.enter()

	iv := g.varName(s, x.Var)
	ev := g.temp("end")
	sv := g.temp("step")

	b = app(b, d, "{\n")
	b = app(b, d+1, "var %s int64 = %s\n", iv, start)
	b = app(b, d+1, "var %s int64 = %s\n", ev, end)
	b = app(b, d+1, "var %s int64 = %s\n", sv, step)
	b = app(b, d+1, "for (%s > 0 && %s < %s) || (%s < 0 && %s > %s) {\n", sv, iv, ev, sv, iv, ev)

	// The body is a block of its own, so a let shadowing the
	// induction variable does not hide it from the advance.
	b = app(b, d+2, "{\n")

	b, err = g.block(b, s.bind(x.Var, iv, tp.Int{}), x.Body, d+3)
	if err != nil {
		return nil, err
	}

	b = app(b, d+2, "}\n")

	if g.pure {
		b = app(b, d+2, "%s += %s\n", iv, sv)
	} else {
		b = app(b, d+2, "%s = %s(%s(%s), %s(%s)).Int()\n", iv, g.rtName("Add"), g.rtName("Of"), iv, g.rtName("Of"), sv)
	}

	b = app(b, d+1, "}\n")
	b = app(b, d, "}\n")

	return b, nil
}

func (g *fn) scope(b []byte, s *env, x *ast.ScopeBlock, d int) (_ []byte, err error) {
	b = app(b, d, "{ // scope %s\n", x.Name)

	b, err = g.block(b, s, x.Body, d+1)
	if err != nil {
		return nil, err
	}

	b = app(b, d+1, "%s(%s)\n", g.rtName("Pause"), g.ctx())

	b = app(b, d, "}\n")

	return b, nil
}

// validate replaces the target with its validated value and runs the success block.
// The failure branch is never emitted: validation failure aborts the program.
func (g *fn) validate(b []byte, s *env, x *ast.Validate, d int) (_ []byte, err error) {
	v := s.lookup(x.Target)
	if v == nil {
		return nil, g.errorf(g.f, x.Pos, "undefined: %v", x.Target)
	}

	switch v.t.(type) {
	case tp.Text:
		b = app(b, d, "%s = %s(%s)\n", v.goName, g.rtName("Validate"), v.goName)
	case tp.Dyn:
		b = app(b, d, "%s = %s(%s(%s.Text()))\n", v.goName, g.rtName("Of"), g.rtName("Validate"), v.goName)
	default:
		return nil, g.errorf(g.f, x.Pos, "can not validate %v of kind %v", x.Target, v.t)
	}

	b = app(b, d, "{\n")

	b, err = g.block(b, s, x.Success, d+1)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "}\n")

	return b, nil
}

func (g *fn) exprStmt(b []byte, s *env, x ast.Expr, d int) ([]byte, error) {
	code, t, err := g.expr(s, x)
	if err != nil {
		return nil, err
	}

	if isCall(x, t) {
		b = app(b, d, "%s\n", code)
	} else {
		b = app(b, d, "_ = %s\n", code)
	}

	return b, nil
}

func (g *fn) returnStmt(b []byte, s *env, x *ast.Return, d int) (_ []byte, err error) {
	if _, ok := g.ret.(tp.Void); ok {
		if x.Value != nil {
			b, err = g.exprStmt(b, s, x.Value, d)
			if err != nil {
				return nil, err
			}
		}

		b = app(b, d, "return\n")

		return b, nil
	}

	if x.Value == nil {
		return nil, g.errorf(g.f, x.Pos, "missing return value of kind %v", g.ret)
	}

	code, err := g.exprAs(s, x.Value, g.ret)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "return %s\n", code)

	return b, nil
}

func (g *fn) cond(s *env, x ast.Expr) (string, error) {
	code, t, err := g.expr(s, x)
	if err != nil {
		return "", err
	}

	switch t.(type) {
	case tp.Bool:
		return code, nil
	case tp.Dyn:
		return code + ".Bool()", nil
	}

	return "", g.errorf(g.f, x.Span().Pos, "non-boolean condition of kind %v", t)
}

// isCall reports whether the generated code of x is a Go call expression.
func isCall(x ast.Expr, t tp.Type) bool {
	if _, ok := t.(tp.Void); ok {
		return true
	}

	switch x.(type) {
	case *ast.Call, *ast.Infra, *ast.Spawn, *ast.JSONField, *ast.Index:
		return true
	}

	return false
}

func endsWithReturn(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}

	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.Return)

	return ok
}
