package format

import (
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/gojolang/gojo/compiler/ast"
)

// Format appends canonical source of x to b.
// x is a Program, Func, Block, Stmt or Expr.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.Program:
		return formatProgram(ctx, b, x, d)
	case *ast.Func:
		return formatFunc(ctx, b, x, d)
	case *ast.Block:
		return formatBlock(ctx, b, x, d)
	case ast.Stmt:
		return formatStmt(ctx, b, x, d)
	case ast.Expr:
		return formatExpr(ctx, b, x, 0)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatProgram(ctx context.Context, b []byte, x *ast.Program, d int) (_ []byte, err error) {
	for i, f := range x.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = formatFunc(ctx, b, f, d)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.Func, d int) ([]byte, error) {
	b = app(b, d, "")

	if x.Purity == ast.Deterministic {
		b = append(b, "deterministic "...)
	}

	b = app(b, 0, "fn %v(", x.Name)

	for i, p := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v: %v", p.Name, ast.TypeString(p.Type))
	}

	b = append(b, ")"...)

	switch x.Return.(type) {
	case nil, ast.Void:
	default:
		b = app(b, 0, " -> %v", ast.TypeString(x.Return))
	}

	b = append(b, " {\n"...)

	b, err := formatBlock(ctx, b, x.Body, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatBlock(ctx context.Context, b []byte, x *ast.Block, d int) (_ []byte, err error) {
	for _, s := range x.Stmts {
		b, err = formatStmt(ctx, b, s, d)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

// body writes " {\n" block "}" closing at depth d.
func body(ctx context.Context, b []byte, x *ast.Block, d int) (_ []byte, err error) {
	if len(x.Stmts) == 0 {
		return append(b, " {}"...), nil
	}

	b = append(b, " {\n"...)

	b, err = formatBlock(ctx, b, x, d+1)
	if err != nil {
		return nil, err
	}

	b = app(b, d, "}")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, x ast.Stmt, d int) (_ []byte, err error) {
	switch s := x.(type) {
	case *ast.Let:
		b = app(b, d, "let %v = ", s.Name)

		b, err = formatExpr(ctx, b, s.Value, 0)
		if err != nil {
			return nil, errors.Wrap(err, "let %v", s.Name)
		}
	case *ast.Assign:
		b = app(b, d, "%v = ", s.Name)

		b, err = formatExpr(ctx, b, s.Value, 0)
		if err != nil {
			return nil, errors.Wrap(err, "assign %v", s.Name)
		}
	case *ast.If:
		b = app(b, d, "")

		b, err = formatIf(ctx, b, s, d)
		if err != nil {
			return nil, err
		}
	case *ast.While:
		b = app(b, d, "while ")

		b, err = formatExpr(ctx, b, s.Cond, 0)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b, err = body(ctx, b, s.Body, d)
		if err != nil {
			return nil, errors.Wrap(err, "while body")
		}
	case *ast.For:
		b, err = formatFor(ctx, b, s, d)
		if err != nil {
			return nil, errors.Wrap(err, "for %v", s.Var)
		}
	case *ast.ScopeBlock:
		b = app(b, d, "scope %v", s.Name)

		b, err = body(ctx, b, s.Body, d)
		if err != nil {
			return nil, errors.Wrap(err, "scope %v", s.Name)
		}
	case *ast.Validate:
		b = app(b, d, "validate %v {\n", s.Target)
		b = app(b, d+1, "success:")

		b, err = body(ctx, b, s.Success, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "validate %v", s.Target)
		}

		b = append(b, '\n')
		b = app(b, d, "}")
	case *ast.ExprStmt:
		b = app(b, d, "")

		b, err = formatExpr(ctx, b, s.X, 0)
		if err != nil {
			return nil, errors.Wrap(err, "expr")
		}
	case *ast.Return:
		b = app(b, d, "return")

		if s.Value != nil {
			b = append(b, ' ')

			b, err = formatExpr(ctx, b, s.Value, 0)
			if err != nil {
				return nil, errors.Wrap(err, "return")
			}
		}
	default:
		return nil, errors.New("unsupported stmt: %T", s)
	}

	b = append(b, '\n')

	return b, nil
}

func formatIf(ctx context.Context, b []byte, s *ast.If, d int) (_ []byte, err error) {
	b = append(b, "if "...)

	b, err = formatExpr(ctx, b, s.Cond, 0)
	if err != nil {
		return nil, errors.Wrap(err, "cond")
	}

	b, err = body(ctx, b, s.Then, d)
	if err != nil {
		return nil, errors.Wrap(err, "then block")
	}

	if s.Else == nil {
		return b, nil
	}

	b = append(b, " else"...)

	if len(s.Else.Stmts) == 1 {
		if elif, ok := s.Else.Stmts[0].(*ast.If); ok {
			b = append(b, ' ')

			return formatIf(ctx, b, elif, d)
		}
	}

	b, err = body(ctx, b, s.Else, d)
	if err != nil {
		return nil, errors.Wrap(err, "else block")
	}

	return b, nil
}

func formatFor(ctx context.Context, b []byte, s *ast.For, d int) (_ []byte, err error) {
	b = app(b, d, "for %v in ", s.Var)

	b, err = formatExpr(ctx, b, s.Start, 0)
	if err != nil {
		return nil, errors.Wrap(err, "start")
	}

	b = append(b, ".."...)

	b, err = formatExpr(ctx, b, s.End, 0)
	if err != nil {
		return nil, errors.Wrap(err, "end")
	}

	if s.Step != nil {
		b = append(b, " by "...)

		b, err = formatExpr(ctx, b, s.Step, 0)
		if err != nil {
			return nil, errors.Wrap(err, "step")
		}
	}

	return body(ctx, b, s.Body, d)
}

// Binding strength of expression levels.
const (
	precLowest = iota
	precCompare
	precSum
	precProduct
	precPostfix
)

func opPrec(op ast.Op) int {
	switch op {
	case ast.Add, ast.Sub:
		return precSum
	case ast.Mul, ast.Div:
		return precProduct
	default:
		return precCompare
	}
}

// formatExpr writes x so it parses back at binding strength prec.
func formatExpr(ctx context.Context, b []byte, x ast.Expr, prec int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Ident:
		b = append(b, x.Name...)
	case *ast.Int:
		b = strconv.AppendInt(b, x.Value, 10)
	case *ast.Str:
		b = quote(b, x.Value)
	case *ast.Bool:
		b = strconv.AppendBool(b, x.Value)
	case *ast.Binary:
		p := opPrec(x.Op)

		if p < prec {
			b = append(b, '(')
		}

		b, err = formatExpr(ctx, b, x.Left, p)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %v ", x.Op)

		b, err = formatExpr(ctx, b, x.Right, p+1)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		if p < prec {
			b = append(b, ')')
		}
	case *ast.Call:
		b = append(b, x.Name...)

		b, err = formatArgs(ctx, b, '(', x.Args, ')')
		if err != nil {
			return nil, errors.Wrap(err, "call %v", x.Name)
		}
	case *ast.Spawn:
		return prefixed(ctx, b, "spawn ", x.X, prec)
	case *ast.Await:
		return prefixed(ctx, b, "await ", x.X, prec)
	case *ast.Infra:
		b = app(b, 0, "call %v.%v", x.Service, x.Method)

		b, err = formatArgs(ctx, b, '(', x.Args, ')')
		if err != nil {
			return nil, errors.Wrap(err, "infra %v.%v", x.Service, x.Method)
		}

		b = app(b, 0, " { timeout: %d }", x.Timeout)
	case *ast.JSONField:
		b = append(b, "json("...)

		b, err = formatExpr(ctx, b, x.Source, 0)
		if err != nil {
			return nil, errors.Wrap(err, "json source")
		}

		b = append(b, ", "...)
		b = quote(b, x.Key)
		b = append(b, ')')
	case *ast.ArrayLit:
		b, err = formatArgs(ctx, b, '[', x.Elems, ']')
		if err != nil {
			return nil, errors.Wrap(err, "array")
		}
	case *ast.Index:
		b, err = formatExpr(ctx, b, x.Array, precPostfix)
		if err != nil {
			return nil, errors.Wrap(err, "array")
		}

		b = append(b, '[')

		b, err = formatExpr(ctx, b, x.Index, 0)
		if err != nil {
			return nil, errors.Wrap(err, "index")
		}

		b = append(b, ']')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

// prefixed writes spawn and await, which take a whole expression
// and so need parentheses inside anything binding stronger.
func prefixed(ctx context.Context, b []byte, kw string, x ast.Expr, prec int) (_ []byte, err error) {
	if prec > precLowest {
		b = append(b, '(')
	}

	b = append(b, kw...)

	b, err = formatExpr(ctx, b, x, 0)
	if err != nil {
		return nil, errors.Wrap(err, "%v", kw)
	}

	if prec > precLowest {
		b = append(b, ')')
	}

	return b, nil
}

func formatArgs(ctx context.Context, b []byte, open byte, l []ast.Expr, cl byte) (_ []byte, err error) {
	b = append(b, open)

	for i, a := range l {
		if i != 0 {
			b = append(b, ", "...)
		}

		b, err = formatExpr(ctx, b, a, 0)
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", i)
		}
	}

	b = append(b, cl)

	return b, nil
}

func quote(b []byte, s string) []byte {
	b = append(b, '"')

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b = append(b, '\\', c)
		case '\n':
			b = append(b, `\n`...)
		case '\t':
			b = append(b, `\t`...)
		case '\r':
			b = append(b, `\r`...)
		default:
			b = append(b, c)
		}
	}

	return append(b, '"')
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	for d > len(tabs) {
		b = append(b, tabs...)
		d -= len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
