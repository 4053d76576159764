package parse

import (
	"bytes"
	"context"
	"strings"

	"tlog.app/go/errors"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// LeftToRight parses Arg (Op Arg)* and folds it to the left.
	LeftToRight struct {
		Op  Parser
		Arg Parser
	}

	BinOper interface {
		BinOp(l, r ast.Node) (ast.Node, error)
	}

	// Ops matches the first operator of the list.
	// Longer operators must go before their prefixes.
	Ops []OpTok

	OpTok struct {
		Text string
		Op   ast.Op
	}

	binOp ast.Op
)

var (
	Comparison = Ops{
		{"==", ast.Eq}, {"!=", ast.Neq},
		{">=", ast.Gte}, {"<=", ast.Lte},
		{">", ast.Gt}, {"<", ast.Lt},
	}

	Additive = Ops{{"+", ast.Add}, {"-", ast.Sub}}

	Multiplicative = Ops{{"*", ast.Mul}, {"/", ast.Div}}
)

func (p LeftToRight) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = p.Arg.Parse(ctx, b, st)
	if err != nil {
		return nil, i, errors.Wrap(err, "first arg")
	}

	for i < len(b) {
		var op ast.Node
		opst := i
		op, i, err = p.Op.Parse(ctx, b, i)
		if err != nil {
			i, err = opst, nil
			break
		}

		c, ok := op.(BinOper)
		if !ok {
			return nil, i, errors.New("BinOper expected, got %T", op)
		}

		var r ast.Node
		r, i, err = p.Arg.Parse(ctx, b, i)
		if err != nil {
			i, err = opst, nil
			break
		}

		x, err = c.BinOp(x, r)
		if err != nil {
			return nil, i, errors.Wrap(err, "%T", c)
		}
	}

	return
}

func (p Ops) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = skip(b, st)

	for _, o := range p {
		if bytes.HasPrefix(b[i:], []byte(o.Text)) {
			return binOp(o.Op), i + len(o.Text), nil
		}
	}

	l := make([]string, len(p))
	for j, o := range p {
		l[j] = o.Text
	}

	return nil, st, expected(ctx, i, "operator "+strings.Join(l, " "))
}

func (op binOp) BinOp(l, r ast.Node) (ast.Node, error) {
	le, ok := l.(ast.Expr)
	if !ok {
		return nil, NewTypeExpectedError(le)
	}

	re, ok := r.(ast.Expr)
	if !ok {
		return nil, NewTypeExpectedError(re)
	}

	return &ast.Binary{
		Base: ast.Base{
			Pos: le.Span().Pos,
			End: re.Span().End,
		},
		Left:  le,
		Op:    ast.Op(op),
		Right: re,
	}, nil
}
