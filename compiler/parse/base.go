package parse

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	None struct{}

	// Optional never fails: on error it backtracks and yields None.
	Optional struct {
		Parser
	}

	Context struct {
		Pre  Parser
		Of   Parser
		Post Parser
	}

	AllOf []Parser

	// AnyOf is ordered choice: the first alternative that matches wins.
	AnyOf []Parser

	// Many repeats Of until it fails, backtracking the failed attempt.
	Many struct {
		Of  Parser
		Min int
	}

	// SepBy parses zero or more Elem separated by Sep.
	SepBy struct {
		Elem Parser
		Sep  Parser
	}
)

func (None) Parse(ctx context.Context, b []byte, st int) (_ ast.Node, i int, err error) {
	return None{}, st, nil
}

func (p Optional) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = p.Parser.Parse(ctx, b, st)
	if err != nil {
		return None{}, st, nil
	}

	return
}

func (p Context) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st

	if p.Pre != nil {
		_, i, err = p.Pre.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "pre")
		}
	}

	x, i, err = p.Of.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "of")
	}

	if p.Post != nil {
		_, i, err = p.Post.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "post")
		}
	}

	return x, i, nil
}

func (p AllOf) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st

	res := make([]ast.Node, len(p))

	for j, r := range p {
		x, i, err = r.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%T (%d)", r, j)
		}

		res[j] = x
	}

	return res, i, nil
}

func (p AnyOf) Parse(ctx context.Context, b []byte, st int) (_ ast.Node, i int, err error) {
	if tr := tlog.SpanFromContext(ctx); tr.If("parse_trace") {
		defer func() {
			tr.Printw("any of", "st", st, "i", i, "err", err, "from", loc.Callers(1, 3))
		}()
	}

	i = st

	for _, r := range p {
		x, j, e := r.Parse(ctx, b, st)
		if e == nil {
			return x, j, nil
		}

		if err == nil || j > i {
			i = j
			err = errors.Wrap(e, "%T", r)
		}
	}

	if err != nil {
		return nil, i, err
	}

	return nil, st, errors.New("expected %v", joinHuman(p...))
}

func (p Many) Parse(ctx context.Context, b []byte, st int) (_ ast.Node, i int, err error) {
	var res []ast.Node

	i = st

	for {
		x, j, e := p.Of.Parse(ctx, b, i)
		if e != nil {
			if len(res) < p.Min {
				return nil, j, errors.Wrap(e, "%T (%d)", p.Of, len(res))
			}

			break
		}

		if j == i {
			break
		}

		res = append(res, x)
		i = j
	}

	return res, i, nil
}

func (p SepBy) Parse(ctx context.Context, b []byte, st int) (_ ast.Node, i int, err error) {
	res := []ast.Node{}

	x, i, err := p.Elem.Parse(ctx, b, st)
	if err != nil {
		return res, st, nil
	}

	res = append(res, x)

	for {
		_, j, err := p.Sep.Parse(ctx, b, i)
		if err != nil {
			break
		}

		x, j, err = p.Elem.Parse(ctx, b, j)
		if err != nil {
			break
		}

		res = append(res, x)
		i = j
	}

	return res, i, nil
}

func joinHuman(l ...Parser) string {
	switch len(l) {
	case 0:
		return "<none>"
	case 1:
		return fmt.Sprintf("%T", l[0])
	}

	var b strings.Builder

	for i, r := range l {
		if i+1 == len(l) {
			b.WriteString(" or ")
		} else if i != 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%T", r)
	}

	return b.String()
}

func nodes(x ast.Node) []ast.Node {
	l, _ := x.([]ast.Node)
	return l
}
