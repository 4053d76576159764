package parse

import (
	"context"
	"strconv"

	"tlog.app/go/errors"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// Int is an optionally negative decimal integer.
	Int struct{}
)

func (p Int) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st

	if i < len(b) && b[i] == '-' {
		i++
	}

	dst := i

	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}

	if i == dst {
		return nil, st, expected(ctx, st, "integer")
	}

	v, err := strconv.ParseInt(string(b[st:i]), 10, 64)
	if err != nil {
		StateFromContext(ctx).fail(st, "64-bit integer")

		return nil, st, errors.Wrap(err, "parse int")
	}

	return &ast.Int{
		Base: ast.Base{
			Pos: st,
			End: i,
		},
		Value: v,
	}, i, nil
}
