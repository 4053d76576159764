package parse

import (
	"bytes"
	"context"
	"strconv"
	"unicode"
	"unicode/utf8"

	"tlog.app/go/errors"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	Const []byte

	// Keyword is a Const which must not be followed by an identifier char.
	Keyword []byte

	// Ident is a name which is not a reserved word.
	Ident struct{}

	// DottedIdent is svc.method.
	DottedIdent struct{}

	Str struct{}

	Bool struct{}
)

// Reserved words can't be used as identifiers.
var Reserved = map[string]struct{}{
	"if": {}, "else": {}, "let": {}, "while": {}, "for": {}, "in": {}, "by": {},
	"scope": {}, "spawn": {}, "await": {}, "call": {}, "json": {}, "validate": {},
	"true": {}, "false": {}, "return": {},
	"nondeterministic": {}, "deterministic": {}, "fn": {},
	"Untrusted": {}, "i64": {}, "Void": {},
}

func (p Const) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return Const(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, expected(ctx, st, strconv.Quote(string(p)))
}

func (p Keyword) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	e := st + len(p)

	if !bytes.HasPrefix(b[st:], p) || e < len(b) && (isIdentChar(b[e]) || b[e] >= utf8.RuneSelf) {
		return nil, st, expected(ctx, st, strconv.Quote(string(p)))
	}

	return Keyword(b[st:e]), e, nil
}

func (p Ident) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i, err = scanIdent(b, st)
	if err != nil {
		return nil, i, expected(ctx, st, "identifier")
	}

	name := string(b[st:i])

	if _, ok := Reserved[name]; ok {
		return nil, st, expected(ctx, st, "identifier")
	}

	return &ast.Ident{
		Base: ast.Base{Pos: st, End: i},
		Name: name,
	}, i, nil
}

func (p DottedIdent) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	r := AllOf{Ident{}, Const("."), Ident{}}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return &ast.Ident{
		Base: ast.Base{Pos: st, End: i},
		Name: string(b[st:i]),
	}, i, nil
}

func (p Str) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if st == len(b) || b[st] != '"' {
		return nil, st, expected(ctx, st, "string")
	}

	var v []byte

	for i = st + 1; i < len(b); i++ {
		c := b[i]

		switch c {
		case '"':
			return &ast.Str{
				Base:  ast.Base{Pos: st, End: i + 1},
				Value: string(v),
			}, i + 1, nil
		case '\\':
			if i+1 == len(b) {
				break
			}

			i++

			switch b[i] {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			case 'r':
				c = '\r'
			case '"', '\\':
				c = b[i]
			default:
				return nil, i, expected(ctx, i, "escape sequence")
			}
		}

		v = append(v, c)
	}

	return nil, i, expected(ctx, i, "closing quote")
}

func (Bool) Parse(ctx context.Context, b []byte, st int) (_ ast.Node, i int, err error) {
	if _, i, err = Keyword("true").Parse(ctx, b, st); err == nil {
		return &ast.Bool{Base: ast.Base{Pos: st, End: i}, Value: true}, i, nil
	}

	if _, i, err = Keyword("false").Parse(ctx, b, st); err == nil {
		return &ast.Bool{Base: ast.Base{Pos: st, End: i}, Value: false}, i, nil
	}

	return nil, st, expected(ctx, st, "bool")
}

func scanIdent(b []byte, st int) (i int, err error) {
	if st == len(b) {
		return st, errors.New("Ident expected")
	}

	i = st

	c := b[i]

	switch {
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		i++
	default:
		return st, errors.New("Ident expected")
	}

loop:
	for i < len(b) {
		c := b[i]

		switch {
		case isIdentChar(c):
			i++
		case c >= utf8.RuneSelf:
			r, w := utf8.DecodeRune(b[i:])
			if r == utf8.RuneError {
				return i, errors.New("bad rune")
			}

			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break loop
			}

			i += w
		default:
			break loop
		}
	}

	return i, nil
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
