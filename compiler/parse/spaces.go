package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	Spaces uint64

	// Spacer skips spaces and line comments before Of.
	Spacer struct {
		Spaces Spaces
		Of     Parser
	}
)

var (
	Space    = NewSpaces(' ')
	SpaceTab = NewSpaces(' ', '\t')
	SpaceAll = NewSpaces(' ', '\t', '\r', '\n')
)

var lineComment = []byte("//")

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0 {
		i++
	}

	return
}

// SkipTrivia skips spaces and // comments up to the end of line.
func (s Spaces) SkipTrivia(b []byte, st int) (i int) {
	i = st

	for {
		i = s.Skip(b, i)

		if !bytes.HasPrefix(b[i:], lineComment) {
			return i
		}

		for i < len(b) && b[i] != '\n' {
			i++
		}
	}
}

func Spaced(p Parser, ss Spaces) Spacer {
	return Spacer{
		Spaces: ss,
		Of:     p,
	}
}

func SpacedBy(p Parser, skip ...byte) Spacer {
	return Spacer{
		Spaces: NewSpaces(skip...),
		Of:     p,
	}
}

// Tok is a punctuation token preceded by any trivia.
func Tok(s string) Spacer { return Spaced(Const(s), SpaceAll) }

// Kw is a keyword preceded by any trivia.
func Kw(s string) Spacer { return Spaced(Keyword(s), SpaceAll) }

func (p Spacer) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	vst := p.Spaces.SkipTrivia(b, st)

	x, i, err = p.Of.Parse(ctx, b, vst)
	if err != nil {
		if i == vst {
			i = st
		}

		err = errors.Wrap(err, "%T", p.Of)
	}

	return
}

func skip(b []byte, st int) int {
	return SpaceAll.SkipTrivia(b, st)
}
