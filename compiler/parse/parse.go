package parse

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	State struct {
		b []byte // all files concatenated

		Grammar Parser

		files []file

		// furthest failure seen so far
		far  int
		want map[string]struct{}
	}

	file struct {
		base int
		size int
		name string
	}

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error)
	}

	SyntaxError struct {
		File string
		Pos  int
		Line int
		Col  int

		Expected []string
		Near     string
	}

	TypeExpectedError struct {
		T interface{}
	}

	stateCtxKey struct{}
)

func ParseFile(ctx context.Context, name string) (*ast.Program, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	s := New()
	s.AddFile(name, data)

	return s.Parse(ctx)
}

func Parse(ctx context.Context, text []byte) (*ast.Program, error) {
	s := New()

	s.AddFile("", text)

	return s.Parse(ctx)
}

func New() *State {
	return &State{
		Grammar: Program{},
		far:     -1,
	}
}

func (s *State) Parse(ctx context.Context) (p *ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "size", len(s.b))
	defer tr.Finish("err", &err)

	ctx = context.WithValue(ctx, stateCtxKey{}, s)

	x, i, err := s.Grammar.Parse(ctx, s.b, 0)
	if err != nil {
		return nil, s.syntaxError(i)
	}

	i = skip(s.b, i)

	if i != len(s.b) {
		return nil, s.syntaxError(i)
	}

	p, ok := x.(*ast.Program)
	if !ok {
		return nil, NewTypeExpectedError(p)
	}

	if tr.If("dump_ast") {
		tr.Printw("program", "funcs", len(p.Funcs), "ast", p)
	}

	return p, nil
}

func (s *State) AddFile(name string, text []byte) {
	f := file{
		name: name,
		base: len(s.b),
		size: len(text),
	}

	s.b = append(s.b, text...)

	s.files = append(s.files, f)
}

func (s *State) Text(pos, end int) []byte {
	return s.b[pos:end]
}

// Position converts a byte offset into a file name and 1-based line and column.
func (s *State) Position(pos int) (name string, line, col int) {
	base := 0

	for _, f := range s.files {
		if pos >= f.base && pos <= f.base+f.size {
			name, base = f.name, f.base
			break
		}
	}

	line, col = 1, 1

	for _, c := range s.b[base:min(pos, len(s.b))] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return
}

// fail records a failure at pos and returns an error describing it.
func (s *State) fail(pos int, want string) {
	if s == nil {
		return
	}

	if pos > s.far {
		s.far = pos
		s.want = map[string]struct{}{}
	}

	if pos == s.far {
		s.want[want] = struct{}{}
	}
}

func (s *State) syntaxError(i int) *SyntaxError {
	pos := max(i, s.far)

	e := &SyntaxError{Pos: pos}
	e.File, e.Line, e.Col = s.Position(pos)

	if pos == s.far {
		for w := range s.want {
			e.Expected = append(e.Expected, w)
		}

		sort.Strings(e.Expected)
	}

	end := pos
	for end < len(s.b) && end < pos+16 && s.b[end] != '\n' {
		end++
	}

	e.Near = string(s.b[pos:end])

	return e
}

func expected(ctx context.Context, pos int, want string) error {
	StateFromContext(ctx).fail(pos, want)

	return errors.New("%v expected", want)
}

func NewTypeExpectedError(t interface{}) TypeExpectedError {
	return TypeExpectedError{
		T: t,
	}
}

func StateFromContext(ctx context.Context) *State {
	s, _ := ctx.Value(stateCtxKey{}).(*State)
	return s
}

func (e *SyntaxError) Error() string {
	var b strings.Builder

	if e.File != "" {
		fmt.Fprintf(&b, "%s:", e.File)
	}

	fmt.Fprintf(&b, "%d:%d: syntax error", e.Line, e.Col)

	if len(e.Expected) != 0 {
		fmt.Fprintf(&b, ": expected %s", strings.Join(e.Expected, ", "))
	}

	if e.Near != "" {
		fmt.Fprintf(&b, " near %q", e.Near)
	} else {
		b.WriteString(" at end of input")
	}

	return b.String()
}

func (e TypeExpectedError) Error() string {
	return fmt.Sprintf("%v expected", reflect.TypeOf(e.T))
}
