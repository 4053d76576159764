package gen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"golang.org/x/tools/imports"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gojolang/gojo/compiler/ast"
	"github.com/gojolang/gojo/compiler/tp"
)

type (
	Options struct {
		// EntryArg is passed to every text parameter of main.
		EntryArg string

		// Filename is only used in formatting errors.
		Filename string
	}

	// Error is a program the generator can not express in Go.
	Error struct {
		Func string
		Pos  int
		Msg  string
	}

	gen struct {
		cls  *Classification
		opts Options

		useCtx bool
		useRT  bool
	}
)

const (
	// RuntimePath is the import path of the runtime generated code links to.
	RuntimePath = "github.com/gojolang/gojo/rt"

	DefaultEntryArg = "Internet"

	userMain = "userMain"
)

// Generate emits a Go main package for prog.
// prog is expected to have passed the analyzers.
func Generate(ctx context.Context, prog *ast.Program, opts Options) (src []byte, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "generate", "funcs", len(prog.Funcs))
	defer tr.Finish("err", &err)

	if opts.EntryArg == "" {
		opts.EntryArg = DefaultEntryArg
	}

	g := &gen{
		cls:  Classify(prog),
		opts: opts,
	}

	if tr.If("pure_set") {
		tr.Printw("classified", "pure", g.cls.pure)
	}

	var body []byte

	for i, f := range prog.Funcs {
		if w, _ := g.cls.Func(f.Name); w != f {
			tr.Printw("skip shadowed declaration", "func", f.Name, "index", i)
			continue
		}

		body = append(body, '\n')

		body, err = g.function(body, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	if f, ok := g.cls.Func("main"); ok {
		body, err = g.shim(body, f)
		if err != nil {
			return nil, errors.Wrap(err, "main shim")
		}
	}

	src = g.header(nil)
	src = append(src, body...)

	if tr.If("dump_go") {
		tr.Printw("generated", "src", src)
	}

	res, err := imports.Process(opts.Filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		tr.Printw("unformattable output", "src", src, "err", err)

		return nil, errors.Wrap(err, "format generated code")
	}

	return res, nil
}

func (g *gen) header(b []byte) []byte {
	b = append(b, "// Code generated by gojo. DO NOT EDIT.\n\npackage main\n"...)

	if !g.useCtx && !g.useRT {
		return b
	}

	b = append(b, "\nimport (\n"...)

	if g.useCtx {
		b = append(b, "\t\"context\"\n"...)
	}

	if g.useCtx && g.useRT {
		b = append(b, '\n')
	}

	if g.useRT {
		b = append(b, "\t\""+RuntimePath+"\"\n"...)
	}

	b = append(b, ")\n"...)

	return b
}

func (g *gen) shim(b []byte, f *ast.Func) ([]byte, error) {
	args := make([]string, 0, len(f.Params)+1)

	if f.Purity != ast.Deterministic {
		args = append(args, "ctx")
	}

	for _, p := range f.Params {
		switch t := tp.FromAST(p.Type).(type) {
		case tp.Text:
			args = append(args, strconv.Quote(g.opts.EntryArg))
		case tp.Int:
			args = append(args, "0")
		case tp.Array:
			args = append(args, "nil")
		default:
			return nil, g.errorf(f, f.Pos, "unsupported main parameter %v: %v", p.Name, t)
		}
	}

	g.useCtx = true
	g.useRT = true

	b = append(b, "\nfunc main() {\n"...)
	b = app(b, 1, "rt.Main(func(ctx context.Context) {\n")
	b = app(b, 2, "%s(%s)\n", userMain, join(args))
	b = app(b, 1, "})\n")
	b = append(b, "}\n"...)

	return b, nil
}

func (g *gen) errorf(f *ast.Func, pos int, format string, args ...interface{}) *Error {
	return &Error{
		Func: f.Name,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("codegen (%s): %s", e.Func, e.Msg)
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

func join(l []string) string {
	var b []byte

	for i, s := range l {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = append(b, s...)
	}

	return string(b)
}
