package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gojolang/gojo/compiler/analyze"
	"github.com/gojolang/gojo/compiler/ast"
	"github.com/gojolang/gojo/compiler/config"
	"github.com/gojolang/gojo/compiler/gen"
	"github.com/gojolang/gojo/compiler/parse"
)

type (
	Options struct {
		Analyze analyze.Options
		Gen     gen.Options
	}

	// State runs the pipeline step by step.
	// Each step expects the previous one to have succeeded.
	State struct {
		Options

		ps   *parse.State
		prog *ast.Program
	}
)

func New(opts Options) *State {
	return &State{
		Options: opts,
		ps:      parse.New(),
	}
}

func OptionsFromConfig(c config.Config) Options {
	return Options{
		Analyze: analyze.Options{
			Transitive: c.Analyze.Transitive,
			Taint:      c.Analyze.Taint,
		},
		Gen: gen.Options{
			EntryArg: c.EntryArg,
			Filename: c.Output,
		},
	}
}

func CompileFile(ctx context.Context, name string, opts Options) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, opts)
}

func Compile(ctx context.Context, name string, text []byte, opts Options) (obj []byte, err error) {
	st := New(opts)

	st.AddFile(ctx, name, text)

	err = st.Parse(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	err = st.Analyze(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	obj, err = st.Generate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return obj, nil
}

func (s *State) AddFile(ctx context.Context, name string, text []byte) {
	s.ps.AddFile(name, text)
}

func (s *State) Parse(ctx context.Context) (err error) {
	s.prog, err = s.ps.Parse(ctx)

	return err
}

func (s *State) Analyze(ctx context.Context) error {
	if s.prog == nil {
		return errors.New("not parsed")
	}

	return analyze.Check(ctx, s.prog, s.Options.Analyze)
}

func (s *State) Generate(ctx context.Context) ([]byte, error) {
	if s.prog == nil {
		return nil, errors.New("not parsed")
	}

	return gen.Generate(ctx, s.prog, s.Options.Gen)
}

// Program is the parsed tree or nil.
func (s *State) Program() *ast.Program { return s.prog }

// Position resolves a source offset.
func (s *State) Position(pos int) (name string, line, col int) {
	return s.ps.Position(pos)
}
