package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gojolang/gojo/compiler"
	"github.com/gojolang/gojo/compiler/analyze"
	"github.com/gojolang/gojo/compiler/config"
	"github.com/gojolang/gojo/compiler/format"
	"github.com/gojolang/gojo/compiler/gen"
	"github.com/gojolang/gojo/compiler/parse"
)

var (
	errCompile = errors.New("compilation failed")
	errRun     = errors.New("program failed")
)

func main() {
	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile a program and run it",
		Action:      runAct,
		Args:        cli.Args{},
	}

	buildCmd := &cli.Command{
		Name:        "build",
		Description: "compile a program to Go source",
		Action:      buildAct,
		Args:        cli.Args{},
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "parse and analyze programs",
		Action:      checkAct,
		Args:        cli.Args{},
	}

	fmtCmd := &cli.Command{
		Name:        "fmt",
		Description: "print programs in canonical form",
		Action:      fmtAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("write,w", false, "write result to the source file instead of stdout"),
		},
	}

	parseCmd := &cli.Command{
		Name:   "parse",
		Action: parseAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "gojo",
		Description: "gojo compiles gojo programs to Go and runs them",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("config,c", "", "config file (default "+config.DefaultFile+" if it exists)"),
			cli.NewFlag("out,o", "", "generated Go file"),
			cli.NewFlag("entry", "", "argument passed to text parameters of main"),
			cli.NewFlag("taint", false, "check untrusted data flow"),
			cli.NewFlag("transitive", false, "reject deterministic functions calling nondeterministic ones"),
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics"),
		},
		Commands: []*cli.Command{
			runCmd,
			buildCmd,
			checkCmd,
			fmtCmd,
			parseCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func setup(c *cli.Command) (ctx context.Context, cfg config.Config, err error) {
	if v := c.String("verbosity"); v != "" {
		tlog.SetVerbosity(v)
	}

	ctx = context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg, err = config.Load(c.String("config"))
	if err != nil {
		return nil, cfg, errors.Wrap(err, "load config")
	}

	if q := c.String("out"); q != "" {
		cfg.Output = q
	}

	if q := c.String("entry"); q != "" {
		cfg.EntryArg = q
	}

	if c.Bool("taint") {
		cfg.Analyze.Taint = true
	}

	if c.Bool("transitive") {
		cfg.Analyze.Transitive = true
	}

	return ctx, cfg, nil
}

func runAct(c *cli.Command) (err error) {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}

	if err = build(ctx, c, cfg); err != nil {
		return err
	}

	fmt.Printf("Derleniyor ve Çalıştırılıyor...\n")

	cmd := exec.CommandContext(ctx, cfg.Run[0], cfg.Run[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err = cmd.Run()
	if err != nil {
		tlog.Printw("run failed", "cmd", cfg.Run, "err", err, "", tlog.Error)

		fmt.Printf("Çalışma zamanı hatası!\n")

		return errRun
	}

	return nil
}

func buildAct(c *cli.Command) (err error) {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}

	err = build(ctx, c, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%v\n", cfg.Output)

	return nil
}

func build(ctx context.Context, c *cli.Command, cfg config.Config) (err error) {
	if len(c.Args) != 1 {
		return errors.New("exactly one source file expected")
	}

	name := c.Args[0]

	text, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read file")
	}

	st := compiler.New(compiler.OptionsFromConfig(cfg))

	st.AddFile(ctx, name, text)

	err = st.Parse(ctx)
	if err != nil {
		return report(st, err)
	}

	fmt.Printf("Parser: %d fonksiyon bulundu.\n", len(st.Program().Funcs))

	err = st.Analyze(ctx)
	if err != nil {
		return report(st, err)
	}

	src, err := st.Generate(ctx)
	if err != nil {
		return report(st, err)
	}

	err = os.MkdirAll(filepath.Dir(cfg.Output), 0o755)
	if err != nil {
		return errors.Wrap(err, "create output dir")
	}

	err = os.WriteFile(cfg.Output, src, 0o644)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	tlog.SpanFromContext(ctx).Printw("generated", "output", cfg.Output, "size", len(src))

	return nil
}

func checkAct(c *cli.Command) (err error) {
	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}

	opts := compiler.OptionsFromConfig(cfg)

	states := make([]*compiler.State, len(c.Args))
	errs := make([]error, len(c.Args))

	var g errgroup.Group

	for i, name := range c.Args {
		i, name := i, name

		g.Go(func() error {
			text, err := os.ReadFile(name)
			if err != nil {
				return errors.Wrap(err, "%v", name)
			}

			st := compiler.New(opts)
			st.AddFile(ctx, name, text)

			states[i] = st

			errs[i] = st.Parse(ctx)
			if errs[i] == nil {
				errs[i] = st.Analyze(ctx)
			}

			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return err
	}

	failed := 0

	for i, name := range c.Args {
		if errs[i] == nil {
			fmt.Printf("%v: ok\n", name)
			continue
		}

		failed++

		fmt.Printf("%v: ", name)
		_ = report(states[i], errs[i])
	}

	if failed != 0 {
		return errors.Wrap(errCompile, "%d of %d files", failed, len(c.Args))
	}

	return nil
}

func fmtAct(c *cli.Command) (err error) {
	ctx, _, err := setup(c)
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		x, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		res, err := format.Format(ctx, nil, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		if !c.Bool("write") {
			_, err = os.Stdout.Write(res)
			if err != nil {
				return errors.Wrap(err, "write")
			}

			continue
		}

		err = os.WriteFile(a, res, 0o644)
		if err != nil {
			return errors.Wrap(err, "write %v", a)
		}
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx, _, err := setup(c)
	if err != nil {
		return err
	}

	for _, a := range c.Args {
		x, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		tlog.Printw("ast", "file", a, "funcs", len(x.Funcs), "ast", x)
	}

	return nil
}

// report prints a compilation failure the way users see it.
func report(st *compiler.State, err error) error {
	var se *parse.SyntaxError
	var ae *analyze.Error
	var ge *gen.Error

	switch {
	case errors.As(err, &se):
		fmt.Printf("Syntax Hatası: %v\n", se)
	case errors.As(err, &ae):
		name, line, col := st.Position(ae.Pos)
		tlog.Printw("analyzer failure", "phase", ae.Phase, "func", ae.Func, "name", ae.Name, "at", fmt.Sprintf("%s:%d:%d", name, line, col))

		fmt.Printf("%s HATASI (%s): %s\n", ae.Phase, ae.Func, ae.Msg)
	case errors.As(err, &ge):
		fmt.Printf("CODEGEN HATASI (%s): %s\n", ge.Func, ge.Msg)
	default:
		return err
	}

	return errCompile
}
