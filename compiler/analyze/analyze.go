package analyze

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	Phase string

	// Error is an analyzer failure. It names the function and,
	// when there is one, the offending identifier or callee.
	Error struct {
		Phase Phase
		Func  string
		Name  string
		Pos   int
		Msg   string
	}

	SymbolTable map[string]*ast.Func

	Options struct {
		// Transitive rejects deterministic functions calling nondeterministic ones.
		Transitive bool

		// Taint enables untrusted data propagation checks.
		Taint bool
	}
)

const (
	PhaseDeterminism Phase = "DETERMINISM"
	PhaseScope       Phase = "SCOPE"
	PhaseTaint       Phase = "TAINT"
)

// Check runs all the analyzers over every function.
// The first failure stops the whole check.
func Check(ctx context.Context, prog *ast.Program, opts Options) (err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "analyze", "funcs", len(prog.Funcs), "opts", opts)
	defer tr.Finish("err", &err)

	syms := SymbolTable(prog.Table())

	for _, f := range prog.Funcs {
		if err = Determinism(f, syms, opts); err != nil {
			return err
		}

		if err = Taint(f, syms, opts); err != nil {
			return err
		}

		if err = Scope(f); err != nil {
			return err
		}

		if tr.If("analyze") {
			tr.Printw("func ok", "func", f.Name, "purity", f.Purity)
		}
	}

	return nil
}

func newError(ph Phase, f *ast.Func, name string, pos int, format string, args ...interface{}) *Error {
	return &Error{
		Phase: ph,
		Func:  f.Name,
		Name:  name,
		Pos:   pos,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Phase, e.Func, e.Msg)
}
