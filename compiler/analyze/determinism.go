package analyze

import (
	"strings"

	"github.com/gojolang/gojo/compiler/ast"
)

// Determinism rejects deterministic functions using spawn, await or infra calls.
// Callee bodies are not inspected unless opts.Transitive is set,
// then calling a nondeterministic function or a runtime service is rejected too.
func Determinism(f *ast.Func, syms SymbolTable, opts Options) error {
	if f.Purity != ast.Deterministic {
		return nil
	}

	v := Visitor[struct{}]{
		Expr: func(_ struct{}, e ast.Expr) error {
			switch e := e.(type) {
			case *ast.Spawn, *ast.Await, *ast.Infra:
				return newError(PhaseDeterminism, f, "", e.Span().Pos, "Impure function: %s", f.Name)
			case *ast.Call:
				if !opts.Transitive {
					break
				}

				callee, ok := syms[e.Name]
				if strings.Contains(e.Name, ".") || ok && callee.Purity != ast.Deterministic {
					return newError(PhaseDeterminism, f, e.Name, e.Pos, "Impure call: %s calls %s", f.Name, e.Name)
				}
			}

			return nil
		},
	}

	_, err := v.Func(struct{}{}, f)

	return err
}
