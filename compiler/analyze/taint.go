package analyze

import (
	"slices"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// taint is an immutable list of variables in binding order.
	// Block exit truncates it back to the outer length.
	taint []taintVar

	taintVar struct {
		name    string
		tainted bool
	}
)

// Taint checks untrusted data reaches neither an infra call argument
// nor the result of a deterministic function before it's validated.
//
// Sources are Untrusted parameters and calls to functions returning Untrusted.
// validate x clears x until the end of the enclosing block.
// With opts.Taint unset it only walks the function and never fails.
func Taint(f *ast.Func, syms SymbolTable, opts Options) error {
	if !opts.Taint {
		v := Visitor[struct{}]{}
		_, err := v.Func(struct{}{}, f)

		return err
	}

	var s taint

	for _, p := range f.Params {
		_, untrusted := p.Type.(ast.Untrusted)
		s = s.bind(p.Name, untrusted)
	}

	v := Visitor[taint]{
		Expr: func(s taint, e ast.Expr) error {
			x, ok := e.(*ast.Infra)
			if !ok {
				return nil
			}

			for _, a := range x.Args {
				if s.tainted(a, syms) {
					return newError(PhaseTaint, f, x.Service+"."+x.Method, a.Span().Pos,
						"Unvalidated untrusted data passed to %s.%s", x.Service, x.Method)
				}
			}

			return nil
		},
		Let: func(s taint, x *ast.Let) (taint, error) {
			return s.bind(x.Name, s.tainted(x.Value, syms)), nil
		},
		Assign: func(s taint, x *ast.Assign) (taint, error) {
			return s.set(x.Name, s.tainted(x.Value, syms)), nil
		},
		Induction: func(s taint, x *ast.For) (taint, error) {
			t := s.tainted(x.Start, syms) || s.tainted(x.End, syms) || x.Step != nil && s.tainted(x.Step, syms)

			return s.bind(x.Var, t), nil
		},
		Validate: func(s taint, x *ast.Validate) (taint, error) {
			return s.set(x.Target, false), nil
		},
		Return: func(s taint, x *ast.Return) error {
			if f.Purity == ast.Deterministic && x.Value != nil && s.tainted(x.Value, syms) {
				return newError(PhaseTaint, f, "", x.Pos, "Unvalidated untrusted data returned from %s", f.Name)
			}

			return nil
		},
		Merge: func(outer, inner taint) taint {
			r := slices.Clone(outer)

			for i := range r {
				r[i].tainted = r[i].tainted || inner[i].tainted
			}

			return r
		},
		Equal: slices.Equal[taint],
	}

	_, err := v.Func(s, f)

	return err
}

func (s taint) tainted(e ast.Expr, syms SymbolTable) (r bool) {
	_ = Inspect(e, func(e ast.Expr) error {
		switch e := e.(type) {
		case *ast.Ident:
			if i := s.lookup(e.Name); i >= 0 && s[i].tainted {
				r = true
			}
		case *ast.Call:
			if f, ok := syms[e.Name]; ok {
				if _, ok := f.Return.(ast.Untrusted); ok {
					r = true
				}
			}
		}

		return nil
	})

	return r
}

func (s taint) bind(name string, t bool) taint {
	return append(s[:len(s):len(s)], taintVar{name: name, tainted: t})
}

func (s taint) set(name string, t bool) taint {
	i := s.lookup(name)
	if i < 0 || s[i].tainted == t {
		return s
	}

	r := slices.Clone(s)
	r[i].tainted = t

	return r
}

func (s taint) lookup(name string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].name == name {
			return i
		}
	}

	return -1
}
