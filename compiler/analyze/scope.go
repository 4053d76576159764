package analyze

import (
	"github.com/gojolang/gojo/compiler/ast"
)

// scope is an immutable stack of bound names.
type scope struct {
	name string
	up   *scope
}

// Scope checks that every name is bound before it's used or assigned.
func Scope(f *ast.Func) error {
	var s *scope

	for _, p := range f.Params {
		s = s.bind(p.Name)
	}

	v := Visitor[*scope]{
		Expr: func(s *scope, e ast.Expr) error {
			if id, ok := e.(*ast.Ident); ok && !s.has(id.Name) {
				return newError(PhaseScope, f, id.Name, id.Pos, "Undefined variable used: %s", id.Name)
			}

			return nil
		},
		Let: func(s *scope, x *ast.Let) (*scope, error) {
			return s.bind(x.Name), nil
		},
		Assign: func(s *scope, x *ast.Assign) (*scope, error) {
			if !s.has(x.Name) {
				return s, newError(PhaseScope, f, x.Name, x.Pos, "Undefined variable: %s", x.Name)
			}

			return s, nil
		},
		Induction: func(s *scope, x *ast.For) (*scope, error) {
			return s.bind(x.Var), nil
		},
		Validate: func(s *scope, x *ast.Validate) (*scope, error) {
			if !s.has(x.Target) {
				return s, newError(PhaseScope, f, x.Target, x.Pos, "Undefined variable in validate: %s", x.Target)
			}

			return s, nil
		},
	}

	_, err := v.Func(s, f)

	return err
}

func (s *scope) bind(name string) *scope {
	return &scope{name: name, up: s}
}

func (s *scope) has(name string) bool {
	for ; s != nil; s = s.up {
		if s.name == name {
			return true
		}
	}

	return false
}
