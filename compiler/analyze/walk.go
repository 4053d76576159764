package analyze

import (
	"fmt"
	"reflect"

	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// Visitor walks a function body threading analyzer state S by value.
	// Hooks are optional. A hook must not modify the S it was given,
	// it returns a new one instead.
	Visitor[S any] struct {
		// Expr is called for every expression, parents before children.
		Expr func(s S, e ast.Expr) error

		// Let is called after the initializer has been visited.
		Let func(s S, x *ast.Let) (S, error)

		// Assign is called before the value is visited.
		Assign func(s S, x *ast.Assign) (S, error)

		// Induction binds the for variable.
		// It's called after start, end and step and before the body.
		Induction func(s S, x *ast.For) (S, error)

		// Validate is called before the success block.
		Validate func(s S, x *ast.Validate) (S, error)

		Return func(s S, x *ast.Return) error

		// Merge folds the state at the end of a nested block into the state outside of it.
		// It also joins if branches. Nil keeps the outer state, so block bindings vanish at exit.
		Merge func(outer, inner S) S

		// Equal enables iterating loop bodies until the state stops changing.
		Equal func(a, b S) bool
	}

	UnsupportedASTNodeError struct{ T ast.Node }
)

func (v *Visitor[S]) Func(s S, f *ast.Func) (S, error) {
	return v.Block(s, f.Body)
}

func (v *Visitor[S]) Block(s S, b *ast.Block) (S, error) {
	if b == nil {
		return s, nil
	}

	in := s

	for _, x := range b.Stmts {
		var err error

		in, err = v.Stmt(in, x)
		if err != nil {
			return s, err
		}
	}

	return v.merge(s, in), nil
}

func (v *Visitor[S]) Stmt(s S, x ast.Stmt) (_ S, err error) {
	switch x := x.(type) {
	case *ast.Let:
		if err = v.Walk(s, x.Value); err != nil {
			return s, err
		}

		if v.Let != nil {
			return v.Let(s, x)
		}
	case *ast.Assign:
		if v.Assign != nil {
			s, err = v.Assign(s, x)
			if err != nil {
				return s, err
			}
		}

		if err = v.Walk(s, x.Value); err != nil {
			return s, err
		}
	case *ast.If:
		if err = v.Walk(s, x.Cond); err != nil {
			return s, err
		}

		t, err := v.Block(s, x.Then)
		if err != nil {
			return s, err
		}

		e, err := v.Block(s, x.Else)
		if err != nil {
			return s, err
		}

		return v.merge(t, e), nil
	case *ast.While:
		return v.loop(s, func(s S) (S, error) {
			if err := v.Walk(s, x.Cond); err != nil {
				return s, err
			}

			return v.Block(s, x.Body)
		})
	case *ast.For:
		for _, e := range []ast.Expr{x.Start, x.End, x.Step} {
			if err = v.Walk(s, e); err != nil {
				return s, err
			}
		}

		in := s

		if v.Induction != nil {
			in, err = v.Induction(s, x)
			if err != nil {
				return s, err
			}
		}

		in, err = v.loop(in, func(s S) (S, error) {
			return v.Block(s, x.Body)
		})
		if err != nil {
			return s, err
		}

		return v.merge(s, in), nil
	case *ast.ScopeBlock:
		return v.Block(s, x.Body)
	case *ast.Validate:
		if v.Validate != nil {
			s, err = v.Validate(s, x)
			if err != nil {
				return s, err
			}
		}

		return v.Block(s, x.Success)
	case *ast.ExprStmt:
		err = v.Walk(s, x.X)
	case *ast.Return:
		if x.Value != nil {
			if err = v.Walk(s, x.Value); err != nil {
				return s, err
			}
		}

		if v.Return != nil {
			err = v.Return(s, x)
		}
	default:
		err = NewUnsupportedASTNode(x)
	}

	return s, err
}

// Walk visits e and its subexpressions with the Expr hook.
func (v *Visitor[S]) Walk(s S, e ast.Expr) error {
	if e == nil {
		return nil
	}

	return Inspect(e, func(e ast.Expr) error {
		if v.Expr == nil {
			return nil
		}

		return v.Expr(s, e)
	})
}

func (v *Visitor[S]) loop(s S, body func(S) (S, error)) (S, error) {
	for {
		r, err := body(s)
		if err != nil {
			return s, err
		}

		if v.Equal == nil || v.Equal(r, s) {
			return r, nil
		}

		s = r
	}
}

func (v *Visitor[S]) merge(outer, inner S) S {
	if v.Merge == nil {
		return outer
	}

	return v.Merge(outer, inner)
}

// Inspect calls f for e and then for each of its subexpressions, depth first.
func Inspect(e ast.Expr, f func(ast.Expr) error) (err error) {
	if err = f(e); err != nil {
		return err
	}

	var sub []ast.Expr

	switch e := e.(type) {
	case *ast.Ident, *ast.Int, *ast.Str, *ast.Bool:
	case *ast.Binary:
		sub = []ast.Expr{e.Left, e.Right}
	case *ast.Call:
		sub = e.Args
	case *ast.Spawn:
		sub = []ast.Expr{e.X}
	case *ast.Await:
		sub = []ast.Expr{e.X}
	case *ast.Infra:
		sub = e.Args
	case *ast.JSONField:
		sub = []ast.Expr{e.Source}
	case *ast.ArrayLit:
		sub = e.Elems
	case *ast.Index:
		sub = []ast.Expr{e.Array, e.Index}
	default:
		return NewUnsupportedASTNode(e)
	}

	for _, x := range sub {
		if err = Inspect(x, f); err != nil {
			return err
		}
	}

	return nil
}

func NewUnsupportedASTNode(x ast.Node) UnsupportedASTNodeError {
	return UnsupportedASTNodeError{
		T: x,
	}
}

func (e UnsupportedASTNodeError) Error() string {
	return fmt.Sprintf("unsupported node: %v", reflect.TypeOf(e.T))
}
