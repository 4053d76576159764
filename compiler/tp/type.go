package tp

import (
	"github.com/gojolang/gojo/compiler/ast"
)

type (
	// Type is a static kind of a generated Go value.
	Type interface {
		GoType() string
		String() string
	}

	Void struct{}

	Int struct{}

	Text struct{}

	Bool struct{}

	Array struct {
		X Type
	}

	// Task is a handle of a spawned computation producing X.
	Task struct {
		X Type
	}

	// Dyn is an rt.Value whose kind is known at run time only.
	Dyn struct{}

	Func struct {
		In  []Type
		Out Type

		// Ctx is set for functions taking context.Context first.
		Ctx bool
	}
)

// FromAST maps source types to value kinds.
// Untrusted, String and custom types are all text.
func FromAST(t ast.Type) Type {
	switch t := t.(type) {
	case nil, ast.Void:
		return Void{}
	case ast.Integer:
		return Int{}
	case ast.Array:
		return Array{X: FromAST(t.Elem)}
	default:
		return Text{}
	}
}

func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Array:
		b, ok := b.(Array)
		return ok && Equal(a.X, b.X)
	case Task:
		b, ok := b.(Task)
		return ok && Equal(a.X, b.X)
	default:
		return a == b
	}
}

// IsDyn reports whether t is Dyn or an array of Dyn at any depth.
func IsDyn(t Type) bool {
	switch t := t.(type) {
	case Dyn:
		return true
	case Array:
		return IsDyn(t.X)
	default:
		return false
	}
}

func (Void) GoType() string { return "" }
func (Int) GoType() string  { return "int64" }
func (Text) GoType() string { return "string" }
func (Bool) GoType() string { return "bool" }
func (Task) GoType() string { return "*rt.Task" }
func (Dyn) GoType() string  { return "rt.Value" }
func (x Array) GoType() string {
	return "[]" + x.X.GoType()
}

func (Void) String() string { return "Void" }
func (Int) String() string  { return "i64" }
func (Text) String() string { return "String" }
func (Bool) String() string { return "bool" }
func (Dyn) String() string  { return "dynamic" }
func (x Array) String() string {
	return "Array<" + x.X.String() + ">"
}

func (x Task) String() string {
	return "Task<" + x.X.String() + ">"
}
