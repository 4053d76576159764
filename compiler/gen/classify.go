package gen

import (
	"github.com/gojolang/gojo/compiler/ast"
	"github.com/gojolang/gojo/compiler/set"
	"github.com/gojolang/gojo/compiler/tp"
)

type (
	// Classification is the whole program view codegen starts from.
	// It is not changed after Classify returns.
	Classification struct {
		pure  *set.Names
		funcs map[string]*ast.Func
		sigs  map[string]tp.Func
	}
)

// Classify computes the pure set and function signatures.
// A function is pure iff it is declared deterministic.
// When a name is declared twice the later declaration wins.
func Classify(prog *ast.Program) *Classification {
	names := make([]string, len(prog.Funcs))

	for i, f := range prog.Funcs {
		names[i] = f.Name
	}

	c := &Classification{
		pure:  set.NewNames(names),
		funcs: prog.Table(),
	}

	c.sigs = make(map[string]tp.Func, len(c.funcs))

	for name, f := range c.funcs {
		if f.Purity == ast.Deterministic {
			c.pure.Add(name)
		}

		sig := tp.Func{
			Out: tp.FromAST(f.Return),
			Ctx: f.Purity != ast.Deterministic,
		}

		for _, p := range f.Params {
			sig.In = append(sig.In, tp.FromAST(p.Type))
		}

		c.sigs[name] = sig
	}

	return c
}

func (c *Classification) Pure(name string) bool {
	return c.pure.Has(name)
}

// Func returns the winning declaration of name.
func (c *Classification) Func(name string) (*ast.Func, bool) {
	f, ok := c.funcs[name]
	return f, ok
}

func (c *Classification) Sig(name string) (tp.Func, bool) {
	s, ok := c.sigs[name]
	return s, ok
}

// PureNames lists the pure set.
func (c *Classification) PureNames() []string {
	return c.pure.List()
}
