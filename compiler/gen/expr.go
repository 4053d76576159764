package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gojolang/gojo/compiler/analyze"
	"github.com/gojolang/gojo/compiler/ast"
	"github.com/gojolang/gojo/compiler/tp"
)

// Result kinds of builtin services. Others return dynamic values.
var services = map[string]tp.Type{
	"Console.read": tp.Text{},
	"HTTP.get":     tp.Text{},
	"Util.now":     tp.Int{},
	"Util.to_int":  tp.Int{},
}

type kinds [2]tp.Type

// Statically known results of rt.Add and rt.Mul.
var (
	addKinds = map[kinds]tp.Type{
		{tp.Int{}, tp.Int{}}:   tp.Int{},
		{tp.Text{}, tp.Text{}}: tp.Text{},
		{tp.Text{}, tp.Int{}}:  tp.Text{},
	}

	mulKinds = map[kinds]tp.Type{
		{tp.Int{}, tp.Int{}}:  tp.Int{},
		{tp.Text{}, tp.Int{}}: tp.Text{},
	}
)

func (g *fn) expr(s *env, e ast.Expr) (code string, t tp.Type, err error) {
	switch e := e.(type) {
	case *ast.Ident:
		v := s.lookup(e.Name)
		if v == nil {
			return "", nil, g.errorf(g.f, e.Pos, "undefined: %v", e.Name)
		}

		return v.goName, v.t, nil
	case *ast.Int:
		return strconv.FormatInt(e.Value, 10), tp.Int{}, nil
	case *ast.Str:
		return strconv.Quote(e.Value), tp.Text{}, nil
	case *ast.Bool:
		return strconv.FormatBool(e.Value), tp.Bool{}, nil
	case *ast.Binary:
		return g.binary(s, e)
	case *ast.Call:
		if strings.Contains(e.Name, ".") {
			return g.service(s, e)
		}

		return g.call(s, e)
	case *ast.Spawn:
		return g.spawn(s, e)
	case *ast.Await:
		return g.await(s, e)
	case *ast.Infra:
		return g.infra(s, e)
	case *ast.JSONField:
		src, err := g.exprAs(s, e.Source, tp.Text{})
		if err != nil {
			return "", nil, err
		}

		return fmt.Sprintf("%s(%s, %q)", g.rtName("JSONField"), src, e.Key), tp.Text{}, nil
	case *ast.ArrayLit:
		return g.array(s, e)
	case *ast.Index:
		return g.index(s, e)
	default:
		return "", nil, g.errorf(g.f, e.Span().Pos, "unsupported expression: %T", e)
	}
}

// exprAs emits e converted to kind want.
func (g *fn) exprAs(s *env, e ast.Expr, want tp.Type) (string, error) {
	if lit, ok := e.(*ast.ArrayLit); ok {
		if at, ok := want.(tp.Array); ok {
			return g.arrayOf(s, lit, at.X)
		}
	}

	code, t, err := g.expr(s, e)
	if err != nil {
		return "", err
	}

	r, ok := g.coerce(code, t, want)
	if !ok {
		return "", g.errorf(g.f, e.Span().Pos, "can not use %v as %v", t, want)
	}

	return r, nil
}

// coerce converts code of kind from to kind to.
// Dynamic values are unwrapped with a run time kind check.
func (g *fn) coerce(code string, from, to tp.Type) (string, bool) {
	if tp.Equal(from, to) {
		return code, true
	}

	if _, ok := from.(tp.Void); ok {
		return "", false
	}

	if _, ok := to.(tp.Dyn); ok {
		return fmt.Sprintf("%s(%s)", g.rtName("Of"), code), true
	}

	if fa, ok := from.(tp.Array); ok {
		ta, ok := to.(tp.Array)
		if !ok {
			return "", false
		}

		if _, ok := ta.X.(tp.Dyn); ok {
			return fmt.Sprintf("%s(%s)", g.rtName("ToValues"), code), true
		}

		if _, ok := fa.X.(tp.Dyn); ok {
			conv, ok := g.unwrapFunc(ta.X)
			return fmt.Sprintf("%s(%s, %s)", g.rtName("Coerce"), code, conv), ok
		}

		return "", false
	}

	if _, ok := from.(tp.Dyn); !ok {
		return "", false
	}

	switch to := to.(type) {
	case tp.Int:
		return code + ".Int()", true
	case tp.Text:
		return code + ".Text()", true
	case tp.Bool:
		return code + ".Bool()", true
	case tp.Task:
		if _, ok := to.X.(tp.Dyn); ok {
			return code + ".Task()", true
		}
	case tp.Array:
		if _, ok := to.X.(tp.Dyn); ok {
			return code + ".Array()", true
		}

		conv, ok := g.unwrapFunc(to.X)

		return fmt.Sprintf("%s(%s.Array(), %s)", g.rtName("Coerce"), code, conv), ok
	}

	return "", false
}

// unwrapFunc returns a Go func(rt.Value) T expression.
func (g *fn) unwrapFunc(t tp.Type) (string, bool) {
	switch t := t.(type) {
	case tp.Int:
		return g.rtName("Value.Int"), true
	case tp.Text:
		return g.rtName("Value.Text"), true
	case tp.Bool:
		return g.rtName("Value.Bool"), true
	case tp.Array:
		conv, ok := g.coerce("v", tp.Dyn{}, t)

		return fmt.Sprintf("func(v %s) %s { return %s }", g.rtName("Value"), g.goType(t), conv), ok
	}

	return "", false
}

func (g *fn) binary(s *env, e *ast.Binary) (string, tp.Type, error) {
	l, lt, err := g.expr(s, e.Left)
	if err != nil {
		return "", nil, err
	}

	r, rt, err := g.expr(s, e.Right)
	if err != nil {
		return "", nil, err
	}

	if !g.pure && (e.Op == ast.Add || e.Op == ast.Mul) {
		return g.dispatch(e, l, lt, r, rt)
	}

	return g.native(e, l, lt, r, rt)
}

// dispatch lowers + and * to the runtime value tables.
func (g *fn) dispatch(e *ast.Binary, l string, lt tp.Type, r string, rt tp.Type) (string, tp.Type, error) {
	name, table := "Add", addKinds
	if e.Op == ast.Mul {
		name, table = "Mul", mulKinds
	}

	code := fmt.Sprintf("%s(%s(%s), %s(%s))", g.rtName(name), g.rtName("Of"), l, g.rtName("Of"), r)

	_, ld := lt.(tp.Dyn)
	_, rd := rt.(tp.Dyn)

	if ld || rd {
		if !scalar(lt) || !scalar(rt) {
			return "", nil, g.errorf(g.f, e.Pos, "invalid operation: %v %v %v", lt, e.Op, rt)
		}

		return code, tp.Dyn{}, nil
	}

	res, ok := table[kinds{lt, rt}]
	if !ok {
		return "", nil, g.errorf(g.f, e.Pos, "invalid operation: %v %v %v", lt, e.Op, rt)
	}

	code, _ = g.coerce(code, tp.Dyn{}, res)

	return code, res, nil
}

// native emits a Go operator.
func (g *fn) native(e *ast.Binary, l string, lt tp.Type, r string, rt tp.Type) (string, tp.Type, error) {
	_, ld := lt.(tp.Dyn)
	_, rd := rt.(tp.Dyn)

	switch {
	case ld && rd:
		switch e.Op {
		case ast.Eq:
			return fmt.Sprintf("%s(%s, %s)", g.rtName("Equal"), l, r), tp.Bool{}, nil
		case ast.Neq:
			return fmt.Sprintf("!%s(%s, %s)", g.rtName("Equal"), l, r), tp.Bool{}, nil
		case ast.Add, ast.Mul:
			return g.dispatch(e, l, lt, r, rt)
		}

		l, r = l+".Int()", r+".Int()"
		lt, rt = tp.Int{}, tp.Int{}
	case ld && scalar(rt):
		l, _ = g.coerce(l, lt, rt)
		lt = rt
	case rd && scalar(lt):
		r, _ = g.coerce(r, rt, lt)
		rt = lt
	}

	if !tp.Equal(lt, rt) {
		return "", nil, g.errorf(g.f, e.Pos, "invalid operation: %v %v %v (mismatched kinds)", lt, e.Op, rt)
	}

	code := fmt.Sprintf("(%s %v %s)", l, e.Op, r)

	switch lt.(type) {
	case tp.Int:
		if e.Op.Comparison() {
			return code, tp.Bool{}, nil
		}

		return code, tp.Int{}, nil
	case tp.Text:
		if e.Op.Comparison() {
			return code, tp.Bool{}, nil
		}

		if e.Op == ast.Add {
			return code, tp.Text{}, nil
		}
	case tp.Bool:
		if e.Op == ast.Eq || e.Op == ast.Neq {
			return code, tp.Bool{}, nil
		}
	}

	return "", nil, g.errorf(g.f, e.Pos, "invalid operation: %v %v %v", lt, e.Op, rt)
}

func (g *fn) call(s *env, e *ast.Call) (string, tp.Type, error) {
	sig, ok := g.cls.Sig(e.Name)
	if !ok {
		return "", nil, g.errorf(g.f, e.Pos, "undefined function: %v", e.Name)
	}

	if len(e.Args) != len(sig.In) {
		return "", nil, g.errorf(g.f, e.Pos, "%v takes %d arguments, got %d", e.Name, len(sig.In), len(e.Args))
	}

	args := make([]string, 0, len(e.Args)+1)

	if sig.Ctx {
		args = append(args, g.ctx())
	}

	for i, a := range e.Args {
		code, err := g.exprAs(s, a, sig.In[i])
		if err != nil {
			return "", nil, err
		}

		args = append(args, code)
	}

	return fmt.Sprintf("%s(%s)", funcName(e.Name), join(args)), sig.Out, nil
}

// service calls a runtime service by its dotted name.
func (g *fn) service(s *env, e *ast.Call) (string, tp.Type, error) {
	args := []string{g.ctx(), strconv.Quote(e.Name)}

	for _, a := range e.Args {
		code, err := g.exprAs(s, a, tp.Dyn{})
		if err != nil {
			return "", nil, err
		}

		args = append(args, code)
	}

	code := fmt.Sprintf("%s(%s)", g.rtName("Invoke"), join(args))

	return g.serviceResult(code, e.Name)
}

func (g *fn) infra(s *env, e *ast.Infra) (string, tp.Type, error) {
	args := []string{g.ctx(), strconv.FormatInt(e.Timeout, 10), strconv.Quote(e.Service), strconv.Quote(e.Method)}

	for _, a := range e.Args {
		if lit, ok := a.(*ast.Str); ok {
			args = append(args, strconv.Quote(lit.Value))
			continue
		}

		code, t, err := g.expr(s, a)
		if err != nil {
			return "", nil, err
		}

		if _, ok := t.(tp.Void); ok {
			return "", nil, g.errorf(g.f, a.Span().Pos, "void value passed to %v.%v", e.Service, e.Method)
		}

		args = append(args, fmt.Sprintf("%s(%s)", g.rtName("Format"), code))
	}

	code := fmt.Sprintf("%s(%s)", g.rtName("Infra"), join(args))

	return g.serviceResult(code, e.Service+"."+e.Method)
}

func (g *fn) serviceResult(code, name string) (string, tp.Type, error) {
	t, ok := services[name]
	if !ok {
		return code, tp.Dyn{}, nil
	}

	code, _ = g.coerce(code, tp.Dyn{}, t)

	return code, t, nil
}

// spawn copies captured variables into the task
// so later assignments in the spawner are not observed.
func (g *fn) spawn(s *env, e *ast.Spawn) (string, tp.Type, error) {
	code, t, err := g.expr(s, e.X)
	if err != nil {
		return "", nil, err
	}

	var params, args []string
	seen := map[string]bool{}

	_ = analyze.Inspect(e.X, func(x ast.Expr) error {
		id, ok := x.(*ast.Ident)
		if !ok || seen[id.Name] {
			return nil
		}

		seen[id.Name] = true

		v := s.lookup(id.Name)
		if v == nil {
			return nil
		}

		params = append(params, v.goName+" "+g.goType(v.t))
		args = append(args, v.goName)

		return nil
	})

	g.useCtx = true

	res := "return " + g.rtName("Value") + "{}"

	switch t.(type) {
	case tp.Void:
		res = code + "; " + res
	default:
		res = fmt.Sprintf("return %s(%s)", g.rtName("Of"), code)
	}

	code = fmt.Sprintf("%s(%s, func(%s) func(context.Context) %s {\n\treturn func(ctx context.Context) %s {\n\t\t%s\n\t}\n}(%s))",
		g.rtName("Spawn"), g.ctx(), join(params), g.rtName("Value"), g.rtName("Value"), res, join(args))

	return code, tp.Task{X: t}, nil
}

// await blocks on tasks. Other values are already resolved.
func (g *fn) await(s *env, e *ast.Await) (string, tp.Type, error) {
	code, t, err := g.expr(s, e.X)
	if err != nil {
		return "", nil, err
	}

	switch tt := t.(type) {
	case tp.Task:
		code = fmt.Sprintf("%s(%s, %s)", g.rtName("Await"), g.ctx(), code)

		switch tt.X.(type) {
		case tp.Void, tp.Dyn, tp.Task:
			return code, tp.Dyn{}, nil
		}

		code, ok := g.coerce(code, tp.Dyn{}, tt.X)
		if !ok {
			return "", nil, g.errorf(g.f, e.Pos, "can not await %v", t)
		}

		return code, tt.X, nil
	case tp.Dyn:
		return fmt.Sprintf("%s(%s, %s.Task())", g.rtName("Await"), g.ctx(), code), tp.Dyn{}, nil
	}

	return code, t, nil
}

// array emits a typed slice when all the elements have the same kind.
func (g *fn) array(s *env, e *ast.ArrayLit) (string, tp.Type, error) {
	var elem tp.Type

	for _, x := range e.Elems {
		_, t, err := g.expr(s, x)
		if err != nil {
			return "", nil, err
		}

		if elem == nil {
			elem = t
		} else if !tp.Equal(elem, t) {
			elem = tp.Dyn{}
		}
	}

	if elem == nil {
		elem = tp.Dyn{}
	}

	code, err := g.arrayOf(s, e, elem)
	if err != nil {
		return "", nil, err
	}

	return code, tp.Array{X: elem}, nil
}

func (g *fn) arrayOf(s *env, e *ast.ArrayLit, elem tp.Type) (string, error) {
	l := make([]string, len(e.Elems))

	for i, x := range e.Elems {
		code, err := g.exprAs(s, x, elem)
		if err != nil {
			return "", err
		}

		l[i] = code
	}

	return fmt.Sprintf("%s{%s}", g.goType(tp.Array{X: elem}), join(l)), nil
}

func (g *fn) index(s *env, e *ast.Index) (string, tp.Type, error) {
	arr, t, err := g.expr(s, e.Array)
	if err != nil {
		return "", nil, err
	}

	idx, err := g.exprAs(s, e.Index, tp.Int{})
	if err != nil {
		return "", nil, err
	}

	switch t := t.(type) {
	case tp.Array:
		return fmt.Sprintf("%s(%s, %s)", g.rtName("Index"), arr, idx), t.X, nil
	case tp.Dyn:
		return fmt.Sprintf("%s(%s.Array(), %s)", g.rtName("Index"), arr, idx), tp.Dyn{}, nil
	}

	return "", nil, g.errorf(g.f, e.Pos, "can not index %v", t)
}

// ctx is the context expression calls from this function get.
func (g *fn) ctx() string {
	g.useCtx = true

	if g.pure {
		return "context.Background()"
	}

	return "ctx"
}

func (g *fn) rtName(n string) string {
	g.useRT = true

	return "rt." + n
}

func (g *fn) goType(t tp.Type) string {
	r := t.GoType()

	if strings.Contains(r, "rt.") {
		g.useRT = true
	}

	return r
}

func scalar(t tp.Type) bool {
	switch t.(type) {
	case tp.Int, tp.Text, tp.Bool, tp.Dyn:
		return true
	}

	return false
}
