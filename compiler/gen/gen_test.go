package gen

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gojolang/gojo/compiler/parse"
)

func generate(t *testing.T, src string, opts Options) string {
	t.Helper()

	prog, err := parse.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	res, err := Generate(context.Background(), prog, opts)
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "main.go", res, parser.AllErrors)
	require.NoError(t, err, "%s", res)

	return string(res)
}

func generateErr(t *testing.T, src string) *Error {
	t.Helper()

	prog, err := parse.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	_, err = Generate(context.Background(), prog, Options{})
	require.Error(t, err)

	var ge *Error
	require.True(t, errors.As(err, &ge), "%T: %v", err, err)

	return ge
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n':
			return -1
		}

		return r
	}, s)
}

func contains(t *testing.T, out string, parts ...string) {
	t.Helper()

	for _, p := range parts {
		assert.Contains(t, squash(out), squash(p), "%s", out)
	}
}

func TestClassify(t *testing.T) {
	prog, err := parse.Parse(context.Background(), []byte(`
deterministic fn add(a: i64, b: i64) -> i64 { return a + b }
fn io(s: Untrusted) -> String { return s }
deterministic fn io2() {}
fn io2() {}
`))
	require.NoError(t, err)

	c := Classify(prog)

	assert.Equal(t, []string{"add"}, c.PureNames())
	assert.True(t, c.Pure("add"))
	assert.False(t, c.Pure("io"))
	assert.False(t, c.Pure("io2"), "later declaration wins")
	assert.False(t, c.Pure("missing"))

	sig, ok := c.Sig("add")
	require.True(t, ok)
	assert.False(t, sig.Ctx)
	assert.Equal(t, "i64", sig.Out.String())
	assert.Len(t, sig.In, 2)

	sig, ok = c.Sig("io")
	require.True(t, ok)
	assert.True(t, sig.Ctx)
	assert.Equal(t, "String", sig.In[0].String())
}

func TestPureNative(t *testing.T) {
	out := generate(t, `
deterministic fn add(a: i64, b: i64) -> i64 {
	let c = a * 2
	return a + b - c
}
`, Options{})

	contains(t, out,
		"func add(a int64, b int64) int64 {",
		"var c int64 = (a * 2)",
		"return ((a + b) - c)",
	)

	assert.NotContains(t, out, "rt.")
	assert.NotContains(t, out, "import")
	assert.NotContains(t, out, "func main()")
}

func TestImpureDispatch(t *testing.T) {
	out := generate(t, `
fn greet(name: String, n: i64) -> String {
	let s = "hi " + name
	let k = n * 3 - 1
	return s * k
}
`, Options{})

	contains(t, out,
		"func greet(ctx context.Context, name string, n int64) string {",
		`var s string = rt.Add(rt.Of("hi "), rt.Of(name)).Text()`,
		"var k int64 = (rt.Mul(rt.Of(n), rt.Of(3)).Int() - 1)",
		"return rt.Mul(rt.Of(s), rt.Of(k)).Text()",
		`"github.com/gojolang/gojo/rt"`,
	)
}

func TestCallSites(t *testing.T) {
	out := generate(t, `
deterministic fn twice(x: i64) -> i64 { return x * 2 }
fn now() -> i64 { return Util.now() }
deterministic fn calls() -> i64 { return twice(1) + now() }
fn main() { let a = twice(2); let b = now() }
`, Options{})

	contains(t, out,
		"return (twice(1) + now(context.Background()))",
		"var a int64 = twice(2)",
		"var b int64 = now(ctx)",
		`return rt.Invoke(ctx, "Util.now").Int()`,
	)
}

func TestMainShim(t *testing.T) {
	src := `fn main(who: String, n: i64) { DB.log(who) }`

	out := generate(t, src, Options{})

	contains(t, out,
		"func userMain(ctx context.Context, who string, n int64) {",
		`rt.Invoke(ctx, "DB.log", rt.Of(who))`,
		"func main() {",
		"rt.Main(func(ctx context.Context) {",
		`userMain(ctx, "Internet", 0)`,
	)

	out = generate(t, src, Options{EntryArg: "World"})

	contains(t, out, `userMain(ctx, "World", 0)`)
}

func TestForLoop(t *testing.T) {
	out := generate(t, `
deterministic fn sum(n: i64) -> i64 {
	let s = 0
	for i in 0..n { s = s + i }
	return s
}

fn count() {
	for i in 10..0 by -2 { DB.log(i) }
}
`, Options{})

	contains(t, out,
		"var i int64 = 0",
		"var __t1_end int64 = n",
		"var __t2_step int64 = 1",
		"for (__t2_step > 0 && i < __t1_end) || (__t2_step < 0 && i > __t1_end) {",
		"s = (s + i)",
		"i += __t2_step",

		"var i int64 = 10",
		"var __t2_step int64 = -2",
		"i = rt.Add(rt.Of(i), rt.Of(__t2_step)).Int()",
	)
}

func TestForLoopShadowedVar(t *testing.T) {
	out := generate(t, `
fn f() {
	for i in 0..3 { let i = 10 }
}
`, Options{})

	// The advance follows the body block, so it sees the induction variable.
	contains(t, out,
		"var i int64 = 10",
		"_ = i }  i = rt.Add(rt.Of(i), rt.Of(__t2_step)).Int()",
	)
}

func TestScopePause(t *testing.T) {
	out := generate(t, `
fn io() { scope db { DB.log("x") } }
deterministic fn calc() -> i64 { scope math { let x = 1 } return 2 }
`, Options{})

	assert.Equal(t, 2, strings.Count(out, "rt.Pause("), "%s", out)
	contains(t, out, "rt.Pause(ctx)", "rt.Pause(context.Background())", "// scope db", "// scope math")
}

func TestSpawnAwait(t *testing.T) {
	out := generate(t, `
fn work(n: i64) -> i64 { return n }
fn main() {
	let x = 1
	let t = spawn work(x)
	x = 2
	let v = await t
	let w = await v
	DB.log(w)
}
`, Options{})

	contains(t, out,
		"var t *rt.Task = rt.Spawn(ctx, func(x int64) func(context.Context) rt.Value {",
		"return rt.Of(work(ctx, x))",
		"}(x))",
		"x = 2",
		"var v int64 = rt.Await(ctx, t).Int()",
		"var w int64 = v",
	)
}

func TestEffects(t *testing.T) {
	out := generate(t, `
fn main(r: Untrusted) {
	let x = 5
	call DB.log("saved", x) { timeout: 500 }
	let s = Console.read("name")
	let a = [1, 2]
	let e = a[0]
	let m = [1, "a"]
	let k = json(r, "key")
	validate r { success: { DB.log(r) } }
}
`, Options{})

	contains(t, out,
		`rt.Infra(ctx, 500, "DB", "log", "saved", rt.Format(x))`,
		`var s string = rt.Invoke(ctx, "Console.read", rt.Of("name")).Text()`,
		"var a []int64 = []int64{1, 2}",
		"var e int64 = rt.Index(a, 0)",
		`var m []rt.Value = []rt.Value{rt.Of(1), rt.Of("a")}`,
		`var k string = rt.JSONField(r, "key")`,
		"r = rt.Validate(r)",
	)
}

func TestCoercions(t *testing.T) {
	out := generate(t, `
fn first(l: Array<i64>) -> i64 { return l[0] }
fn main() {
	let m = [1, "a"]
	let d = m[0]
	let x = first([d, 2])
	let n = d + 1
	if d == 1 { DB.log(n) }
}
`, Options{})

	contains(t, out,
		"var d rt.Value = rt.Index(m, 0)",
		"var x int64 = first(ctx, []int64{d.Int(), 2})",
		"var n rt.Value = rt.Add(rt.Of(d), rt.Of(1))",
		"if d.Int() == 1 {",
	)
}

func TestNames(t *testing.T) {
	out := generate(t, `
fn len(type: i64) -> i64 {
	let x = type
	let x = x * 2
	let len = 3
	return x
}
`, Options{})

	contains(t, out,
		"func __f_len(ctx context.Context, __u_type int64) int64 {",
		"var x int64 = __u_type",
		"var __r1_x int64 = rt.Mul(rt.Of(x), rt.Of(2)).Int()",
		"var __u_len int64 = 3",
		"return __r1_x",
	)
}

func TestIfChain(t *testing.T) {
	out := generate(t, `
deterministic fn sign(x: i64) -> i64 {
	if x > 0 { return 1 } else if x < 0 { return -1 } else { return 0 }
}
`, Options{})

	contains(t, out,
		"} else if x < 0 {",
		"} else {",
		"panic(rt.MissingReturn)",
	)
}

func TestShadowedDeclaration(t *testing.T) {
	out := generate(t, `
fn f() -> i64 { return 1 }
fn f() -> i64 { return 2 }
`, Options{})

	assert.Equal(t, 1, strings.Count(out, "func f("), "%s", out)
	contains(t, out, "return 2")
}

func TestCodegenErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		fn   string
		msg  string
	}{
		{"pure_text_mul", `deterministic fn f() -> String { return "a" * 2 }`, "f", "invalid operation"},
		{"int_plus_text", `fn f() { let x = 1 + "a" }`, "f", "invalid operation"},
		{"condition", `fn f() { if 1 { } }`, "f", "non-boolean condition"},
		{"undefined_func", `fn f() { g() }`, "f", "undefined function: g"},
		{"arity", "fn g(a: i64) {}\nfn f() { g() }", "f", "takes 1 arguments"},
		{"void_value", "fn g() {}\nfn f() { let x = g() }", "f", "void value"},
		{"argument_kind", `fn g(a: i64) {} fn f() { g("a") }`, "f", "can not use String as i64"},
		{"missing_value", `fn f() -> i64 { return }`, "f", "missing return value"},
		{"validate_int", `fn f(a: i64) { validate a { success: {} } }`, "f", "can not validate"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := generateErr(t, tc.src)

			assert.Equal(t, tc.fn, err.Func)
			assert.Contains(t, err.Msg, tc.msg)
			assert.Contains(t, err.Error(), "codegen ("+tc.fn+")")
		})
	}
}
