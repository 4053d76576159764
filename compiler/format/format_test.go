package format

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gojolang/gojo/compiler/ast"
	"github.com/gojolang/gojo/compiler/parse"
)

const messy = `deterministic   fn add(a:i64,b : i64)->i64{return a+b*2}
fn main(who: Untrusted, l: Array<Array<String>>) {
  let t = spawn work((1 + 2) * 3, "q\"x\n")
  let v = (await t) + 1
  call DB.log("saved", v) {timeout:500};
  if v > 1 { v = 1 } else if v < 0 { v = 0 } else { }
  for i in 0..10 by -2 { scope db { DB.log(i) } }
  while v != 0 { v = v - (1 - 1) }
  validate who { success: { DB.log(json(who, "name")) } }
  let e = [1, 2][0]
  return
}
`

const canonical = `deterministic fn add(a: i64, b: i64) -> i64 {
	return a + b * 2
}

fn main(who: Untrusted, l: Array<Array<String>>) {
	let t = spawn work((1 + 2) * 3, "q\"x\n")
	let v = (await t) + 1
	call DB.log("saved", v) { timeout: 500 }
	if v > 1 {
		v = 1
	} else if v < 0 {
		v = 0
	} else {}
	for i in 0..10 by -2 {
		scope db {
			DB.log(i)
		}
	}
	while v != 0 {
		v = v - (1 - 1)
	}
	validate who {
		success: {
			DB.log(json(who, "name"))
		}
	}
	let e = [1, 2][0]
	return
}
`

func reformat(t *testing.T, src string) string {
	t.Helper()

	p, err := parse.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	res, err := Format(context.Background(), nil, p)
	require.NoError(t, err)

	return string(res)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, canonical, reformat(t, messy))
}

func TestIdempotent(t *testing.T) {
	assert.Equal(t, canonical, reformat(t, canonical))
}

func TestRoundTrip(t *testing.T) {
	a, err := parse.Parse(context.Background(), []byte(messy))
	require.NoError(t, err)

	b, err := parse.Parse(context.Background(), []byte(reformat(t, messy)))
	require.NoError(t, err)

	if d := cmp.Diff(a, b, cmpopts.IgnoreTypes(ast.Base{}), cmpopts.EquateEmpty()); d != "" {
		t.Errorf("ast changed (-before +after):\n%s", d)
	}
}

func TestElse(t *testing.T) {
	for _, tc := range []struct {
		src, exp string
	}{
		{"fn f() { if true {} else {} }", "fn f() {\n\tif true {} else {}\n}\n"},
		{"fn f() { if true { g() } else { h() } }", "fn f() {\n\tif true {\n\t\tg()\n\t} else {\n\t\th()\n\t}\n}\n"},
		{"fn f() { if true {} else if false {} else {} }", "fn f() {\n\tif true {} else if false {} else {}\n}\n"},
	} {
		assert.Equal(t, tc.exp, reformat(t, tc.src), "%s", tc.src)
	}
}

func TestExprParens(t *testing.T) {
	for _, tc := range []struct {
		x   ast.Expr
		exp string
	}{
		{&ast.Binary{
			Left:  &ast.Ident{Name: "a"},
			Op:    ast.Sub,
			Right: &ast.Binary{Left: &ast.Ident{Name: "b"}, Op: ast.Sub, Right: &ast.Ident{Name: "c"}},
		}, "a - (b - c)"},
		{&ast.Binary{
			Left:  &ast.Binary{Left: &ast.Ident{Name: "a"}, Op: ast.Sub, Right: &ast.Ident{Name: "b"}},
			Op:    ast.Sub,
			Right: &ast.Ident{Name: "c"},
		}, "a - b - c"},
		{&ast.Index{
			Array: &ast.Spawn{X: &ast.Ident{Name: "a"}},
			Index: &ast.Int{Value: 0},
		}, "(spawn a)[0]"},
		{&ast.Binary{
			Left:  &ast.Int{Value: 1},
			Op:    ast.Sub,
			Right: &ast.Int{Value: -1},
		}, "1 - -1"},
	} {
		res, err := Format(context.Background(), nil, tc.x)
		require.NoError(t, err)

		assert.Equal(t, tc.exp, string(res))
	}
}
