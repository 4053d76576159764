package compiler

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gojolang/gojo/compiler/analyze"
	"github.com/gojolang/gojo/compiler/config"
	"github.com/gojolang/gojo/compiler/parse"
)

const program = `
deterministic fn score(a: i64, b: i64) -> i64 {
	return 2 + a * b
}

fn fetch(url: String) -> String {
	let body = HTTP.get(url)
	return json(body, "name")
}

fn main(who: Untrusted) {
	let t = spawn fetch("http://localhost/user")
	scope db {
		call DB.log("hello", who) { timeout: 500 }
	}
	for i in 0..3 {
		DB.log(score(i, 2))
	}
	let name = await t
	validate who {
		success: { DB.log(who) }
	}
	DB.log(name)
}
`

func TestCompile(t *testing.T) {
	obj, err := Compile(context.Background(), "main.gojo", []byte(program), OptionsFromConfig(config.Default()))
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "main.go", obj, 0)
	require.NoError(t, err, "%s", obj)

	src := string(obj)

	assert.Contains(t, src, "func score(a int64, b int64) int64 {")
	assert.Contains(t, src, "func fetch(ctx context.Context, url string) string {")
	assert.Contains(t, src, "func userMain(ctx context.Context, who string) {")
	assert.Contains(t, src, `userMain(ctx, "Internet")`)
}

func TestCompileFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "main.gojo")

	err := os.WriteFile(name, []byte(program), 0o644)
	require.NoError(t, err)

	obj, err := CompileFile(context.Background(), name, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, obj)

	_, err = CompileFile(context.Background(), name+".missing", Options{})
	assert.Error(t, err)
}

func TestSteps(t *testing.T) {
	st := New(Options{})

	assert.Error(t, st.Analyze(context.Background()))

	st.AddFile(context.Background(), "a.gojo", []byte("fn a() {}\nfn b() {}\n"))

	require.NoError(t, st.Parse(context.Background()))
	require.NotNil(t, st.Program())
	assert.Len(t, st.Program().Funcs, 2)

	name, line, col := st.Position(st.Program().Funcs[1].Pos)
	assert.Equal(t, "a.gojo", name)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	require.NoError(t, st.Analyze(context.Background()))

	_, err := st.Generate(context.Background())
	require.NoError(t, err)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(context.Background(), "a.gojo", []byte("fn f( {}"), Options{})

	var se *parse.SyntaxError
	assert.True(t, errors.As(err, &se), "%v", err)

	_, err = Compile(context.Background(), "a.gojo", []byte(`deterministic fn f() -> i64 { return spawn g() }`), Options{})

	var ae *analyze.Error
	require.True(t, errors.As(err, &ae), "%v", err)
	assert.Equal(t, analyze.PhaseDeterminism, ae.Phase)
	assert.Equal(t, "f", ae.Func)

	_, err = Compile(context.Background(), "a.gojo", []byte(`fn f() { if true { let x = 1 } return x }`), Options{})

	require.True(t, errors.As(err, &ae), "%v", err)
	assert.Equal(t, analyze.PhaseScope, ae.Phase)
}
