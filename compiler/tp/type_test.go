package tp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gojolang/gojo/compiler/ast"
)

func TestFromAST(t *testing.T) {
	for _, tc := range []struct {
		in  ast.Type
		out Type
		gt  string
	}{
		{nil, Void{}, ""},
		{ast.Void{}, Void{}, ""},
		{ast.Integer{}, Int{}, "int64"},
		{ast.String{}, Text{}, "string"},
		{ast.Untrusted{}, Text{}, "string"},
		{ast.Custom{Name: "User"}, Text{}, "string"},
		{ast.Array{Elem: ast.Array{Elem: ast.Integer{}}}, Array{X: Array{X: Int{}}}, "[][]int64"},
	} {
		r := FromAST(tc.in)

		assert.True(t, Equal(tc.out, r), "%v: %v", tc.in, r)
		assert.Equal(t, tc.gt, r.GoType())
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Array{X: Dyn{}}, Array{X: Dyn{}}))
	assert.False(t, Equal(Array{X: Int{}}, Array{X: Text{}}))
	assert.False(t, Equal(Array{X: Int{}}, Int{}))
	assert.False(t, Equal(Task{X: Int{}}, Dyn{}))
	assert.False(t, Equal(Task{X: Int{}}, Task{X: Text{}}))
	assert.True(t, Equal(Task{X: Array{X: Int{}}}, Task{X: Array{X: Int{}}}))
	assert.Equal(t, "Task<i64>", Task{X: Int{}}.String())

	assert.True(t, IsDyn(Array{X: Array{X: Dyn{}}}))
	assert.False(t, IsDyn(Array{X: Int{}}))

	assert.Equal(t, "Array<dynamic>", Array{X: Dyn{}}.String())
	assert.Equal(t, "[]rt.Value", Array{X: Dyn{}}.GoType())
}
