package gen

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/gojolang/gojo/compiler/tp"
)

type (
	// env is an immutable chain of visible variables.
	// Block entries separate Go blocks.
	env struct {
		name string
		v    *variable
		up   *env

		block bool
	}

	variable struct {
		goName string
		t      tp.Type
	}
)

// Names generated code itself refers to.
var reserved = map[string]bool{
	"ctx":     true,
	"rt":      true,
	"context": true,
	"main":    true,
	"init":    true,

	userMain: true,
}

var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true, "error": true,
	"float32": true, "float64": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"rune": true, "string": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,

	"true": true, "false": true, "iota": true, "nil": true,

	"append": true, "cap": true, "clear": true, "close": true, "complex": true,
	"copy": true, "delete": true, "imag": true, "len": true, "make": true,
	"max": true, "min": true, "new": true, "panic": true, "print": true,
	"println": true, "real": true, "recover": true,
}

// Mangled functions and variables get different prefixes
// so a variable never shadows a function.
func mangle(n string) string {
	return "__u_" + n
}

func needsMangle(n string) bool {
	return strings.HasPrefix(n, "_") || token.IsKeyword(n) || predeclared[n] || reserved[n]
}

// funcName is the Go name of a gojo function.
func funcName(n string) string {
	if n == "main" {
		return userMain
	}

	if needsMangle(n) {
		return "__f_" + n
	}

	return n
}

func (g *fn) varName(s *env, n string) string {
	gn := n

	if needsMangle(n) {
		gn = mangle(n)
	} else if _, ok := g.cls.Func(n); ok {
		gn = mangle(n)
	}

	if s.declared(n) {
		g.tmp++
		gn = "__r" + strconv.Itoa(g.tmp) + "_" + n
	}

	return gn
}

func (g *fn) temp(hint string) string {
	g.tmp++

	return "__t" + strconv.Itoa(g.tmp) + "_" + hint
}

func (s *env) bind(name, goName string, t tp.Type) *env {
	return &env{
		name: name,
		v:    &variable{goName: goName, t: t},
		up:   s,
	}
}

func (s *env) enter() *env {
	return &env{up: s, block: true}
}

func (s *env) lookup(name string) *variable {
	for ; s != nil; s = s.up {
		if !s.block && s.name == name {
			return s.v
		}
	}

	return nil
}

// declared reports whether name is bound in the innermost Go block.
func (s *env) declared(name string) bool {
	for ; s != nil && !s.block; s = s.up {
		if s.name == name {
			return true
		}
	}

	return false
}
