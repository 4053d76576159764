/*

Process of compilation

Program Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	analyze (scope, determinism, taint) ->
Checked Tree ->
	gen ->
Go Source ->
	go run ->
Executable

Source Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	format ->
Canonical Source Text

*/
package compiler
