// Package varargslower implements the VarargsLowerer of spec §4.5: an
// AST rewrite that groups the trailing arguments of a varargs call
// site into a synthetic ArrayExpr, run after semantic analysis and
// constant optimisation so it sees folded literals, and before
// OllirEmitter so the emitter never special-cases varargs call sites.
package varargslower

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// Run rewrites program in place.
func Run(program *ast.Node, table *symbols.Table, engine *types.Engine) {
	var walk func(*ast.Node, *symbols.Method)
	walk = func(n *ast.Node, method *symbols.Method) {
		if n == nil {
			return
		}
		if n.Kind == ast.Method {
			method = table.Method(n.Name)
		}
		if n.Kind == ast.FuncExpr {
			lower(n, table, engine, method)
		}
		for _, c := range n.Children {
			walk(c, method)
		}
	}
	walk(program, nil)
}

// lower groups n's trailing arguments into an ArrayExpr when n calls a
// known method whose last parameter is an array (spec §4.5). The
// call is left untouched when it already passes exactly one argument
// of array type for that parameter (spec §8 property 5: the outcome
// may be an ArrayExpr or any array-typed expression).
func lower(n *ast.Node, table *symbols.Table, engine *types.Engine, method *symbols.Method) {
	m := table.Method(n.Name)
	if m == nil || len(m.Params) == 0 {
		return
	}
	paramCount := len(m.Params)
	last := m.Params[paramCount-1]
	if !last.Type.IsArray {
		return
	}

	args := n.Children[1:]
	if len(args) == paramCount {
		if lastArg := args[len(args)-1]; lastArg.Kind == ast.ArrayExpr {
			return
		}
		if t := engine.TypeOf(args[len(args)-1], method); t != nil && t.IsArray {
			return
		}
	}

	firstVarargIdx := 1 + (paramCount - 1)
	if firstVarargIdx > len(n.Children) {
		return // arity mismatch; TypeError already reported this (driver never reaches here)
	}

	trailing := n.DetachFrom(firstVarargIdx)
	array := &ast.Node{Kind: ast.ArrayExpr, Children: trailing}
	n.Children = append(n.Children, array)
}
