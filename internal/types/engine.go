// Package types implements the TypeEngine of spec §4.2: the semantic
// type of any AST expression, and type-assignability. Grounded on the
// teacher's typechecker (frontend/typechecker) for the general shape
// of a type-deriving visitor keyed off a node tag, generalized here to
// the five-entry table in spec §4.2 instead of the teacher's own
// scalar/pointer lattice.
package types

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/symbols"
)

// ArithOps and RelOps classify BinaryExpr operators per spec §4.2.
var ArithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}
var RelOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "==": true, "&&": true, "||": true}

// Engine derives types against a fixed SymbolTable. One Engine is
// built per compilation (it is stateless beyond the table reference),
// matching spec §5's single-driver-instance model.
type Engine struct {
	Table *symbols.Table
}

func New(table *symbols.Table) *Engine {
	return &Engine{Table: table}
}

// TypeOf returns the type of expr as seen from inside method (nil for
// top-level contexts, which valid ASTs never present to expressions).
// Returns nil when the expression does not resolve (undeclared
// variable, unknown import) — callers in SemanticPasses treat a nil
// result as the trigger for an UndeclaredVariable report (a call
// always resolves, to any when unknown); callers past semantic
// analysis never see nil because the
// driver already halted on such a report (spec §4.3, §7).
func (e *Engine) TypeOf(expr *ast.Node, method *symbols.Method) *ast.DataType {
	switch expr.Kind {
	case ast.IntegerLiteral:
		t := ast.IntType
		return &t
	case ast.BooleanLiteral:
		t := ast.BoolType
		return &t
	case ast.ArrayAccessExpr:
		t := ast.IntType
		return &t
	case ast.ArrayExpr, ast.NewArrayExpr:
		t := ast.IntArray
		return &t
	case ast.NewExpr:
		t := ast.DataType{Name: expr.Name}
		return &t
	case ast.ThisExpr:
		t := ast.DataType{Name: e.Table.ClassName}
		return &t
	case ast.VarRefExpr, ast.Identifier:
		return e.typeOfVarRef(expr, method)
	case ast.BinaryExpr:
		return e.typeOfBinary(expr)
	case ast.UnaryExpr:
		t := ast.BoolType
		return &t
	case ast.ParenExpr:
		return e.TypeOf(expr.Child(0), method)
	case ast.FuncExpr:
		return e.typeOfCall(expr, method)
	case ast.MemberExpr:
		return e.typeOfMember(expr, method)
	}
	return nil
}

func (e *Engine) typeOfBinary(expr *ast.Node) *ast.DataType {
	if ArithOps[expr.Op] {
		t := ast.IntType
		return &t
	}
	t := ast.BoolType
	return &t
}

// typeOfVarRef resolves a name against, in order: locals, params,
// fields, then imports — spec §4.2's "field/param/local lookup in the
// enclosing method; else if in imports -> (name,false); else null".
func (e *Engine) typeOfVarRef(expr *ast.Node, method *symbols.Method) *ast.DataType {
	name := expr.Name
	if method != nil {
		if l, ok := method.Local(name); ok {
			t := l.Type
			return &t
		}
		if p, ok := method.Param(name); ok {
			t := p.Type
			return &t
		}
	}
	if f, ok := e.Table.Field(name); ok {
		t := f.Type
		return &t
	}
	if e.Table.IsImported(name) {
		return &ast.DataType{Name: name}
	}
	return nil
}

// typeOfCall implements spec §4.2's FuncExpr rule: known method's
// return type, else synthetic any.
func (e *Engine) typeOfCall(expr *ast.Node, method *symbols.Method) *ast.DataType {
	name := expr.Name
	if m := e.Table.Method(name); m != nil {
		t := m.ReturnType
		return &t
	}
	t := ast.AnyType
	return &t
}

// typeOfMember handles obj.path(.path)* chains: array.length resolves
// to int (spec §4.6's arraylength special case), anything else against
// an imported-class receiver is any. expr.Name carries the member
// being accessed; expr.Child(0) is the object.
func (e *Engine) typeOfMember(expr *ast.Node, method *symbols.Method) *ast.DataType {
	if expr.Name == "length" {
		objType := e.TypeOf(expr.Child(0), method)
		if objType != nil && objType.IsArray {
			t := ast.IntType
			return &t
		}
	}
	t := ast.AnyType
	return &t
}

// IsField reports whether name resolves to a field rather than being
// shadowed by a local or parameter of method — the distinction the
// emitter needs for getfield/putfield vs. plain local access (§4.6).
func (e *Engine) IsField(name string, method *symbols.Method) bool {
	if method != nil {
		if _, ok := method.Local(name); ok {
			return false
		}
		if _, ok := method.Param(name); ok {
			return false
		}
	}
	_, ok := e.Table.Field(name)
	return ok
}

// Assignable implements spec §4.2's assignable(src, dst, ST):
//   - names equal and arrays match, or
//   - either is any, or
//   - src is the declared class and dst its declared superclass, or
//   - both names appear in imports.
//
// Varargs parameters are treated exactly as arrays at the call site
// (§9), so callers normalize a varargs formal to an array DataType
// before calling Assignable.
func (e *Engine) Assignable(src, dst ast.DataType) bool {
	if src.Name == dst.Name && src.IsArray == dst.IsArray {
		return true
	}
	if src.Name == ast.AnyType.Name || dst.Name == ast.AnyType.Name {
		return true
	}
	if !src.IsArray && !dst.IsArray {
		if src.Name == e.Table.ClassName && dst.Name == e.Table.SuperClass && e.Table.HasSuper() {
			return true
		}
		if e.Table.IsImported(src.Name) && e.Table.IsImported(dst.Name) {
			return true
		}
	}
	return false
}
