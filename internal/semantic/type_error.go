package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// TypeError implements spec §4.3's TypeError pass: the large grab-bag
// of assignability/operand-type rules. Each check below is keyed off
// the same statement/expression kinds the spec enumerates, walked
// once per method with the method's own params/locals in scope.
func TypeError(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report

	walkMethods(program, func(m *ast.Node) {
		method := table.Method(m.Name)

		var visit func(*ast.Node)
		visit = func(n *ast.Node) {
			if n == nil {
				return
			}
			switch n.Kind {
			case ast.AssignStmt:
				reps = append(reps, checkAssign(n, method, engine)...)
			case ast.ArrayAssignStmt:
				reps = append(reps, checkArrayAssign(n, method, engine)...)
			case ast.IfElseStmt:
				reps = append(reps, checkCondition(n.Child(0), method, engine, "if")...)
			case ast.WhileStmt:
				reps = append(reps, checkCondition(n.Child(0), method, engine, "while")...)
			case ast.ReturnStmt:
				reps = append(reps, checkReturn(n, m, method, engine)...)
			case ast.BinaryExpr:
				reps = append(reps, checkBinary(n, method, engine)...)
			case ast.ArrayAccessExpr:
				reps = append(reps, checkArrayAccess(n, method, engine)...)
			case ast.FuncExpr:
				reps = append(reps, checkCall(n, method, table, engine)...)
			}
			for _, c := range n.Children {
				visit(c)
			}
		}

		for _, s := range m.MethodBody() {
			visit(s)
		}
	})

	return reps
}

func checkBinary(n *ast.Node, method *symbols.Method, engine *types.Engine) []report.Report {
	l, r := n.Child(0), n.Child(1)
	lt, rt := engine.TypeOf(l, method), engine.TypeOf(r, method)
	if lt == nil || rt == nil {
		return nil
	}
	if lt.IsArray || rt.IsArray {
		return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
			"array types are not allowed in binary expression '%s'", n.Op)}
	}
	if types.ArithOps[n.Op] {
		if !lt.Equal(ast.IntType) || !rt.Equal(ast.IntType) {
			return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
				"operands of '%s' must be int", n.Op)}
		}
		return nil
	}
	if n.Op == "&&" || n.Op == "||" {
		if !lt.Equal(ast.BoolType) || !rt.Equal(ast.BoolType) {
			return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
				"operands of '%s' must be boolean", n.Op)}
		}
		return nil
	}
	// comparison: operands must have the same type
	if !lt.Equal(*rt) {
		return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
			"operands of '%s' must have the same type, found '%s' and '%s'", n.Op, lt, rt)}
	}
	return nil
}

func checkArrayAccess(n *ast.Node, method *symbols.Method, engine *types.Engine) []report.Report {
	idx := n.Child(1)
	it := engine.TypeOf(idx, method)
	if it != nil && !it.Equal(ast.IntType) {
		return []report.Report{report.NewError(report.Semantic, idx.Line, idx.Col, "array index must be int")}
	}
	return nil
}

func checkAssign(n *ast.Node, method *symbols.Method, engine *types.Engine) []report.Report {
	lhs, rhs := n.Child(0), n.Child(1)
	lt, rt := engine.TypeOf(lhs, method), engine.TypeOf(rhs, method)
	if lt == nil || rt == nil {
		return nil
	}
	if !engine.Assignable(*rt, *lt) {
		return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
			"cannot assign '%s' to '%s'", rt, lt)}
	}
	return nil
}

func checkArrayAssign(n *ast.Node, method *symbols.Method, engine *types.Engine) []report.Report {
	id, idx, rhs := n.Child(0), n.Child(1), n.Child(2)
	var reps []report.Report
	if it := engine.TypeOf(idx, method); it != nil && !it.Equal(ast.IntType) {
		reps = append(reps, report.NewError(report.Semantic, idx.Line, idx.Col, "array index must be int"))
	}
	idType := engine.TypeOf(id, method)
	if idType != nil && !idType.IsArray {
		reps = append(reps, report.NewError(report.Semantic, id.Line, id.Col, "'%s' is not an array", id.Name))
	}
	rt := engine.TypeOf(rhs, method)
	if rt != nil && !rt.Equal(ast.IntType) {
		reps = append(reps, report.NewError(report.Semantic, rhs.Line, rhs.Col, "assigned value must be int"))
	}
	return reps
}

func checkCondition(cond *ast.Node, method *symbols.Method, engine *types.Engine, ctx string) []report.Report {
	ct := engine.TypeOf(cond, method)
	if ct != nil && !ct.Equal(ast.BoolType) {
		return []report.Report{report.NewError(report.Semantic, cond.Line, cond.Col,
			"%s condition must be boolean, found '%s'", ctx, ct)}
	}
	return nil
}

func checkReturn(n *ast.Node, methodNode *ast.Node, method *symbols.Method, engine *types.Engine) []report.Report {
	expr := n.Child(0)
	if expr == nil {
		return nil
	}
	et := engine.TypeOf(expr, method)
	declared := methodNode.MethodType().AsType()
	if et != nil && !engine.Assignable(*et, declared) {
		return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
			"method '%s' declares return type '%s' but returns '%s'", methodNode.Name, declared, et)}
	}
	return nil
}

// checkCall implements spec §4.3's call-arity/type rules, with the
// varargs special case: a caller may supply n-1+k individual args of
// the element type, or exactly n args whose last is an array.
func checkCall(n *ast.Node, method *symbols.Method, table *symbols.Table, engine *types.Engine) []report.Report {
	callee := table.Method(n.Name)
	if callee == nil {
		return nil
	}
	args := n.Children[1:]
	params := callee.Params

	if len(params) > 0 && params[len(params)-1].Type.IsArray && isVarargsParam(callee, len(params)-1) {
		return checkVarargsCall(n, args, params, method, engine)
	}

	var reps []report.Report
	if len(args) != len(params) {
		return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
			"method '%s' expects %d arguments, but %d were provided", n.Name, len(params), len(args))}
	}
	for i, p := range params {
		at := engine.TypeOf(args[i], method)
		if at != nil && !engine.Assignable(*at, p.Type) {
			reps = append(reps, report.NewError(report.Semantic, args[i].Line, args[i].Col,
				"argument %d of method '%s' must be '%s', found '%s'", i+1, n.Name, p.Type, at))
		}
	}
	return reps
}

// isVarargsParam reports whether the declared parameter at index i of
// callee's Arguments node carries the varargs flag. Relies on the
// Method AST node rather than the already-array-folded symbols.Symbol
// because that is the only place isVarargs survives past ST-building.
func isVarargsParam(callee *symbols.Method, i int) bool {
	params := callee.Node.MethodArgs().ArgList()
	if i < 0 || i >= len(params) {
		return false
	}
	return params[i].ArgType().IsVarargs
}

func checkVarargsCall(n *ast.Node, args []*ast.Node, params []ast.Symbol, method *symbols.Method, engine *types.Engine) []report.Report {
	fixed := params[:len(params)-1]
	elemType := ast.DataType{Name: params[len(params)-1].Type.Name}

	if len(args) < len(fixed) {
		return []report.Report{report.NewError(report.Semantic, n.Line, n.Col,
			"method '%s' expects at least %d arguments, but %d were provided", n.Name, len(fixed), len(args))}
	}

	var reps []report.Report
	for i, p := range fixed {
		at := engine.TypeOf(args[i], method)
		if at != nil && !engine.Assignable(*at, p.Type) {
			reps = append(reps, report.NewError(report.Semantic, args[i].Line, args[i].Col,
				"argument %d of method '%s' must be '%s', found '%s'", i+1, n.Name, p.Type, at))
		}
	}

	rest := args[len(fixed):]
	if len(rest) == 1 {
		if rt := engine.TypeOf(rest[0], method); rt != nil && rt.IsArray {
			return reps // caller passed the array directly
		}
	}
	for _, a := range rest {
		at := engine.TypeOf(a, method)
		if at != nil && !engine.Assignable(*at, elemType) {
			reps = append(reps, report.NewError(report.Semantic, a.Line, a.Col,
				"varargs argument of method '%s' must be '%s', found '%s'", n.Name, elemType, at))
		}
	}
	return reps
}
