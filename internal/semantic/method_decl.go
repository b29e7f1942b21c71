package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// InvalidMethodDeclaration implements spec §4.3: non-main methods must
// not be static; main must be static, return void, and take a single
// String[] parameter; a non-void method must contain exactly one
// ReturnStmt, which must be its last statement; a void method must
// contain none.
func InvalidMethodDeclaration(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report

	walkMethods(program, func(m *ast.Node) {
		if m.Name == "main" {
			reps = append(reps, checkMain(m)...)
		} else if m.IsStatic {
			reps = append(reps, report.NewError(report.Semantic, m.Line, m.Col,
				"method '%s' is declared static but is not 'main'", m.Name))
			return
		}

		returns := collectReturns(m)
		returnType := m.MethodType().AsType()

		if returnType.Equal(ast.VoidType) {
			if len(returns) > 0 {
				reps = append(reps, report.NewError(report.Semantic, m.Line, m.Col,
					"method '%s' is declared void but has a return statement", m.Name))
			}
			return
		}

		if len(returns) > 1 {
			reps = append(reps, report.NewError(report.Semantic, m.Line, m.Col,
				"method '%s' has more than one return statement", m.Name))
			return
		}
		if len(returns) == 0 {
			reps = append(reps, report.NewError(report.Semantic, m.Line, m.Col,
				"method '%s' is declared '%s' but has no return statement", m.Name, returnType))
			return
		}

		body := m.MethodBody()
		if len(body) == 0 || body[len(body)-1] != returns[0] {
			reps = append(reps, report.NewError(report.Semantic, returns[0].Line, returns[0].Col,
				"return statement must be the last statement in method '%s'", m.Name))
		}
	})

	return reps
}

func checkMain(m *ast.Node) []report.Report {
	var reps []report.Report
	if !m.IsStatic {
		reps = append(reps, report.NewError(report.Semantic, m.Line, m.Col, "method 'main' must be declared static"))
	}
	if !m.MethodType().AsType().Equal(ast.VoidType) {
		reps = append(reps, report.NewError(report.Semantic, m.Line, m.Col, "method 'main' must be declared void"))
	}
	params := m.MethodArgs().ArgList()
	if len(params) != 1 || !(params[0].ArgType().Name == "String" && params[0].ArgType().IsArray) {
		reps = append(reps, report.NewError(report.Semantic, m.Line, m.Col,
			"method 'main' must have a single parameter of type String[]"))
	}
	return reps
}

func collectReturns(m *ast.Node) []*ast.Node {
	var out []*ast.Node
	for _, s := range m.MethodBody() {
		if s.Kind == ast.ReturnStmt {
			out = append(out, s)
		}
	}
	return out
}
