package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// ThisInStaticMethod implements spec §4.3: ThisExpr may not appear in
// a method with isStatic=true.
func ThisInStaticMethod(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report
	walkMethods(program, func(m *ast.Node) {
		if !m.IsStatic {
			return
		}
		var visit func(*ast.Node)
		visit = func(n *ast.Node) {
			if n == nil {
				return
			}
			if n.Kind == ast.ThisExpr {
				reps = append(reps, report.NewError(report.Semantic, n.Line, n.Col,
					"'this' cannot be used inside static method '%s'", m.Name))
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
