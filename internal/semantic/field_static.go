package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// FieldInStaticMethod is the supplemented pass from SPEC_FULL: a bare
// (unqualified) reference to a field inside a static method is
// rejected, independently of ThisInStaticMethod — a static method can
// be entirely free of 'this' and still illegally read a field by
// name.
func FieldInStaticMethod(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report
	walkMethods(program, func(m *ast.Node) {
		if !m.IsStatic {
			return
		}
		method := table.Method(m.Name)
		var visit func(*ast.Node)
		visit = func(n *ast.Node) {
			if n == nil {
				return
			}
			if (n.Kind == ast.VarRefExpr || n.Kind == ast.Identifier) && engine.IsField(n.Name, method) {
				reps = append(reps, report.NewError(report.Semantic, n.Line, n.Col,
					"field '%s' cannot be accessed from static method '%s'", n.Name, m.Name))
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
