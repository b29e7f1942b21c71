package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// UndeclaredVariable implements spec §4.3: every VarRefExpr resolves
// to a local, parameter, field, or imported class.
func UndeclaredVariable(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report
	walkExprs(program, nil, table, func(n *ast.Node, method *symbols.Method) {
		if n.Kind != ast.VarRefExpr && n.Kind != ast.Identifier {
			return
		}
		if engine.TypeOf(n, method) == nil {
			reps = append(reps, report.NewError(report.Semantic, n.Line, n.Col,
				"variable '%s' is not declared", n.Name))
		}
	})
	return reps
}
