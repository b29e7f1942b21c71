package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// InvalidArrayAccess implements spec §4.3: the indexed expression's
// type must be an array. This is independent of TypeError's index-is-
// int check (which looks at the other child of the same node).
func InvalidArrayAccess(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report
	walkExprs(program, nil, table, func(n *ast.Node, method *symbols.Method) {
		if n.Kind != ast.ArrayAccessExpr {
			return
		}
		arr := n.Child(0)
		at := engine.TypeOf(arr, method)
		if at != nil && !at.IsArray {
			reps = append(reps, report.NewError(report.Semantic, arr.Line, arr.Col,
				"'%s' is not an array", describeExpr(arr)))
		}
	})
	return reps
}

func describeExpr(n *ast.Node) string {
	if n.Kind == ast.VarRefExpr || n.Kind == ast.Identifier {
		return n.Name
	}
	return n.Kind.String()
}
