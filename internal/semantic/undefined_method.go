package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// UndefinedMethod implements spec §4.3: a call's method must be (a)
// declared in this class, (b) called on a receiver whose static type
// is an imported class, or (c) called on an instance of this class
// whose superclass is imported.
func UndefinedMethod(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report
	walkExprs(program, nil, table, func(n *ast.Node, method *symbols.Method) {
		if n.Kind != ast.FuncExpr {
			return
		}
		if table.HasMethod(n.Name) {
			return
		}
		receiver := n.Child(0)
		receiverType := engine.TypeOf(receiver, method)
		if receiverType != nil && table.IsImported(receiverType.Name) {
			return
		}
		if receiverType != nil && !receiverType.IsArray && receiverType.Name == table.ClassName &&
			table.HasSuper() && table.IsImported(table.SuperClass) {
			return
		}
		reps = append(reps, report.NewError(report.Semantic, n.Line, n.Col,
			"method '%s' is not defined", n.Name))
	})
	return reps
}
