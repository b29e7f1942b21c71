package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// InvalidVarargs implements spec §4.3: varargs forbidden on fields,
// locals, and return types; at most one varargs parameter per method,
// and only in the last position.
func InvalidVarargs(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report
	class := program.ClassDecl()

	for _, f := range class.Fields() {
		if f.VarType().IsVarargs {
			reps = append(reps, report.NewError(report.Semantic, f.Line, f.Col, "field type cannot be varargs"))
		}
	}

	for _, m := range class.Methods() {
		for _, local := range m.MethodLocals() {
			if local.VarType().IsVarargs {
				reps = append(reps, report.NewError(report.Semantic, local.Line, local.Col,
					"local variable type cannot be varargs"))
			}
		}
		if m.MethodType().IsVarargs {
			reps = append(reps, report.NewError(report.Semantic, m.MethodType().Line, m.MethodType().Col,
				"method return type cannot be varargs"))
		}

		params := m.MethodArgs().ArgList()
		hasVarargs := false
		isLast := true
		var offender *ast.Node
		for i, p := range params {
			if !p.ArgType().IsVarargs {
				continue
			}
			if hasVarargs {
				reps = append(reps, report.NewError(report.Semantic, p.Line, p.Col,
					"only one varargs parameter is allowed"))
				hasVarargs = false
				isLast = true
				offender = nil
				break
			}
			hasVarargs = true
			offender = p
			if i != len(params)-1 {
				isLast = false
			}
		}
		if hasVarargs && !isLast {
			reps = append(reps, report.NewError(report.Semantic, offender.Line, offender.Col,
				"varargs parameter must be the last parameter"))
		}
	}

	return reps
}
