package semantic

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
)

// DuplicatedElement implements spec §4.3's DuplicatedElement: unique
// imports within Program, unique field/method names within the class,
// unique parameter names and unique local names within each method.
func DuplicatedElement(program *ast.Node, table *symbols.Table, engine *types.Engine) []report.Report {
	var reps []report.Report

	seenImports := map[string]bool{}
	for _, imp := range program.Imports() {
		if seenImports[imp.Name] {
			reps = append(reps, dupReport(imp, "import", imp.Name))
		}
		seenImports[imp.Name] = true
	}

	class := program.ClassDecl()

	seenFields := map[string]bool{}
	for _, f := range class.Fields() {
		if seenFields[f.Name] {
			reps = append(reps, dupReport(f, "field", f.Name))
		}
		seenFields[f.Name] = true
	}

	seenMethods := map[string]bool{}
	for _, m := range class.Methods() {
		if seenMethods[m.Name] {
			reps = append(reps, dupReport(m, "method", m.Name))
		}
		seenMethods[m.Name] = true
	}

	for _, m := range class.Methods() {
		seenNames := map[string]bool{}
		for _, arg := range m.MethodArgs().ArgList() {
			if seenNames[arg.Name] {
				reps = append(reps, dupReport(arg, "parameter", arg.Name))
			}
			seenNames[arg.Name] = true
		}
		for _, local := range m.MethodLocals() {
			if seenNames[local.Name] {
				reps = append(reps, dupReport(local, "local variable", local.Name))
			}
			seenNames[local.Name] = true
		}
	}

	return reps
}

func dupReport(n *ast.Node, kind, name string) report.Report {
	return report.NewError(report.Semantic, n.Line, n.Col, "%s '%s' is already declared", kind, name)
}
