// Package driver wires the pipeline of spec §5/§6 end to end: parse,
// SymbolTable, TypeEngine, SemanticPasses, optional ConstantOptimiser,
// VarargsLowerer, OllirEmitter, OLLIR round-trip into the IR, optional
// RegisterAllocator, JasminEmitter.
//
// Grounded on the teacher's frontend/frontend.go for the shape of a
// driver package that threads a source string through named stages
// and stops at the first one that reports an error, generalized from
// the teacher's three entry points (Lex, Parse, All) into this spec's
// single Compile entry point over a longer pipeline.
package driver

import (
	"github.com/marco-vb/jmmc/internal/ast"
	"github.com/marco-vb/jmmc/internal/constopt"
	"github.com/marco-vb/jmmc/internal/ir"
	"github.com/marco-vb/jmmc/internal/jasmin"
	"github.com/marco-vb/jmmc/internal/ollir"
	"github.com/marco-vb/jmmc/internal/parser"
	"github.com/marco-vb/jmmc/internal/regalloc"
	"github.com/marco-vb/jmmc/internal/report"
	"github.com/marco-vb/jmmc/internal/semantic"
	"github.com/marco-vb/jmmc/internal/symbols"
	"github.com/marco-vb/jmmc/internal/types"
	"github.com/marco-vb/jmmc/internal/varargslower"
)

// Options are the driver surface's compiler flags (spec §6): Optimize
// enables ConstantOptimiser; RegisterCeiling < 0 disables the
// RegisterAllocator's ceiling check, matching registerAllocation=-1.
type Options struct {
	Optimize        bool
	RegisterCeiling int
}

// Result is the driver surface's outputs (spec §6): the AST, the
// OLLIR text, the Jasmin text, and any reports. Jasmin is only
// populated when Reports carries no error (spec §7: the driver halts
// at the first failing stage). Ollir is also populated when the error
// comes from the OLLIR round-trip or from register allocation.
type Result struct {
	AST     *ast.Node
	Ollir   string
	Jasmin  string
	Reports []report.Report
}

// Compile runs the full pipeline over src, the raw Jmm source text.
func Compile(src string, opts Options) Result {
	program, reps := parser.Parse(src)
	if reps != nil {
		return Result{Reports: reps}
	}

	table := symbols.Build(program)
	engine := types.New(table)

	if reps := semantic.Run(program, table, engine); len(reps) > 0 {
		return Result{AST: program, Reports: reps}
	}

	if opts.Optimize {
		constopt.Run(program)
	}
	varargslower.Run(program, table, engine)

	ollirText := ollir.Emit(program, table, engine)

	cu, err := ir.Read(ollirText)
	if err != nil {
		internalErr := report.Internalf(report.Lowering, "OllirReader", "OLLIR round-trip failed: %w", err)
		return Result{AST: program, Ollir: ollirText, Reports: []report.Report{
			report.NewError(report.Lowering, 0, 0, "%s", internalErr.Error()),
		}}
	}

	for _, m := range cu.Methods {
		if reps := regalloc.Allocate(m, opts.RegisterCeiling); len(reps) > 0 {
			return Result{AST: program, Ollir: ollirText, Reports: reps}
		}
	}

	jasminText := jasmin.Emit(cu, table.Imports)

	return Result{AST: program, Ollir: ollirText, Jasmin: jasminText}
}
