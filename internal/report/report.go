// Package report defines the diagnostics vocabulary shared by every
// stage of the compiler, grounded on the CompilerError/Excerpt shape
// used throughout the teacher's frontend (frontend/util/errors,
// frontend/messages): a stage tag, a position, and a message. A Report
// carries exactly one position and one message.
package report

import "fmt"

// Stage names the pipeline stage that produced a Report, matching the
// driver surface of spec §6.
type Stage int

const (
	Lexer Stage = iota
	Parser
	Semantic
	Optimization
	Lowering
	RegAlloc
	CodeGen
	Internal
)

func (s Stage) String() string {
	switch s {
	case Lexer:
		return "LEXER"
	case Parser:
		return "PARSER"
	case Semantic:
		return "SEMANTIC"
	case Optimization:
		return "OPTIMIZATION"
	case Lowering:
		return "LOWERING"
	case RegAlloc:
		return "REGALLOC"
	case CodeGen:
		return "CODEGEN"
	case Internal:
		return "INTERNAL"
	}
	return "UNKNOWN"
}

// Kind is the report's severity, per spec §6 ("kind, stage, line,
// column, message"). The core only ever emits ERROR today; WARNING is
// kept because the driver surface names "kind" generically and a
// future pass may want it without changing this type.
type Kind int

const (
	Error Kind = iota
	Warning
)

func (k Kind) String() string {
	if k == Warning {
		return "WARNING"
	}
	return "ERROR"
}

// Report is one user-facing diagnostic.
type Report struct {
	Kind    Kind
	Stage   Stage
	Line    int
	Column  int
	Message string
}

func (r Report) String() string {
	return fmt.Sprintf("[%s %s] line %d:%d: %s", r.Kind, r.Stage, r.Line, r.Column, r.Message)
}

func NewError(stage Stage, line, col int, format string, args ...interface{}) Report {
	return Report{Kind: Error, Stage: stage, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

// HasErrors reports whether any Report in reps has kind Error, which
// is the exit-code contract of spec §6.
func HasErrors(reps []Report) bool {
	for _, r := range reps {
		if r.Kind == Error {
			return true
		}
	}
	return false
}
