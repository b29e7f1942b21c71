package report

import "fmt"

// InternalError represents an unreachable-shape failure: an IR or
// attribute lookup the core assumed could not fail at this stage. The
// teacher's frontend treats the equivalent CompilerError.InternalCompilerError
// the same way — fatal, naming the offending pass, no retry (spec §7).
type InternalError struct {
	Stage Stage
	Pass  string
	Err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s (%s): %v", e.Pass, e.Stage, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func NewInternalError(stage Stage, pass string, err error) *InternalError {
	return &InternalError{Stage: stage, Pass: pass, Err: err}
}

func Internalf(stage Stage, pass, format string, args ...interface{}) *InternalError {
	return NewInternalError(stage, pass, fmt.Errorf(format, args...))
}
