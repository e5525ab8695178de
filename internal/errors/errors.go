package errors

import (
	"fmt"

	"pyrite/internal/ast"
)

// LoweringError is fatal for its unit: the source uses a construct the
// translator has no rule for. Translation never guesses.
type LoweringError struct {
	Code    string
	Message string
	Pos     ast.Position
}

func (e *LoweringError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
}

// Unsupported builds the standard no-lowering-rule error.
func Unsupported(construct string, pos ast.Position) *LoweringError {
	return &LoweringError{
		Code:    ErrorUnsupportedConstruct,
		Message: fmt.Sprintf("no translation rule for %s", construct),
		Pos:     pos,
	}
}

// InvariantViolation signals an internal inconsistency between passes,
// e.g. a raise statement reaching codegen with no resolvable scope.
// It always indicates a bug in pyrite itself, so it aborts the unit
// rather than emitting best-effort output.
type InvariantViolation struct {
	Code    string
	Message string
	Pos     ast.Position
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("internal error [%s] at %s:%d:%d: %s", e.Code, e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
}

func Invariant(code string, pos ast.Position, format string, args ...any) *InvariantViolation {
	return &InvariantViolation{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}
