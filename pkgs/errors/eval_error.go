package errors

import (
	"fmt"
	"strings"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/ast"
)

// JumpKind tags a non-local control-flow transfer.
type JumpKind int

const (
	JumpNone JumpKind = iota
	JumpBreak
	JumpContinue
)

// EvalError is a location-carrying parse or runtime error. It doubles as
// the Jump-encoding vehicle for BREAK/CONTINUE: when Jump != JumpNone,
// Carried holds the value threaded through the loop.
type EvalError struct {
	Loc     ast.Location
	Message string
	Jump    JumpKind
	Carried value.Value
	Cause   error
}

func (e *EvalError) Error() string {
	if e.Jump != JumpNone {
		return fmt.Sprintf("%s outside loop", e.jumpName())
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), e.Message)
}

func (e *EvalError) Unwrap() error { return e.Cause }

func (e *EvalError) jumpName() string {
	switch e.Jump {
	case JumpBreak:
		return "BREAK"
	case JumpContinue:
		return "CONTINUE"
	default:
		return ""
	}
}

// NewEvalError builds a plain runtime/parse error at a location.
func NewEvalError(loc ast.Location, format string, args ...interface{}) *EvalError {
	return &EvalError{Loc: loc, Message: fmt.Sprintf(format, args...)}
}

// WrapEvalError builds a runtime error around an I/O or OS-level cause.
func WrapEvalError(loc ast.Location, cause error, format string, args ...interface{}) *EvalError {
	return &EvalError{Loc: loc, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewBreak/NewContinue build the Jump-tagged errors used to unwind out
// of a loop body.
func NewBreak(v value.Value, loc ast.Location) *EvalError {
	return &EvalError{Loc: loc, Jump: JumpBreak, Carried: v}
}

func NewContinue(v value.Value, loc ast.Location) *EvalError {
	return &EvalError{Loc: loc, Jump: JumpContinue, Carried: v}
}

// AsJump extracts the Jump tag and carried value from err, if it is an
// *EvalError with a non-None Jump.
func AsJump(err error) (JumpKind, value.Value, bool) {
	ee, ok := err.(*EvalError)
	if !ok || ee.Jump == JumpNone {
		return JumpNone, value.Value{}, false
	}
	return ee.Jump, ee.Carried, true
}

// Show renders a three-line diagnostic: the offending source line, a
// caret at the error column, and the message.
func (e *EvalError) Show(input string) string {
	lines := strings.Split(input, "\n")
	lineIdx := e.Loc.Line - 1
	var source string
	if lineIdx >= 0 && lineIdx < len(lines) {
		source = lines[lineIdx]
	}
	col := e.Loc.Col
	if col < 1 {
		col = 1
	}
	caret := strings.Repeat(" ", col-1) + "^"
	return fmt.Sprintf("%s\n%s\n%s", source, caret, e.Message)
}
