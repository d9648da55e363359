package value

import "fmt"

// Status is the shared, interior-mutable handle backing the command-status
// case of Value. It defers a command's error until it is either
// explicitly checked (via a boolean projection) or left unchecked at a
// statement boundary, where the enclosing Group surfaces it.
type Status struct {
	Cmd     string
	Result  Value
	Err     error
	Checked bool
	Negated bool
	Scope   *Scope
}

// NewStatus wraps a command's outcome. A nil err means success.
func NewStatus(cmd string, result Value, err error, scope *Scope) *Status {
	return &Status{Cmd: cmd, Result: result, Err: err, Scope: scope}
}

// OK reports whether the underlying command succeeded, without marking
// the status checked — used internally by Check/Bool.
func (s *Status) OK() bool { return s.Err == nil }

// Check marks the status as consumed and returns its terminal error, if
// any is still outstanding (i.e. unless negated flips a failure to ok).
func (s *Status) Check() error {
	s.Checked = true
	if s.Negated {
		return nil
	}
	return s.Err
}

// Bool is the boolean projection: ok XOR negated, and it checks the
// status as a side effect.
func (s *Status) Bool() bool {
	s.Checked = true
	ok := s.Err == nil
	if s.Negated {
		return !ok
	}
	return ok
}

// Negate implements unary ! on a Status: sets Negated without losing
// the original result, and returns the same handle.
func (s *Status) Negate() *Status {
	s.Negated = true
	return s
}

func (s *Status) String() string {
	if s.Err != nil {
		return fmt.Sprintf("<status %s: error: %v>", s.Cmd, s.Err)
	}
	return fmt.Sprintf("<status %s: %s>", s.Cmd, s.Result.String())
}
