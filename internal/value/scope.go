package value

import (
	"os"
	"strings"
	"sync/atomic"
)

// Variable is a name-bound, shared, interior-mutable cell. Assignment
// mutates the cell in place so every reference to the name observes the
// new value.
type Variable struct {
	Name  string
	Value Value
}

// Scope is one frame of the lexically nested variable environment: a
// map of local variables plus a link to the parent frame.
type Scope struct {
	parent *Scope
	vars   map[string]*Variable
}

// NewRootScope builds the top-level environment scope, preloaded with
// the process environment plus SHELL.
func NewRootScope(shellPath string) *Scope {
	s := &Scope{vars: make(map[string]*Variable)}
	for _, kv := range os.Environ() {
		if name, val, ok := strings.Cut(kv, "="); ok {
			s.vars[name] = &Variable{Name: name, Value: Str(val)}
		}
	}
	s.vars["SHELL"] = &Variable{Name: "SHELL", Value: Str(shellPath)}
	return s
}

// NewChild creates a fresh child scope: used for each parenthesized
// block, loop-iteration body, conditional branch, and argument list.
func (s *Scope) NewChild() *Scope {
	return &Scope{parent: s, vars: make(map[string]*Variable)}
}

func (s *Scope) Parent() *Scope { return s.parent }

// Lookup walks the parent chain.
func (s *Scope) Lookup(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupLocal checks only this frame, not the parent chain.
func (s *Scope) LookupLocal(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// All returns this frame's own variables (not the parent chain), for
// callers that need to walk scopes explicitly (e.g. building a child
// process's environment).
func (s *Scope) All() map[string]*Variable {
	return s.vars
}

// LookupPartial returns every variable whose name has the given prefix,
// walking the whole parent chain (used by completion/suggestion glue).
func (s *Scope) LookupPartial(prefix string) []*Variable {
	seen := make(map[string]bool)
	var out []*Variable
	for cur := s; cur != nil; cur = cur.parent {
		for name, v := range cur.vars {
			if seen[name] {
				continue
			}
			if strings.HasPrefix(name, prefix) {
				out = append(out, v)
				seen[name] = true
			}
		}
	}
	return out
}

// Set inserts or overwrites a variable in this frame (used for new
// declarations, i.e. bareword assignment without a `$` prefix).
func (s *Scope) Set(name string, v Value) *Variable {
	if existing, ok := s.vars[name]; ok {
		existing.Value = v
		return existing
	}
	variable := &Variable{Name: name, Value: v}
	s.vars[name] = variable
	return variable
}

// Assign mutates an existing variable's cell in place, searching the
// parent chain; it returns false if no such variable exists.
func (s *Scope) Assign(name string, v Value) bool {
	variable, ok := s.Lookup(name)
	if !ok {
		return false
	}
	variable.Value = v
	return true
}

// Erase removes a variable from this frame only (the `x =` empty-RHS
// erase form operates on the current scope).
func (s *Scope) Erase(name string) {
	delete(s.vars, name)
}

// Clear empties this frame's variables so repeated evaluation of the
// same Group is deterministic.
func (s *Scope) Clear() {
	s.vars = make(map[string]*Variable)
}

const errorsVarName = "__errors"

// HoistErrors copies __errors into the parent scope, except at the root
// environment scope which has no parent to hoist into.
func (s *Scope) HoistErrors() {
	if s.parent == nil {
		return
	}
	if v, ok := s.vars[errorsVarName]; ok {
		s.parent.Set(errorsVarName, v.Value)
	}
}

// AppendError appends "<cmd>: <message>" to __errors in this scope,
// newline-separated.
func (s *Scope) AppendError(cmd, message string) {
	line := cmd + ": " + message
	if existing, ok := s.vars[errorsVarName]; ok && existing.Value.Str != "" {
		existing.Value = Str(existing.Value.Str + "\n" + line)
		return
	}
	s.Set(errorsVarName, Str(line))
}

// interrupted is the process-wide cooperative interrupt flag.
var interrupted atomic.Bool

// Interrupt sets the flag; installed by the CLI layer's SIGINT handler.
func Interrupt() { interrupted.Store(true) }

// Interrupted reports and does NOT clear the flag — the core never
// clears it automatically.
func Interrupted() bool { return interrupted.Load() }

// ResetInterrupt clears the flag; exposed for the CLI's REPL loop which
// may want a fresh flag per top-level input.
func ResetInterrupt() { interrupted.Store(false) }
