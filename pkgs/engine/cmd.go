package engine

import (
	"io"
	"os"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/ast"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// evalCmd evaluates a command invocation: applies any `__stdout`/
// `__stderr` scoped overrides, flattens its Args, dispatches through the
// registry, and wraps the outcome as a Status.
func (e *Engine) evalCmd(n *ast.Cmd, scope *value.Scope) (value.Value, error) {
	release, err := e.applyStreamOverrides(scope)
	if err != nil {
		return value.Value{}, err
	}
	defer release()

	args, err := e.evalArgsToStrings(n.Args)
	if err != nil {
		return value.Value{}, err
	}

	cmd, found := e.Registry.Lookup(n.Name)
	if !found {
		suggestions := e.Registry.Suggest(n.Name)
		return value.Value{}, errors.NewEvalError(n.At, "%s", errors.NewCommandNotFoundError(n.Name, suggestions).Error())
	}

	result, cmdErr := cmd.Exec(args, scope, registry.CommandIO{Stdout: e.stdout, Stderr: e.stderr, Stdin: e.stdin})
	if cmdErr != nil {
		scope.AppendError(n.Name, cmdErr.Error())
	}
	status := value.NewStatus(n.Name, result, cmdErr, scope)
	return value.FromStatus(status), nil
}

// applyStreamOverrides installs the redirections named by `__stdout`/
// `__stderr` in the scope chain, returning a func that restores the
// previous streams unconditionally.
func (e *Engine) applyStreamOverrides(scope *value.Scope) (func(), error) {
	prevOut, prevErr := e.stdout, e.stderr
	var closers []io.Closer

	if v, ok := scope.Lookup("__stdout"); ok {
		w, closer, err := e.resolveStreamTarget(v.Value.String(), e.stdout, e.stderr)
		if err != nil {
			return func() {}, err
		}
		e.stdout = w
		if closer != nil {
			closers = append(closers, closer)
		}
	}
	if v, ok := scope.Lookup("__stderr"); ok {
		w, closer, err := e.resolveStreamTarget(v.Value.String(), e.stdout, e.stderr)
		if err != nil {
			e.stdout = prevOut
			return func() {}, err
		}
		e.stderr = w
		if closer != nil {
			closers = append(closers, closer)
		}
	}

	return func() {
		e.stdout = prevOut
		e.stderr = prevErr
		for _, c := range closers {
			c.Close()
		}
	}, nil
}

// resolveStreamTarget interprets the accepted __stdout/__stderr values:
// "1"/"__stdout" cross-redirects to the current stdout, "2"/"__stderr"
// to stderr, "null" suppresses, anything else is a file path opened
// truncate+create+write.
func (e *Engine) resolveStreamTarget(directive string, curOut, curErr io.Writer) (io.Writer, io.Closer, error) {
	switch directive {
	case "1", "__stdout":
		return curOut, nil, nil
	case "2", "__stderr":
		return curErr, nil, nil
	case "null":
		return io.Discard, nil, nil
	default:
		f, err := os.OpenFile(directive, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, errors.WrapEvalError(ast.Location{}, err, "opening %s for redirection", directive)
		}
		return f, f, nil
	}
}
