package engine

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/ast"
	"github.com/mysh-lang/mysh/pkgs/confirm"
	"github.com/mysh-lang/mysh/pkgs/errors"
)

// evalRedirect implements "=>"/"=>>": redirect LHS's stdout to the file
// named by RHS, prompting for confirmation if it already exists.
func (e *Engine) evalRedirect(n *ast.Bin, scope *value.Scope, appendMode bool) (value.Value, error) {
	targetVal, err := e.Eval(n.Rhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	path := targetVal.String()

	if _, statErr := os.Stat(path); statErr == nil {
		ans, cerr := e.Confirm.Confirm("overwrite "+path+"?", scope, false)
		if cerr != nil {
			return value.Value{}, errors.WrapEvalError(n.At, cerr, "confirming overwrite of %s", path)
		}
		if ans != confirm.Yes && ans != confirm.All {
			return value.Int(401), nil
		}
	}

	flags := os.O_WRONLY | os.O_CREATE
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return value.Value{}, errors.WrapEvalError(n.At, err, "opening %s", path)
	}
	defer f.Close()

	prevOut := e.stdout
	e.stdout = f
	defer func() { e.stdout = prevOut }()

	return e.Eval(n.Lhs, scope)
}

// evalPipe implements `|`.
func (e *Engine) evalPipe(n *ast.Bin, scope *value.Scope) (value.Value, error) {
	if leaf, ok := n.Rhs.(*ast.Leaf); ok && !leaf.Quoted {
		return e.evalPipeToVar(n, leaf, scope)
	}
	return e.evalPipeToExpr(n, scope)
}

// evalPipeToVar captures LHS's stdout into a buffer and assigns the
// trimmed, reparsed text to the RHS identifier. If LHS is itself a pipe
// expression, the capture is done by re-exec'ing the shell binary on the
// stringified LHS.
func (e *Engine) evalPipeToVar(n *ast.Bin, target *ast.Leaf, scope *value.Scope) (value.Value, error) {
	var buf bytes.Buffer
	var status *value.Status
	var lhsErr error

	if lhsBin, ok := n.Lhs.(*ast.Bin); ok && lhsBin.Op == ast.OpPipe {
		status, lhsErr = e.runSelf(n.Lhs.String(), nil, &buf)
	} else {
		prevOut := e.stdout
		e.stdout = &buf
		var v value.Value
		v, lhsErr = e.Eval(n.Lhs, scope)
		e.stdout = prevOut
		if lhsErr == nil && v.Kind == value.KindStatus {
			status = v.Status
		}
	}
	if lhsErr != nil {
		return value.Value{}, lhsErr
	}

	result := value.Parse(strings.TrimSpace(buf.String()))
	scope.Set(target.Text, result)
	if status != nil {
		return value.FromStatus(status), nil
	}
	return result, nil
}

// evalPipeToExpr pipes LHS's output into a child process evaluating
// RHS: LHS runs in this process with stdout pointed at the pipe's write
// end, the RHS subtree runs in a re-exec'd child instance reading that
// pipe as stdin and writing to the pipeline's outer destination.
func (e *Engine) evalPipeToExpr(n *ast.Bin, scope *value.Scope) (value.Value, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return value.Value{}, errors.WrapEvalError(n.At, err, "creating pipe")
	}

	outerOut := e.stdout
	e.stdout = w

	lhsDone := make(chan error, 1)
	go func() {
		_, evalErr := e.Eval(n.Lhs, scope)
		w.Close()
		lhsDone <- evalErr
	}()

	status, runErr := e.runSelf(n.Rhs.String(), r, outerOut)
	r.Close()
	e.stdout = outerOut

	if lhsErr := <-lhsDone; lhsErr != nil {
		return value.Value{}, lhsErr
	}
	if runErr != nil {
		return value.Value{}, runErr
	}
	return value.FromStatus(status), nil
}

// runSelf re-invokes the running binary with `-c <src>`, wiring stdin
// from in (nil inherits none) and stdout to out.
func (e *Engine) runSelf(src string, in io.Reader, out io.Writer) (*value.Status, error) {
	cmd := exec.Command(e.SelfPath, "-c", src)
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = e.stderr

	runErr := cmd.Run()
	code := int64(0)
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = int64(exitErr.ExitCode())
		} else {
			return nil, errors.NewEvalError(noLoc, "pipe child failed: %v", runErr)
		}
	}
	return value.NewStatus(src, value.Int(code), nil, nil), nil
}
