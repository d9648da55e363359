// Package engine is the tree-walking evaluator: it assigns
// every AST node a Result<Value, EvalError>-shaped evaluation, drives
// command dispatch through the registry, and implements the
// redirection, pipeline, and control-flow semantics layered on top.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/ast"
	"github.com/mysh-lang/mysh/pkgs/confirm"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/registry"
)

// Engine holds the mutable evaluation context: the command registry, the
// confirmation collaborator, and the scoped stdio streams that redirect
// via "=>", "=>>", `__stdout`/`__stderr`, and pipelines.
type Engine struct {
	Registry *registry.Registry
	Confirm  confirm.Confirmer
	SelfPath string // absolute path to the running binary, for pipe-via-self-exec

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	log    *slog.Logger
}

// New builds an Engine with stdio bound to the process's own streams.
func New(reg *registry.Registry, confirmer confirm.Confirmer) *Engine {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	return &Engine{
		Registry: reg,
		Confirm:  confirmer,
		SelfPath: self,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stdin:    os.Stdin,
		log:      debugLogger(),
	}
}

func debugLogger() *slog.Logger {
	if os.Getenv("MYSH_DEBUG") == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo + 1}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// noLoc is used for errors raised outside normal node evaluation (e.g.
// a malformed regex discovered mid-interpolation).
var noLoc = ast.Location{}

// Eval dispatches to the node-specific evaluation rule.
func (e *Engine) Eval(node ast.Node, scope *value.Scope) (value.Value, error) {
	switch n := node.(type) {
	case nil:
		return value.Empty, nil
	case *ast.Empty:
		return value.Empty, nil
	case *ast.Leaf:
		return e.evalLeaf(n, scope)
	case *ast.Bin:
		return e.evalBin(n, scope)
	case *ast.Cmd:
		return e.evalCmd(n, scope)
	case *ast.Group:
		return e.evalGroup(n)
	case *ast.Branch:
		return e.evalBranch(n, scope)
	case *ast.Loop:
		return e.evalLoop(n, scope)
	case *ast.For:
		return e.evalFor(n)
	default:
		return value.Value{}, fmt.Errorf("engine: unhandled node type %T", node)
	}
}

// EvalTop evaluates the parsed program (its root Group), optionally
// dumping the AST first when DUMP_AST is set.
func (e *Engine) EvalTop(root *ast.Group) (value.Value, error) {
	if os.Getenv("DUMP_AST") != "" {
		slog.New(slog.NewTextHandler(e.stderr, nil)).Info("ast dump", "tree", root.String())
	}
	return e.evalGroup(root)
}

func (e *Engine) evalLeaf(n *ast.Leaf, scope *value.Scope) (value.Value, error) {
	expanded, err := e.interpolate(n.Text, scope)
	if err != nil {
		return value.Value{}, err
	}
	return value.Parse(expanded), nil
}

// projectBool is the boolean projection used by IF/WHILE conditions and
// the logical operators. It checks a Status as a side effect and hoists
// __errors into the parent scope on every crossing.
func (e *Engine) projectBool(v value.Value, scope *value.Scope) bool {
	b := v.Bool()
	scope.HoistErrors()
	return b
}

func (e *Engine) evalBranch(n *ast.Branch, scope *value.Scope) (value.Value, error) {
	if ast.IsEmpty(n.Cond) || n.IfBranch == nil {
		return value.Value{}, errors.NewEvalError(n.At, "IF requires a condition and a body")
	}
	condVal, err := e.Eval(n.Cond, scope)
	if err != nil {
		return value.Value{}, err
	}
	if e.projectBool(condVal, scope) {
		return e.evalGroup(n.IfBranch)
	}
	if n.ElseBranch != nil {
		return e.evalGroup(n.ElseBranch)
	}
	return value.Int(0), nil
}

func (e *Engine) evalLoop(n *ast.Loop, scope *value.Scope) (value.Value, error) {
	result := value.Empty
	for {
		if value.Interrupted() {
			fmt.Fprintln(e.stdout, "^C")
			break
		}
		condVal, err := e.Eval(n.Cond, scope)
		if err != nil {
			return value.Value{}, err
		}
		if !e.projectBool(condVal, scope) {
			break
		}
		bodyResult, err := e.evalGroup(n.Body)
		if err != nil {
			if kind, carried, ok := errors.AsJump(err); ok {
				if kind == errors.JumpBreak {
					return carried, nil
				}
				result = carried
				continue
			}
			return value.Value{}, err
		}
		if bodyResult.Kind == value.KindStatus {
			if cerr := bodyResult.Status.Check(); cerr != nil {
				return value.Value{}, cerr
			}
		}
		result = bodyResult
	}
	return result, nil
}

func (e *Engine) evalFor(n *ast.For) (value.Value, error) {
	argStrs, err := e.evalArgsToStrings(n.In)
	if err != nil {
		return value.Value{}, err
	}
	var tokens []string
	for _, a := range argStrs {
		tokens = append(tokens, strings.Fields(a)...)
	}
	if len(tokens) == 0 {
		return value.Value{}, errors.NewEvalError(n.At, "FOR requires a non-empty IN list")
	}

	result := value.Empty
	for _, tok := range tokens {
		if value.Interrupted() {
			fmt.Fprintln(e.stdout, "^C")
			break
		}
		n.Scope.Set(n.Var, value.Parse(tok))
		bodyResult, err := e.evalGroup(n.Body)
		if err != nil {
			if kind, carried, ok := errors.AsJump(err); ok {
				if kind == errors.JumpBreak {
					return carried, nil
				}
				result = carried
				continue
			}
			return value.Value{}, err
		}
		if bodyResult.Kind == value.KindStatus {
			if cerr := bodyResult.Status.Check(); cerr != nil {
				return value.Value{}, cerr
			}
		}
		result = bodyResult
	}
	return result, nil
}

// evalGroup evaluates a parenthesized block: clears its scope (except
// the root environment scope, which has no parent), then evaluates
// statements left to right, checking each non-final result before
// continuing, and converting bare BREAK/CONTINUE leaves into Jump errors
// for the nearest enclosing loop to catch.
func (e *Engine) evalGroup(n *ast.Group) (value.Value, error) {
	if n.Scope.Parent() != nil {
		n.Scope.Clear()
	}
	result := value.Empty
	for i, stmt := range n.Stmts {
		if leaf, ok := stmt.(*ast.Leaf); ok && !leaf.Quoted {
			switch leaf.Text {
			case "BREAK":
				return value.Value{}, errors.NewBreak(result, leaf.At)
			case "CONTINUE":
				return value.Value{}, errors.NewContinue(result, leaf.At)
			}
		}
		v, err := e.Eval(stmt, n.Scope)
		if err != nil {
			return value.Value{}, err
		}
		if i < len(n.Stmts)-1 && v.Kind == value.KindStatus {
			if cerr := v.Status.Check(); cerr != nil {
				return value.Value{}, cerr
			}
		}
		result = v
	}
	return result, nil
}

// evalArgsToStrings flattens an Args list to its string argument vector,
// checking any Status child as it is consumed, and honoring the
// single-dash stdin-read form.
func (e *Engine) evalArgsToStrings(args *ast.Args) ([]string, error) {
	if args == nil {
		return nil, nil
	}
	vals := make([]value.Value, 0, len(args.Items))
	for _, item := range args.Items {
		v, err := e.Eval(item, args.Scope)
		if err != nil {
			return nil, err
		}
		if v.Kind == value.KindStatus {
			if cerr := v.Status.Check(); cerr != nil {
				return nil, cerr
			}
		}
		vals = append(vals, v)
	}
	if len(vals) == 1 && vals[0].Kind == value.KindStr && vals[0].Str == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, errors.WrapEvalError(args.At, err, "reading stdin")
		}
		return strings.Fields(string(data)), nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out, nil
}
