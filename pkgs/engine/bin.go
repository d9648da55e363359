package engine

import (
	"strings"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/ast"
	"github.com/mysh-lang/mysh/pkgs/errors"
)

func (e *Engine) evalBin(n *ast.Bin, scope *value.Scope) (value.Value, error) {
	switch n.Op {
	case ast.OpNot:
		return e.evalNot(n, scope)
	case ast.OpAssign:
		return e.evalAssign(n, scope)
	case ast.OpAnd:
		return e.evalAnd(n, scope)
	case ast.OpOr:
		return e.evalOr(n, scope)
	case ast.OpPipe:
		return e.evalPipe(n, scope)
	case ast.OpRedirect:
		return e.evalRedirect(n, scope, false)
	case ast.OpAppend:
		return e.evalRedirect(n, scope, true)
	case ast.OpIntDiv, ast.OpMod:
		return value.Value{}, errors.NewEvalError(n.At, "operator %q is not implemented", string(n.Op))
	}

	lhs, err := e.Eval(n.Lhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	rhs, err := e.Eval(n.Rhs, scope)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case ast.OpAdd:
		return evalAdd(lhs, rhs, n.At)
	case ast.OpSub:
		return evalArith(lhs, rhs, n.At, "subtract", func(a, b float64) float64 { return a - b })
	case ast.OpMul:
		return evalArith(lhs, rhs, n.At, "multiply", func(a, b float64) float64 { return a * b })
	case ast.OpDiv:
		return evalDiv(lhs, rhs, n.At)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return evalCompare(n.Op, lhs, rhs, n.At)
	default:
		return value.Value{}, errors.NewEvalError(n.At, "unsupported operator %q", string(n.Op))
	}
}

func evalAdd(lhs, rhs value.Value, loc ast.Location) (value.Value, error) {
	if lhs.Kind == value.KindStr || rhs.Kind == value.KindStr {
		return value.Str(lhs.String() + rhs.String()), nil
	}
	if lhs.Kind == value.KindReal || rhs.Kind == value.KindReal {
		return value.Real(lhs.AsFloat() + rhs.AsFloat()), nil
	}
	return value.Int(lhs.Int + rhs.Int), nil
}

func evalArith(lhs, rhs value.Value, loc ast.Location, verb string, op func(a, b float64) float64) (value.Value, error) {
	if lhs.Kind == value.KindStr || rhs.Kind == value.KindStr {
		return value.Value{}, errors.NewEvalError(loc, "cannot %s strings", verb)
	}
	if lhs.Kind == value.KindReal || rhs.Kind == value.KindReal {
		return value.Real(op(lhs.AsFloat(), rhs.AsFloat())), nil
	}
	return value.Int(int64(op(lhs.AsFloat(), rhs.AsFloat()))), nil
}

func evalDiv(lhs, rhs value.Value, loc ast.Location) (value.Value, error) {
	if lhs.Kind == value.KindStr || rhs.Kind == value.KindStr {
		return value.Str(lhs.String() + "/" + rhs.String()), nil
	}
	if rhs.AsFloat() == 0 {
		return value.Value{}, errors.NewEvalError(loc, "Division by zero")
	}
	return value.Real(lhs.AsFloat() / rhs.AsFloat()), nil
}

func evalCompare(op ast.Op, lhs, rhs value.Value, loc ast.Location) (value.Value, error) {
	if lhs.Kind == value.KindStatus || rhs.Kind == value.KindStatus {
		hint := ""
		if op == ast.OpGt {
			hint = " (did you mean the '=>' redirection operator?)"
		}
		return value.Value{}, errors.NewEvalError(loc, "cannot compare a command status%s", hint)
	}
	if lhs.Kind == value.KindStr && rhs.Kind == value.KindStr {
		return value.Int(boolToInt(compareOp(op, strings.Compare(lhs.Str, rhs.Str)))), nil
	}
	if lhs.IsNumeric() && rhs.IsNumeric() {
		diff := lhs.AsFloat() - rhs.AsFloat()
		sign := 0
		if diff > 0 {
			sign = 1
		} else if diff < 0 {
			sign = -1
		}
		return value.Int(boolToInt(compareOp(op, sign))), nil
	}
	return value.Value{}, errors.NewEvalError(loc, "cannot compare %s and %s", value.TypeName(lhs), value.TypeName(rhs))
}

func compareOp(op ast.Op, sign int) bool {
	switch op {
	case ast.OpEq:
		return sign == 0
	case ast.OpNeq:
		return sign != 0
	case ast.OpLt:
		return sign < 0
	case ast.OpLe:
		return sign <= 0
	case ast.OpGt:
		return sign > 0
	case ast.OpGe:
		return sign >= 0
	}
	return false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (e *Engine) evalNot(n *ast.Bin, scope *value.Scope) (value.Value, error) {
	operand, err := e.Eval(n.Rhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	if operand.Kind == value.KindStatus {
		return value.FromStatus(operand.Status.Negate()), nil
	}
	return value.Int(1 - boolToInt(operand.Bool())), nil
}

// statusErr reports whether v is a Status still carrying an unchecked
// error, the short-circuit condition in &&.
func statusErr(v value.Value) bool {
	return v.Kind == value.KindStatus && v.Status.Err != nil
}

func (e *Engine) evalAnd(n *ast.Bin, scope *value.Scope) (value.Value, error) {
	lhs, err := e.Eval(n.Lhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	if statusErr(lhs) {
		return lhs, nil
	}
	lhsBool := e.projectBool(lhs, scope)
	if !lhsBool {
		return value.Int(0), nil
	}
	rhs, err := e.Eval(n.Rhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	if statusErr(rhs) {
		return rhs, nil
	}
	return value.Int(boolToInt(e.projectBool(rhs, scope))), nil
}

func (e *Engine) evalOr(n *ast.Bin, scope *value.Scope) (value.Value, error) {
	lhs, err := e.Eval(n.Lhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	if e.projectBool(lhs, scope) {
		return value.Int(1), nil
	}
	rhs, err := e.Eval(n.Rhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	if statusErr(rhs) {
		return rhs, nil
	}
	return value.Int(boolToInt(e.projectBool(rhs, scope))), nil
}

// evalAssign implements `=`: a bareword Leaf LHS declares/overwrites in
// the current scope, a `$`-prefixed Leaf LHS mutates an existing cell
// through the scope chain, and an empty RHS erases the name.
func (e *Engine) evalAssign(n *ast.Bin, scope *value.Scope) (value.Value, error) {
	leaf, ok := n.Lhs.(*ast.Leaf)
	if !ok {
		return value.Value{}, errors.NewEvalError(n.At, "identifier expected on left-hand side of '='")
	}
	name := leaf.Text
	deref := strings.HasPrefix(name, "$")
	bareName := strings.TrimPrefix(name, "$")

	if ast.IsEmpty(n.Rhs) {
		scope.Erase(bareName)
		return value.Int(0), nil
	}

	rhs, err := e.Eval(n.Rhs, scope)
	if err != nil {
		return value.Value{}, err
	}
	assigned := rhs
	if rhs.Kind == value.KindStatus {
		assigned = value.Int(boolToInt(rhs.Status.Bool()))
	}

	if deref {
		if !scope.Assign(bareName, assigned) {
			return value.Value{}, errors.NewEvalError(n.At, "undefined variable $%s", bareName)
		}
		return assigned, nil
	}
	scope.Set(bareName, assigned)
	return assigned, nil
}
