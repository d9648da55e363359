// Package value implements the shell's tagged Value type, its scoped
// variable environment, and the command-status discipline: Int/Real/Str/
// Status, Variable, and Scope.
package value

import (
	"fmt"
	"strconv"
)

// Kind tags which case of Value is populated.
type Kind int

const (
	KindInt Kind = iota
	KindReal
	KindStr
	KindStatus
)

// Value is the tagged variant at the center of the language: every
// literal, every expression result, and every command outcome is one.
type Value struct {
	Kind   Kind
	Int    int64
	Real   float64
	Str    string
	Status *Status
}

func Int(i int64) Value    { return Value{Kind: KindInt, Int: i} }
func Real(r float64) Value { return Value{Kind: KindReal, Real: r} }
func Str(s string) Value   { return Value{Kind: KindStr, Str: s} }
func FromStatus(s *Status) Value { return Value{Kind: KindStatus, Status: s} }

// Empty is the canonical zero value for statements that produce nothing
// meaningful (e.g. a successful ELSE-less Branch).
var Empty = Int(0)

// Parse classifies raw token text: integer if it parses as one, else
// real if it parses as a float, else a plain string.
func Parse(text string) Value {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(i)
	}
	if r, err := strconv.ParseFloat(text, 64); err == nil {
		return Real(r)
	}
	return Str(text)
}

// String renders the canonical decimal form for numbers, the raw text
// for strings, and an implementation-defined diagnostic for Status.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	case KindStr:
		return v.Str
	case KindStatus:
		return v.Status.String()
	default:
		return ""
	}
}

// Bool is the boolean projection used by &&, ||, !, IF, and WHILE.
// Projecting a Status checks it.
func (v Value) Bool() bool {
	switch v.Kind {
	case KindInt:
		return v.Int != 0
	case KindReal:
		return v.Real != 0
	case KindStr:
		return v.Str != ""
	case KindStatus:
		return v.Status.Bool()
	default:
		return false
	}
}

func (v Value) IsNumeric() bool { return v.Kind == KindInt || v.Kind == KindReal }

// AsFloat returns the numeric value as a float64, widening Int.
func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Real
}

func typeName(v Value) string {
	switch v.Kind {
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindStr:
		return "string"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// TypeName exposes typeName for diagnostic messages in other packages.
func TypeName(v Value) string { return typeName(v) }

// Describe gives a short "type(value)" rendering for error messages.
func Describe(v Value) string { return fmt.Sprintf("%s(%s)", typeName(v), v.String()) }
