package model

import (
	"sort"
	"strconv"
	"strings"
)

// ExprKind tags the variants of the expression union.
type ExprKind string

const (
	ExprNumber     ExprKind = "number"
	ExprString     ExprKind = "string"
	ExprIdentifier ExprKind = "identifier"
	ExprBinary     ExprKind = "binary"
	ExprCall       ExprKind = "call"
)

// Binary operators of the term language.
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
	OpDiv = "/"
	OpLt  = "<"
	OpGt  = ">"
	OpLte = "<="
	OpGte = ">="
	OpEq  = "="
	OpNeq = "!="
	OpAnd = "AND"
	OpOr  = "OR"
)

// Built-in call targets.
const (
	FnAvailable = "AVAILABLE"
	FnCompliant = "COMPLIANT"
	FnExists    = "EXISTS"
	FnTrailing  = "TRAILING"
	FnGreaterOf = "GreaterOf"
	FnLesserOf  = "LesserOf"
	FnAllOf     = "ALL_OF"
	FnAnyOf     = "ANY_OF"
	FnAbs       = "ABS"
)

// Expr is a single node of an expression tree. Exactly one variant is
// populated, selected by Kind. Trees are immutable after parsing; the
// amendment applier replaces whole statements, never nodes.
type Expr struct {
	Kind ExprKind `json:"kind"`

	Num  float64 `json:"num,omitempty"`
	Str  string  `json:"str,omitempty"`
	Name string  `json:"name,omitempty"`

	Op  string `json:"op,omitempty"`
	Lhs *Expr  `json:"lhs,omitempty"`
	Rhs *Expr  `json:"rhs,omitempty"`

	Fn   string  `json:"fn,omitempty"`
	Args []*Expr `json:"args,omitempty"`

	// Periods is the window length for TRAILING calls.
	Periods int `json:"periods,omitempty"`
}

func Num(v float64) *Expr    { return &Expr{Kind: ExprNumber, Num: v} }
func Str(s string) *Expr     { return &Expr{Kind: ExprString, Str: s} }
func Ident(name string) *Expr { return &Expr{Kind: ExprIdentifier, Name: name} }

func Binary(op string, lhs, rhs *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, Lhs: lhs, Rhs: rhs}
}

func Call(fn string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Fn: fn, Args: args}
}

func Trailing(n int, inner *Expr) *Expr {
	return &Expr{Kind: ExprCall, Fn: FnTrailing, Periods: n, Args: []*Expr{inner}}
}

// Text renders the expression in source form, preserving argument order.
func (e *Expr) Text() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ExprNumber:
		return strconv.FormatFloat(e.Num, 'f', -1, 64)
	case ExprString:
		return "\"" + e.Str + "\""
	case ExprIdentifier:
		return e.Name
	case ExprBinary:
		return "(" + e.Lhs.Text() + " " + e.Op + " " + e.Rhs.Text() + ")"
	case ExprCall:
		if e.Fn == FnTrailing {
			return "TRAILING " + strconv.Itoa(e.Periods) + " PERIOD_OF " + e.Args[0].Text()
		}
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.Text()
		}
		return e.Fn + "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

// CanonicalText renders the expression with the operands of commutative
// operators and order-insensitive calls sorted, so two trees that differ only
// in associative ordering produce identical text. The differ compares
// canonical forms, never raw source.
func (e *Expr) CanonicalText() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ExprNumber, ExprString, ExprIdentifier:
		return e.Text()
	case ExprBinary:
		l, r := e.Lhs.CanonicalText(), e.Rhs.CanonicalText()
		if commutative(e.Op) && r < l {
			l, r = r, l
		}
		return "(" + l + " " + e.Op + " " + r + ")"
	case ExprCall:
		if e.Fn == FnTrailing {
			return "TRAILING " + strconv.Itoa(e.Periods) + " PERIOD_OF " + e.Args[0].CanonicalText()
		}
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.CanonicalText()
		}
		if orderInsensitiveCall(e.Fn) {
			sort.Strings(parts)
		}
		return e.Fn + "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

func commutative(op string) bool {
	switch op {
	case OpAdd, OpMul, OpAnd, OpOr:
		return true
	}
	return false
}

func orderInsensitiveCall(fn string) bool {
	switch fn {
	case FnGreaterOf, FnLesserOf, FnAllOf, FnAnyOf:
		return true
	}
	return false
}

// ExprEqual reports structural equality up to associative reordering.
func ExprEqual(a, b *Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.CanonicalText() == b.CanonicalText()
}

// ConstNumber returns the numeric value when the expression is a bare number
// literal. The classifier uses this to decide threshold direction; non-literal
// capacities compare as unclear.
func (e *Expr) ConstNumber() (float64, bool) {
	if e != nil && e.Kind == ExprNumber {
		return e.Num, true
	}
	return 0, false
}
