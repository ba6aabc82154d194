// Copyright 2020 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package adt is the elaboration core's data model: the live, mutable
// scope hierarchy (Scope, ParamSlot) plus the narrow contract the core
// assumes of the expression evaluator.
package adt

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/gohdl/scopelab/hdl/ast"
	"github.com/gohdl/scopelab/hdl/token"
)

// ValueKind is the declared type of a parameter or localparam value:
// a logic bit vector, a two-state bool, or a real number.
type ValueKind int

const (
	LogicKind ValueKind = iota
	BoolKind
	RealKind
)

func (k ValueKind) String() string {
	switch k {
	case LogicKind:
		return "logic"
	case BoolKind:
		return "bool"
	case RealKind:
		return "real"
	default:
		return "unknown"
	}
}

// ExprState is a ParamSlot value's position in its monotone three-state
// progression: a placeholder merely recording the source expression, a
// lexically elaborated expression with names bound but not folded, or a
// final constant. A slot never moves backward through these states.
type ExprState int

const (
	StatePlaceholder ExprState = iota
	StateElaborated
	StateConstant
)

// Expr is a node in the core's internal expression representation:
// either the untouched *ast.Expr wrapped as a placeholder, a lexically
// elaborated form produced by Evaluator.ElaboratePExpr, or a folded
// Const. The core never interprets an Expr itself beyond handing it
// back to the Evaluator that produced it.
type Expr interface {
	// Source returns the originating ast.Expr, or nil for a value that
	// did not come from source (e.g. a synthesized genvar bound).
	Source() ast.Expr
	Position() token.Pos
}

// Placeholder is a ParamSlot value that has not yet been lexically
// elaborated: it merely records the declared source expression, making
// the parameter's name resolvable before its value is.
type Placeholder struct {
	Src ast.Expr
}

func (p *Placeholder) Source() ast.Expr { return p.Src }
func (p *Placeholder) Position() token.Pos { return p.Src.Position() }

// Elaborated is a lexically elaborated expression: every identifier has
// been bound to a scope (or a diagnostic was recorded), but it has not
// necessarily been constant-folded.
type Elaborated struct {
	Src  ast.Expr
	Bind Expr // Evaluator-specific resolved form; opaque to this package
}

func (e *Elaborated) Source() ast.Expr { return e.Src }
func (e *Elaborated) Position() token.Pos { return e.Src.Position() }

// Const is a fully folded constant: the terminal state of a slot's
// progression.
type Const struct {
	Src    ast.Expr // nil for a synthesized constant (e.g. |msb-lsb|+1)
	Kind   ValueKind
	Num    apd.Decimal // meaningful for LogicKind/BoolKind; integer-valued
	Real   apd.Decimal // meaningful for RealKind
	Width  int         // bit-vector width, 0 if unsized
	Signed bool
}

func (c *Const) Source() ast.Expr { return c.Src }
func (c *Const) Position() token.Pos {
	if c.Src == nil {
		return token.NoPos
	}
	return c.Src.Position()
}

// AsReal returns the constant's value as a Decimal regardless of Kind,
// so a caller mixing an integer operand with a real one in the same
// expression can compare or combine them uniformly.
func (c *Const) AsReal() apd.Decimal {
	if c.Kind == RealKind {
		return c.Real
	}
	return c.Num
}

// Int64 reports the constant's integer value, for the bitwise/shift/
// concatenation operators that have no native arbitrary-precision
// equivalent in cockroachdb/apd/v3. It fails if the value does not fit
// in an int64; this is a width ceiling on those specific operators,
// never on the arbitrary-precision arithmetic ones.
func (c *Const) Int64() (int64, bool) {
	v := c.AsReal()
	i, err := v.Int64()
	return i, err == nil
}

// Sign reports the constant's sign (-1, 0, 1), used for truthiness
// (logical operators, `!`) regardless of Kind.
func (c *Const) Sign() int {
	v := c.AsReal()
	return v.Sign()
}

// Bottom is the sentinel Expr returned in place of a failed
// elaboration. Evaluating it always fails; it is never itself a valid
// constant.
type Bottom struct {
	Src ast.Expr
	Err error
}

func (b *Bottom) Source() ast.Expr { return b.Src }
func (b *Bottom) Position() token.Pos {
	if b.Src == nil {
		return token.NoPos
	}
	return b.Src.Position()
}

// IsBottom reports whether x is a Bottom sentinel.
func IsBottom(x Expr) bool {
	_, ok := x.(*Bottom)
	return ok
}
