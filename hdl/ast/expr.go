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

package ast

import (
	"github.com/gohdl/scopelab/hdl/literal"
	"github.com/gohdl/scopelab/hdl/token"
)

// Expr is the closed expression grammar the evaluator contract operates
// over. Like Stmt, it is a sum type dispatched by type switch, not an
// extensible interface hierarchy.
type Expr interface {
	exprNode()
	Position() token.Pos
}

// Ident is an unresolved identifier: a reference to a parameter,
// localparam, signal, genvar, or (in a hierarchical path position) a
// scope name, to be bound by elaborate_pexpr against the scope chain.
type Ident struct {
	Name string
	Pos_ token.Pos
}

// HierRef is a hierarchical reference, e.g. `top.u.W`, appearing inside
// an expression (as opposed to a defparam's path, which is parsed
// directly into a HierPath).
type HierRef struct {
	Path HierPath
	Pos_ token.Pos
}

// Number is a literal numeric token, already parsed by the front-end into
// a NumInfo (hdl/literal). The core never re-parses source text.
type Number struct {
	Value literal.NumInfo
	Pos_  token.Pos
}

// BinaryExpr is `x Op y`.
type BinaryExpr struct {
	Op   Op
	X, Y Expr
	Pos_ token.Pos
}

// UnaryExpr is `Op x`.
type UnaryExpr struct {
	Op   Op
	X    Expr
	Pos_ token.Pos
}

// Concat is `{a, b, c}`, a bit-concatenation.
type Concat struct {
	Elems []Expr
	Pos_  token.Pos
}

// BitSelect is `x[hi:lo]` (lo == hi for a single-bit select).
type BitSelect struct {
	X      Expr
	Hi, Lo Expr
	Pos_   token.Pos
}

// Op enumerates the operators BinaryExpr/UnaryExpr may carry.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpLogAnd
	OpLogOr
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpNot
	OpNeg
	OpBitNot
)

func (x *Ident) exprNode() {}
func (x *HierRef) exprNode() {}
func (x *Number) exprNode() {}
func (x *BinaryExpr) exprNode() {}
func (x *UnaryExpr) exprNode() {}
func (x *Concat) exprNode() {}
func (x *BitSelect) exprNode() {}

func (x *Ident) Position() token.Pos { return x.Pos_ }
func (x *HierRef) Position() token.Pos { return x.Pos_ }
func (x *Number) Position() token.Pos { return x.Pos_ }
func (x *BinaryExpr) Position() token.Pos { return x.Pos_ }
func (x *UnaryExpr) Position() token.Pos { return x.Pos_ }
func (x *Concat) Position() token.Pos { return x.Pos_ }
func (x *BitSelect) Position() token.Pos { return x.Pos_ }
