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

// Package constfold is the concrete adt.Evaluator: it binds
// identifiers against a scope chain and folds the closed hdl/ast.Expr
// grammar into adt.Const values. Arithmetic runs on cockroachdb/apd's
// arbitrary-precision Decimal so parameter values and bit widths never
// silently wrap at a machine word.
package constfold

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/gohdl/scopelab/hdl/ast"
	"github.com/gohdl/scopelab/hdl/token"
	"github.com/gohdl/scopelab/internal/core/adt"
	"github.com/gohdl/scopelab/internal/core/name"
	"github.com/gohdl/scopelab/internal/core/resolve"
)

// Evaluator implements adt.Evaluator. Roots points at the design's slice
// of root scopes; it is a pointer because ScopeElaborator appends to that
// slice as it elaborates top-level instances, and every HierRef lookup
// needs to see roots added after this Evaluator was constructed.
type Evaluator struct {
	Roots *[]*adt.Scope
}

// New creates an Evaluator over the given (possibly still-growing) root
// scope list.
func New(roots *[]*adt.Scope) *Evaluator {
	return &Evaluator{Roots: roots}
}

var _ adt.Evaluator = (*Evaluator)(nil)

// boundKind tags the closed set of lexically-elaborated expression
// shapes this evaluator produces, dispatched by switch rather than by a
// boundExpr type hierarchy.
type boundKind int

const (
	boundConst boundKind = iota
	boundParamRef
	boundGenvar
	boundBinary
	boundUnary
	boundConcat
	boundBitSelect
)

// boundExpr is the Evaluator-specific resolved form carried in an
// adt.Elaborated's Bind field: opaque to internal/core/adt and
// internal/core/compile, meaningful only to this package's EvalTree.
type boundExpr struct {
	kind boundKind
	src  ast.Expr

	c *adt.Const // boundConst

	slot *adt.ParamSlot // boundParamRef: the live slot, so a later
	// defparam/override replacement of slot.Value is visible without
	// re-elaborating this boundExpr

	genvarScope *adt.Scope // boundGenvar
	name        string     // boundGenvar, boundParamRef (diagnostics only)

	op   ast.Op // boundBinary, boundUnary
	x, y adt.Expr

	elems []adt.Expr // boundConcat

	bx, hi, lo adt.Expr // boundBitSelect
}

func (b *boundExpr) Source() ast.Expr { return b.src }

func (b *boundExpr) Position() token.Pos {
	if b.src == nil {
		return token.NoPos
	}
	return b.src.Position()
}

func bottom(src ast.Expr, format string, args ...interface{}) *adt.Bottom {
	return &adt.Bottom{Src: src, Err: fmt.Errorf(format, args...)}
}

// ElaboratePExpr implements adt.Evaluator. It never returns an error
// directly: a *adt.Bottom sentinel stands in for a failure, everywhere
// an otherwise-valid adt.Expr is expected.
func (ev *Evaluator) ElaboratePExpr(expr ast.Expr, scope *adt.Scope) adt.Expr {
	bound, ok := ev.bind(expr, scope)
	if !ok {
		return bound // already a *adt.Bottom
	}
	return &adt.Elaborated{Src: expr, Bind: bound}
}

// bind recurses over expr, producing a boundExpr tree with every Ident
// and HierRef resolved to a concrete ParamSlot or genvar scope. ok is
// false only when bind itself returns a *adt.Bottom as its first value
// (so callers can propagate it directly as the adt.Expr result).
func (ev *Evaluator) bind(expr ast.Expr, scope *adt.Scope) (adt.Expr, bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		if b, ok := ev.lexResolve(e.Name, scope); ok {
			b.src = e
			return b, true
		}
		return bottom(e, "unresolved identifier %q", e.Name), false

	case *ast.HierRef:
		target, tail, ok := ev.resolveHierPath(e.Path, scope)
		if !ok {
			return bottom(e, "unresolved hierarchical reference %q", hierPathString(e.Path)), false
		}
		if slot, ok := target.Parameters[tail]; ok {
			return &boundExpr{kind: boundParamRef, src: e, slot: slot, name: tail}, true
		}
		if slot, ok := target.Localparams[tail]; ok {
			return &boundExpr{kind: boundParamRef, src: e, slot: slot, name: tail}, true
		}
		return bottom(e, "scope %s has no parameter %q", target.Path(), tail), false

	case *ast.Number:
		c := constFromNum(e)
		return &boundExpr{kind: boundConst, src: e, c: c}, true

	case *ast.BinaryExpr:
		x, ok := ev.bind(e.X, scope)
		if !ok {
			return x, false
		}
		y, ok := ev.bind(e.Y, scope)
		if !ok {
			return y, false
		}
		return &boundExpr{kind: boundBinary, src: e, op: e.Op, x: x, y: y}, true

	case *ast.UnaryExpr:
		x, ok := ev.bind(e.X, scope)
		if !ok {
			return x, false
		}
		return &boundExpr{kind: boundUnary, src: e, op: e.Op, x: x}, true

	case *ast.Concat:
		elems := make([]adt.Expr, len(e.Elems))
		for i, el := range e.Elems {
			b, ok := ev.bind(el, scope)
			if !ok {
				return b, false
			}
			elems[i] = b
		}
		return &boundExpr{kind: boundConcat, src: e, elems: elems}, true

	case *ast.BitSelect:
		x, ok := ev.bind(e.X, scope)
		if !ok {
			return x, false
		}
		hi, ok := ev.bind(e.Hi, scope)
		if !ok {
			return hi, false
		}
		lo, ok := ev.bind(e.Lo, scope)
		if !ok {
			return lo, false
		}
		return &boundExpr{kind: boundBitSelect, src: e, bx: x, hi: hi, lo: lo}, true

	default:
		return bottom(expr, "unhandled expression node %T", expr), false
	}
}

// lexResolve climbs scope's ancestor chain looking for a genvar,
// parameter, or localparam by bare name, stopping after the first
// module ancestor it visits (inclusive): a task, function, named block,
// or generate block sees its enclosing module's declarations, but
// instantiation boundaries are never crossed. Multi-component paths go
// through the hierarchical resolver instead.
func (ev *Evaluator) lexResolve(sym string, scope *adt.Scope) (*boundExpr, bool) {
	for s := scope; s != nil; {
		if s.GenvarTmp != "" && s.GenvarTmp == sym {
			return &boundExpr{kind: boundGenvar, genvarScope: s, name: sym}, true
		}
		if slot, ok := s.Parameters[sym]; ok {
			return &boundExpr{kind: boundParamRef, slot: slot, name: sym}, true
		}
		if slot, ok := s.Localparams[sym]; ok {
			return &boundExpr{kind: boundParamRef, slot: slot, name: sym}, true
		}
		if s.Kind == adt.Module {
			break
		}
		s = s.Parent
	}
	return nil, false
}

// resolveHierPath splits p into a scope-resolving prefix and a trailing
// parameter name, resolving the prefix via internal/core/resolve's
// Relative lookup. A single-component path resolves against scope
// itself.
func (ev *Evaluator) resolveHierPath(p ast.HierPath, scope *adt.Scope) (*adt.Scope, string, bool) {
	if len(p) == 0 {
		return nil, "", false
	}
	tail := p[len(p)-1].Name
	if len(p) == 1 {
		return scope, tail, true
	}
	var prefix name.HierName
	for _, c := range p[:len(p)-1] {
		if c.HasIndex {
			prefix = prefix.Append(name.MakeIndexed(c.Name, c.Index))
		} else {
			prefix = prefix.Append(name.Make(c.Name))
		}
	}
	var roots []*adt.Scope
	if ev.Roots != nil {
		roots = *ev.Roots
	}
	target, ok := resolve.Relative(roots, scope, prefix, resolve.Any)
	if !ok {
		return nil, "", false
	}
	return target, tail, true
}

func hierPathString(p ast.HierPath) string {
	s := ""
	for i, c := range p {
		if i > 0 {
			s += "."
		}
		s += c.Name
	}
	return s
}

func constFromNum(e *ast.Number) *adt.Const {
	n := e.Value
	kind := adt.LogicKind
	if !n.IsInt() {
		kind = adt.RealKind
	}
	c := &adt.Const{
		Src:    e,
		Kind:   kind,
		Width:  n.Width,
		Signed: n.Signed,
	}
	if kind == adt.RealKind {
		c.Real = n.Value
	} else {
		c.Num = n.Value
	}
	return c
}

// EvalTree implements adt.Evaluator: it folds expr down to an
// adt.Const if every identifier it transitively depends on already
// holds one. Slots only ever move toward constants, so across
// successive calls this can go from ok==false to ok==true, never the
// reverse.
func (ev *Evaluator) EvalTree(expr adt.Expr) (*adt.Const, bool) {
	switch e := expr.(type) {
	case *adt.Const:
		return e, true
	case *adt.Elaborated:
		b, ok := e.Bind.(*boundExpr)
		if !ok {
			return nil, false
		}
		return ev.evalBound(b)
	case *boundExpr:
		// A nested operand of a bound tree (BinaryExpr.X, Concat element,
		// BitSelect bound, ...) is stored as a bare *boundExpr.
		return ev.evalBound(e)
	default:
		return nil, false
	}
}

func (ev *Evaluator) evalBound(b *boundExpr) (*adt.Const, bool) {
	switch b.kind {
	case boundConst:
		return b.c, true

	case boundParamRef:
		return ev.EvalTree(b.slot.Value)

	case boundGenvar:
		if b.genvarScope.GenvarTmp == b.name && b.genvarScope.GenvarTmpVal != nil {
			return b.genvarScope.GenvarTmpVal, true
		}
		return nil, false

	case boundUnary:
		x, ok := ev.EvalTree(b.x)
		if !ok {
			return nil, false
		}
		return evalUnary(b, x)

	case boundBinary:
		x, ok := ev.EvalTree(b.x)
		if !ok {
			return nil, false
		}
		y, ok := ev.EvalTree(b.y)
		if !ok {
			return nil, false
		}
		return evalBinary(b, x, y)

	case boundConcat:
		vals := make([]*adt.Const, len(b.elems))
		for i, el := range b.elems {
			v, ok := ev.EvalTree(el)
			if !ok {
				return nil, false
			}
			vals[i] = v
		}
		return evalConcat(b.src, vals)

	case boundBitSelect:
		x, ok := ev.EvalTree(b.bx)
		if !ok {
			return nil, false
		}
		hi, ok := ev.EvalTree(b.hi)
		if !ok {
			return nil, false
		}
		lo, ok := ev.EvalTree(b.lo)
		if !ok {
			return nil, false
		}
		return evalBitSelect(b.src, x, hi, lo)

	default:
		return nil, false
	}
}

// ExprType implements adt.Evaluator. It reports the kind an eventual
// EvalTree would produce without requiring expr to already be
// constant; the parameter resolver picks its evaluation strategy from
// this before the value necessarily exists.
func (ev *Evaluator) ExprType(expr adt.Expr) adt.ValueKind {
	switch e := expr.(type) {
	case *adt.Const:
		return e.Kind
	case *adt.Elaborated:
		b, ok := e.Bind.(*boundExpr)
		if !ok {
			return adt.LogicKind
		}
		return ev.exprTypeBound(b)
	case *boundExpr:
		return ev.exprTypeBound(e)
	default:
		return adt.LogicKind
	}
}

func (ev *Evaluator) exprTypeBound(b *boundExpr) adt.ValueKind {
	switch b.kind {
	case boundConst:
		return b.c.Kind
	case boundParamRef:
		return ev.ExprType(b.slot.Value)
	case boundGenvar:
		return adt.LogicKind
	case boundUnary:
		switch b.op {
		case ast.OpNot:
			return adt.BoolKind
		default:
			return ev.ExprType(b.x)
		}
	case boundBinary:
		switch b.op {
		case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpLogAnd, ast.OpLogOr:
			return adt.BoolKind
		default:
			if ev.ExprType(b.x) == adt.RealKind || ev.ExprType(b.y) == adt.RealKind {
				return adt.RealKind
			}
			return adt.LogicKind
		}
	case boundConcat, boundBitSelect:
		return adt.LogicKind
	default:
		return adt.LogicKind
	}
}

func newCtx() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(200)
	return ctx
}

func evalUnary(b *boundExpr, x *adt.Const) (*adt.Const, bool) {
	switch b.op {
	case ast.OpNeg:
		if x.Kind == adt.RealKind {
			var r apd.Decimal
			r.Neg(&x.Real)
			return &adt.Const{Src: b.src, Kind: adt.RealKind, Real: r}, true
		}
		var r apd.Decimal
		r.Neg(&x.Num)
		return &adt.Const{Src: b.src, Kind: adt.LogicKind, Num: r, Width: x.Width, Signed: x.Signed}, true

	case ast.OpNot:
		return boolConst(b.src, x.Sign() == 0), true

	case ast.OpBitNot:
		i, ok := x.Int64()
		if !ok {
			return nil, false
		}
		var r apd.Decimal
		r.SetInt64(^i)
		return &adt.Const{Src: b.src, Kind: adt.LogicKind, Num: r, Width: x.Width, Signed: x.Signed}, true

	default:
		return nil, false
	}
}

func evalBinary(b *boundExpr, x, y *adt.Const) (*adt.Const, bool) {
	ctx := newCtx()

	switch b.op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if x.Kind == adt.RealKind || y.Kind == adt.RealKind {
			xr, yr := x.AsReal(), y.AsReal()
			var r apd.Decimal
			var err error
			switch b.op {
			case ast.OpAdd:
				_, err = ctx.Add(&r, &xr, &yr)
			case ast.OpSub:
				_, err = ctx.Sub(&r, &xr, &yr)
			case ast.OpMul:
				_, err = ctx.Mul(&r, &xr, &yr)
			case ast.OpDiv:
				_, err = ctx.Quo(&r, &xr, &yr)
			case ast.OpMod:
				_, err = ctx.Rem(&r, &xr, &yr)
			}
			if err != nil {
				return nil, false
			}
			return &adt.Const{Src: b.src, Kind: adt.RealKind, Real: r}, true
		}
		var r apd.Decimal
		var err error
		switch b.op {
		case ast.OpAdd:
			_, err = ctx.Add(&r, &x.Num, &y.Num)
		case ast.OpSub:
			_, err = ctx.Sub(&r, &x.Num, &y.Num)
		case ast.OpMul:
			_, err = ctx.Mul(&r, &x.Num, &y.Num)
		case ast.OpDiv:
			_, err = ctx.QuoInteger(&r, &x.Num, &y.Num)
		case ast.OpMod:
			_, err = ctx.Rem(&r, &x.Num, &y.Num)
		}
		if err != nil {
			return nil, false
		}
		width := x.Width
		if y.Width > width {
			width = y.Width
		}
		return &adt.Const{Src: b.src, Kind: adt.LogicKind, Num: r, Width: width, Signed: x.Signed || y.Signed}, true

	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		xn, yn := x.AsReal(), y.AsReal()
		if x.Kind != adt.RealKind && y.Kind != adt.RealKind {
			xn, yn = x.Num, y.Num
		}
		cmp := xn.Cmp(&yn)
		var truth bool
		switch b.op {
		case ast.OpEq:
			truth = cmp == 0
		case ast.OpNeq:
			truth = cmp != 0
		case ast.OpLt:
			truth = cmp < 0
		case ast.OpLe:
			truth = cmp <= 0
		case ast.OpGt:
			truth = cmp > 0
		case ast.OpGe:
			truth = cmp >= 0
		}
		return boolConst(b.src, truth), true

	case ast.OpLogAnd, ast.OpLogOr:
		xt, yt := x.Sign() != 0, y.Sign() != 0
		var truth bool
		if b.op == ast.OpLogAnd {
			truth = xt && yt
		} else {
			truth = xt || yt
		}
		return boolConst(b.src, truth), true

	case ast.OpAnd, ast.OpOr, ast.OpXor, ast.OpShl, ast.OpShr:
		xi, ok1 := x.Int64()
		yi, ok2 := y.Int64()
		if !ok1 || !ok2 {
			return nil, false
		}
		var v int64
		switch b.op {
		case ast.OpAnd:
			v = xi & yi
		case ast.OpOr:
			v = xi | yi
		case ast.OpXor:
			v = xi ^ yi
		case ast.OpShl:
			v = xi << uint(yi)
		case ast.OpShr:
			v = xi >> uint(yi)
		}
		var r apd.Decimal
		r.SetInt64(v)
		width := x.Width
		if y.Width > width {
			width = y.Width
		}
		return &adt.Const{Src: b.src, Kind: adt.LogicKind, Num: r, Width: width, Signed: x.Signed}, true

	default:
		return nil, false
	}
}

func boolConst(src ast.Expr, truth bool) *adt.Const {
	var r apd.Decimal
	if truth {
		r.SetInt64(1)
	}
	return &adt.Const{Src: src, Kind: adt.BoolKind, Num: r}
}

// evalConcat folds a `{a, b, c}` bit-concatenation: each element's value
// ends up shifted left by the total width of the elements after it and
// or'd in, matching the source language's MSB-first concatenation
// order. Elements must carry a known, nonzero width (an unsized operand
// inside a concatenation is a front-end error this core does not see).
func evalConcat(src ast.Expr, vals []*adt.Const) (*adt.Const, bool) {
	var total int64
	width := 0
	for _, v := range vals {
		if v.Width <= 0 {
			return nil, false
		}
		i, ok := v.Int64()
		if !ok {
			return nil, false
		}
		mask := (int64(1) << uint(v.Width)) - 1
		total = (total << uint(v.Width)) | (i & mask)
		width += v.Width
	}
	var r apd.Decimal
	r.SetInt64(total)
	return &adt.Const{Src: src, Kind: adt.LogicKind, Num: r, Width: width}, true
}

// evalBitSelect folds `x[hi:lo]` for constant x, hi, lo.
func evalBitSelect(src ast.Expr, x, hi, lo *adt.Const) (*adt.Const, bool) {
	xi, ok := x.Int64()
	if !ok {
		return nil, false
	}
	hiI, ok := hi.Int64()
	if !ok {
		return nil, false
	}
	loI, ok := lo.Int64()
	if !ok {
		return nil, false
	}
	if hiI < loI {
		hiI, loI = loI, hiI
	}
	width := int(hiI-loI) + 1
	v := (xi >> uint(loI)) & ((int64(1) << uint(width)) - 1)
	var r apd.Decimal
	r.SetInt64(v)
	return &adt.Const{Src: src, Kind: adt.LogicKind, Num: r, Width: width}, true
}
