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

// Package param implements parameter resolution: the post-pass that
// applies staged defparam overrides and then folds every parameter and
// localparam to a constant, coercing width and sign. It runs after
// internal/core/compile has built the full scope tree, and makes
// exactly two depth-first passes, not an open-ended convergence loop.
package param

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/gohdl/scopelab/hdl/errors"
	"github.com/gohdl/scopelab/internal/core/adt"
	"github.com/gohdl/scopelab/internal/core/resolve"
)

// Resolver applies defparams and folds parameter values over a built
// scope tree.
type Resolver struct {
	Eval adt.Evaluator
	Errs *errors.List
}

// New creates a Resolver.
func New(eval adt.Evaluator, errs *errors.List) *Resolver {
	return &Resolver{Eval: eval, Errs: errs}
}

// Run executes both sub-passes over every scope reachable from roots.
// roots is the full, final set of a design's root scopes: sub-pass 1's
// Relative lookup may resolve into any of them, not just the root a
// given defparam happens to be staged under.
func (r *Resolver) Run(roots []*adt.Scope) {
	for _, root := range roots {
		r.applyDefparams(roots, root)
	}
	for _, root := range roots {
		r.evaluateScope(root)
	}
}

// applyDefparams is sub-pass 1: children first, then the scope itself.
// Entries within one inbox are applied in insertion order, so two
// defparams targeting the same parameter resolve to the later one
// through ReplaceParameter's overwrite semantics.
func (r *Resolver) applyDefparams(roots []*adt.Scope, s *adt.Scope) {
	for _, c := range s.Children() {
		r.applyDefparams(roots, c)
	}
	for _, dp := range s.DefparamInbox {
		target, ok := resolve.Relative(roots, s, dp.RelPath, resolve.Any)
		if !ok {
			r.Errs.AddNewf(errors.UnknownScopePath, dp.Expr.Position(), s.PathStrings(),
				"defparam: %s does not resolve from %s", dp.RelPath, s.Path())
			continue
		}
		if !target.ReplaceParameter(dp.Tail, dp.Expr) {
			r.Errs.AddNewf(errors.UnknownOverrideTarget, dp.Expr.Position(), s.PathStrings(),
				"defparam: %s has no parameter %q", target.Path(), dp.Tail)
		}
	}
	// Every inbox is empty once sub-pass 1 has visited it.
	s.DefparamInbox = nil
}

// evaluateScope is sub-pass 2: children first, then the scope itself,
// folding every parameter and localparam in declaration order.
// Localparams evaluate identically to parameters; that they receive no
// overrides was already enforced upstream, where ReplaceParameter only
// ever targets the Parameters map.
func (r *Resolver) evaluateScope(s *adt.Scope) {
	for _, c := range s.Children() {
		r.evaluateScope(c)
	}
	for _, sym := range s.ParameterNames() {
		r.evaluateSlot(s, s.Parameters[sym], sym)
	}
	for _, sym := range s.LocalparamNames() {
		r.evaluateSlot(s, s.Localparams[sym], sym)
	}
}

// evaluateSlot folds one ParamSlot: range bounds first, then the value,
// then width/sign coercion when a range is present.
func (r *Resolver) evaluateSlot(s *adt.Scope, slot *adt.ParamSlot, sym string) {
	if slot.Msb != nil {
		r.foldRangeBound(s, slot, sym, "msb", &slot.Msb)
		r.foldRangeBound(s, slot, sym, "lsb", &slot.Lsb)
	}

	if _, already := slot.Value.(*adt.Const); !already {
		kind := r.Eval.ExprType(slot.Value)
		c, ok := r.Eval.EvalTree(slot.Value)
		if !ok {
			r.Errs.AddNewf(errors.UnevaluableParameter, slot.Origin, s.PathStrings(),
				"parameter %q did not evaluate to a constant", sym)
			return
		}
		if kind != adt.RealKind && c.Signed != slot.Signed {
			// EvalTree may hand back a constant shared with another slot
			// (a plain parameter reference); restamp a copy, not the
			// original.
			cc := *c
			cc.Signed = slot.Signed
			c = &cc
		}
		slot.Value = c
	}

	if slot.Msb == nil {
		return
	}
	msbC, ok1 := slot.Msb.(*adt.Const)
	lsbC, ok2 := slot.Lsb.(*adt.Const)
	valC, ok3 := slot.Value.(*adt.Const)
	if !ok1 || !ok2 || !ok3 || valC.Kind == adt.RealKind {
		return
	}
	width := rangeWidth(msbC, lsbC)
	if width <= 0 {
		return
	}
	if valC.Width != width || valC.Signed != slot.Signed {
		slot.Value = coerceWidth(valC, width, slot.Signed)
	}
}

func (r *Resolver) foldRangeBound(s *adt.Scope, slot *adt.ParamSlot, sym, which string, bound *adt.Expr) {
	if _, already := (*bound).(*adt.Const); already {
		return
	}
	c, ok := r.Eval.EvalTree(*bound)
	if !ok {
		r.Errs.AddNewf(errors.UnevaluableParameter, slot.Origin, s.PathStrings(),
			"parameter %q: %s did not evaluate to a constant", sym, which)
		return
	}
	*bound = c
}

func rangeWidth(msb, lsb *adt.Const) int {
	m, ok1 := msb.Int64()
	l, ok2 := lsb.Int64()
	if !ok1 || !ok2 {
		return 0
	}
	diff := m - l
	if diff < 0 {
		diff = -diff
	}
	return int(diff) + 1
}

// coerceWidth reconstructs c at the declared width and sign, truncating
// or sign-extending per the source language's rules for width-coerced
// constants. Like internal/core/constfold's bitwise operators, this
// goes through Decimal.Int64() and so shares the same 63-bit ceiling on
// ranged parameter widths.
func coerceWidth(c *adt.Const, width int, signed bool) *adt.Const {
	i, ok := c.Int64()
	if !ok {
		return &adt.Const{Src: c.Src, Kind: c.Kind, Num: c.Num, Width: width, Signed: signed}
	}

	var mask int64 = -1
	if width < 63 {
		mask = (int64(1) << uint(width)) - 1
	}
	v := i & mask
	if signed && width < 64 {
		signBit := int64(1) << uint(width-1)
		if v&signBit != 0 {
			v -= int64(1) << uint(width)
		}
	}

	var d apd.Decimal
	d.SetInt64(v)
	return &adt.Const{Src: c.Src, Kind: c.Kind, Num: d, Width: width, Signed: signed}
}
