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

package param

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/gohdl/scopelab/hdl/ast"
	"github.com/gohdl/scopelab/hdl/errors"
	"github.com/gohdl/scopelab/hdl/literal"
	"github.com/gohdl/scopelab/internal/core/adt"
	"github.com/gohdl/scopelab/internal/core/constfold"
	"github.com/gohdl/scopelab/internal/core/name"
)

func num(t *testing.T, s string) *ast.Number {
	t.Helper()
	n, err := literal.ParseNum(s)
	qt.Assert(t, qt.IsNil(err))
	return &ast.Number{Value: n}
}

func intOf(t *testing.T, slot *adt.ParamSlot) int64 {
	t.Helper()
	c, ok := slot.Value.(*adt.Const)
	qt.Assert(t, qt.IsTrue(ok))
	i, ok := c.Int64()
	qt.Assert(t, qt.IsTrue(ok))
	return i
}

func TestEvaluateScopeFoldsElaboratedValue(t *testing.T) {
	var roots []*adt.Scope
	eval := constfold.New(&roots)
	var errs errors.List
	r := New(eval, &errs)

	top := adt.NewRoot("top", "top")
	roots = append(roots, top)
	top.SetParameter("W", &adt.ParamSlot{Value: eval.ElaboratePExpr(num(t, "8"), top)})

	r.Run(roots)
	qt.Check(t, qt.Equals(errs.Len(), 0))
	qt.Check(t, qt.Equals(intOf(t, top.Parameters["W"]), int64(8)))
}

func TestApplyDefparamsLastWriterWins(t *testing.T) {
	var roots []*adt.Scope
	eval := constfold.New(&roots)
	var errs errors.List
	r := New(eval, &errs)

	top := adt.NewRoot("top", "top")
	roots = append(roots, top)
	top.SetParameter("W", &adt.ParamSlot{Value: eval.ElaboratePExpr(num(t, "8"), top)})
	// A single-component path naming the root itself resolves via
	// resolve.Absolute's root-name match, targeting top in its own inbox.
	selfPath := name.HierName{name.Make("top")}
	top.DefparamInbox = []adt.DefparamEntry{
		{RelPath: selfPath, Tail: "W", Expr: eval.ElaboratePExpr(num(t, "16"), top)},
		{RelPath: selfPath, Tail: "W", Expr: eval.ElaboratePExpr(num(t, "24"), top)},
	}

	r.Run(roots)
	qt.Check(t, qt.Equals(errs.Len(), 0))
	qt.Check(t, qt.Equals(intOf(t, top.Parameters["W"]), int64(24)))
	qt.Check(t, qt.IsNil(top.DefparamInbox))
}

func TestApplyDefparamsUnknownTargetDiagnosed(t *testing.T) {
	var roots []*adt.Scope
	eval := constfold.New(&roots)
	var errs errors.List
	r := New(eval, &errs)

	top := adt.NewRoot("top", "top")
	roots = append(roots, top)
	top.DefparamInbox = []adt.DefparamEntry{
		{RelPath: name.HierName{name.Make("nosuch")}, Tail: "W", Expr: eval.ElaboratePExpr(num(t, "1"), top)},
	}

	r.Run(roots)
	qt.Assert(t, qt.Equals(errs.Len(), 1))
	qt.Check(t, qt.Equals(errs[0].Kind(), errors.UnknownScopePath))
}

func TestApplyDefparamsUnknownParameterDiagnosed(t *testing.T) {
	var roots []*adt.Scope
	eval := constfold.New(&roots)
	var errs errors.List
	r := New(eval, &errs)

	top := adt.NewRoot("top", "top")
	roots = append(roots, top)
	top.DefparamInbox = []adt.DefparamEntry{
		{RelPath: name.HierName{name.Make("top")}, Tail: "NOPE", Expr: eval.ElaboratePExpr(num(t, "1"), top)},
	}

	r.Run(roots)
	qt.Assert(t, qt.Equals(errs.Len(), 1))
	qt.Check(t, qt.Equals(errs[0].Kind(), errors.UnknownOverrideTarget))
}

func TestEvaluateSlotCoercesWidth(t *testing.T) {
	var roots []*adt.Scope
	eval := constfold.New(&roots)
	var errs errors.List
	r := New(eval, &errs)

	top := adt.NewRoot("top", "top")
	roots = append(roots, top)
	slot := &adt.ParamSlot{
		Value: eval.ElaboratePExpr(num(t, "255"), top),
		Msb:   eval.ElaboratePExpr(num(t, "3"), top),
		Lsb:   eval.ElaboratePExpr(num(t, "0"), top),
	}
	top.SetParameter("W", slot)

	r.Run(roots)
	qt.Check(t, qt.Equals(errs.Len(), 0))
	qt.Check(t, qt.Equals(slot.Value.(*adt.Const).Width, 4))
	qt.Check(t, qt.Equals(intOf(t, slot), int64(15))) // 255 truncated to 4 bits
}

// Restamping a referencing parameter's signedness must not leak into
// the constant of the parameter it references.
func TestSignedRestampDoesNotAliasReferencedSlot(t *testing.T) {
	var roots []*adt.Scope
	eval := constfold.New(&roots)
	var errs errors.List
	r := New(eval, &errs)

	top := adt.NewRoot("top", "top")
	roots = append(roots, top)
	top.SetParameter("A", &adt.ParamSlot{Value: eval.ElaboratePExpr(num(t, "8"), top)})
	top.SetParameter("B", &adt.ParamSlot{
		Value:  eval.ElaboratePExpr(&ast.Ident{Name: "A"}, top),
		Signed: true,
	})

	r.Run(roots)
	qt.Check(t, qt.Equals(errs.Len(), 0))
	qt.Check(t, qt.IsFalse(top.Parameters["A"].Value.(*adt.Const).Signed))
	qt.Check(t, qt.IsTrue(top.Parameters["B"].Value.(*adt.Const).Signed))
}

func TestEvaluateSlotSignedCoercion(t *testing.T) {
	var roots []*adt.Scope
	eval := constfold.New(&roots)
	var errs errors.List
	r := New(eval, &errs)

	top := adt.NewRoot("top", "top")
	roots = append(roots, top)
	slot := &adt.ParamSlot{
		Value:  eval.ElaboratePExpr(num(t, "15"), top), // 1111
		Msb:    eval.ElaboratePExpr(num(t, "3"), top),
		Lsb:    eval.ElaboratePExpr(num(t, "0"), top),
		Signed: true,
	}
	top.SetParameter("W", slot)

	r.Run(roots)
	qt.Check(t, qt.Equals(errs.Len(), 0))
	qt.Check(t, qt.IsTrue(slot.Value.(*adt.Const).Signed))
	qt.Check(t, qt.Equals(intOf(t, slot), int64(-1))) // 4-bit 1111 signed is -1
}
