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

package adt

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/gohdl/scopelab/internal/core/name"
)

func TestNewChildDuplicateRejected(t *testing.T) {
	root := NewRoot("top", "top")
	_, err := NewChild(root, name.Make("u"), Module)
	qt.Assert(t, qt.IsNil(err))

	_, err = NewChild(root, name.Make("u"), Module)
	qt.Assert(t, qt.IsNotNil(err))
	var dup *ErrDuplicateScope
	qt.Check(t, qt.ErrorAs(err, &dup))
}

func TestScopePathAndChildOrder(t *testing.T) {
	root := NewRoot("top", "top")
	u, err := NewChild(root, name.Make("u"), Module)
	qt.Assert(t, qt.IsNil(err))
	w, err := NewChild(u, name.Make("w"), Module)
	qt.Assert(t, qt.IsNil(err))

	qt.Check(t, qt.Equals(w.Path().String(), "top.u.w"))

	g0, _ := NewChild(root, name.MakeIndexed("g", 0), GenBlock)
	g1, _ := NewChild(root, name.MakeIndexed("g", 1), GenBlock)
	kids := root.Children()
	qt.Assert(t, qt.Equals(len(kids), 3))
	qt.Check(t, qt.Equals(kids[0], u))
	qt.Check(t, qt.Equals(kids[1], g0))
	qt.Check(t, qt.Equals(kids[2], g1))
}

func TestHasModuleAncestor(t *testing.T) {
	a := NewRoot("a", "a")
	b, _ := NewChild(a, name.Make("u"), Module)
	b.ModuleTypeName = "b"

	qt.Check(t, qt.IsTrue(a.HasModuleAncestor("a")))
	qt.Check(t, qt.IsTrue(b.HasModuleAncestor("a")))
	qt.Check(t, qt.IsTrue(b.HasModuleAncestor("b")))
	qt.Check(t, qt.IsFalse(b.HasModuleAncestor("c")))
}

func TestSetAndReplaceParameter(t *testing.T) {
	s := NewRoot("top", "top")
	slot := &ParamSlot{Value: &Placeholder{}}
	prev := s.SetParameter("W", slot)
	qt.Check(t, qt.IsNil(prev))
	qt.Check(t, qt.DeepEquals(s.ParameterNames(), []string{"W"}))

	ok := s.ReplaceParameter("W", &Const{Kind: LogicKind})
	qt.Check(t, qt.IsTrue(ok))
	qt.Check(t, qt.IsFalse(s.ReplaceParameter("NOPE", &Const{})))
}

func TestParamSlotState(t *testing.T) {
	tests := []struct {
		name  string
		value Expr
		want  ExprState
	}{
		{"placeholder", &Placeholder{}, StatePlaceholder},
		{"elaborated", &Elaborated{}, StateElaborated},
		{"constant", &Const{}, StateConstant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := &ParamSlot{Value: tt.value}
			qt.Check(t, qt.Equals(slot.State(), tt.want))
		})
	}
}
