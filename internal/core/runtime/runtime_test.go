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

package runtime

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/gohdl/scopelab/hdl/errors"
	"github.com/gohdl/scopelab/hdl/token"
	"github.com/gohdl/scopelab/internal/core/adt"
	"github.com/gohdl/scopelab/internal/core/name"
)

func TestNewWiresEvaluatorOverRoots(t *testing.T) {
	rt := New()
	qt.Assert(t, qt.IsNotNil(rt.Eval))
	qt.Check(t, qt.Equals(rt.ErrorCount(), 0))

	root := adt.NewRoot("top", "top")
	rt.AddRoot(root)
	qt.Check(t, qt.Equals(len(rt.Roots), 1))
	qt.Check(t, qt.Equals(rt.Roots[0], root))
}

func TestErrorCountReflectsErrs(t *testing.T) {
	rt := New()
	rt.Errs.AddNewf(errors.TypeMismatch, token.NoPos, nil, "placeholder")
	qt.Check(t, qt.Equals(rt.ErrorCount(), 1))
}

func TestTimePrecisionConsistent(t *testing.T) {
	rt := New()
	root := adt.NewRoot("top", "top")
	root.TimePrecision = -9
	rt.AddRoot(root)

	u, err := adt.NewChild(root, name.Make("u"), adt.Module)
	qt.Assert(t, qt.IsNil(err))
	u.TimePrecision = -6
	qt.Check(t, qt.IsTrue(rt.TimePrecisionConsistent()))

	// A descendant module with a finer precision than the root violates
	// the design-wide relation.
	w, err := adt.NewChild(u, name.Make("w"), adt.Module)
	qt.Assert(t, qt.IsNil(err))
	w.TimePrecision = -12
	qt.Check(t, qt.IsFalse(rt.TimePrecisionConsistent()))
}
