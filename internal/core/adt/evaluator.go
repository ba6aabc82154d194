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

import "github.com/gohdl/scopelab/hdl/ast"

// Evaluator is the narrow contract the elaboration core assumes of the
// expression subsystem. The scope elaborator and parameter resolver
// call only these three operations and never interpret an ast.Expr
// themselves. internal/core/constfold ships the concrete
// implementation, but nothing in compile/ or param/ depends on that
// package directly, only on this interface, so a different evaluator
// can be substituted without touching either pass.
type Evaluator interface {
	// ElaboratePExpr binds every identifier in expr against scope and its
	// ancestors, returning a lexically resolved but not necessarily
	// constant-folded form. It returns a *Bottom sentinel on failure,
	// never an error return.
	ElaboratePExpr(expr ast.Expr, scope *Scope) Expr

	// EvalTree attempts to fully constant-fold expr. ok is false if expr
	// does not currently reduce to a constant (e.g. it still references
	// an unresolved parameter).
	EvalTree(expr Expr) (c *Const, ok bool)

	// ExprType reports the value kind EvalTree would produce for expr,
	// used by the parameter resolver to pick its evaluation strategy.
	// It must not require expr to already be constant.
	ExprType(expr Expr) ValueKind
}
