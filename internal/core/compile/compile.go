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

// Package compile implements scope elaboration: the pass that walks a
// parsed hdl/ast.Module and materializes the live scope tree, unrolling
// generate schemes and instantiating sub-modules along the way. There
// is no separate compiler-internal frame stack; the Scope tree being
// built already is the scope chain, so ElaborateModule recurses
// directly against adt.Scope.
package compile

import (
	"fmt"
	"slices"

	"github.com/gohdl/scopelab/hdl/ast"
	"github.com/gohdl/scopelab/hdl/errors"
	"github.com/gohdl/scopelab/hdl/token"
	"github.com/gohdl/scopelab/internal/core/adt"
	"github.com/gohdl/scopelab/internal/core/name"
)

// Override is one normalized instance-site parameter override: a
// positional vector zipped against the target module's parameter-decl
// order, or a named map, collapsed to this common shape once the
// target's declaration order is known. Kept as an ordered slice, not a
// map, so diagnostics over multiple overrides are emitted in a
// deterministic order.
type Override struct {
	Name string
	Expr ast.Expr
}

// Elaborator is the scope-elaboration pass. Defs resolves a module
// instantiation's target type name to its declaration; a single
// Elaborator is reused across every root module of a design so that
// Defs, Eval, and Errs are shared consistently.
type Elaborator struct {
	Defs map[string]*ast.Module
	Eval adt.Evaluator
	Errs *errors.List

	genblk map[*adt.Scope]int // unlabeled generate block counters, per scope
}

// New creates an Elaborator. defs maps a module type name to its
// declaration; the registry that builds the mapping is the front-end's
// concern, this pass only consumes it.
func New(defs map[string]*ast.Module, eval adt.Evaluator, errs *errors.List) *Elaborator {
	return &Elaborator{
		Defs:   defs,
		Eval:   eval,
		Errs:   errs,
		genblk: map[*adt.Scope]int{},
	}
}

// ElaborateModule elaborates decl's body into scope, depositing
// overrides into the new scope's parameters before descending. It
// returns true iff no diagnostic was added to Errs anywhere in scope's
// subtree during this call.
func (el *Elaborator) ElaborateModule(decl *ast.Module, scope *adt.Scope, overrides []Override) bool {
	before := len(*el.Errs)

	scope.DefaultNettype = decl.DefaultNettype
	scope.TimeUnit = decl.TimeUnit
	scope.TimePrecision = decl.TimePrecision

	// Step 1: placeholder parameters, so every name is locally
	// resolvable before any expression is evaluated.
	for _, p := range decl.Parameters {
		scope.SetParameter(p.Name, &adt.ParamSlot{Value: &adt.Placeholder{Src: p.Value}, Signed: p.Signed, Origin: p.Pos})
	}
	for _, p := range decl.Localparams {
		scope.SetLocalparam(p.Name, &adt.ParamSlot{Value: &adt.Placeholder{Src: p.Value}, Signed: p.Signed, Origin: p.Pos})
	}

	// Step 2: parameter elaboration, in declaration order.
	for _, p := range decl.Parameters {
		el.elaborateParamDecl(scope, p, scope.Parameters[p.Name], false)
	}

	// Step 3: instance overrides, lexically elaborated against the
	// *parent* scope (scope.Parent is the instantiating scope: scope
	// itself was just created as its child).
	for _, o := range overrides {
		bound := el.Eval.ElaboratePExpr(o.Expr, scope.Parent)
		if !scope.ReplaceParameter(o.Name, bound) {
			el.Errs.AddNewf(errors.UnknownOverrideTarget, o.Expr.Position(), scope.PathStrings(),
				"instance override: %s has no parameter %q", scope.Path(), o.Name)
		}
	}

	// Step 4: localparam elaboration; signedness comes only from the
	// declaration, never inferred from the expression.
	for _, p := range decl.Localparams {
		el.elaborateParamDecl(scope, p, scope.Localparams[p.Name], true)
	}

	// Step 5: defparam staging. Elaborate now, apply later: the target
	// scope may not exist yet.
	for _, dp := range decl.Defparams {
		bound := el.Eval.ElaboratePExpr(dp.Value, scope)
		scope.DefparamInbox = append(scope.DefparamInbox, adt.DefparamEntry{
			RelPath: hierPathToName(dp.Path),
			Tail:    dp.Tail,
			Expr:    bound,
		})
	}

	// Step 6: generate schemes.
	for _, gs := range decl.Generates {
		el.elaborateGenerateScheme(scope, gs)
	}

	// Step 7: tasks and functions.
	for _, t := range decl.Tasks {
		el.elaborateTask(scope, t)
	}
	for _, f := range decl.Functions {
		el.elaborateTask(scope, f)
	}

	// Step 8: sub-module instantiations.
	for _, inst := range decl.Instances {
		el.instantiate(scope, inst)
	}

	// Step 9: behavioral statements.
	for _, b := range decl.Behaviors {
		el.elaborateStmt(scope, b.Stmt, b.Pos)
	}

	// Step 10: named events.
	for _, ev := range decl.Events {
		scope.AddEvent(ev)
	}

	return len(*el.Errs) == before
}

// elaborateParamDecl lexically elaborates a parameter/localparam's
// value and optional range, and derives its signedness. declOnly is
// true for localparams, whose signedness comes only from the declared
// flag, never falling back to the expression's own signedness the way
// an unranged parameter's does.
func (el *Elaborator) elaborateParamDecl(scope *adt.Scope, p ast.ParamDecl, slot *adt.ParamSlot, declOnly bool) {
	slot.Value = el.Eval.ElaboratePExpr(p.Value, scope)
	if p.Msb != nil {
		slot.Msb = el.Eval.ElaboratePExpr(p.Msb, scope)
		slot.Lsb = el.Eval.ElaboratePExpr(p.Lsb, scope)
	}

	switch {
	case p.Signed:
		slot.Signed = true
	case declOnly:
		slot.Signed = false
	case p.Msb != nil:
		slot.Signed = false
	default:
		slot.Signed = false
		if c, ok := el.Eval.EvalTree(slot.Value); ok {
			slot.Signed = c.Signed
		}
	}
}

func hierPathToName(p ast.HierPath) name.HierName {
	out := make(name.HierName, len(p))
	for i, c := range p {
		if c.HasIndex {
			out[i] = name.MakeIndexed(c.Name, c.Index)
		} else {
			out[i] = name.Make(c.Name)
		}
	}
	return out
}

// elaborateGenerateScheme dispatches the three generate schemes by Kind.
func (el *Elaborator) elaborateGenerateScheme(scope *adt.Scope, gs ast.GenerateScheme) {
	switch gs.Kind {
	case ast.GenerateLoop:
		el.elaborateGenerateLoop(scope, gs)
	case ast.GenerateIf, ast.GenerateElse:
		el.elaborateGenerateCond(scope, gs)
	}
}

func (el *Elaborator) nextGenblk(scope *adt.Scope) int {
	el.genblk[scope]++
	return el.genblk[scope]
}

func (el *Elaborator) evalConst(scope *adt.Scope, expr ast.Expr) (*adt.Const, bool) {
	return el.Eval.EvalTree(el.Eval.ElaboratePExpr(expr, scope))
}

func (el *Elaborator) elaborateGenerateLoop(scope *adt.Scope, gs ast.GenerateScheme) {
	initC, ok := el.evalConst(scope, gs.Init)
	if !ok {
		el.Errs.AddNewf(errors.UnevaluableGenvar, gs.Pos, scope.PathStrings(),
			"generate-for %q: init did not evaluate to a constant", gs.GenvarName)
		return
	}
	scope.GenvarTmp = gs.GenvarName
	scope.GenvarTmpVal = initC
	defer func() {
		scope.GenvarTmp = ""
		scope.GenvarTmpVal = nil
	}()

	label := gs.Label
	if label == "" {
		label = fmt.Sprintf("genblk%d", el.nextGenblk(scope))
	}

	testC, ok := el.evalConst(scope, gs.Test)
	if !ok {
		el.Errs.AddNewf(errors.UnevaluableGenvar, gs.Pos, scope.PathStrings(),
			"generate-for %q: test did not evaluate to a constant", gs.GenvarName)
		return
	}

	for testC.Sign() != 0 {
		idx, _ := scope.GenvarTmpVal.Int64()
		childName := name.MakeIndexed(label, int(idx))
		child, err := adt.NewChild(scope, childName, adt.GenBlock)
		if err != nil {
			el.Errs.AddNewf(errors.DuplicateScope, gs.Pos, scope.PathStrings(), "duplicate generate block %s", childName)
			return
		}
		child.SetLocalparam(gs.GenvarName, &adt.ParamSlot{Value: scope.GenvarTmpVal, Origin: gs.Pos})
		el.elaborateBody(child, gs.Body)

		stepC, ok := el.evalConst(scope, gs.Step)
		if !ok {
			el.Errs.AddNewf(errors.UnevaluableGenvar, gs.Pos, scope.PathStrings(),
				"generate-for %q: step did not evaluate to a constant", gs.GenvarName)
			return
		}
		scope.GenvarTmpVal = stepC

		testC, ok = el.evalConst(scope, gs.Test)
		if !ok {
			el.Errs.AddNewf(errors.UnevaluableGenvar, gs.Pos, scope.PathStrings(),
				"generate-for %q: test did not evaluate to a constant", gs.GenvarName)
			return
		}
	}
}

func (el *Elaborator) elaborateGenerateCond(scope *adt.Scope, gs ast.GenerateScheme) {
	testC, ok := el.evalConst(scope, gs.Condition)
	if !ok {
		el.Errs.AddNewf(errors.UnevaluableGenvar, gs.Pos, scope.PathStrings(),
			"generate-%s: condition did not evaluate to a constant", genKindWord(gs.Kind))
		return
	}
	want := gs.Kind == ast.GenerateIf
	if (testC.Sign() != 0) != want {
		return
	}

	label := gs.Label
	if label == "" {
		label = fmt.Sprintf("genblk%d", el.nextGenblk(scope))
	}
	child, err := adt.NewChild(scope, name.Make(label), adt.GenBlock)
	if err != nil {
		el.Errs.AddNewf(errors.DuplicateScope, gs.Pos, scope.PathStrings(), "duplicate generate block %s", label)
		return
	}
	el.elaborateBody(child, gs.Body)
}

func genKindWord(k ast.GenerateKind) string {
	if k == ast.GenerateIf {
		return "if"
	}
	return "else"
}

// elaborateBody descends a generate body's items. The body may itself
// contain nested generate schemes and module instantiations; recursion
// is unbounded in principle.
func (el *Elaborator) elaborateBody(scope *adt.Scope, items []ast.ModuleItem) {
	for _, item := range items {
		switch {
		case item.Instance != nil:
			el.instantiate(scope, *item.Instance)
		case item.Generate != nil:
			el.elaborateGenerateScheme(scope, *item.Generate)
		case item.Task != nil:
			el.elaborateTask(scope, *item.Task)
		case item.Localparam != nil:
			slot := &adt.ParamSlot{Value: &adt.Placeholder{Src: item.Localparam.Value}, Signed: item.Localparam.Signed, Origin: item.Localparam.Pos}
			scope.SetLocalparam(item.Localparam.Name, slot)
			el.elaborateParamDecl(scope, *item.Localparam, slot, true)
		}
	}
}

// elaborateTask creates a task or function child scope. Ports are
// inserted as signals before the body is descended into, so the first
// body statement can already reference a port by name.
func (el *Elaborator) elaborateTask(scope *adt.Scope, t ast.TaskDecl) {
	kind := adt.Task
	if t.Kind == ast.KindFunction {
		kind = adt.Function
	}
	child, err := adt.NewChild(scope, name.Make(t.Name), kind)
	if err != nil {
		el.Errs.AddNewf(errors.DuplicateScope, t.Pos, scope.PathStrings(), "duplicate task/function %s", t.Name)
		return
	}
	for _, port := range t.Ports {
		child.AddSignal(port)
	}
	for _, b := range t.Body {
		el.elaborateStmt(child, b.Stmt, b.Pos)
	}
}

// elaborateStmt descends a behavioral statement, a pattern match over
// ast.Stmt's closed variant set. Only a labeled block or fork-join
// creates a scope; every other variant just recurses into its nested
// statements.
func (el *Elaborator) elaborateStmt(scope *adt.Scope, s ast.Stmt, pos token.Pos) {
	switch s.Kind {
	case ast.StmtBlock, ast.StmtForkJoin:
		target := scope
		if s.Label != "" {
			kind := adt.BeginEnd
			if s.Kind == ast.StmtForkJoin {
				kind = adt.ForkJoin
			}
			child, err := adt.NewChild(scope, name.Make(s.Label), kind)
			if err != nil {
				el.Errs.AddNewf(errors.DuplicateScope, pos, scope.PathStrings(), "duplicate named block %s", s.Label)
				return
			}
			target = child
		}
		for _, inner := range s.Block {
			el.elaborateStmt(target, inner, pos)
		}

	case ast.StmtIf:
		if s.Then != nil {
			el.elaborateStmt(scope, *s.Then, pos)
		}
		if s.Else != nil {
			el.elaborateStmt(scope, *s.Else, pos)
		}

	case ast.StmtCase:
		for _, arm := range s.CaseArms {
			el.elaborateStmt(scope, arm.Body, pos)
		}

	case ast.StmtDelay, ast.StmtEventControl:
		if s.Inner != nil {
			el.elaborateStmt(scope, *s.Inner, pos)
		}

	case ast.StmtForever, ast.StmtRepeat, ast.StmtWhile, ast.StmtFor:
		if s.Body != nil {
			el.elaborateStmt(scope, *s.Body, pos)
		}

	case ast.StmtAssign, ast.StmtNull:
		// leaf statements: nothing to descend into.
	}
}

// normalizeOverrides collapses an instance's positional-or-named
// override representation into the single ordered shape ElaborateModule
// consumes. A positional vector zips against target's parameter-decl
// order, truncating to the shorter of the two; a named map is copied
// verbatim, sorted by name so diagnostics are emitted deterministically.
func normalizeOverrides(inst ast.Instance, target *ast.Module) []Override {
	if inst.Positional != nil {
		n := len(inst.Positional)
		if len(target.Parameters) < n {
			n = len(target.Parameters)
		}
		out := make([]Override, n)
		for i := 0; i < n; i++ {
			out[i] = Override{Name: target.Parameters[i].Name, Expr: inst.Positional[i]}
		}
		return out
	}
	names := make([]string, 0, len(inst.Named))
	for k := range inst.Named {
		names = append(names, k)
	}
	slices.Sort(names)
	out := make([]Override, len(names))
	for i, k := range names {
		out[i] = Override{Name: k, Expr: inst.Named[k]}
	}
	return out
}

// instantiate creates the module child scope (or vector of scopes, for
// an instance array) for one instantiation record and elaborates the
// target module into each.
func (el *Elaborator) instantiate(scope *adt.Scope, inst ast.Instance) {
	if inst.Name == "" {
		el.Errs.AddNewf(errors.ParseAssumptionViolated, inst.Pos, scope.PathStrings(), "instance with empty name")
		return
	}
	if scope.HasModuleAncestor(inst.ModuleType) {
		el.Errs.AddNewf(errors.RecursiveInstantiation, inst.Pos, scope.PathStrings(),
			"recursive instantiation of module %q", inst.ModuleType)
		return
	}
	target, ok := el.Defs[inst.ModuleType]
	if !ok {
		el.Errs.AddNewf(errors.ParseAssumptionViolated, inst.Pos, scope.PathStrings(), "unknown module type %q", inst.ModuleType)
		return
	}

	count := 1
	array := false
	var low, high int64
	if inst.Range != nil {
		msbC, ok1 := el.evalConst(scope, inst.Range.Msb)
		lsbC, ok2 := el.evalConst(scope, inst.Range.Lsb)
		if !ok1 || !ok2 {
			el.Errs.AddNewf(errors.UnevaluableParameter, inst.Pos, scope.PathStrings(),
				"instance array range for %q did not evaluate to a constant", inst.Name)
			return
		}
		msb, _ := msbC.Int64()
		lsb, _ := lsbC.Int64()
		low, high = lsb, msb
		diff := high - low
		if diff < 0 {
			diff = -diff
		}
		count = int(diff) + 1
		array = true
	}

	overrides := normalizeOverrides(inst, target)
	children := make([]*adt.Scope, 0, count)

	for i := 0; i < count; i++ {
		var idx int64
		if low <= high {
			idx = low + int64(i)
		} else {
			idx = low - int64(i)
		}

		var childName name.Component
		if array {
			childName = name.MakeIndexed(inst.Name, int(idx))
		} else {
			childName = name.Make(inst.Name)
		}

		child, err := adt.NewChild(scope, childName, adt.Module)
		if err != nil {
			el.Errs.AddNewf(errors.DuplicateScope, inst.Pos, scope.PathStrings(), "duplicate instance %s", childName)
			continue
		}
		child.ModuleTypeName = inst.ModuleType

		el.ElaborateModule(target, child, overrides)
		children = append(children, child)
	}

	// A name collision leaves children empty without touching whatever
	// array a prior, successful instantiate call under the same name
	// already installed.
	if len(children) > 0 {
		scope.InstanceArrays[inst.Name] = children
	}
}
