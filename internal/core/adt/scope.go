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
	"github.com/gohdl/scopelab/hdl/ast"
	"github.com/gohdl/scopelab/internal/core/name"
)

// Kind is the closed set of scope kinds. Operations that differ per
// kind dispatch on this tag, never on a method set per kind: the set is
// closed and not extensible.
type Kind int

const (
	Module Kind = iota
	Task
	Function
	BeginEnd
	ForkJoin
	GenBlock
)

func (k Kind) String() string {
	switch k {
	case Module:
		return "module"
	case Task:
		return "task"
	case Function:
		return "function"
	case BeginEnd:
		return "begin-end"
	case ForkJoin:
		return "fork-join"
	case GenBlock:
		return "genblock"
	default:
		return "unknown"
	}
}

// DefparamEntry is one unresolved defparam override waiting in a scope's
// inbox. RelPath and Tail are kept apart because application resolves
// RelPath to a target Scope and then replaces the Tail-named parameter
// on it.
type DefparamEntry struct {
	RelPath name.HierName
	Tail    string
	Expr    Expr
}

// A Scope is a node in the design tree. It is built once by the scope
// elaborator and then consumed read-mostly; after parameter resolution
// runs, the only further mutation is parameter-value replacement.
type Scope struct {
	Name   name.Component
	Kind   Kind
	Parent *Scope

	children   map[string]*Scope // keyed by Name.String(), unique
	childOrder []name.Component  // insertion order, for deterministic iteration

	// ModuleTypeName is only meaningful when Kind == Module.
	ModuleTypeName string

	TimeUnit      int
	TimePrecision int

	Parameters  map[string]*ParamSlot
	paramOrder  []string
	Localparams map[string]*ParamSlot
	localOrder  []string

	DefparamInbox []DefparamEntry

	Signals map[string]struct{}
	Events  map[string]struct{}

	InstanceArrays map[string][]*Scope

	// GenvarTmp/GenvarTmpVal are non-empty only while this scope's
	// generate-for is unrolling; consumers of a finished scope see them
	// empty.
	GenvarTmp    string
	GenvarTmpVal *Const

	DefaultNettype ast.Nettype
}

// NewRoot creates a root module scope with the given instance name and
// module type.
func NewRoot(instanceName string, typeName string) *Scope {
	s := newScope(name.Make(instanceName), Module, nil)
	s.ModuleTypeName = typeName
	return s
}

func newScope(n name.Component, kind Kind, parent *Scope) *Scope {
	return &Scope{
		Name:           n,
		Kind:           kind,
		Parent:         parent,
		children:       map[string]*Scope{},
		Parameters:     map[string]*ParamSlot{},
		Localparams:    map[string]*ParamSlot{},
		Signals:        map[string]struct{}{},
		Events:         map[string]struct{}{},
		InstanceArrays: map[string][]*Scope{},
	}
}

// ErrDuplicateScope is returned by NewChild when name is already a child
// of parent.
type ErrDuplicateScope struct {
	Parent *Scope
	Name   name.Component
}

func (e *ErrDuplicateScope) Error() string {
	return "duplicate scope " + e.Name.String() + " in " + e.Parent.Path().String()
}

// NewChild creates a child scope under parent. It fails with
// *ErrDuplicateScope if name is already a child.
func NewChild(parent *Scope, n name.Component, kind Kind) (*Scope, error) {
	key := n.String()
	if _, ok := parent.children[key]; ok {
		return nil, &ErrDuplicateScope{Parent: parent, Name: n}
	}
	c := newScope(n, kind, parent)
	parent.children[key] = c
	parent.childOrder = append(parent.childOrder, n)
	return c, nil
}

// Child looks up an existing child scope by name component.
func (s *Scope) Child(n name.Component) (*Scope, bool) {
	c, ok := s.children[n.String()]
	return c, ok
}

// Children returns the scope's children in insertion order.
func (s *Scope) Children() []*Scope {
	out := make([]*Scope, 0, len(s.childOrder))
	for _, n := range s.childOrder {
		out = append(out, s.children[n.String()])
	}
	return out
}

// Path computes the HierName from the root down to this scope, as used
// in diagnostics.
func (s *Scope) Path() name.HierName {
	if s.Parent == nil {
		return name.HierName{s.Name}
	}
	return s.Parent.Path().Append(s.Name)
}

// PathStrings renders Path() as a slice of dotted-component strings, the
// shape hdl/errors.Error.Path expects for diagnostics.
func (s *Scope) PathStrings() []string {
	p := s.Path()
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.String()
	}
	return out
}

// HasModuleAncestor reports whether some ancestor (including s itself)
// is a module scope with the given module type name. Instantiating a
// module type below such an ancestor would recurse forever, so callers
// check this before creating a module child.
func (s *Scope) HasModuleAncestor(moduleType string) bool {
	for a := s; a != nil; a = a.Parent {
		if a.Kind == Module && a.ModuleTypeName == moduleType {
			return true
		}
	}
	return false
}

// SetParameter replaces the named parameter's slot, returning the
// previous slot if any. Placeholder insertion and lexical elaboration
// both install a value through it; whichever call happens first creates
// the entry.
func (s *Scope) SetParameter(sym string, slot *ParamSlot) *ParamSlot {
	prev := s.Parameters[sym]
	if prev == nil {
		s.paramOrder = append(s.paramOrder, sym)
	}
	s.Parameters[sym] = slot
	return prev
}

// ReplaceParameter overwrites an existing parameter's value in place,
// succeeding only if sym is already declared. It never creates a new
// parameter: instance overrides and defparams call it, and both are
// diagnosed, not fatal, when the target doesn't exist.
func (s *Scope) ReplaceParameter(sym string, value Expr) bool {
	slot, ok := s.Parameters[sym]
	if !ok {
		return false
	}
	slot.Value = value
	return true
}

// SetLocalparam installs a localparam slot.
func (s *Scope) SetLocalparam(sym string, slot *ParamSlot) {
	if _, ok := s.Localparams[sym]; !ok {
		s.localOrder = append(s.localOrder, sym)
	}
	s.Localparams[sym] = slot
}

// ParameterNames returns parameter names in declaration order.
func (s *Scope) ParameterNames() []string { return append([]string(nil), s.paramOrder...) }

// LocalparamNames returns localparam names in declaration order.
func (s *Scope) LocalparamNames() []string { return append([]string(nil), s.localOrder...) }

// AddSignal records a signal name in the scope.
func (s *Scope) AddSignal(sym string) { s.Signals[sym] = struct{}{} }

// AddEvent records a named event in the scope.
func (s *Scope) AddEvent(sym string) { s.Events[sym] = struct{}{} }

// FindSignal reports whether a signal by this name exists directly in
// the scope. Net elaboration, which would attach an actual net to the
// name, happens downstream of this core.
func (s *Scope) FindSignal(sym string) bool {
	_, ok := s.Signals[sym]
	return ok
}
