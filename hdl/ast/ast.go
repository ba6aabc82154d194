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

// Package ast defines the parsed-description tree the elaboration core
// consumes from its front-end collaborator. It is pure data: a closed
// set of node types with no behavior, covering the source language's
// module/task/function/generate/defparam shape.
package ast

import "github.com/gohdl/scopelab/hdl/token"

// Nettype is the default net type in force for a scope.
type Nettype int

const (
	NettypeWire Nettype = iota
	NettypeTri
	NettypeNone // `default_nettype none`: implicit nets are an error
)

// A Module is the front-end's parsed form of one module definition,
// the unit compile.Elaborator.ElaborateModule consumes.
type Module struct {
	Name           string
	Parameters     []ParamDecl // declaration order preserved
	Localparams    []ParamDecl
	Defparams      []DefparamDecl
	Tasks          []TaskDecl
	Functions      []TaskDecl
	Instances      []Instance
	Generates      []GenerateScheme
	Behaviors      []Behavior
	Events         []string
	Attributes     map[string][]Expr
	TimeUnit       int
	TimePrecision  int
	DefaultNettype Nettype
	Pos            token.Pos
}

// A ParamDecl is one parameter or localparam declaration: an expression
// plus optional msb/lsb range expressions and an explicit signed flag.
type ParamDecl struct {
	Name   string
	Value  Expr
	Msb    Expr // nil if no range declared
	Lsb    Expr
	Signed bool
	Pos    token.Pos
}

// A DefparamDecl assigns a parameter in a hierarchically named target
// scope, relative to the module it's declared in.
type DefparamDecl struct {
	Path  HierPath // relative path to the target scope
	Tail  string   // name of the parameter within that scope
	Value Expr
	Pos   token.Pos
}

// A HierPath is a parsed hierarchical name as it appears in source, e.g.
// in a defparam or a scope-relative reference. Each component may carry
// an index for array-instance references, e.g. "m[2].u".
type HierPath []HierPathComponent

type HierPathComponent struct {
	Name     string
	Index    int
	HasIndex bool
}

// TaskKind distinguishes a task declaration from a function declaration.
type TaskKind int

const (
	KindTask TaskKind = iota
	KindFunction
)

// A TaskDecl is a task or function declaration. Ports are inserted as
// signals in the new scope before the body is descended into.
type TaskDecl struct {
	Kind  TaskKind
	Name  string
	Ports []string
	Body  []Behavior
	Pos   token.Pos
}

// An Instance is a gate/module-instantiation record. Exactly one of
// Positional or Named is non-nil.
type Instance struct {
	Name       string
	ModuleType string
	Range      *InstanceRange // non-nil for an instance array
	Positional []Expr
	Named      map[string]Expr
	Pos        token.Pos
}

// An InstanceRange is an instance array's declared [msb:lsb], kept as
// expressions rather than a bare count: the direction of the range
// (ascending or descending) determines the index assigned to each
// array element.
type InstanceRange struct {
	Msb Expr
	Lsb Expr
}

// A GenerateScheme is one generate-for/if/else construct.
type GenerateScheme struct {
	Kind GenerateKind
	// Label names the generated block. If empty, elaboration
	// synthesizes "genblkN", counted per enclosing scope.
	Label string

	// Loop fields.
	GenvarName string
	Init       Expr // assignment RHS for the genvar's initial value
	Test       Expr
	Step       Expr // assignment RHS applied to the genvar after each iteration

	// If/Else field.
	Condition Expr

	Body []ModuleItem
	Pos  token.Pos
}

type GenerateKind int

const (
	GenerateLoop GenerateKind = iota
	GenerateIf
	GenerateElse
)

// A ModuleItem is anything that may appear in a generate body or directly
// in a module body below the declaration sections: an instance, a nested
// generate scheme, a nested task/function declaration, or a localparam
// declaration.
type ModuleItem struct {
	Instance   *Instance
	Generate   *GenerateScheme
	Task       *TaskDecl
	Localparam *ParamDecl
}

// A Behavior is one always/initial block.
type Behavior struct {
	IsInitial bool
	Stmt      Stmt
	Pos       token.Pos
}
