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

import "github.com/gohdl/scopelab/hdl/token"

// A ParamSlot is one parameter or localparam's state. Value progresses
// monotonically through the three ExprState stages; Msb/Lsb follow the
// same Expr representation but may be nil (no declared range).
type ParamSlot struct {
	Value  Expr
	Msb    Expr
	Lsb    Expr
	Signed bool
	Origin token.Pos
}

// State reports where Value currently sits in the placeholder →
// elaborated → constant progression.
func (p *ParamSlot) State() ExprState {
	switch p.Value.(type) {
	case *Placeholder:
		return StatePlaceholder
	case *Const:
		return StateConstant
	default:
		return StateElaborated
	}
}

// HasRange reports whether a bit range was declared. Elaboration
// maintains that Msb present implies Lsb present, so this reports on
// Msb alone.
func (p *ParamSlot) HasRange() bool { return p.Msb != nil }
