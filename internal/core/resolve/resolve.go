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

// Package resolve implements hierarchical-name lookup over a scope
// tree: Absolute lookup from a design's root scopes, and Relative
// lookup that climbs a scope's ancestors, honoring the source
// language's module-type up-reference rule. Defparam targets and
// hierarchical references inside expressions both resolve through the
// same two lookups.
package resolve

import (
	"github.com/gohdl/scopelab/internal/core/adt"
	"github.com/gohdl/scopelab/internal/core/name"
)

// TypeFilter optionally restricts the final resolved node to a given
// scope Kind.
type TypeFilter struct {
	Kind  adt.Kind
	Valid bool
}

// Any is the zero TypeFilter: no restriction.
var Any = TypeFilter{}

// ByKind builds a TypeFilter restricting to the given kind.
func ByKind(k adt.Kind) TypeFilter { return TypeFilter{Kind: k, Valid: true} }

func (f TypeFilter) accepts(s *adt.Scope) bool {
	return !f.Valid || s.Kind == f.Kind
}

// Absolute resolves p against the set of design root scopes: finds the
// root whose Name matches p's first component, then descends via Child
// for each remaining component. It fails if any step misses.
func Absolute(roots []*adt.Scope, p name.HierName) (*adt.Scope, bool) {
	if len(p) == 0 {
		return nil, false
	}
	var cur *adt.Scope
	for _, r := range roots {
		if r.Name.Equal(p[0]) {
			cur = r
			break
		}
	}
	if cur == nil {
		return nil, false
	}
	for _, c := range p[1:] {
		next, ok := cur.Child(c)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Relative resolves p starting from scope s, climbing ancestors. For
// each ancestor s', if s' is a module and either the filter requires a
// module or p has more than one component, and the module type of s' matches
// p's head text, the head is treated as an up-reference by module type
// and the tail is descended against s'. Otherwise s'.Child(p.head) and
// its tail are descended. The first ancestor for which descent succeeds
// wins; if none succeed, falls back to Absolute against roots. The
// module-type match lets a name like top.inner.x resolve when top is
// the type of the enclosing module rather than its instance name.
func Relative(roots []*adt.Scope, s *adt.Scope, p name.HierName, filter TypeFilter) (*adt.Scope, bool) {
	if len(p) == 0 {
		return nil, false
	}

	for anc := s; anc != nil; anc = anc.Parent {
		if anc.Kind == adt.Module {
			typeMatch := filter.Valid && filter.Kind == adt.Module
			typeMatch = typeMatch || len(p) > 1
			if typeMatch && anc.ModuleTypeName == p.Front().PeekName() {
				if target, ok := descend(anc, p[1:]); ok && filter.accepts(target) {
					return target, true
				}
				continue
			}
		}
		if target, ok := descend(anc, p); ok && filter.accepts(target) {
			return target, true
		}
	}

	if target, ok := Absolute(roots, p); ok && filter.accepts(target) {
		return target, true
	}
	return nil, false
}

func descend(start *adt.Scope, tail name.HierName) (*adt.Scope, bool) {
	cur := start
	for _, c := range tail {
		next, ok := cur.Child(c)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
