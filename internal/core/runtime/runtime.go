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

// Package runtime wires the pieces a design-wide elaboration run
// shares: the root scope list, the Evaluator every pass calls through,
// and the single diagnostic list whose length is the run's error count.
package runtime

import (
	"github.com/gohdl/scopelab/hdl/errors"
	"github.com/gohdl/scopelab/internal/core/adt"
	"github.com/gohdl/scopelab/internal/core/constfold"
)

// Runtime is the shared state one elaboration run threads through
// ScopeElaborator and ParameterResolver.
type Runtime struct {
	// Roots accumulates every root MODULE scope created for this run.
	// It is a field rather than a local slice because constfold.Evaluator
	// holds a pointer to it: a HierRef elaborated while root B is being
	// built must still be able to resolve into root A.
	Roots []*adt.Scope

	Eval adt.Evaluator
	Errs errors.List
}

// New creates a Runtime with the default constfold.Evaluator wired to
// its own Roots slice.
func New() *Runtime {
	rt := &Runtime{}
	rt.Eval = constfold.New(&rt.Roots)
	return rt
}

// AddRoot registers a newly created root scope so later HierRef lookups
// (and Absolute resolution) can see it.
func (rt *Runtime) AddRoot(s *adt.Scope) {
	rt.Roots = append(rt.Roots, s)
}

// ErrorCount reports the design-wide diagnostic count. A run succeeded
// iff this is zero once every root module has been elaborated and
// resolved.
func (rt *Runtime) ErrorCount() int {
	return rt.Errs.Len()
}

// TimePrecisionConsistent reports whether every root's time precision
// is no coarser than that of each module scope below it. Individual
// scopes can't check this relation themselves; it only holds or fails
// design-wide.
func (rt *Runtime) TimePrecisionConsistent() bool {
	for _, root := range rt.Roots {
		if !precisionHolds(root, root.TimePrecision) {
			return false
		}
	}
	return true
}

func precisionHolds(s *adt.Scope, rootPrec int) bool {
	if s.Kind == adt.Module && rootPrec > s.TimePrecision {
		return false
	}
	for _, c := range s.Children() {
		if !precisionHolds(c, rootPrec) {
			return false
		}
	}
	return true
}
