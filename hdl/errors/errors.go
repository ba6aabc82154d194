// Copyright 2018 The CUE Authors
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

// Package errors defines the diagnostic type shared by every pass of
// the elaboration core: scope elaboration and parameter resolution both
// accumulate these into a single design-wide list rather than panicking
// or returning early.
package errors

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/gohdl/scopelab/hdl/token"
)

// Kind classifies a diagnostic. A Fatal kind means the construct that
// produced it was skipped (the enclosing module's elaboration is
// incomplete); a non-fatal kind means elaboration continued regardless.
type Kind int

const (
	_ Kind = iota

	// ParseAssumptionViolated: the front-end handed the core a
	// structurally impossible Module description (missing expression,
	// malformed declaration). Fatal.
	ParseAssumptionViolated
	// DuplicateScope: two siblings would share a (name, index) key. Fatal.
	DuplicateScope
	// RecursiveInstantiation: a MODULE ancestor shares this instance's
	// module type. Fatal.
	RecursiveInstantiation
	// UnevaluableGenvar: a generate-for's init/test/step did not reduce
	// to a constant. Fatal.
	UnevaluableGenvar
	// UnevaluableParameter: eval_tree failed on a parameter's final
	// value. Non-fatal; the slot is left lexically elaborated.
	UnevaluableParameter
	// UnknownOverrideTarget: a named override or defparam names a
	// parameter the target scope doesn't have. Non-fatal.
	UnknownOverrideTarget
	// UnknownScopePath: a defparam's relative path resolved to nothing. Non-fatal.
	UnknownScopePath
	// TypeMismatch: the evaluator reported a type it doesn't recognize. Non-fatal.
	TypeMismatch
)

// Fatal reports whether a diagnostic of this kind aborts the construct
// being elaborated.
func (k Kind) Fatal() bool {
	switch k {
	case ParseAssumptionViolated, DuplicateScope, RecursiveInstantiation, UnevaluableGenvar:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case ParseAssumptionViolated:
		return "parse assumption violated"
	case DuplicateScope:
		return "duplicate scope"
	case RecursiveInstantiation:
		return "recursive instantiation"
	case UnevaluableGenvar:
		return "unevaluable genvar"
	case UnevaluableParameter:
		return "unevaluable parameter"
	case UnknownOverrideTarget:
		return "unknown override target"
	case UnknownScopePath:
		return "unknown scope path"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "error"
	}
}

// An Error is the diagnostic interface produced by this core. Path returns
// the hierarchical-name path (see internal/core/name) of the scope the
// diagnostic occurred in, one rendered component per element, for use in
// rendering.
type Error interface {
	error
	Kind() Kind
	Position() token.Pos
	Path() []string
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Newf creates a diagnostic of the given kind at the given position.
func Newf(kind Kind, pos token.Pos, path []string, format string, args ...interface{}) Error {
	return &diag{
		kind: kind,
		pos:  pos,
		path: append([]string(nil), path...),
		msg:  fmt.Sprintf(format, args...),
	}
}

type diag struct {
	kind Kind
	pos  token.Pos
	path []string
	msg  string
}

func (e *diag) Kind() Kind { return e.kind }
func (e *diag) Position() token.Pos { return e.pos }
func (e *diag) Path() []string { return e.path }

func (e *diag) Error() string {
	if e.pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.pos, e.kind, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// A List aggregates the diagnostics accumulated over an elaboration
// run. The zero value is an empty, ready-to-use list; a whole design
// shares one.
type List []Error

// Add appends a diagnostic.
func (l *List) Add(err Error) { *l = append(*l, err) }

// AddNewf is a convenience wrapper around Newf+Add.
func (l *List) AddNewf(kind Kind, pos token.Pos, path []string, format string, args ...interface{}) {
	l.Add(Newf(kind, pos, path, format, args...))
}

// HasFatal reports whether any accumulated diagnostic is of a fatal
// kind.
func (l List) HasFatal() bool {
	for _, e := range l {
		if e.Kind().Fatal() {
			return true
		}
	}
	return false
}

// Len reports the number of accumulated diagnostics.
func (l List) Len() int { return len(l) }

// Sort orders diagnostics by position, then path, then message, for
// deterministic rendering.
func (l List) Sort() {
	slices.SortFunc(l, func(a, b Error) int {
		if c := a.Position().Compare(b.Position()); c != 0 {
			return c
		}
		if c := slices.Compare(a.Path(), b.Path()); c != 0 {
			return c
		}
		return cmp.Compare(a.Error(), b.Error())
	})
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}
