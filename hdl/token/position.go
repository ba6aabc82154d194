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

// Package token holds the source positions attached to diagnostics produced
// by the elaboration core. The front-end that parses source text is a named
// collaborator outside this core's scope, so, unlike a full compiler's
// token package, Pos here is not backed by a FileSet capable of recovering
// arbitrary byte offsets: it only needs to survive being copied into a
// diagnostic and printed.
package token

import "fmt"

// Pos is a printable source position: a file name plus a line and column.
// The zero value is NoPos.
type Pos struct {
	Filename string
	Line     int // starting at 1; 0 means invalid
	Column   int // starting at 1
}

// NoPos is the zero Pos, reported for synthesized nodes that have no
// source location (for instance, a constant with no source expression).
var NoPos = Pos{}

// IsValid reports whether the position is valid.
func (p Pos) IsValid() bool { return p.Line > 0 }

// String returns a human-readable form of the position, in one of:
//
//	file:line:column    valid position with file name
//	line:column         valid position without file name
//	file                invalid position with file name
//	-                   invalid position without file name
func (p Pos) String() string {
	s := p.Filename
	if p.IsValid() {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	if s == "" {
		s = "-"
	}
	return s
}

// Compare orders positions by filename, then line, then column, placing
// NoPos first. It is used to keep diagnostic lists sorted deterministically.
func (p Pos) Compare(q Pos) int {
	if p == q {
		return 0
	}
	if p == NoPos {
		return -1
	}
	if q == NoPos {
		return 1
	}
	if p.Filename != q.Filename {
		if p.Filename < q.Filename {
			return -1
		}
		return 1
	}
	if p.Line != q.Line {
		return p.Line - q.Line
	}
	return p.Column - q.Column
}
