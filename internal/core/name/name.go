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

// Package name implements the hierarchical-name primitive every scope,
// signal, and parameter is addressed by: an ordered sequence of
// components, each a text plus an optional integer index. A component's
// index, when present, distinguishes one element of an array of module
// instances or one iteration of a generate-for from its siblings.
package name

import (
	"fmt"
	"strings"
)

// Component is one element of a HierName: a name plus an optional
// integer index.
type Component struct {
	text   string
	index  int
	hasIdx bool
}

// Make creates a Component with no index.
func Make(text string) Component {
	return Component{text: text}
}

// MakeIndexed creates a Component with an explicit index, as used for
// an array-instance element or a generate-for iteration's synthesized
// child name.
func MakeIndexed(text string, index int) Component {
	return Component{text: text, index: index, hasIdx: true}
}

// PeekName returns the component's text.
func (c Component) PeekName() string { return c.text }

// HasNumber reports whether the component carries an index.
func (c Component) HasNumber() bool { return c.hasIdx }

// PeekNumber returns the component's index. It panics if HasNumber is false.
func (c Component) PeekNumber() int {
	if !c.hasIdx {
		panic("name: component has no index")
	}
	return c.index
}

// Equal reports whether two components are identical: same text and same
// (absent-or-equal) index.
func (c Component) Equal(d Component) bool {
	return c.text == d.text && c.hasIdx == d.hasIdx && (!c.hasIdx || c.index == d.index)
}

// Less orders components: text first (lexicographic), then index with
// "no index" sorting before any integer index.
func (c Component) Less(d Component) bool {
	if c.text != d.text {
		return c.text < d.text
	}
	if c.hasIdx != d.hasIdx {
		return !c.hasIdx // no-index < any index
	}
	if !c.hasIdx {
		return false
	}
	return c.index < d.index
}

// String renders "name" or "name[index]".
func (c Component) String() string {
	if c.hasIdx {
		return fmt.Sprintf("%s[%d]", c.text, c.index)
	}
	return c.text
}

// HierName is an ordered sequence of Components. The empty sequence is
// a valid HierName: it names the root.
type HierName []Component

// Append returns a new HierName with c appended.
func (h HierName) Append(c Component) HierName {
	out := make(HierName, len(h)+1)
	copy(out, h)
	out[len(h)] = c
	return out
}

// PopTail returns the HierName without its last component, and that
// component. It panics on an empty HierName.
func (h HierName) PopTail() (HierName, Component) {
	if len(h) == 0 {
		panic("name: PopTail on empty HierName")
	}
	return h[:len(h)-1], h[len(h)-1]
}

// Front returns the first component. It panics on an empty HierName.
func (h HierName) Front() Component { return h[0] }

// Back returns the last component. It panics on an empty HierName.
func (h HierName) Back() Component { return h[len(h)-1] }

// HasPrefix reports whether p is a prefix of h.
func (h HierName) HasPrefix(p HierName) bool {
	if len(p) > len(h) {
		return false
	}
	for i := range p {
		if !h[i].Equal(p[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether h and g name the same path.
func (h HierName) Equal(g HierName) bool {
	if len(h) != len(g) {
		return false
	}
	for i := range h {
		if !h[i].Equal(g[i]) {
			return false
		}
	}
	return true
}

// Less orders HierNames componentwise, shorter prefixes first.
func (h HierName) Less(g HierName) bool {
	for i := 0; i < len(h) && i < len(g); i++ {
		if h[i].Equal(g[i]) {
			continue
		}
		return h[i].Less(g[i])
	}
	return len(h) < len(g)
}

// String renders the dotted form, e.g. "top.g[1].u".
func (h HierName) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, ".")
}
