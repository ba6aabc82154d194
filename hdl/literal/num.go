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

// Package literal parses the numeric literal tokens the front-end
// hands to the elaboration core. Source-language integer literals carry
// their own width, radix and signedness (`8'hFF`, `3'b101`, `42`), so
// NumInfo reports those alongside the value.
package literal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// NumInfo is the parsed form of a numeric literal.
type NumInfo struct {
	Width  int  // bit width; 0 means unsized
	Signed bool // explicit 's' radix flag
	Base   int  // 2, 8, 10, or 16
	Value  apd.Decimal
}

// IsInt reports whether the literal has no fractional/exponent part.
func (n *NumInfo) IsInt() bool {
	return n.Value.Exponent >= 0
}

// ParseNum parses a source numeric literal of the form
//
//	[<width>'[s]<radix>]<digits>
//
// where radix is one of b/o/d/h (binary/octal/decimal/hex, case
// insensitive), width and the tick-radix prefix are optional (bare decimal
// literals, e.g. "42" or "3.5", are unsized decimal), and digits may
// contain '_' separators which are ignored.
func ParseNum(s string) (NumInfo, error) {
	var n NumInfo
	n.Base = 10

	rest := s
	if i := strings.IndexByte(s, '\''); i >= 0 {
		widthPart := s[:i]
		if widthPart != "" {
			w, err := strconv.Atoi(widthPart)
			if err != nil || w <= 0 {
				return n, fmt.Errorf("literal: invalid width %q", widthPart)
			}
			n.Width = w
		}
		rest = s[i+1:]
		if rest == "" {
			return n, fmt.Errorf("literal: missing radix after '")
		}
		if rest[0] == 's' || rest[0] == 'S' {
			n.Signed = true
			rest = rest[1:]
		}
		if rest == "" {
			return n, fmt.Errorf("literal: missing radix after '")
		}
		switch rest[0] {
		case 'b', 'B':
			n.Base = 2
		case 'o', 'O':
			n.Base = 8
		case 'd', 'D':
			n.Base = 10
		case 'h', 'H':
			n.Base = 16
		default:
			return n, fmt.Errorf("literal: unknown radix %q", rest[:1])
		}
		rest = rest[1:]
	}

	digits := strings.ReplaceAll(rest, "_", "")
	if digits == "" {
		return n, fmt.Errorf("literal: no digits in %q", s)
	}

	if n.Base == 10 {
		if _, _, err := n.Value.SetString(digits); err != nil {
			return n, fmt.Errorf("literal: invalid decimal %q: %w", digits, err)
		}
		return n, nil
	}

	neg := false
	if strings.HasPrefix(digits, "-") {
		neg = true
		digits = digits[1:]
	}
	if _, ok := n.Value.Coeff.SetString(digits, n.Base); !ok {
		return n, fmt.Errorf("literal: invalid base-%d digits %q", n.Base, digits)
	}
	n.Value.Negative = neg
	return n, nil
}
