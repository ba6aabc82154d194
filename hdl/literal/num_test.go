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

package literal

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestParseNumPlainDecimal(t *testing.T) {
	n, err := ParseNum("42")
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.Equals(n.Base, 10))
	qt.Check(t, qt.Equals(n.Width, 0))
	qt.Check(t, qt.IsTrue(n.IsInt()))
	i, ierr := n.Value.Int64()
	qt.Assert(t, qt.IsNil(ierr))
	qt.Check(t, qt.Equals(i, int64(42)))
}

func TestParseNumSizedRadix(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		base   int
		width  int
		signed bool
		want   int64
	}{
		{"binary", "3'b101", 2, 3, false, 5},
		{"octal", "6'o17", 8, 6, false, 15},
		{"hex", "8'hFF", 16, 8, false, 255},
		{"signed_hex", "8'shFF", 16, 8, true, 255},
		{"explicit_decimal", "4'd9", 10, 4, false, 9},
		{"underscored_digits", "8'hF_F", 16, 8, false, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseNum(tt.in)
			qt.Assert(t, qt.IsNil(err))
			qt.Check(t, qt.Equals(n.Base, tt.base))
			qt.Check(t, qt.Equals(n.Width, tt.width))
			qt.Check(t, qt.Equals(n.Signed, tt.signed))
			i, ierr := n.Value.Int64()
			qt.Assert(t, qt.IsNil(ierr))
			qt.Check(t, qt.Equals(i, tt.want))
		})
	}
}

func TestParseNumReal(t *testing.T) {
	n, err := ParseNum("3.5")
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.IsFalse(n.IsInt()))
}

func TestParseNumErrors(t *testing.T) {
	tests := []string{"", "8'zFF", "8'h"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseNum(in)
			qt.Check(t, qt.IsNotNil(err))
		})
	}
}
