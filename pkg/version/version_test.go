// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr error
	}{
		{name: "major only", input: "1", want: Version{Major: 1, Precision: 1}},
		{name: "major minor", input: "1.0", want: Version{Major: 1, Minor: 0, Precision: 2}},
		{name: "full", input: "1.2.3", want: Version{Major: 1, Minor: 2, Patch: 3, Precision: 3}},
		{name: "v prefix", input: "v2.1", want: Version{Major: 2, Minor: 1, Precision: 2}},
		{name: "empty", input: "", wantErr: ErrEmptyVersion},
		{name: "too many", input: "1.2.3.4", wantErr: ErrTooManyComponents},
		{name: "letters", input: "1.x", wantErr: ErrNonNumeric},
		{name: "empty component", input: "1..2", wantErr: ErrNonNumeric},
		{name: "sign", input: "+1", wantErr: ErrNonNumeric},
		{name: "negative", input: "1.-2", wantErr: ErrNonNumeric},
		{name: "whitespace", input: " 1.0", wantErr: ErrNonNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "1", MustParseVersion("1").String())
	assert.Equal(t, "1.0", MustParseVersion("1.0").String())
	assert.Equal(t, "1.0.0", NewVersion(1, 0, 0).String())
	assert.Equal(t, "1.0", Current().String())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"2", "1.9", 1},
		{"1", "1.9.9", 0},
		{"1.2.3", "1.2.4", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParseVersion(tt.a).Compare(MustParseVersion(tt.b)))
		})
	}
}

func TestCheckCompatible(t *testing.T) {
	for _, s := range []string{"1", "1.0", "1.7", "v1.0.3"} {
		_, err := CheckCompatible(s)
		assert.NoError(t, err, s)
	}

	_, err := CheckCompatible("2.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = CheckCompatible("0.9")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = CheckCompatible("one")
	assert.ErrorIs(t, err, ErrNonNumeric)
}

func TestMustParseVersionPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseVersion("bad") })
}

func BenchmarkParseVersion(b *testing.B) {
	inputs := []string{"1", "1.0", "v1.0.2"}
	for i := 0; b.Loop(); i++ {
		_, _ = ParseVersion(inputs[i%len(inputs)])
	}
}
