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
	"fmt"
	"strconv"
	"strings"

	"github.com/NVIDIA/gridserde/pkg/defaults"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrUnsupported       = errors.New("unsupported format version")
)

// Version is a dataset wire format version. Precision records how many
// components were written (1, 2 or 3) so "1.0" prints back as "1.0".
type Version struct {
	Major     int `json:"major" yaml:"major"`
	Minor     int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch     int `json:"patch,omitempty" yaml:"patch,omitempty"`
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`
}

// NewVersion creates a Version with all three components significant.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Precision: 3}
}

// Current returns the version this build writes.
func Current() Version {
	return MustParseVersion(defaults.FormatVersion)
}

// String returns the version respecting its precision.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// ParseVersion parses "1", "1.0", "1.0.2" with an optional "v" prefix.
// Surrounding whitespace is not accepted; every component must be a
// non-negative decimal integer.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	var comps [3]int
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
			}
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		comps[i] = num
	}

	return Version{
		Major:     comps[0],
		Minor:     comps[1],
		Patch:     comps[2],
		Precision: len(parts),
	}, nil
}

// MustParseVersion parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1 comparing v and other up to the lower of the
// two precisions.
func (v Version) Compare(other Version) int {
	precision := min(v.Precision, other.Precision)

	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for i := 0; i < precision && i < len(pairs); i++ {
		switch {
		case pairs[i][0] < pairs[i][1]:
			return -1
		case pairs[i][0] > pairs[i][1]:
			return 1
		}
	}
	return 0
}

// IsValid returns true if all components are non-negative and precision
// is 1, 2, or 3.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}

// IsCompatible reports whether data written with v can be read by this
// build. Only the major version must match; newer minor versions may add
// keys the reader ignores.
func (v Version) IsCompatible() bool {
	return v.IsValid() && v.Major == defaults.FormatMajorVersion
}

// CheckCompatible parses s and fails with ErrUnsupported when the major
// version differs from the one this build reads.
func CheckCompatible(s string) (Version, error) {
	v, err := ParseVersion(s)
	if err != nil {
		return Version{}, err
	}
	if !v.IsCompatible() {
		return v, fmt.Errorf("%w: %s (supported major version %d)", ErrUnsupported, v, defaults.FormatMajorVersion)
	}
	return v, nil
}
