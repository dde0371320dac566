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

package codec

import (
	"bytes"

	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/errors"
)

// Codec converts between raw bytes and the intermediate tree. Tree nodes
// are nil, bool, int64, uint64 (only above math.MaxInt64), float64, string,
// []any and *Map. Codecs know nothing about datasets or schemas.
type Codec interface {
	// Name returns the format name ("json", "msgpack").
	Name() string
	// Decode parses data into a tree. Every failure is an
	// ErrCodeMalformedInput error carrying the input position.
	Decode(data []byte) (any, error)
	// Encode renders a tree. Indentation applies to text formats only.
	Encode(v any, opts EncodeOptions) ([]byte, error)
}

// EncodeOptions control rendering.
type EncodeOptions struct {
	// Indent is the number of spaces per nesting level. Zero or negative
	// means no inserted whitespace.
	Indent int
}

// Limits bound what a decoder accepts.
type Limits struct {
	// MaxDepth is the deepest container nesting accepted.
	MaxDepth int
}

// DefaultLimits returns the limits used when none are given.
func DefaultLimits() Limits {
	return Limits{MaxDepth: defaults.MaxDepth}
}

func (l Limits) normalized() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = defaults.MaxDepth
	}
	return l
}

// Option configures a codec.
type Option func(*config)

type config struct {
	limits Limits
}

// WithLimits sets decoder limits.
func WithLimits(l Limits) Option {
	return func(c *config) {
		c.limits = l.normalized()
	}
}

func newConfig(opts []Option) config {
	c := config{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// textPosition converts a byte offset into a 1-based line and column.
func textPosition(data []byte, offset int64) errors.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := int(offset) - (bytes.LastIndexByte(prefix, '\n') + 1) + 1
	return errors.Position{Line: line, Column: col, Offset: offset}
}

func malformed(msg string, pos errors.Position) error {
	return errors.New(errors.ErrCodeMalformedInput, msg).WithPosition(pos)
}

func malformedWrap(msg string, cause error, pos errors.Position) error {
	return errors.Wrap(errors.ErrCodeMalformedInput, msg, cause).WithPosition(pos)
}
