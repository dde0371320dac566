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

package serializer

import (
	"github.com/NVIDIA/gridserde/pkg/codec"
	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/schema"
)

// Option configures a Deserializer, a Serializer or a single Dump call.
type Option func(*options)

type options struct {
	registry    *schema.Registry
	limits      codec.Limits
	compactList bool
	indent      int
}

func newOptions(opts []Option) options {
	o := options{
		limits: codec.DefaultLimits(),
		indent: defaults.DefaultIndent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = schema.Default()
	}
	return o
}

// with returns a copy of o with opts applied on top.
func (o options) with(opts []Option) options {
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = schema.Default()
	}
	return o
}

// WithRegistry sets the schema registry used to resolve dataset types,
// components and attributes. Defaults to schema.Default().
func WithRegistry(reg *schema.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithLimits sets the decoder limits.
func WithLimits(l codec.Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithCompactList writes batch components as a single {"indptr", "data"}
// map instead of one list per scenario. Ignored for single datasets.
func WithCompactList(compact bool) Option {
	return func(o *options) {
		o.compactList = compact
	}
}

// WithIndent sets the number of spaces per nesting level of text output.
// Zero or negative produces no inserted whitespace. Ignored for binary
// formats.
func WithIndent(indent int) Option {
	return func(o *options) {
		o.indent = indent
	}
}
