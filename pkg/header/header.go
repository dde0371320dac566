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

package header

import (
	"fmt"
	"log/slog"

	"github.com/NVIDIA/gridserde/pkg/codec"
	"github.com/NVIDIA/gridserde/pkg/defaults"
	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/version"
)

// Top-level keys of a serialized dataset, in emit order.
const (
	KeyVersion    = "version"
	KeyType       = "type"
	KeyIsBatch    = "is_batch"
	KeyAttributes = "attributes"
	KeyData       = "data"
)

// Header is the envelope around the component data of a serialized dataset.
type Header struct {
	// Version is the wire format version.
	Version string `json:"version" yaml:"version"`

	// Type is the dataset type name.
	Type string `json:"type" yaml:"type"`

	// IsBatch tells whether component data holds one list per scenario.
	IsBatch bool `json:"is_batch" yaml:"is_batch"`
}

// Option is a functional option for configuring Header instances.
type Option func(*Header)

// WithType sets the dataset type.
func WithType(t string) Option {
	return func(h *Header) {
		h.Type = t
	}
}

// WithBatch sets the batch flag.
func WithBatch(batch bool) Option {
	return func(h *Header) {
		h.IsBatch = batch
	}
}

// New creates a Header for the current format version.
func New(opts ...Option) *Header {
	h := &Header{Version: defaults.FormatVersion}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Tree builds the top-level map with data as the "data" entry. The
// attributes entry is always an empty map; decoders ignore it.
func (h *Header) Tree(data any) *codec.Map {
	root := codec.NewMap(5)
	root.Set(KeyVersion, h.Version)
	root.Set(KeyType, h.Type)
	root.Set(KeyIsBatch, h.IsBatch)
	root.Set(KeyAttributes, codec.NewMap(0))
	root.Set(KeyData, data)
	return root
}

// Parse reads the envelope from a decoded tree and returns it with the
// "data" node. The version, when present, must be a compatible string;
// "type" must be a string; "is_batch" is optional and defaults to false.
// Unknown top-level keys are ignored.
func Parse(root any) (*Header, any, error) {
	m, ok := root.(*codec.Map)
	if !ok {
		return nil, nil, errors.Newf(errors.ErrCodeTypeMismatch,
			"top level must be a map, got %s", codec.Kind(root))
	}

	h := New()

	if v, ok := m.Get(KeyVersion); ok {
		s, ok := v.(string)
		if !ok {
			return nil, nil, errors.NewWithContext(errors.ErrCodeTypeMismatch,
				fmt.Sprintf("version must be a string, got %s", codec.Kind(v)),
				map[string]any{"path": KeyVersion})
		}
		if _, err := version.CheckCompatible(s); err != nil {
			return nil, nil, errors.WrapWithContext(errors.ErrCodeNotSupported,
				fmt.Sprintf("unsupported format version %q", s), err,
				map[string]any{"path": KeyVersion})
		}
		h.Version = s
	}

	t, ok := m.Get(KeyType)
	if !ok {
		return nil, nil, errors.NewWithContext(errors.ErrCodeUnknownDatasetType,
			"missing dataset type", map[string]any{"path": KeyType})
	}
	if h.Type, ok = t.(string); !ok {
		return nil, nil, errors.NewWithContext(errors.ErrCodeTypeMismatch,
			fmt.Sprintf("type must be a string, got %s", codec.Kind(t)),
			map[string]any{"path": KeyType})
	}

	if b, ok := m.Get(KeyIsBatch); ok {
		if h.IsBatch, ok = b.(bool); !ok {
			return nil, nil, errors.NewWithContext(errors.ErrCodeTypeMismatch,
				fmt.Sprintf("is_batch must be a boolean, got %s", codec.Kind(b)),
				map[string]any{"path": KeyIsBatch})
		}
	}

	data, ok := m.Get(KeyData)
	if !ok {
		return nil, nil, errors.NewWithContext(errors.ErrCodeTypeMismatch,
			"missing data", map[string]any{"path": KeyData})
	}

	m.Range(func(k string, _ any) bool {
		switch k {
		case KeyVersion, KeyType, KeyIsBatch, KeyAttributes, KeyData:
		default:
			slog.Debug("ignoring unknown top-level key", "key", k)
		}
		return true
	})

	return h, data, nil
}
