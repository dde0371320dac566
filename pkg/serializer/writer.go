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
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/NVIDIA/gridserde/pkg/codec"
	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/header"
	"github.com/NVIDIA/gridserde/pkg/schema"
)

// Serializer renders a Dataset in one wire format. Every precondition is
// checked by NewSerializer, so Dump only fails on encoder errors.
type Serializer struct {
	mu          sync.Mutex
	datasetType string
	ds          *dataset.Dataset
	format      Format
	codec       codec.Codec
	opts        options
	closed      bool
}

// NewSerializer validates ds for serialization as datasetType. Sparse
// components are rejected with ErrCodeNotSupported; convert them with
// dataset.ToDense (or dataset.Canonicalize) first.
func NewSerializer(datasetType string, ds *dataset.Dataset, format Format, opts ...Option) (*Serializer, error) {
	o := newOptions(opts)
	c, err := newCodec(format, o.limits)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "dataset is nil")
	}
	if _, ok := o.registry.Dataset(datasetType); !ok {
		return nil, errors.NewWithContext(errors.ErrCodeUnknownDatasetType,
			fmt.Sprintf("unknown dataset type %q", datasetType),
			map[string]any{"known": o.registry.DatasetTypes()})
	}
	if ds.Type() != datasetType {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("dataset is of type %q, not %q", ds.Type(), datasetType),
			map[string]any{"dataset_type": ds.Type()})
	}
	for _, a := range ds.Components() {
		if a.Layout() == dataset.LayoutSparse {
			return nil, errors.NewWithContext(errors.ErrCodeNotSupported,
				fmt.Sprintf("component %q is sparse; only dense datasets can be serialized", a.Component().Name),
				map[string]any{"component": a.Component().Name})
		}
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	return &Serializer{
		datasetType: datasetType,
		ds:          ds,
		format:      format,
		codec:       c,
		opts:        o,
	}, nil
}

// Format returns the output wire format.
func (s *Serializer) Format() Format {
	return s.format
}

// Dump renders the dataset. Options given here override those passed to
// NewSerializer for this call only. The output is built in memory; on
// failure nothing is returned.
func (s *Serializer) Dump(opts ...Option) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "serializer is closed")
	}

	start := time.Now()
	o := s.opts.with(opts)
	out, err := s.codec.Encode(s.tree(o), codec.EncodeOptions{Indent: o.indent})
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, "failed to encode dataset", err)
		out = nil
	}
	observe(operationSerialize, s.format, start, len(out), err)
	if err != nil {
		return nil, err
	}

	slog.Debug("dataset serialized",
		"format", s.format,
		"type", s.datasetType,
		"bytes", len(out),
		"compact_list", o.compactList,
		"duration", time.Since(start))
	return out, nil
}

// DumpString is Dump for text formats.
func (s *Serializer) DumpString(opts ...Option) (string, error) {
	b, err := s.Dump(opts...)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Close releases the dataset reference. It is safe to call Close multiple
// times. Dump fails after Close.
func (s *Serializer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.ds = nil
	return nil
}

func (s *Serializer) tree(o options) *codec.Map {
	batch := s.ds.IsBatch()
	h := header.New(header.WithType(s.datasetType), header.WithBatch(batch))

	data := codec.NewMap(s.ds.Len())
	for _, a := range s.ds.Components() {
		data.Set(a.Component().Name, componentTree(a, batch, o.compactList))
	}
	return h.Tree(data)
}

// componentTree lays out one component. Single datasets write a flat list;
// batches write one list per scenario or, with compactList, the indptr map.
func componentTree(a dataset.ComponentArray, batch, compactList bool) any {
	c := a.Component()
	if !batch {
		return recordList(a.Scenario(0), c)
	}

	if compactList {
		s := dataset.ToSparse(a)
		indptr := make([]any, len(s.Indptr()))
		for i, p := range s.Indptr() {
			indptr[i] = p
		}
		m := codec.NewMap(2)
		m.Set(keyIndptr, indptr)
		m.Set(keyData, recordList(s.Records(), c))
		return m
	}

	scenarios := make([]any, a.BatchSize())
	for i := range scenarios {
		scenarios[i] = recordList(a.Scenario(i), c)
	}
	return scenarios
}

func recordList(records []dataset.Record, c *schema.Component) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = recordTree(r, c)
	}
	return out
}

// recordTree writes the set attributes of r in schema order.
func recordTree(r dataset.Record, c *schema.Component) *codec.Map {
	m := codec.NewMap(len(r))
	for i, attr := range c.Attributes {
		v := r[i]
		if !dataset.IsSet(v) {
			continue
		}
		m.Set(attr.Name, treeValue(v))
	}
	return m
}

// treeValue maps an attribute value onto a tree node. Integers widen to
// int64; NaN phases of a three-phase value become null.
func treeValue(v any) any {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case int8:
		return int64(x)
	case dataset.ID:
		return int64(x)
	case [3]float64:
		out := make([]any, 3)
		for i, f := range x {
			if math.IsNaN(f) {
				continue
			}
			out[i] = f
		}
		return out
	default:
		return v
	}
}

// Serialize is a convenience wrapper around NewSerializer and Dump.
func Serialize(datasetType string, ds *dataset.Dataset, format Format, opts ...Option) ([]byte, error) {
	s, err := NewSerializer(datasetType, ds, format, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Dump()
}
