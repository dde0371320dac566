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
	"log/slog"
	"sync"
	"time"

	"github.com/NVIDIA/gridserde/pkg/codec"
	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/errors"
)

// Deserializer turns a serialized dataset into a validated Dataset.
// Close must be called to release the input buffer and the result.
type Deserializer struct {
	mu     sync.Mutex
	data   []byte
	format Format
	codec  codec.Codec
	opts   options

	loaded      bool
	closed      bool
	datasetType string
	ds          *dataset.Dataset
	err         error
}

// NewDeserializer creates a Deserializer over data in the given format.
// The data slice is retained until Load completes and must not be
// modified in the meantime.
func NewDeserializer(data []byte, format Format, opts ...Option) (*Deserializer, error) {
	o := newOptions(opts)
	c, err := newCodec(format, o.limits)
	if err != nil {
		return nil, err
	}
	return &Deserializer{
		data:   data,
		format: format,
		codec:  c,
		opts:   o,
	}, nil
}

// Format returns the wire format of the input.
func (d *Deserializer) Format() Format {
	return d.format
}

// Load parses and validates the input and returns the dataset type name and
// the dataset. The work happens once; later calls return the same result.
// Either the whole dataset is returned or an error, never a partial one.
func (d *Deserializer) Load() (string, *dataset.Dataset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", nil, errors.New(errors.ErrCodeInvalidRequest, "deserializer is closed")
	}
	if !d.loaded {
		d.datasetType, d.ds, d.err = d.load()
		d.loaded = true
		d.data = nil
	}
	return d.datasetType, d.ds, d.err
}

func (d *Deserializer) load() (string, *dataset.Dataset, error) {
	start := time.Now()
	size := len(d.data)

	datasetType, ds, err := d.decode()
	observe(operationDeserialize, d.format, start, size, err)
	if err != nil {
		slog.Debug("dataset load failed", "format", d.format, "bytes", size, "error", err)
		return "", nil, err
	}

	slog.Debug("dataset loaded",
		"format", d.format,
		"type", datasetType,
		"bytes", size,
		"components", ds.Len(),
		"batch", ds.IsBatch(),
		"duration", time.Since(start))
	return datasetType, ds, nil
}

func (d *Deserializer) decode() (string, *dataset.Dataset, error) {
	root, err := d.codec.Decode(d.data)
	if err != nil {
		return "", nil, err
	}
	return buildDataset(d.opts.registry, root)
}

// Close releases the input and the loaded dataset. It is safe to call
// Close multiple times. Load fails after Close.
func (d *Deserializer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.data = nil
	d.ds = nil
	d.err = nil
	return nil
}

// Deserialize is a convenience wrapper around NewDeserializer and Load.
func Deserialize(data []byte, format Format, opts ...Option) (string, *dataset.Dataset, error) {
	d, err := NewDeserializer(data, format, opts...)
	if err != nil {
		return "", nil, err
	}
	defer d.Close()
	return d.Load()
}
