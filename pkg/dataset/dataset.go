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

package dataset

import (
	"fmt"
	"slices"

	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/schema"
)

// Dataset is a named collection of component arrays of one dataset type.
// Whether it is a batch is derived from its components.
type Dataset struct {
	schema     *schema.DatasetSchema
	components map[string]ComponentArray
}

// New creates an empty dataset of the given type.
func New(ds *schema.DatasetSchema) *Dataset {
	return &Dataset{schema: ds, components: make(map[string]ComponentArray)}
}

// Schema returns the dataset type schema.
func (d *Dataset) Schema() *schema.DatasetSchema { return d.schema }

// Type returns the dataset type name.
func (d *Dataset) Type() string { return d.schema.Name }

// Add stores a component array. The component must belong to the dataset
// type and may only be added once.
func (d *Dataset) Add(a ComponentArray) error {
	if a == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "component array is nil")
	}
	name := a.Component().Name
	c, ok := d.schema.Component(name)
	if !ok || c.Width() != a.Component().Width() {
		return errors.NewWithContext(errors.ErrCodeUnknownComponent,
			fmt.Sprintf("component %q is not part of dataset type %q", name, d.schema.Name),
			map[string]any{"component": name, "dataset": d.schema.Name})
	}
	if _, dup := d.components[name]; dup {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("component %q already present", name),
			map[string]any{"component": name})
	}
	d.components[name] = a
	return nil
}

// Get returns the named component array.
func (d *Dataset) Get(name string) (ComponentArray, bool) {
	a, ok := d.components[name]
	return a, ok
}

// Names returns the present component names in schema order.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.components))
	for _, n := range d.schema.ComponentNames() {
		if _, ok := d.components[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// Components returns the present component arrays in schema order.
func (d *Dataset) Components() []ComponentArray {
	out := make([]ComponentArray, 0, len(d.components))
	for _, n := range d.Names() {
		out = append(out, d.components[n])
	}
	return out
}

// Len returns the number of components present.
func (d *Dataset) Len() int { return len(d.components) }

// IsBatch reports whether any component is sparse or has a scenario count
// other than one.
func (d *Dataset) IsBatch() bool {
	for _, a := range d.components {
		if a.Layout() == LayoutSparse || a.BatchSize() != 1 {
			return true
		}
	}
	return false
}

// BatchSize returns the number of scenarios: 1 for a single dataset, the
// shared scenario count for a batch. Call Validate first on datasets built
// by hand.
func (d *Dataset) BatchSize() int {
	if !d.IsBatch() {
		return 1
	}
	if comps := d.Components(); len(comps) > 0 {
		return comps[0].BatchSize()
	}
	return 0
}

// Validate checks that every component shares one batch size.
func (d *Dataset) Validate() error {
	want := -1
	first := ""
	for _, a := range d.Components() {
		name := a.Component().Name
		if want < 0 {
			want, first = a.BatchSize(), name
			continue
		}
		if a.BatchSize() != want {
			return errors.NewWithContext(errors.ErrCodeInconsistentBatch,
				fmt.Sprintf("component %q has %d scenarios, %q has %d", name, a.BatchSize(), first, want),
				map[string]any{"component": name, "expected": want, "actual": a.BatchSize()})
		}
	}
	return nil
}

// HasSparse reports whether any component uses the sparse layout.
func (d *Dataset) HasSparse() bool {
	return slices.ContainsFunc(d.Components(), func(a ComponentArray) bool {
		return a.Layout() == LayoutSparse
	})
}

// Canonicalize returns a copy of d with normalized not-set sentinels and
// uniform sparse components turned dense.
func Canonicalize(d *Dataset) *Dataset {
	out := New(d.schema)
	for _, a := range d.Components() {
		c := a.Component()
		s := ToSparse(a)

		records := make([]Record, len(s.records))
		for i, r := range s.records {
			nr := r.Clone()
			for j, v := range nr {
				nr[j] = canonicalValue(c.Attributes[j].Type, v)
			}
			records[i] = nr
		}
		indptr := slices.Clone(s.indptr)

		var arr ComponentArray = &Sparse{component: c, indptr: indptr, records: records}
		if dense, err := ToDense(arr); err == nil {
			arr = dense
		}
		out.components[c.Name] = arr
	}
	return out
}

// Equal reports whether a and b hold the same logical data: same type,
// same components, same per-scenario records. Dense and sparse layouts of
// the same data compare equal; not-set values compare equal regardless of
// bit pattern.
func Equal(a, b *Dataset) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() || !slices.Equal(a.Names(), b.Names()) {
		return false
	}
	if a.IsBatch() != b.IsBatch() {
		return false
	}

	for _, name := range a.Names() {
		x := ToSparse(a.components[name])
		y := ToSparse(b.components[name])
		if !slices.Equal(x.indptr, y.indptr) {
			return false
		}
		for i := range x.records {
			if !recordsEqual(x.records[i], y.records[i]) {
				return false
			}
		}
	}
	return true
}

func recordsEqual(a, b Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ValuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
