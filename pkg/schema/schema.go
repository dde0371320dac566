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

package schema

import (
	"fmt"
	"slices"

	"github.com/NVIDIA/gridserde/pkg/errors"
)

// Component is the ordered attribute list of one component type within a
// dataset type.
type Component struct {
	Name       string
	Attributes []Attribute

	index map[string]int
}

// Attribute returns the attribute with the given name.
func (c *Component) Attribute(name string) (Attribute, bool) {
	i, ok := c.index[name]
	if !ok {
		return Attribute{}, false
	}
	return c.Attributes[i], true
}

// AttributeIndex returns the record offset of the named attribute, or -1.
func (c *Component) AttributeIndex(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

// Width is the number of slots in a record of this component.
func (c *Component) Width() int {
	return len(c.Attributes)
}

// Def returns the serializable form of the component.
func (c *Component) Def() ComponentDef {
	def := ComponentDef{Name: c.Name, Attributes: make([]AttributeDef, len(c.Attributes))}
	for i, a := range c.Attributes {
		def.Attributes[i] = AttributeDef{Name: a.Name, Type: a.Type}
	}
	return def
}

// DatasetSchema lists the components allowed in one dataset type.
type DatasetSchema struct {
	Name string

	components []*Component
	byName     map[string]*Component
}

// Component returns the named component schema.
func (d *DatasetSchema) Component(name string) (*Component, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// Components returns all component schemas in declaration order.
func (d *DatasetSchema) Components() []*Component {
	return slices.Clone(d.components)
}

// ComponentNames returns component names in declaration order.
func (d *DatasetSchema) ComponentNames() []string {
	names := make([]string, len(d.components))
	for i, c := range d.components {
		names[i] = c.Name
	}
	return names
}

// Order returns the declaration position of the named component, or -1.
func (d *DatasetSchema) Order(name string) int {
	for i, c := range d.components {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Def returns the serializable form of the dataset schema.
func (d *DatasetSchema) Def() DatasetDef {
	def := DatasetDef{Name: d.Name, Components: make([]ComponentDef, len(d.components))}
	for i, c := range d.components {
		def.Components[i] = c.Def()
	}
	return def
}

// Registry maps dataset type names to their schemas. A Registry is
// immutable after construction and safe for concurrent use.
type Registry struct {
	datasets []*DatasetSchema
	byName   map[string]*DatasetSchema
}

// New builds a Registry from definitions, rejecting empty names, unknown
// scalar types and duplicates at every level.
func New(defs ...DatasetDef) (*Registry, error) {
	r := &Registry{byName: make(map[string]*DatasetSchema, len(defs))}

	for _, dd := range defs {
		if dd.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "dataset type with empty name")
		}
		if _, dup := r.byName[dd.Name]; dup {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "duplicate dataset type",
				map[string]any{"dataset": dd.Name})
		}

		ds, err := newDatasetSchema(dd)
		if err != nil {
			return nil, err
		}
		r.datasets = append(r.datasets, ds)
		r.byName[dd.Name] = ds
	}

	return r, nil
}

func newDatasetSchema(dd DatasetDef) (*DatasetSchema, error) {
	ds := &DatasetSchema{Name: dd.Name, byName: make(map[string]*Component, len(dd.Components))}

	for _, cd := range dd.Components {
		ctx := map[string]any{"dataset": dd.Name, "component": cd.Name}
		if cd.Name == "" {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "component with empty name", ctx)
		}
		if _, dup := ds.byName[cd.Name]; dup {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "duplicate component", ctx)
		}

		c := &Component{
			Name:       cd.Name,
			Attributes: make([]Attribute, 0, len(cd.Attributes)),
			index:      make(map[string]int, len(cd.Attributes)),
		}
		for i, ad := range cd.Attributes {
			ctx["attribute"] = ad.Name
			if ad.Name == "" {
				return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "attribute with empty name", ctx)
			}
			if _, dup := c.index[ad.Name]; dup {
				return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "duplicate attribute", ctx)
			}
			t, ok := ParseScalarType(string(ad.Type))
			if !ok {
				return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
					fmt.Sprintf("unknown scalar type %q", ad.Type), ctx)
			}
			c.Attributes = append(c.Attributes, Attribute{Name: ad.Name, Type: t, Index: i})
			c.index[ad.Name] = i
		}

		ds.components = append(ds.components, c)
		ds.byName[c.Name] = c
	}

	return ds, nil
}

// Dataset returns the schema of the named dataset type.
func (r *Registry) Dataset(name string) (*DatasetSchema, bool) {
	ds, ok := r.byName[name]
	return ds, ok
}

// DatasetTypes returns dataset type names in declaration order.
func (r *Registry) DatasetTypes() []string {
	names := make([]string, len(r.datasets))
	for i, ds := range r.datasets {
		names[i] = ds.Name
	}
	return names
}

// Defs returns the serializable form of the whole registry.
func (r *Registry) Defs() []DatasetDef {
	defs := make([]DatasetDef, len(r.datasets))
	for i, ds := range r.datasets {
		defs[i] = ds.Def()
	}
	return defs
}
