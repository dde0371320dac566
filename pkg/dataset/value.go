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
	"math"

	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/schema"
)

// ID identifies a grid element.
type ID int32

// Not-set sentinels per scalar type.
const (
	NotSetInt32 int32 = math.MinInt32
	NotSetInt8  int8  = math.MinInt8
	NotSetID    ID    = math.MinInt32
)

// NotSetFloat64x3 is the three-phase not-set value.
func NotSetFloat64x3() [3]float64 {
	nan := math.NaN()
	return [3]float64{nan, nan, nan}
}

// Record holds one element's attribute values in schema order. Each slot
// holds the Go type of its attribute: float64, int32, int8, ID, string or
// [3]float64.
type Record []any

// NotSet returns the not-set sentinel for t.
func NotSet(t schema.ScalarType) any {
	switch t {
	case schema.ScalarFloat64:
		return math.NaN()
	case schema.ScalarInt32:
		return NotSetInt32
	case schema.ScalarInt8:
		return NotSetInt8
	case schema.ScalarID:
		return NotSetID
	case schema.ScalarString:
		return ""
	case schema.ScalarFloat64x3:
		return NotSetFloat64x3()
	default:
		return nil
	}
}

// IsSet reports whether v holds a real value. NaN of any bit pattern is
// not-set; a three-phase value is not-set only when all phases are NaN.
func IsSet(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case float64:
		return !math.IsNaN(x)
	case int32:
		return x != NotSetInt32
	case int8:
		return x != NotSetInt8
	case ID:
		return x != NotSetID
	case string:
		return x != ""
	case [3]float64:
		return !(math.IsNaN(x[0]) && math.IsNaN(x[1]) && math.IsNaN(x[2]))
	default:
		return true
	}
}

// ValuesEqual compares two attribute values, treating any two not-set
// values as equal.
func ValuesEqual(a, b any) bool {
	aSet, bSet := IsSet(a), IsSet(b)
	if !aSet || !bSet {
		return aSet == bSet
	}

	if x, ok := a.([3]float64); ok {
		y, ok := b.([3]float64)
		if !ok {
			return false
		}
		for i := range x {
			if math.IsNaN(x[i]) != math.IsNaN(y[i]) {
				return false
			}
			if !math.IsNaN(x[i]) && x[i] != y[i] {
				return false
			}
		}
		return true
	}

	return a == b
}

// NewRecord returns a record of c with every attribute not-set.
func NewRecord(c *schema.Component) Record {
	r := make(Record, len(c.Attributes))
	for i, a := range c.Attributes {
		r[i] = NotSet(a.Type)
	}
	return r
}

// Set stores v under the named attribute after checking its Go type.
func (r Record) Set(c *schema.Component, name string, v any) error {
	attr, ok := c.Attribute(name)
	if !ok {
		return errors.NewWithContext(errors.ErrCodeUnknownAttribute,
			fmt.Sprintf("unknown attribute %q", name),
			map[string]any{"component": c.Name})
	}
	if err := checkValue(attr, v); err != nil {
		return err
	}
	r[attr.Index] = v
	return nil
}

// Get returns the value of the named attribute.
func (r Record) Get(c *schema.Component, name string) (any, bool) {
	i := c.AttributeIndex(name)
	if i < 0 || i >= len(r) {
		return nil, false
	}
	return r[i], true
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

func checkValue(attr schema.Attribute, v any) *errors.StructuredError {
	var ok bool
	switch attr.Type {
	case schema.ScalarFloat64:
		_, ok = v.(float64)
	case schema.ScalarInt32:
		_, ok = v.(int32)
	case schema.ScalarInt8:
		_, ok = v.(int8)
	case schema.ScalarID:
		_, ok = v.(ID)
	case schema.ScalarString:
		_, ok = v.(string)
	case schema.ScalarFloat64x3:
		_, ok = v.([3]float64)
	}
	if !ok {
		return errors.NewWithContext(errors.ErrCodeTypeMismatch,
			fmt.Sprintf("attribute %q expects %s, got %T", attr.Name, attr.Type, v),
			map[string]any{"attribute": attr.Name})
	}
	return nil
}

func checkRecord(c *schema.Component, r Record) error {
	if len(r) != len(c.Attributes) {
		return errors.NewWithContext(errors.ErrCodeTypeMismatch,
			fmt.Sprintf("record has %d slots, component %q has %d attributes", len(r), c.Name, len(c.Attributes)),
			map[string]any{"component": c.Name})
	}
	for i, a := range c.Attributes {
		if err := checkValue(a, r[i]); err != nil {
			return err.WithContext("component", c.Name)
		}
	}
	return nil
}

// canonicalValue rewrites not-set values to the sentinel for t.
func canonicalValue(t schema.ScalarType, v any) any {
	if !IsSet(v) {
		return NotSet(t)
	}
	if x, ok := v.([3]float64); ok {
		for i := range x {
			if math.IsNaN(x[i]) {
				x[i] = math.NaN()
			}
		}
		return x
	}
	return v
}
