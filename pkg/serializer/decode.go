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
	"math"
	"strings"

	"github.com/NVIDIA/gridserde/pkg/codec"
	"github.com/NVIDIA/gridserde/pkg/dataset"
	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/header"
	"github.com/NVIDIA/gridserde/pkg/schema"
)

// Keys of a compact (indptr) batch component.
const (
	keyIndptr = "indptr"
	keyData   = "data"
)

// buildDataset validates a decoded tree against reg and materializes it.
func buildDataset(reg *schema.Registry, root any) (string, *dataset.Dataset, error) {
	h, data, err := header.Parse(root)
	if err != nil {
		return "", nil, err
	}

	ds, ok := reg.Dataset(h.Type)
	if !ok {
		return "", nil, errors.NewWithContext(errors.ErrCodeUnknownDatasetType,
			fmt.Sprintf("unknown dataset type %q", h.Type),
			map[string]any{"path": header.KeyType, "known": reg.DatasetTypes()})
	}

	components, ok := data.(*codec.Map)
	if !ok {
		return "", nil, mismatch(header.KeyData, "data must be a map, got %s", codec.Kind(data))
	}

	out := dataset.New(ds)
	var buildErr error
	components.Range(func(name string, node any) bool {
		path := header.KeyData + "." + name
		c, ok := ds.Component(name)
		if !ok {
			buildErr = errors.NewWithContext(errors.ErrCodeUnknownComponent,
				fmt.Sprintf("unknown component %q in dataset type %q", name, h.Type),
				map[string]any{"path": path, "component": name})
			return false
		}

		var arr dataset.ComponentArray
		if h.IsBatch {
			arr, buildErr = batchComponent(c, node, path)
		} else {
			arr, buildErr = singleComponent(c, node, path)
		}
		if buildErr != nil {
			return false
		}
		buildErr = out.Add(arr)
		return buildErr == nil
	})
	if buildErr != nil {
		return "", nil, buildErr
	}

	if err := out.Validate(); err != nil {
		return "", nil, err
	}
	return h.Type, out, nil
}

// singleComponent reads [record, ...] into a one-scenario dense array.
func singleComponent(c *schema.Component, node any, path string) (dataset.ComponentArray, error) {
	switch n := node.(type) {
	case []any:
		records, err := readRecords(c, n, path)
		if err != nil {
			return nil, err
		}
		return dataset.NewDense(c, 1, records)
	case *codec.Map:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidSparseStructure,
			fmt.Sprintf("component %q uses the indptr layout in a single dataset", c.Name),
			map[string]any{"path": path, "component": c.Name})
	default:
		return nil, mismatch(path, "component %q must be a list of records, got %s", c.Name, codec.Kind(node))
	}
}

// batchComponent reads either one list of records per scenario or a
// {"indptr", "data"} map. Scenario lists of unequal length produce a
// sparse array.
func batchComponent(c *schema.Component, node any, path string) (dataset.ComponentArray, error) {
	switch n := node.(type) {
	case []any:
		return scenarioLists(c, n, path)
	case *codec.Map:
		return indptrMap(c, n, path)
	default:
		return nil, mismatch(path, "batch component %q must be a list of scenarios or an indptr map, got %s",
			c.Name, codec.Kind(node))
	}
}

func scenarioLists(c *schema.Component, scenarios []any, path string) (dataset.ComponentArray, error) {
	counts := make([]int, len(scenarios))
	var records []dataset.Record
	uniform := true

	for i, s := range scenarios {
		spath := fmt.Sprintf("%s[%d]", path, i)
		list, ok := s.([]any)
		if !ok {
			return nil, mismatch(spath, "scenario must be a list of records, got %s", codec.Kind(s))
		}
		rs, err := readRecords(c, list, spath)
		if err != nil {
			return nil, err
		}
		counts[i] = len(rs)
		if counts[i] != counts[0] {
			uniform = false
		}
		records = append(records, rs...)
	}

	if uniform {
		return dataset.NewDense(c, len(scenarios), records)
	}
	return dataset.NewSparse(c, dataset.IndptrFromCounts(counts), records)
}

func indptrMap(c *schema.Component, m *codec.Map, path string) (dataset.ComponentArray, error) {
	for _, k := range m.Keys() {
		if k != keyIndptr && k != keyData {
			return nil, sparseError(path, c, "unexpected key %q in indptr map", k)
		}
	}

	rawIndptr, ok := m.Get(keyIndptr)
	if !ok {
		return nil, sparseError(path, c, "indptr map is missing %q", keyIndptr)
	}
	rawData, ok := m.Get(keyData)
	if !ok {
		return nil, sparseError(path, c, "indptr map is missing %q", keyData)
	}

	list, ok := rawIndptr.([]any)
	if !ok {
		return nil, sparseError(path+"."+keyIndptr, c, "indptr must be a list, got %s", codec.Kind(rawIndptr))
	}
	indptr := make([]int64, len(list))
	for i, v := range list {
		n, ok := v.(int64)
		if !ok || n < 0 {
			return nil, sparseError(fmt.Sprintf("%s.%s[%d]", path, keyIndptr, i), c,
				"indptr entries must be non-negative integers, got %v", v)
		}
		indptr[i] = n
	}

	items, ok := rawData.([]any)
	if !ok {
		return nil, sparseError(path+"."+keyData, c, "data must be a list of records, got %s", codec.Kind(rawData))
	}
	valid := dataset.IndptrIsValid(indptr, len(indptr)-1, len(items))
	records := make([]dataset.Record, len(items))
	for i, item := range items {
		r, err := readRecord(c, item, fmt.Sprintf("%s.%s[%d]", path, keyData, i))
		if err != nil {
			if se, ok := err.(*errors.StructuredError); ok && valid {
				se.WithContext("scenario", dataset.ScenarioOf(indptr, i))
			}
			return nil, err
		}
		records[i] = r
	}

	arr, err := dataset.NewSparse(c, indptr, records)
	if err != nil {
		if se, ok := err.(*errors.StructuredError); ok {
			se.WithContext("path", path)
		}
		return nil, err
	}
	return arr, nil
}

func readRecords(c *schema.Component, items []any, path string) ([]dataset.Record, error) {
	records := make([]dataset.Record, len(items))
	for i, item := range items {
		r, err := readRecord(c, item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

// readRecord converts one record map. Absent attributes stay not-set.
func readRecord(c *schema.Component, item any, path string) (dataset.Record, error) {
	m, ok := item.(*codec.Map)
	if !ok {
		return nil, mismatch(path, "record must be a map, got %s", codec.Kind(item))
	}

	r := dataset.NewRecord(c)
	var err error
	m.Range(func(name string, v any) bool {
		apath := path + "." + name
		attr, ok := c.Attribute(name)
		if !ok {
			err = errors.NewWithContext(errors.ErrCodeUnknownAttribute,
				fmt.Sprintf("unknown attribute %q of component %q", name, c.Name),
				map[string]any{"path": apath, "component": c.Name, "attribute": name})
			return false
		}
		var cv any
		if cv, err = convertValue(attr, v, apath); err != nil {
			return false
		}
		r[attr.Index] = cv
		return true
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// convertValue turns a tree value into the Go representation of attr's
// scalar type. null is the not-set value of every type.
func convertValue(attr schema.Attribute, v any, path string) (any, error) {
	if v == nil {
		return dataset.NotSet(attr.Type), nil
	}

	switch attr.Type {
	case schema.ScalarFloat64:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case schema.ScalarInt32:
		if n, ok := toInt(v, math.MinInt32, math.MaxInt32, false); ok {
			return int32(n), nil
		}
	case schema.ScalarID:
		if n, ok := toInt(v, math.MinInt32, math.MaxInt32, false); ok {
			return dataset.ID(n), nil
		}
	case schema.ScalarInt8:
		if n, ok := toInt(v, math.MinInt8, math.MaxInt8, true); ok {
			return int8(n), nil
		}
	case schema.ScalarString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case schema.ScalarFloat64x3:
		if list, ok := v.([]any); ok && len(list) == 3 {
			var out [3]float64
			for i, p := range list {
				if p == nil {
					out[i] = math.NaN()
					continue
				}
				f, ok := toFloat(p)
				if !ok {
					return nil, valueMismatch(attr, p, fmt.Sprintf("%s[%d]", path, i))
				}
				out[i] = f
			}
			return out, nil
		}
	}
	return nil, valueMismatch(attr, v, path)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		switch strings.ToLower(x) {
		case "inf", "+inf":
			return math.Inf(1), true
		case "-inf":
			return math.Inf(-1), true
		}
	}
	return 0, false
}

func toInt(v any, lo, hi int64, allowBool bool) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, x >= lo && x <= hi
	case float64:
		if x != math.Trunc(x) || x < float64(lo) || x > float64(hi) {
			return 0, false
		}
		return int64(x), true
	case bool:
		if !allowBool {
			return 0, false
		}
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func valueMismatch(attr schema.Attribute, v any, path string) error {
	return errors.NewWithContext(errors.ErrCodeTypeMismatch,
		fmt.Sprintf("cannot convert %s %v to %s for attribute %q", codec.Kind(v), v, attr.Type, attr.Name),
		map[string]any{"path": path, "attribute": attr.Name, "expected": attr.Type.String()})
}

func mismatch(path, format string, args ...any) error {
	return errors.NewWithContext(errors.ErrCodeTypeMismatch, fmt.Sprintf(format, args...),
		map[string]any{"path": path})
}

func sparseError(path string, c *schema.Component, format string, args ...any) error {
	return errors.NewWithContext(errors.ErrCodeInvalidSparseStructure, fmt.Sprintf(format, args...),
		map[string]any{"path": path, "component": c.Name})
}
