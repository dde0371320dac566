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
	"sort"

	"github.com/NVIDIA/gridserde/pkg/errors"
	"github.com/NVIDIA/gridserde/pkg/schema"
)

// Layout tells how a component array stores its scenarios.
type Layout string

const (
	// LayoutDense stores the same number of elements for every scenario.
	LayoutDense Layout = "dense"
	// LayoutSparse stores a variable number of elements per scenario,
	// delimited by an indptr.
	LayoutSparse Layout = "sparse"
)

// ComponentArray holds all records of one component in a dataset. It is
// either *Dense or *Sparse; the variant is fixed at construction.
type ComponentArray interface {
	Layout() Layout
	Component() *schema.Component
	// BatchSize is the number of scenarios.
	BatchSize() int
	// Len is the total number of records across all scenarios.
	Len() int
	// Scenario returns the records of scenario i. The slice aliases the
	// array's storage.
	Scenario(i int) []Record
	// Elements returns the number of records in scenario i.
	Elements(i int) int

	isComponentArray()
}

// Dense holds scenarios x elementsPerScenario records, row-major by scenario.
type Dense struct {
	component   *schema.Component
	scenarios   int
	perScenario int
	records     []Record
}

// NewDense creates a dense array. len(records) must be a multiple of
// scenarios; with zero scenarios records must be empty.
func NewDense(c *schema.Component, scenarios int, records []Record) (*Dense, error) {
	if c == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "component schema is required")
	}
	if scenarios < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidRequest, "negative scenario count %d", scenarios)
	}

	per := 0
	switch {
	case scenarios == 0:
		if len(records) != 0 {
			return nil, errors.NewWithContext(errors.ErrCodeInconsistentBatch,
				"records given for zero scenarios", map[string]any{"component": c.Name})
		}
	case len(records)%scenarios != 0:
		return nil, errors.NewWithContext(errors.ErrCodeInconsistentBatch,
			fmt.Sprintf("%d records do not divide into %d scenarios", len(records), scenarios),
			map[string]any{"component": c.Name})
	default:
		per = len(records) / scenarios
	}

	for i, r := range records {
		if err := checkRecord(c, r); err != nil {
			return nil, errors.WrapWithContext(errors.CodeOf(err), "invalid record", err,
				map[string]any{"component": c.Name, "index": i})
		}
	}

	return &Dense{component: c, scenarios: scenarios, perScenario: per, records: records}, nil
}

func (*Dense) isComponentArray() {}

// Layout returns LayoutDense.
func (d *Dense) Layout() Layout { return LayoutDense }

// Component returns the component schema.
func (d *Dense) Component() *schema.Component { return d.component }

// BatchSize returns the number of scenarios.
func (d *Dense) BatchSize() int { return d.scenarios }

// Len returns the total number of records.
func (d *Dense) Len() int { return len(d.records) }

// ElementsPerScenario returns the fixed per-scenario element count.
func (d *Dense) ElementsPerScenario() int { return d.perScenario }

// Elements returns the number of records in scenario i.
func (d *Dense) Elements(int) int { return d.perScenario }

// Records returns all records, row-major by scenario.
func (d *Dense) Records() []Record { return d.records }

// Scenario returns the records of scenario i.
func (d *Dense) Scenario(i int) []Record {
	start := i * d.perScenario
	return d.records[start : start+d.perScenario : start+d.perScenario]
}

// Sparse holds a flat record list and an indptr of length batch+1; scenario
// i owns records[indptr[i]:indptr[i+1]].
type Sparse struct {
	component *schema.Component
	indptr    []int64
	records   []Record
}

// NewSparse creates a sparse array after checking the indptr invariants.
func NewSparse(c *schema.Component, indptr []int64, records []Record) (*Sparse, error) {
	if c == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "component schema is required")
	}
	if len(indptr) == 0 || !IndptrIsValid(indptr, len(indptr)-1, len(records)) {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidSparseStructure,
			"indptr must start at 0, be non-decreasing and end at the number of records",
			map[string]any{"component": c.Name, "indptr_len": len(indptr), "records": len(records)})
	}
	for i, r := range records {
		if err := checkRecord(c, r); err != nil {
			return nil, errors.WrapWithContext(errors.CodeOf(err), "invalid record", err,
				map[string]any{"component": c.Name, "index": i})
		}
	}
	return &Sparse{component: c, indptr: indptr, records: records}, nil
}

func (*Sparse) isComponentArray() {}

// Layout returns LayoutSparse.
func (s *Sparse) Layout() Layout { return LayoutSparse }

// Component returns the component schema.
func (s *Sparse) Component() *schema.Component { return s.component }

// BatchSize returns the number of scenarios.
func (s *Sparse) BatchSize() int { return len(s.indptr) - 1 }

// Len returns the total number of records.
func (s *Sparse) Len() int { return len(s.records) }

// Indptr returns the index pointer. Callers must not modify it.
func (s *Sparse) Indptr() []int64 { return s.indptr }

// Records returns the flat record list.
func (s *Sparse) Records() []Record { return s.records }

// Elements returns the number of records in scenario i.
func (s *Sparse) Elements(i int) int { return int(s.indptr[i+1] - s.indptr[i]) }

// Scenario returns the records of scenario i.
func (s *Sparse) Scenario(i int) []Record {
	lo, hi := s.indptr[i], s.indptr[i+1]
	return s.records[lo:hi:hi]
}

// ScenarioOf returns the scenario owning the element at flat index elem of
// a valid indptr, or -1 when elem is out of range. Empty scenarios own
// nothing.
func ScenarioOf(indptr []int64, elem int) int {
	if len(indptr) == 0 || elem < 0 || int64(elem) >= indptr[len(indptr)-1] {
		return -1
	}
	// upper bound: first pointer strictly greater than elem
	ub := sort.Search(len(indptr), func(i int) bool { return indptr[i] > int64(elem) })
	return ub - 1
}

// IsUniform reports whether every scenario holds the same number of records.
func (s *Sparse) IsUniform() bool {
	for i := 1; i < s.BatchSize(); i++ {
		if s.Elements(i) != s.Elements(0) {
			return false
		}
	}
	return true
}

// IndptrIsValid checks len(indptr) == batchSize+1, indptr[0] == 0,
// non-decreasing entries and indptr[batchSize] == valuesLen.
func IndptrIsValid(indptr []int64, batchSize, valuesLen int) bool {
	if batchSize < 0 || len(indptr) != batchSize+1 {
		return false
	}
	if indptr[0] != 0 || indptr[batchSize] != int64(valuesLen) {
		return false
	}
	for i := 1; i < len(indptr); i++ {
		if indptr[i] < indptr[i-1] {
			return false
		}
	}
	return true
}

// IndptrFromCounts builds an indptr from per-scenario element counts.
func IndptrFromCounts(counts []int) []int64 {
	indptr := make([]int64, len(counts)+1)
	for i, n := range counts {
		indptr[i+1] = indptr[i] + int64(n)
	}
	return indptr
}

// ToSparse returns the sparse view of a. Dense arrays are compacted into a
// new Sparse sharing the record storage.
func ToSparse(a ComponentArray) *Sparse {
	switch x := a.(type) {
	case *Sparse:
		return x
	case *Dense:
		indptr := make([]int64, x.scenarios+1)
		for i := range x.scenarios {
			indptr[i+1] = indptr[i] + int64(x.perScenario)
		}
		return &Sparse{component: x.component, indptr: indptr, records: x.records}
	default:
		panic(fmt.Sprintf("unexpected component array %T", a))
	}
}

// ToDense expands a into a dense array. Sparse arrays whose scenarios hold
// different element counts cannot be expressed densely and fail with
// ErrCodeNotSupported.
func ToDense(a ComponentArray) (*Dense, error) {
	switch x := a.(type) {
	case *Dense:
		return x, nil
	case *Sparse:
		if !x.IsUniform() {
			return nil, errors.NewWithContext(errors.ErrCodeNotSupported,
				"sparse component has a variable number of elements per scenario",
				map[string]any{"component": x.component.Name})
		}
		per := 0
		if x.BatchSize() > 0 {
			per = x.Elements(0)
		}
		return &Dense{component: x.component, scenarios: x.BatchSize(), perScenario: per, records: x.records}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInternal, "unexpected component array %T", a)
	}
}
