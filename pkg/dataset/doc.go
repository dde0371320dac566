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

// Package dataset holds the in-memory, schema-typed form of grid datasets.
//
// A Dataset belongs to one dataset type of a schema.Registry and holds one
// ComponentArray per present component. Each array is a tagged variant:
//
//   - *Dense: scenarios x elements records, the same element count for
//     every scenario. A single (non-batch) dataset is dense with one scenario.
//   - *Sparse: a flat record list plus an indptr of length batch+1 where
//     scenario i owns records[indptr[i]:indptr[i+1]].
//
// Records are []any with one slot per schema attribute. Unset attributes
// hold the not-set sentinel of their scalar type (NaN, math.MinInt32,
// math.MinInt8, "" or three NaNs); IsSet and ValuesEqual treat every NaN
// bit pattern as not-set.
//
// Whether a dataset is a batch is derived: any sparse component or any
// dense component whose scenario count differs from one makes it a batch.
//
// Equal compares datasets through the sparse view of every component, so
// dense and sparse layouts of the same data are equal:
//
//	if !dataset.Equal(dataset.Canonicalize(want), got) {
//	    ...
//	}
package dataset
