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

// Package header provides the envelope written around every serialized
// dataset.
//
// # Header Structure
//
// Every document is a map with these keys, emitted in this order:
//
//	{
//	  "version": "1.0",       // wire format version
//	  "type": "input",        // dataset type
//	  "is_batch": false,      // one list per scenario when true
//	  "attributes": {},       // reserved, always empty on emit
//	  "data": { ... }         // component data
//	}
//
// # Usage
//
// Build the envelope for a batch update dataset:
//
//	h := header.New(header.WithType("update"), header.WithBatch(true))
//	root := h.Tree(data)
//
// Read it back from a decoded tree:
//
//	h, data, err := header.Parse(tree)
//
// # Versioning
//
// Parse accepts documents without a version key. A present version must
// share the major version this build writes; newer minor versions are read
// and their unknown top-level keys ignored.
package header
