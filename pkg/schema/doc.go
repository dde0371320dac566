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

// Package schema provides the component/attribute registry used to validate
// and type dataset records.
//
// A Registry maps dataset type names (input, update, sym_output, ...) to a
// DatasetSchema, which lists the components that may appear in that type.
// Each Component is an ordered list of typed attributes; an attribute's
// Index is its fixed slot inside a record.
//
// # Construction
//
// The built-in table is embedded and parsed once:
//
//	reg := schema.Default()
//	input, _ := reg.Dataset("input")
//	node, _ := input.Component("node")
//	idx := node.AttributeIndex("u_rated") // 1
//
// A replacement table can be read from YAML:
//
//	reg, err := schema.LoadFile("grid-schema.yaml")
//
// using the layout:
//
//	datasets:
//	  - name: input
//	    components:
//	      - name: node
//	        attributes:
//	          - {name: id, type: ID}
//	          - {name: u_rated, type: double}
//
// Registries are read-only after construction and safe for concurrent use.
package schema
