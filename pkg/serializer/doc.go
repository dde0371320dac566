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

// Package serializer converts power-grid datasets between their wire formats
// and the in-memory dataset model.
//
// # Overview
//
// A serialized dataset is a map with the keys "version", "type",
// "is_batch", "attributes" and "data". The data map holds one entry per
// component. Single datasets write a flat list of records; batch datasets
// write one list per scenario or, with WithCompactList, a map of the form
// {"indptr": [...], "data": [...]}. Records are maps from attribute name to
// value and only carry attributes that are set.
//
// Two wire formats are supported:
//
//   - FormatJSON: human-readable text, indented by default
//   - FormatMsgpack: compact binary, same tree shape
//
// # Reading
//
//	d, err := serializer.NewDeserializer(raw, serializer.FormatJSON)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//
//	datasetType, ds, err := d.Load()
//
// Load validates the input against the schema registry (WithRegistry,
// schema.Default() otherwise) and either returns the whole dataset or a
// *errors.StructuredError. Scenario lists of different lengths and indptr
// maps produce sparse component arrays.
//
// # Writing
//
//	out, err := serializer.Serialize("input", dataset.Canonicalize(ds), serializer.FormatMsgpack)
//
// Only dense datasets can be written; sparse components fail with
// NOT_SUPPORTED. dataset.Canonicalize turns uniform sparse components dense.
// The is_batch flag is derived from the dataset: a one-scenario batch is
// written as a single dataset.
//
// # Sources and Reports
//
// ReadSource loads input from a file, stdin ("-") or an HTTP(S) URL using
// HttpReader. WriteToFile replaces a file atomically. ReportWriter renders
// Summaries and other report values as JSON, YAML or an aligned table.
//
// # HTTP
//
// Handler exposes conversion and validation endpoints for pkg/server:
//
//	POST /v1/convert?from=json&to=msgpack&compact=true&indent=0
//	POST /v1/validate
//
// Failures map onto the structured error response of pkg/server.
//
// # Metrics
//
// Every Load and Dump is counted in gridserde_operations_total and timed
// in gridserde_operation_duration_seconds, labelled by operation and format.
package serializer
