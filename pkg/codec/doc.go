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

// Package codec converts raw bytes to and from a format-agnostic
// intermediate tree.
//
// The tree uses a small set of node types: nil, bool, int64, uint64 (only
// for values above math.MaxInt64), float64, string, []any and *Map, an
// insertion-ordered string-keyed map. Two codecs implement the Codec
// interface:
//
//   - JSON: UTF-8 text. Errors report line, column and byte offset.
//   - Msgpack: binary, built on github.com/vmihailenco/msgpack/v5. Every
//     container and string length is checked against the remaining input
//     before it is read. Errors report the byte offset.
//
// Both decoders reject invalid UTF-8 in strings, duplicate map keys,
// trailing input and nesting deeper than Limits.MaxDepth. All decode failures are
// errors.ErrCodeMalformedInput.
//
// Usage:
//
//	tree, err := codec.NewJSON().Decode(raw)
//	out, err := codec.NewMsgpack().Encode(tree, codec.EncodeOptions{})
package codec
