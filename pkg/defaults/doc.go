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
// Package defaults provides centralized configuration constants for gridserde.
//
// This package defines the wire format version, output formatting defaults,
// decoder limits and the timeouts used by the CLI and the HTTP service.
// Centralizing these values keeps the library, the CLI and the server in
// agreement.
//
// # Categories
//
//   - Format: wire format version and indentation
//   - Limits: decoder nesting depth and input sizes
//   - Handler and server timeouts: HTTP request processing and lifecycle
//   - HTTP client timeouts: remote input downloads
//   - CLI: conversion fan-out and overall command timeout
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/gridserde/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ConvertHandlerTimeout)
//	defer cancel()
package defaults
