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

// Package api wires the dataset conversion endpoints into the HTTP server.
//
// Usage:
//
//	import (
//	    "log"
//	    "github.com/NVIDIA/gridserde/pkg/api"
//	)
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Architecture
//
// The API layer is responsible for:
//   - Configuring structured logging with application name and version
//   - Loading the schema registry (built-in, or GRIDSERDE_SCHEMA)
//   - Mapping /v1 routes onto serializer.Handler
//
// Server lifecycle, middleware, health and metrics endpoints live in
// pkg/server.
//
// # Endpoints
//
// Application Endpoints (with rate limiting):
//   - POST /v1/convert  - Convert a dataset between JSON and msgpack
//   - POST /v1/validate - Validate a dataset and return its summary
//
// System Endpoints (no rate limiting):
//   - GET /health  - Health check (liveness probe)
//   - GET /ready   - Readiness check
//   - GET /metrics - Prometheus metrics
//
// # Query Parameters
//
//   - from: input format (json, msgpack); falls back to Content-Type, then JSON
//   - to: output format of /v1/convert (default json)
//   - compact: write batch components as indptr maps (true/false)
//   - indent: spaces per level of JSON output, 0-16
//
// Example:
//
//	curl -X POST "http://localhost:8080/v1/convert?to=msgpack" \
//	  -H "Content-Type: application/json" \
//	  --data-binary @input.json -o input.msgpack
//
// # Configuration
//
// The server is configured via environment variables:
//   - PORT: HTTP server port (default: 8080)
//   - LOG_LEVEL: Logging level (debug, info, warn, error)
//   - GRIDSERDE_SCHEMA: YAML schema registry replacing the built-in one
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/gridserde/pkg/api.version=1.0.0'"
package api
