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

// Package server provides the HTTP server shared by the gridserde services.
//
// # Architecture
//
// The server is a stateless net/http server with:
//
//   - Rate limiting using token bucket algorithm (golang.org/x/time/rate)
//   - Request ID tracking (X-Request-Id, UUID format)
//   - Panic recovery
//   - Request body limits
//   - Prometheus metrics on /metrics
//   - Health and readiness probes
//   - Graceful shutdown on SIGINT/SIGTERM
//
// # Usage
//
//	s := server.New(
//	    server.WithName("gridserded"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/v1/convert": h.HandleConvert,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// # Endpoints
//
// GET /health - Liveness probe, always 200 OK
//
// GET /ready - Readiness probe, 200 OK when serving, 503 otherwise
//
// GET /metrics - Prometheus metrics
//
// GET / - Server name, version and registered routes
//
// # Error Handling
//
// All errors return a consistent JSON structure:
//
//	{
//	  "code": "UNKNOWN_ATTRIBUTE",
//	  "message": "unknown attribute voltage of component node",
//	  "details": {"path": "data.node[0].voltage"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-01-12T12:00:00Z",
//	  "retryable": false
//	}
//
// WriteErrorFromErr derives the HTTP status from the error code:
// MALFORMED_INPUT and INVALID_REQUEST map to 400, dataset validation
// failures to 422, RATE_LIMIT_EXCEEDED to 429, TIMEOUT to 504.
//
// # Configuration
//
// PORT and SHUTDOWN_TIMEOUT_SECONDS override the listen port and the
// graceful shutdown timeout.
package server
