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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gserrors "github.com/NVIDIA/gridserde/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		name string
		code gserrors.ErrorCode
		want int
	}{
		{"invalid request", gserrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{"malformed input", gserrors.ErrCodeMalformedInput, http.StatusBadRequest},
		{"unknown component", gserrors.ErrCodeUnknownComponent, http.StatusUnprocessableEntity},
		{"invalid sparse", gserrors.ErrCodeInvalidSparseStructure, http.StatusUnprocessableEntity},
		{"not supported", gserrors.ErrCodeNotSupported, http.StatusUnprocessableEntity},
		{"not found", gserrors.ErrCodeNotFound, http.StatusNotFound},
		{"method not allowed", gserrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{"rate limit", gserrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"unavailable", gserrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"timeout", gserrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{"internal", gserrors.ErrCodeInternal, http.StatusInternalServerError},
		{"unknown defaults to internal", gserrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Fatalf("HTTPStatusFromCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	tests := []struct {
		name string
		code gserrors.ErrorCode
		want bool
	}{
		{"invalid request", gserrors.ErrCodeInvalidRequest, false},
		{"type mismatch", gserrors.ErrCodeTypeMismatch, false},
		{"not found", gserrors.ErrCodeNotFound, false},
		{"method not allowed", gserrors.ErrCodeMethodNotAllowed, false},
		{"timeout", gserrors.ErrCodeTimeout, true},
		{"unavailable", gserrors.ErrCodeUnavailable, true},
		{"rate limit", gserrors.ErrCodeRateLimitExceeded, true},
		{"internal", gserrors.ErrCodeInternal, true},
		{"unknown defaults false", gserrors.ErrorCode("SOMETHING_ELSE"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableFromCode(tt.code); got != tt.want {
				t.Fatalf("retryableFromCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestMergeDetails(t *testing.T) {
	t.Run("both empty returns nil", func(t *testing.T) {
		if got := mergeDetails(nil, nil); got != nil {
			t.Fatalf("expected nil, got %#v", got)
		}
		if got := mergeDetails(map[string]any{}, map[string]any{}); got != nil {
			t.Fatalf("expected nil, got %#v", got)
		}
	})

	t.Run("merges and second overwrites", func(t *testing.T) {
		a := map[string]any{"a": 1, "shared": "old"}
		b := map[string]any{"b": 2, "shared": "new"}

		got := mergeDetails(a, b)
		if got == nil {
			t.Fatal("expected map, got nil")
		}
		if got["a"].(int) != 1 {
			t.Fatalf("expected a=1, got %#v", got["a"])
		}
		if got["b"].(int) != 2 {
			t.Fatalf("expected b=2, got %#v", got["b"])
		}
		if got["shared"].(string) != "new" {
			t.Fatalf("expected shared to be overwritten to 'new', got %#v", got["shared"])
		}
	})
}

func TestWriteError_WritesErrorResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-123"))
	w := httptest.NewRecorder()

	WriteError(w, req, http.StatusBadRequest, gserrors.ErrCodeInvalidRequest, "bad request", false, map[string]any{"k": "v"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Code != string(gserrors.ErrCodeInvalidRequest) {
		t.Fatalf("expected code %q, got %q", gserrors.ErrCodeInvalidRequest, resp.Code)
	}
	if resp.Message != "bad request" {
		t.Fatalf("expected message %q, got %q", "bad request", resp.Message)
	}
	if resp.RequestID != "req-123" {
		t.Fatalf("expected requestId %q, got %q", "req-123", resp.RequestID)
	}
	if resp.Retryable {
		t.Fatalf("expected retryable=false, got true")
	}
	if resp.Details == nil || resp.Details["k"].(string) != "v" {
		t.Fatalf("expected details to include k=v, got %#v", resp.Details)
	}
}

func TestWriteErrorFromErr_StructuredErrorMapsStatusAndDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	cause := errors.New("upstream is down")
	err := gserrors.WrapWithContext(gserrors.ErrCodeUnavailable, "service unavailable", cause, map[string]any{"uri": "https://example.com/grid.json"})

	WriteErrorFromErr(w, req, err, "fallback", map[string]any{"extra": "yes"})

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp ErrorResponse
	if uerr := json.Unmarshal(w.Body.Bytes(), &resp); uerr != nil {
		t.Fatalf("failed to unmarshal response: %v", uerr)
	}

	if resp.Code != string(gserrors.ErrCodeUnavailable) {
		t.Fatalf("expected code %q, got %q", gserrors.ErrCodeUnavailable, resp.Code)
	}
	if resp.Message != "service unavailable" {
		t.Fatalf("expected message %q, got %q", "service unavailable", resp.Message)
	}
	if !resp.Retryable {
		t.Fatalf("expected retryable=true")
	}
	if resp.Details == nil {
		t.Fatalf("expected details, got nil")
	}
	if resp.Details["uri"].(string) != "https://example.com/grid.json" {
		t.Fatalf("expected uri detail, got %#v", resp.Details["uri"])
	}
	if resp.Details["extra"].(string) != "yes" {
		t.Fatalf("expected extra=yes, got %#v", resp.Details["extra"])
	}
	if resp.Details["error"].(string) != "upstream is down" {
		t.Fatalf("expected error cause propagated, got %#v", resp.Details["error"])
	}
}

func TestWriteErrorFromErr_NonStructuredFallsBackToInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteErrorFromErr(w, req, errors.New("boom"), "fallback", map[string]any{"x": "y"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Code != string(gserrors.ErrCodeInternal) {
		t.Fatalf("expected code %q, got %q", gserrors.ErrCodeInternal, resp.Code)
	}
	if !resp.Retryable {
		t.Fatalf("expected retryable=true")
	}
	if resp.Details == nil || resp.Details["x"].(string) != "y" {
		t.Fatalf("expected details to include x=y, got %#v", resp.Details)
	}
	if resp.Details["error"].(string) != "boom" {
		t.Fatalf("expected details error=boom, got %#v", resp.Details["error"])
	}
}

func TestWriteErrorFromErr_IncludesPosition(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/convert", nil)
	w := httptest.NewRecorder()

	err := gserrors.New(gserrors.ErrCodeMalformedInput, "invalid character").
		WithPosition(gserrors.Position{Line: 3, Column: 7, Offset: 41})

	WriteErrorFromErr(w, req, err, "fallback", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if uerr := json.Unmarshal(w.Body.Bytes(), &resp); uerr != nil {
		t.Fatalf("failed to unmarshal response: %v", uerr)
	}
	pos, ok := resp.Details["position"].(map[string]any)
	if !ok {
		t.Fatalf("expected position details, got %#v", resp.Details)
	}
	if pos["line"].(float64) != 3 || pos["column"].(float64) != 7 || pos["offset"].(float64) != 41 {
		t.Fatalf("unexpected position %#v", pos)
	}
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()

	RespondJSON(w, http.StatusCreated, map[string]string{"status": "ok"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}

	w = httptest.NewRecorder()
	RespondJSON(w, http.StatusOK, make(chan int))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d for unencodable data, got %d", http.StatusInternalServerError, w.Code)
	}
}
