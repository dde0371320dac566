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

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

// Dataset (de)serialization error codes.
const (
	// ErrCodeMalformedInput indicates a codec-level syntax error. The error
	// carries the position of the offending byte.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"
	// ErrCodeUnknownDatasetType indicates a dataset type absent from the schema registry.
	ErrCodeUnknownDatasetType ErrorCode = "UNKNOWN_DATASET_TYPE"
	// ErrCodeUnknownComponent indicates a component absent from the dataset schema.
	ErrCodeUnknownComponent ErrorCode = "UNKNOWN_COMPONENT"
	// ErrCodeUnknownAttribute indicates an attribute absent from the component schema.
	ErrCodeUnknownAttribute ErrorCode = "UNKNOWN_ATTRIBUTE"
	// ErrCodeInvalidSparseStructure indicates a violated indptr invariant or a
	// malformed sparse component.
	ErrCodeInvalidSparseStructure ErrorCode = "INVALID_SPARSE_STRUCTURE"
	// ErrCodeNotSupported indicates a valid request the engine refuses to handle,
	// such as serializing a sparse batch.
	ErrCodeNotSupported ErrorCode = "NOT_SUPPORTED"
	// ErrCodeTypeMismatch indicates a value or node that cannot be converted to
	// the expected type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrCodeInconsistentBatch indicates batch components that disagree on the
	// number of scenarios.
	ErrCodeInconsistentBatch ErrorCode = "INCONSISTENT_BATCH"
)

// General error codes shared with the transport layers.
const (
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid caller input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeRateLimitExceeded indicates the client exceeded an enforced request limit.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeMethodNotAllowed indicates the HTTP method is not allowed for the resource.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	// ErrCodeUnavailable indicates a service or resource is temporarily unavailable.
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Position locates a failure inside raw input. Text input fills Line and
// Column (both 1-based); binary input only has a byte Offset.
type Position struct {
	Line   int   `json:"line,omitempty" yaml:"line,omitempty"`
	Column int   `json:"column,omitempty" yaml:"column,omitempty"`
	Offset int64 `json:"offset" yaml:"offset"`
}

// String returns "line:column (offset N)" for text positions and
// "offset N" for binary ones.
func (p Position) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("%d:%d (offset %d)", p.Line, p.Column, p.Offset)
	}
	return fmt.Sprintf("offset %d", p.Offset)
}

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code     ErrorCode
	Message  string
	Cause    error
	Context  map[string]any
	Position *Position
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	msg := e.Message
	if e.Position != nil {
		msg = fmt.Sprintf("%s at %s", msg, e.Position)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// WithPosition attaches an input position and returns the same error.
func (e *StructuredError) WithPosition(pos Position) *StructuredError {
	e.Position = &pos
	return e
}

// WithContext adds a key/value pair to the error context and returns the same error.
func (e *StructuredError) WithContext(key string, value any) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf returns the code of the outermost StructuredError in the chain,
// or ErrCodeInternal when err carries none. A nil error has no code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether any StructuredError in the chain has the given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *StructuredError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Cause
	}
	return false
}

// PositionOf returns the position of the first positioned StructuredError in the chain.
func PositionOf(err error) (Position, bool) {
	for err != nil {
		var se *StructuredError
		if !stderrors.As(err, &se) {
			return Position{}, false
		}
		if se.Position != nil {
			return *se.Position, true
		}
		err = se.Cause
	}
	return Position{}, false
}
