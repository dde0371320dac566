package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownComponent, "component not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeUnknownComponent {
		t.Errorf("expected code %s, got %s", ErrCodeUnknownComponent, err.Code)
	}
	if err.Message != "component not found" {
		t.Errorf("expected message 'component not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("bad value")
	ctx := map[string]any{
		"path":      "data.node[0].u_rated",
		"attribute": "u_rated",
	}

	err := WrapWithContext(ErrCodeTypeMismatch, "conversion failed", cause, ctx)

	if err.Code != ErrCodeTypeMismatch {
		t.Errorf("expected code %s, got %s", ErrCodeTypeMismatch, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["attribute"] != "u_rated" {
		t.Errorf("expected attribute to be u_rated")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
		{
			name:     "text position",
			err:      New(ErrCodeMalformedInput, "invalid character").WithPosition(Position{Line: 2, Column: 5, Offset: 17}),
			expected: "[MALFORMED_INPUT] invalid character at 2:5 (offset 17)",
		},
		{
			name:     "binary position",
			err:      New(ErrCodeMalformedInput, "truncated").WithPosition(Position{Offset: 3}),
			expected: "[MALFORMED_INPUT] truncated at offset 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("x"), want: ErrCodeInternal},
		{name: "structured", err: New(ErrCodeNotSupported, "x"), want: ErrCodeNotSupported},
		{name: "fmt wrapped", err: fmt.Errorf("outer: %w", New(ErrCodeUnknownAttribute, "x")), want: ErrCodeUnknownAttribute},
		{name: "outermost wins", err: Wrap(ErrCodeTypeMismatch, "outer", New(ErrCodeMalformedInput, "inner")), want: ErrCodeTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeMalformedInput, "inner")
	outer := Wrap(ErrCodeInvalidRequest, "outer", inner)

	if !IsCode(outer, ErrCodeInvalidRequest) {
		t.Error("expected outer code to match")
	}
	if !IsCode(outer, ErrCodeMalformedInput) {
		t.Error("expected inner code to match")
	}
	if IsCode(outer, ErrCodeNotSupported) {
		t.Error("unexpected match")
	}
	if IsCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestPositionOf(t *testing.T) {
	inner := New(ErrCodeMalformedInput, "bad").WithPosition(Position{Line: 1, Column: 3, Offset: 2})
	outer := Wrap(ErrCodeMalformedInput, "decode failed", inner)

	pos, ok := PositionOf(outer)
	if !ok {
		t.Fatal("expected position")
	}
	if pos.Line != 1 || pos.Column != 3 || pos.Offset != 2 {
		t.Errorf("unexpected position %+v", pos)
	}

	if _, ok := PositionOf(New(ErrCodeInternal, "x")); ok {
		t.Error("expected no position")
	}
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeUnknownAttribute, "unknown").WithContext("component", "node")
	if err.Context["component"] != "node" {
		t.Errorf("expected component context, got %v", err.Context)
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeMalformedInput,
		ErrCodeUnknownDatasetType,
		ErrCodeUnknownComponent,
		ErrCodeUnknownAttribute,
		ErrCodeInvalidSparseStructure,
		ErrCodeNotSupported,
		ErrCodeTypeMismatch,
		ErrCodeInconsistentBatch,
		ErrCodeNotFound,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
		ErrCodeUnavailable,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}
