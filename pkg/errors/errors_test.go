package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindUnknown, "unknown"},
		{KindInvalidInput, "invalid_input"},
		{KindDocumentUnavailable, "document_unavailable"},
		{KindStructuralViolation, "structural_violation"},
		{KindMalformedPortSpec, "malformed_port_spec"},
		{KindEmptyBindingSet, "empty_binding_set"},
		{KindHostUnresolved, "host_unresolved"},
		{KindInternal, "internal"},
		{Kind(99), "unknown"}, // Invalid kind
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKind_Fatal(t *testing.T) {
	tests := []struct {
		kind  Kind
		fatal bool
	}{
		{KindDocumentUnavailable, true},
		{KindInvalidInput, true},
		{KindInternal, true},
		{KindStructuralViolation, false},
		{KindMalformedPortSpec, false},
		{KindEmptyBindingSet, false},
		{KindHostUnresolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Fatal(); got != tt.fatal {
				t.Errorf("Kind.Fatal() = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "op and message and err",
			err:      &Error{Op: "nessus.Parse", Message: "parse failed", Err: fmt.Errorf("unexpected EOF")},
			expected: "nessus.Parse: parse failed: unexpected EOF",
		},
		{
			name:     "op and message",
			err:      &Error{Op: "nessus.Parse", Message: "parse failed"},
			expected: "nessus.Parse: parse failed",
		},
		{
			name:     "op and err",
			err:      &Error{Op: "read input", Err: fmt.Errorf("no such file")},
			expected: "read input: no such file",
		},
		{
			name:     "message and err",
			err:      &Error{Message: "parse failed", Err: fmt.Errorf("unexpected EOF")},
			expected: "parse failed: unexpected EOF",
		},
		{
			name:     "message only",
			err:      &Error{Message: "parse failed"},
			expected: "parse failed",
		},
		{
			name:     "empty error",
			err:      &Error{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := &Error{Message: "wrapper", Err: underlying}

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlying)
	}

	err2 := &Error{Message: "no underlying"}
	if err2.Unwrap() != nil {
		t.Errorf("Unwrap() should return nil for error without underlying")
	}
}

func TestError_Is(t *testing.T) {
	err1 := &Error{Kind: KindStructuralViolation, Message: "missing Synopsis"}
	err2 := &Error{Kind: KindStructuralViolation, Message: "missing Solution"}
	err3 := &Error{Kind: KindMalformedPortSpec, Message: "missing Synopsis"}

	if !err1.Is(err2) {
		t.Error("Errors with same Kind should match")
	}
	if err1.Is(err3) {
		t.Error("Errors with different Kind should not match")
	}
	if err1.Is(fmt.Errorf("some error")) {
		t.Error("Should not match non-Error type")
	}
	if !errors.Is(err1, ErrStructuralViolation) {
		t.Error("errors.Is should match the structural violation sentinel")
	}
}

func TestE_Constructor(t *testing.T) {
	err := E(KindDocumentUnavailable)
	if e, ok := err.(*Error); ok {
		if e.Kind != KindDocumentUnavailable {
			t.Errorf("E(Kind) should set Kind, got %v", e.Kind)
		}
	} else {
		t.Error("E() should return *Error")
	}

	// Op first, then Message
	err = E("doctree.Parse", "failed to parse")
	if e, ok := err.(*Error); ok {
		if e.Op != "doctree.Parse" {
			t.Errorf("E(string) should set Op first, got %q", e.Op)
		}
		if e.Message != "failed to parse" {
			t.Errorf("E(string, string) should set Message second, got %q", e.Message)
		}
	}

	underlying := fmt.Errorf("underlying")
	err = E(KindMalformedPortSpec, "nessus.parsePortSpec", "bad token", underlying)
	if e, ok := err.(*Error); ok {
		if e.Kind != KindMalformedPortSpec {
			t.Errorf("Kind = %v, want KindMalformedPortSpec", e.Kind)
		}
		if e.Op != "nessus.parsePortSpec" {
			t.Errorf("Op = %q, want 'nessus.parsePortSpec'", e.Op)
		}
		if e.Message != "bad token" {
			t.Errorf("Message = %q, want 'bad token'", e.Message)
		}
		if e.Err != underlying {
			t.Error("Err should be set")
		}
	}
}

func TestNew(t *testing.T) {
	err := New("simple error")
	if e, ok := err.(*Error); ok {
		if e.Message != "simple error" {
			t.Errorf("New() should set Message, got %q", e.Message)
		}
	} else {
		t.Error("New() should return *Error")
	}
}

func TestWrap(t *testing.T) {
	underlying := &Error{Kind: KindDocumentUnavailable, Message: "open report.html"}

	wrapped := Wrap(underlying, "cli.run")
	if e, ok := wrapped.(*Error); ok {
		if e.Op != "cli.run" {
			t.Errorf("Wrap() should set Op, got %q", e.Op)
		}
		if e.Kind != KindDocumentUnavailable {
			t.Errorf("Wrap() should keep Kind, got %v", e.Kind)
		}
		if e.Err != underlying {
			t.Error("Wrap() should set Err")
		}
	}

	if Wrap(nil, "op") != nil {
		t.Error("Wrap(nil, op) should return nil")
	}
}

func TestGetKind(t *testing.T) {
	err := &Error{Kind: KindMalformedPortSpec}
	if kind := GetKind(err); kind != KindMalformedPortSpec {
		t.Errorf("GetKind() = %v, want KindMalformedPortSpec", kind)
	}

	wrapped := fmt.Errorf("wrapper: %w", err)
	if kind := GetKind(wrapped); kind != KindMalformedPortSpec {
		t.Errorf("GetKind() from wrapped = %v, want KindMalformedPortSpec", kind)
	}

	if kind := GetKind(fmt.Errorf("plain error")); kind != KindUnknown {
		t.Errorf("GetKind() from plain error = %v, want KindUnknown", kind)
	}
}

func TestCheckers(t *testing.T) {
	if !IsDocumentUnavailable(E(KindDocumentUnavailable, "op", "msg")) {
		t.Error("Should recognize KindDocumentUnavailable")
	}
	if !IsStructuralViolation(fmt.Errorf("block: %w", ErrStructuralViolation)) {
		t.Error("Should recognize wrapped KindStructuralViolation")
	}
	if !IsMalformedPortSpec(ErrMalformedPortSpec) {
		t.Error("Should recognize KindMalformedPortSpec")
	}
	if IsStructuralViolation(fmt.Errorf("plain error")) {
		t.Error("Should not match plain error")
	}
}

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"ErrDocumentUnavailable", ErrDocumentUnavailable, KindDocumentUnavailable},
		{"ErrStructuralViolation", ErrStructuralViolation, KindStructuralViolation},
		{"ErrMalformedPortSpec", ErrMalformedPortSpec, KindMalformedPortSpec},
		{"ErrInvalidConfig", ErrInvalidConfig, KindInvalidInput},
		{"ErrNoParser", ErrNoParser, KindDocumentUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("%s.Kind = %v, want %v", tt.name, tt.err.Kind, tt.kind)
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	base := fmt.Errorf("base error")
	wrapped := &Error{Kind: KindDocumentUnavailable, Message: "read input", Err: base}

	if !errors.Is(wrapped, base) {
		t.Error("errors.Is should find base error through Unwrap")
	}

	var convErr *Error
	if !errors.As(wrapped, &convErr) {
		t.Error("errors.As should find *Error")
	}
	if convErr.Kind != KindDocumentUnavailable {
		t.Error("errors.As should return the correct error")
	}
}

func BenchmarkE(b *testing.B) {
	underlying := fmt.Errorf("underlying")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = E(KindStructuralViolation, "op", "message", underlying)
	}
}

func BenchmarkGetKind(b *testing.B) {
	err := &Error{Kind: KindMalformedPortSpec}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetKind(err)
	}
}
