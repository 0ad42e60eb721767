// Package errors provides the error taxonomy used across the converter.
//
// Errors carry a Kind so callers can tell a fatal input problem apart from
// per-block and per-binding conditions that only end up in the run summary.
package errors

import (
	"errors"
	"fmt"
)

// =============================================================================
// Base Error Types
// =============================================================================

// Error is the base error type for all converter errors.
type Error struct {
	// Kind indicates the category of error
	Kind Kind

	// Op is the operation being performed (e.g., "nessus.extractFields")
	Op string

	// Message is a human-readable description
	Message string

	// Err is the underlying error
	Err error
}

// Kind represents the kind/category of error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindDocumentUnavailable
	KindStructuralViolation
	KindMalformedPortSpec
	KindEmptyBindingSet
	KindHostUnresolved
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindDocumentUnavailable:
		return "document_unavailable"
	case KindStructuralViolation:
		return "structural_violation"
	case KindMalformedPortSpec:
		return "malformed_port_spec"
	case KindEmptyBindingSet:
		return "empty_binding_set"
	case KindHostUnresolved:
		return "host_unresolved"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Fatal reports whether errors of this kind stop the whole run.
func (k Kind) Fatal() bool {
	return k == KindDocumentUnavailable || k == KindInvalidInput || k == KindInternal
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		switch {
		case e.Err != nil && e.Message != "":
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		case e.Err != nil:
			return fmt.Sprintf("%s: %v", e.Op, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// =============================================================================
// Constructors
// =============================================================================

// E constructs an Error from the given arguments.
// Arguments can be: Kind, string (Op or Message), error.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Kind:
			e.Kind = a
		case string:
			if e.Op == "" {
				e.Op = a
			} else {
				e.Message = a
			}
		case error:
			e.Err = a
		}
	}
	return e
}

// New creates a new simple error.
func New(message string) error {
	return &Error{Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: GetKind(err), Op: op, Err: err}
}

// =============================================================================
// Error Checkers
// =============================================================================

// GetKind returns the Kind of the error, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As forwards to the standard library errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is forwards to the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsDocumentUnavailable checks if the input document could not be obtained.
func IsDocumentUnavailable(err error) bool {
	return GetKind(err) == KindDocumentUnavailable
}

// IsStructuralViolation checks if a block broke the report's layout assumptions.
func IsStructuralViolation(err error) bool {
	return GetKind(err) == KindStructuralViolation
}

// IsMalformedPortSpec checks if a port token could not be parsed.
func IsMalformedPortSpec(err error) bool {
	return GetKind(err) == KindMalformedPortSpec
}

// =============================================================================
// Common Errors
// =============================================================================

var (
	// ErrDocumentUnavailable is the sentinel for unreadable input.
	ErrDocumentUnavailable = &Error{Kind: KindDocumentUnavailable, Message: "document unavailable"}

	// ErrStructuralViolation is the sentinel for per-block layout failures.
	ErrStructuralViolation = &Error{Kind: KindStructuralViolation, Message: "structural assumption violated"}

	// ErrMalformedPortSpec is the sentinel for unparseable protocol/port tokens.
	ErrMalformedPortSpec = &Error{Kind: KindMalformedPortSpec, Message: "malformed port spec"}

	// ErrInvalidConfig is returned for invalid configuration.
	ErrInvalidConfig = &Error{Kind: KindInvalidInput, Message: "invalid configuration"}

	// ErrNoParser is returned when no registered parser accepts the input.
	ErrNoParser = &Error{Kind: KindDocumentUnavailable, Message: "no parser for input"}
)
