package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while evaluating a rule body.
//
// Runtime errors include:
//   - Built-in failure: a built-in returned an error (Err holds it)
//   - Quota exceeded: frame expansion exceeded the evaluator's limit
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Rule is the rule being evaluated.
	Rule string

	// Atom is the 1-based index of the failing atom, 0 if not atom-specific.
	Atom int

	// BuiltIn is the built-in name of the failing atom.
	BuiltIn string

	// Err is the underlying error.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeBuiltInFailed indicates a built-in returned an error.
	ErrCodeBuiltInFailed RuntimeErrorCode = "BUILTIN_FAILED"

	// ErrCodeQuotaExceeded indicates too many binding frames.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s (rule=%s", e.Code, e.Message, e.Rule)
	if e.Atom > 0 {
		msg += fmt.Sprintf(", atom=%d %s", e.Atom, e.BuiltIn)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error, typically a *builtin.Error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeQuotaExceeded
	}
	return false
}

func newBuiltInError(rule string, atom int, name string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeBuiltInFailed,
		Message: "built-in failed",
		Rule:    rule,
		Atom:    atom,
		BuiltIn: name,
		Err:     err,
	}
}

// NewQuotaError creates a RuntimeError for quota exceeded.
func NewQuotaError(rule string, atom int, frames, maxFrames int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("rule exceeded max frames (%d > %d)", frames, maxFrames),
		Rule:    rule,
		Atom:    atom,
	}
}
