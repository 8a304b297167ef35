package builtin

import (
	"errors"
	"fmt"

	"github.com/roach88/aspectswrl/internal/ir"
)

// ErrorCode categorizes malformed invocations.
type ErrorCode string

const (
	// ErrCodeArityMismatch indicates the wrong number of arguments. Always checked first.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeUnboundVariable indicates a variable that must be bound is unbound.
	ErrCodeUnboundVariable ErrorCode = "UNBOUND_VARIABLE"

	// ErrCodeTypeMismatch indicates a resolved value of the wrong kind.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeBooleanParse indicates a literal that is not a valid xsd:boolean.
	ErrCodeBooleanParse ErrorCode = "BOOLEAN_PARSE_ERROR"

	// ErrCodeUnknownBuiltIn indicates a name the library does not define.
	ErrCodeUnknownBuiltIn ErrorCode = "UNKNOWN_BUILTIN"
)

// Error is returned for every malformed invocation.
//
// The message always names the built-in (namespace + name) and the invoking
// rule, plus the variable name or the 1-based argument position, so a rule
// author can locate the fault.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// BuiltIn is the full built-in IRI (Namespace + name).
	BuiltIn string

	// Rule is the name of the invoking rule.
	Rule string

	// Position is the 1-based argument position, 0 when not applicable.
	Position int

	// Variable is the offending variable name, empty for direct arguments.
	Variable string

	// Expected and Actual are set for ErrCodeTypeMismatch.
	Expected ir.Kind
	Actual   ir.Kind

	// Message is the human-readable detail.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("Built-in %s in rule %s: %s", e.BuiltIn, e.Rule, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" when err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// IsArityMismatch reports whether err is an arity error.
func IsArityMismatch(err error) bool { return CodeOf(err) == ErrCodeArityMismatch }

// IsUnboundVariable reports whether err is an unbound-variable error.
func IsUnboundVariable(err error) bool { return CodeOf(err) == ErrCodeUnboundVariable }

// IsTypeMismatch reports whether err is a type-mismatch error.
func IsTypeMismatch(err error) bool { return CodeOf(err) == ErrCodeTypeMismatch }

// IsBooleanParse reports whether err is a boolean parse error.
func IsBooleanParse(err error) bool { return CodeOf(err) == ErrCodeBooleanParse }

// IsUnknownBuiltIn reports whether err names an unknown built-in.
func IsUnknownBuiltIn(err error) bool { return CodeOf(err) == ErrCodeUnknownBuiltIn }
