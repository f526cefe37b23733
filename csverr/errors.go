// Package csverr implements the tagged error model of spec §4.G / §7: every
// caller-facing failure carries a stable, screaming-snake-case Code plus a
// human message, and where applicable line/path/limit/kind details. Errors
// are wrapped into the caller's fmt.Errorf chain with %w exactly the way the
// teacher wraps every os/csv/json error ("failed to parse CSV at line %d:
// %w"), so errors.As/errors.Is keep working for callers up the stack.
package csverr

import (
	"errors"
	"fmt"
)

// Kind is the top-level error taxonomy from spec §4.G.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindParsing       Kind = "PARSING"
	KindSecurity      Kind = "SECURITY"
	KindFileSystem    Kind = "FILE_SYSTEM"
	KindLimit         Kind = "LIMIT"
	KindConfiguration Kind = "CONFIGURATION"
)

// Stable, programmatic error codes (spec §7: "the code is the contract for
// programmatic handling; the message may change").
const (
	CodeUnclosedQuotes    = "UNCLOSED_QUOTES"
	CodeLimitExceeded     = "LIMIT_EXCEEDED"
	CodeInvalidOption     = "INVALID_OPTION"
	CodeInjectionDetected = "INJECTION_DETECTED"
	CodePluginConflict    = "PLUGIN_CONFLICT"
	CodeMalformedPlugin   = "MALFORMED_PLUGIN"
	CodeNextCalledTwice   = "NEXT_CALLED_TWICE"
	CodeCancelled         = "CANCELLED"
	CodeValidationFailed  = "VALIDATION_FAILED"
)

// Error is the concrete type every tagged failure in this module uses.
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	Details    string
	LineNumber int // 0 when not applicable
	Path       string
	Limit      int64
	LimitKind  string // "maxRows" | "maxRecords"
	cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Code)
	}
	return e.Message
}

// Unwrap exposes a wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// New builds a bare *Error of the given kind/code/message.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds a *Error that chains an underlying cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, cause: cause}
}

// UnclosedQuotes builds the one structural parse error the Fast-Path Engine
// raises (spec §4.B): EOF reached while still inside a quoted field.
func UnclosedQuotes(line int) *Error {
	return &Error{
		Kind:       KindParsing,
		Code:       CodeUnclosedQuotes,
		Message:    fmt.Sprintf("unclosed quoted field starting at line %d", line),
		LineNumber: line,
	}
}

// LimitExceeded builds the Limit error family (spec §4.C.2 / §4.G):
// maxRows/maxRecords exceeded.
func LimitExceeded(kind string, limit int64) *Error {
	return &Error{
		Kind:      KindLimit,
		Code:      CodeLimitExceeded,
		Message:   fmt.Sprintf("%s of %d exceeded", kind, limit),
		Limit:     limit,
		LimitKind: kind,
	}
}

// Cancelled is returned by a stream handle's Resume after Cancel (spec §4.F).
func Cancelled() *Error {
	return &Error{Kind: KindValidation, Code: CodeCancelled, Message: "stream was cancelled"}
}

// Validation builds a generic VALIDATION-kind error, used e.g. by the
// Transform Hooks pipeline when a non-callable is registered.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Configuration builds a generic CONFIGURATION-kind error.
func Configuration(code, message string) *Error {
	return &Error{Kind: KindConfiguration, Code: code, Message: message}
}

// As is a small convenience wrapper over errors.As for the common case of
// testing whether an error chain carries a *csverr.Error.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
