package core

import "fmt"

// Error is a structured error with a stable code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// WrapErrorf is WrapError with a formatted cause.
func WrapErrorf(base *Error, format string, args ...any) *Error {
	return WrapError(base, fmt.Errorf(format, args...))
}

// Predefined errors. The first group is recoverable: callers degrade to a
// conservative default (hold signal, minimum volume, fallback stop pips)
// and continue the cycle. The second group indicates an upstream contract
// violation and is fatal to the specific call.
var (
	// Recoverable, degrade-and-continue.
	ErrInsufficientData   = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient bars for computation"}
	ErrConversionNotFound = &Error{Code: "CONVERSION_NOT_FOUND", Message: "no currency conversion path"}
	ErrDegenerateRisk     = &Error{Code: "DEGENERATE_RISK_INPUTS", Message: "degenerate risk inputs"}
	ErrUnknownStrategy    = &Error{Code: "UNKNOWN_STRATEGY", Message: "strategy not registered"}
	ErrNoData             = &Error{Code: "NO_DATA", Message: "no data available"}

	// Contract violations, fatal to the call.
	ErrInvalidSeries     = &Error{Code: "INVALID_SERIES", Message: "price series violates ordering contract"}
	ErrInvalidInstrument = &Error{Code: "INVALID_INSTRUMENT", Message: "instrument spec invalid"}

	// Collaborator errors.
	ErrBrokerDisconnected = &Error{Code: "BROKER_DISCONNECTED", Message: "broker not connected"}
	ErrOrderFailed        = &Error{Code: "ORDER_FAILED", Message: "order failed"}
	ErrConfigInvalid      = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing      = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
