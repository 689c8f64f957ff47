// Package domainerrors defines coded errors shared across services and
// handlers. Services attach a Code to every error they surface; the HTTP
// layer translates codes to statuses in one place (pkg/platform/httputil),
// so business code never imports net/http.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and for callers that need
// to branch on failure kind without string matching.
type Code string

const (
	// CodeDataUnavailable signals the record store has not finished loading
	// or loaded zero records. Fatal for every query until a successful load.
	CodeDataUnavailable Code = "data_unavailable"

	// CodeInvalidDate signals a caller-supplied date that is not YYYY-MM-DD.
	CodeInvalidDate Code = "invalid_date_format"

	// CodeInvalidPagination signals a negative limit/offset or a limit above
	// the hard ceiling.
	CodeInvalidPagination Code = "invalid_pagination"

	// CodeUnknownEntity signals a region identifier outside the closed
	// federative-entity catalog.
	CodeUnknownEntity Code = "unknown_entity"

	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal_error"
)

// Error is the concrete coded error type. Message is safe to show callers
// for non-internal codes; Err carries the wrapped cause, if any.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain. Unknown errors map to
// CodeInternal so nothing leaks with a 200.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message from an error chain, empty
// when the error carries no code.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// Is reports whether any error in the chain carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasCode is an alias of Is kept for call-site readability in tests.
func HasCode(err error, code Code) bool { return Is(err, code) }
