// Package apperr carries the HTTP status and client-facing text of a failed request.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is returned by the resolver and service layers and rendered by the HTTP
// error handler.
type Error struct {
	// HTTP status code
	Code int
	// Short client-facing summary
	Summary string
	// Detail for server-side failures
	Message string
	// Usage hint for malformed requests
	Usage string
	// Original error for logging
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Summary, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Summary, e.Message)
	}
	return e.Summary
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsClient reports whether the failure was caused by the request.
func (e *Error) IsClient() bool {
	return e.Code >= 400 && e.Code < 500
}

func BadRequest(summary string) *Error {
	return &Error{Code: http.StatusBadRequest, Summary: summary}
}

func BadRequestf(summary, format string, args ...any) *Error {
	return &Error{Code: http.StatusBadRequest, Summary: summary, Message: fmt.Sprintf(format, args...)}
}

func UnsupportedContentType(contentType, usage string) *Error {
	return &Error{
		Code:    http.StatusBadRequest,
		Summary: "Unsupported content type",
		Message: fmt.Sprintf("content type %q is not supported", contentType),
		Usage:   usage,
	}
}

func MethodNotAllowed(method string) *Error {
	return &Error{
		Code:    http.StatusMethodNotAllowed,
		Summary: "Method not allowed",
		Message: fmt.Sprintf("%s is not supported, use POST", method),
	}
}

// Processing wraps a decode or encode failure. The underlying message is shown to
// the caller.
func Processing(err error) *Error {
	return &Error{
		Code:    http.StatusInternalServerError,
		Summary: "Image processing failed",
		Message: err.Error(),
		Err:     err,
	}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
