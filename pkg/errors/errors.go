// Package errors provides the error taxonomy shared by every playht-go package.
//
// Error is the single structured error type. Its Kind says which layer failed
// (configuration, transport, remote API, decoding, or a caller-supplied sink),
// so callers can decide whether to retry, fail, or re-authenticate without
// parsing messages.
//
// Usage:
//
//	err := errors.New(errors.KindAPI, "GetTTSJob", nil).WithStatusCode(404).WithMessage("job not found")
//	if errors.IsKind(err, errors.KindAPI) && errors.StatusCode(err) == 404 {
//	    ...
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error by the layer that produced it.
type Kind int

// Error kinds.
const (
	// KindUnknown is the zero Kind. It is never produced by this module.
	KindUnknown Kind = iota
	// KindConfiguration marks missing or invalid credentials and options.
	KindConfiguration
	// KindTransport marks connection, TLS, timeout and body read failures.
	KindTransport
	// KindAPI marks non-2xx HTTP responses.
	KindAPI
	// KindDecode marks malformed JSON bodies and SSE frames.
	KindDecode
	// KindSink marks failures writing to a caller-supplied destination.
	KindSink
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	case KindDecode:
		return "decode"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Sentinel values for errors.Is matching on Kind alone.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrAPI           = &Error{Kind: KindAPI}
	ErrDecode        = &Error{Kind: KindDecode}
	ErrSink          = &Error{Kind: KindSink}
)

// Error is a structured error describing which operation failed, in which
// layer, and why.
type Error struct {
	// Kind identifies the failing layer.
	Kind Kind

	// Operation describes what was being done when the error occurred
	// (e.g. "ListVoices", "StreamAudio").
	Operation string

	// StatusCode is the HTTP status code for KindAPI errors.
	StatusCode int

	// Message is the server-provided error message, when present.
	Message string

	// Details holds optional structured metadata about the error.
	Details map[string]any

	// Cause is the underlying error, if any.
	Cause error
}

// New creates an Error with the given kind, operation and cause.
func New(kind Kind, operation string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Operation: operation,
		Cause:     cause,
	}
}

// Error returns a human-readable representation of the error.
func (e *Error) Error() string {
	base := fmt.Sprintf("[%s] %s", e.Kind, e.Operation)

	if e.StatusCode != 0 {
		base += fmt.Sprintf(" (status %d)", e.StatusCode)
	}

	if e.Message != "" {
		base += ": " + e.Message
	}

	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}

	return base
}

// Unwrap returns the underlying cause, enabling use with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a kind sentinel matching e.
// Only sentinels (no operation, no cause) match by kind; any other
// target falls through to pointer identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Operation == "" && t.Cause == nil && t.StatusCode == 0 && t.Message == "" {
		return e.Kind == t.Kind
	}
	return e == t
}

// WithStatusCode sets the status code and returns e for chaining.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

// WithMessage sets the server-provided message and returns e for chaining.
func (e *Error) WithMessage(msg string) *Error {
	e.Message = msg
	return e
}

// WithDetails sets the details map and returns e for chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// IsKind reports whether any Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of the first Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if !stderrors.As(err, &e) {
		return KindUnknown
	}
	return e.Kind
}

// StatusCode returns the HTTP status code carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if !stderrors.As(err, &e) {
		return 0
	}
	return e.StatusCode
}

// IsRetryable reports whether a caller may reasonably retry the failed call.
// Transport failures, 429 and 5xx responses qualify. The client itself never retries.
func IsRetryable(err error) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindTransport:
		return true
	case KindAPI:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}
