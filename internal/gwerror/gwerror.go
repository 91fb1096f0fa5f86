// Package gwerror implements the tagged-variant error type spec.md's
// design notes (§9) call for in place of the source's runtime type
// checks: one closed Kind enum behind a single struct, built the way the
// teacher builds its own small sentinel errors (registry.notFound,
// admin.statusErr) — plain structs implementing error, no wrapping
// library.
package gwerror

import (
	"fmt"
	"net/http"
)

// Kind classifies where an error originated.
type Kind int

const (
	// KindTransport: outbound request sent, no usable response
	// (connection refused, reset, timeout).
	KindTransport Kind = iota
	// KindBackendResponse: outbound request got an HTTP response
	// carrying an error status.
	KindBackendResponse
	// KindLocal: gateway-originated (503 not-active, 504 timeout, ...).
	KindLocal
	// KindUnknown: unclassified.
	KindUnknown
)

// BackendEnvelope is the subset of a backend's response envelope the
// shaper inspects.
type BackendEnvelope struct {
	Success bool          `json:"success"`
	Error   *BackendError `json:"error,omitempty"`
}

// BackendError mirrors envelope.ErrorInfo as seen on an upstream response;
// kept distinct because backend payloads are not trusted input.
type BackendError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is the single error type the gateway passes around internally.
// Status/Code/Message/Data are the exact fields the shaper (spec.md
// §4.5.4) needs to emit to the client.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Data    any

	// Headers carries a backend response's headers through to the
	// client (already passed through headerfilter.FilterResponse) when
	// Kind == KindBackendResponse.
	Headers http.Header

	// Timeout marks a KindTransport error as a transport timeout, the
	// distinction retry.Policy.ShouldRetry needs.
	Timeout bool

	// Cause is the underlying error, if any, kept for logging only.
	Cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Cause }

// Transport builds a KindTransport error: the request was sent but no
// response came back.
func Transport(cause error, timeout bool) *Error {
	return &Error{Kind: KindTransport, Status: http.StatusBadGateway, Code: "GATEWAY_ERROR", Message: cause.Error(), Timeout: timeout, Cause: cause}
}

// BuildFailed builds a KindUnknown error for requests that never got
// issued at all (URL build, DNS) — per spec.md §4.5.4 this shapes to
// 500 GATEWAY_ERROR, distinct from a transport failure in status and Kind.
func BuildFailed(cause error) *Error {
	return &Error{Kind: KindUnknown, Status: http.StatusInternalServerError, Code: "GATEWAY_ERROR", Message: cause.Error(), Cause: cause}
}

// BackendResponse builds a KindBackendResponse error from a backend's
// HTTP status and (if decodable) its response envelope.
func BackendResponse(status int, env *BackendEnvelope, rawBody string, headers http.Header) *Error {
	code := "SERVICE_ERROR"
	msg := "Unknown error occured"
	if env != nil && env.Error != nil {
		if env.Error.Code != "" {
			code = env.Error.Code
		}
		if env.Error.Message != "" {
			msg = env.Error.Message
		}
	} else if rawBody != "" {
		msg = rawBody
	}
	return &Error{Kind: KindBackendResponse, Status: status, Code: code, Message: msg, Headers: headers}
}

// Local builds a gateway-originated error (not-active gate, timeout,
// instance resolution failure, ...).
func Local(status int, code, message string, data any) *Error {
	return &Error{Kind: KindLocal, Status: status, Code: code, Message: message, Data: data}
}

// Unknown wraps an unclassified error (internal programming error) as
// 500 UNKNOWN_ERROR — it must never block the request path.
func Unknown(cause error) *Error {
	return &Error{Kind: KindUnknown, Status: http.StatusInternalServerError, Code: "UNKNOWN_ERROR", Message: fmt.Sprintf("%v", cause), Cause: cause}
}

// AsError extracts a *Error from any error value, wrapping unknown
// shapes via Unknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if ge, ok := err.(*Error); ok {
		return ge
	}
	return Unknown(err)
}
