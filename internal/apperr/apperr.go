// Package apperr defines the gateway's error taxonomy and the client-visible
// JSON error body shape.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies which taxonomy bucket an Error belongs to.
type Kind string

const (
	KindBadRequest        Kind = "invalid_request_error"
	KindModelNotFound     Kind = "model_not_found"
	KindUnauthorized      Kind = "invalid_request_error"
	KindUpstreamError     Kind = "upstream_error"
	KindConversionError   Kind = "conversion_error"
	KindStreamUpstreamErr Kind = "upstream_error"
)

// Error is the gateway's internal error representation. Status is the HTTP
// status it maps to; Code, when set, becomes the "code" field of the
// client-visible body.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Body is the client-visible shape: {"error":{"message","type","code?"}}.
type Body struct {
	Error BodyError `json:"error"`
}

type BodyError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// AsBody renders e into the wire body shape.
func (e *Error) AsBody() Body {
	return Body{Error: BodyError{
		Message: e.Error(),
		Type:    string(e.Kind),
		Code:    e.Code,
	}}
}

// BadRequest reports a client body that failed to parse in its declared
// dialect, or that is missing a required field such as "model".
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// ModelNotFound reports that neither a group nor a direct model matched the hint.
func ModelNotFound(hint string) *Error {
	return &Error{
		Kind:    KindModelNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("model not found: %q", hint),
		Code:    "model_not_found",
	}
}

// Unauthorized reports a missing or incorrect auth token.
func Unauthorized(code string) *Error {
	msg := "missing auth header"
	if code == "invalid_token" {
		msg = "invalid auth token"
	}
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: msg, Code: code}
}

// Upstream wraps a network failure or non-2xx response from a backend.
// Body is truncated to 500 chars by the caller before it's attached here.
func Upstream(status int, body string, err error) *Error {
	msg := fmt.Sprintf("upstream error (status %d): %s", status, body)
	if err != nil {
		msg = fmt.Sprintf("upstream error: %v", err)
	}
	return &Error{Kind: KindUpstreamError, Status: http.StatusBadGateway, Message: msg, Err: err}
}

// ConversionKind enumerates the ways dialect conversion can fail.
type ConversionKind string

const (
	ConversionBadShape     ConversionKind = "bad_shape"
	ConversionMissingField ConversionKind = "missing_field"
	ConversionBadJSONArgs  ConversionKind = "bad_json_args"
)

// Conversion reports that a dialect conversion cannot proceed because a
// required field of the target shape is absent and no default applies.
func Conversion(kind ConversionKind, field string) *Error {
	return &Error{
		Kind:    KindConversionError,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("conversion error (%s): %s", kind, field),
		Code:    string(kind),
	}
}

// StreamUpstream reports a mid-stream error from the backend. The edge
// adapter emits this as an SSE "event: error" frame and ends the stream.
func StreamUpstream(err error) *Error {
	return &Error{Kind: KindStreamUpstreamErr, Status: 0, Message: "upstream stream error", Err: err}
}

// As is a thin re-export of errors.As for callers that only import apperr.
func As(err error, target any) bool { return errors.As(err, target) }
