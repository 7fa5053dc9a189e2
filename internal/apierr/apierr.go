// Package apierr defines the error taxonomy surfaced by the flueprint API.
//
// Every error leaving the HTTP layer carries exactly one [Kind]; the response
// body is always the single JSON object {"error": kind, "message": ...} with a
// status code derived from the kind. No partial payload is ever returned
// alongside an error.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error.
type Kind string

const (
	// BadRequest marks malformed or missing caller input. Never retried.
	BadRequest Kind = "bad_request"

	// ValidationError marks well-formed but semantically invalid caller input.
	ValidationError Kind = "validation_error"

	// ModelError marks total text-generation failure: every configured
	// provider failed or returned unusable output.
	ModelError Kind = "model_error"

	// DBError marks a persistence failure, opaque to the caller.
	DBError Kind = "db_error"

	// ServerError marks any other internal failure.
	ServerError Kind = "server_error"
)

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case BadRequest, ValidationError:
		return http.StatusBadRequest
	case ModelError, DBError, ServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified API error.
type Error struct {
	Kind    Kind
	Message string

	// Err is the wrapped cause, if any. Not exposed to callers.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New creates an [Error] with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an [Error] that records err as its cause. The cause appears in
// logs but not in the caller-facing message.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the [Kind] from err, walking the wrap chain. Unclassified
// errors report [ServerError].
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ServerError
}

// MessageOf extracts the caller-facing message from err. Unclassified errors
// report a generic message so internal details never leak to the caller.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "internal error"
}
