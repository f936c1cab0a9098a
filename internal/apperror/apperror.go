// Package apperror defines the closed set of error kinds the API can produce.
// Every domain error is tagged with a Kind at the point of detection and
// carried unmodified to the response boundary, which maps it to an HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the API's failure categories.
type Kind int

const (
	// BadRequest covers malformed or missing input, including field-level
	// validation failures.
	BadRequest Kind = iota
	// Unauthorized covers missing, invalid, or expired credentials.
	Unauthorized
	// Forbidden covers a valid identity with insufficient permission.
	Forbidden
	// NotFound covers a referenced entity that does not exist.
	NotFound
	// Conflict covers duplicate unique fields.
	Conflict
	// Upstream covers failures of external services (object storage).
	Upstream
	// Internal covers everything unclassified.
	Internal
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Upstream, Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error carrying its kind, a client-facing message,
// optional field-level issues, and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a tagged error with a client-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an underlying error with a kind and client-facing message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a BadRequest error carrying field-level issues.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: BadRequest, Message: message, Fields: fields}
}

// From extracts the *Error from err, or tags it as Internal with a
// generic message so that unclassified failures never leak details.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Internal, Message: "Something went wrong", Err: err}
}
