// Package apperror defines the error taxonomy shared by the service and
// handler layers. Every failure a caller can act on is an *Error carrying a
// Kind; the HTTP layer turns the Kind into a status code in one place.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the boundary layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidArgument
	KindConflict
	KindUnprocessable
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified application error. Entity and Field are optional and
// only set for NotFound and InvalidArgument respectively.
type Error struct {
	Kind    Kind
	Entity  string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind and, when set on the target, by Entity
// and Field. This lets callers write errors.Is(err, apperror.ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	if t.Field != "" && t.Field != e.Field {
		return false
	}
	return true
}

// Sentinels for errors.Is checks. They match any error of the same Kind.
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUnprocessable   = &Error{Kind: KindUnprocessable, Message: "unprocessable"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
)

// NotFound reports a missing entity, e.g. NotFound("parking spot", 7).
func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s %v not found", entity, id),
	}
}

// InvalidArgument reports malformed or missing input for a field.
func InvalidArgument(field, reason string) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Message: reason}
}

// Conflict reports a request that clashes with existing state.
func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Message: reason}
}

// Unprocessable reports well-formed input that breaks a business rule.
func Unprocessable(reason string) *Error {
	return &Error{Kind: KindUnprocessable, Message: reason}
}

// Forbidden reports an authenticated caller acting outside its rights.
func Forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Message: reason}
}

// Unauthorized reports a missing or unusable identity.
func Unauthorized(reason string) *Error {
	return &Error{Kind: KindUnauthorized, Message: reason}
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to its response code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Describe returns the status code and client-facing message for err.
// Context errors are reported as timeouts; unclassified errors never leak
// their text.
func Describe(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "request timeout"
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, "request cancelled"
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return HTTPStatus(ae.Kind), ae.Message
	}
	return http.StatusInternalServerError, "internal server error"
}
