// Package apperr defines the error kinds the API reports to clients.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is an error with a client-facing message. Err, when set, is the
// underlying cause and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Expose marks an Internal message as safe to show to clients.
	Expose bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// PublicMessage is the message a client may see. Internal errors stay generic unless exposed.
func (e *Error) PublicMessage(generic string) string {
	if e.Kind == KindInternal && !e.Expose {
		return generic
	}
	return e.Message
}

// Status maps the kind to an HTTP status. Conflict is reported as 400.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps err with a message that stays server-side.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// InternalPublic is an Internal error whose message is shown to clients.
func InternalPublic(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err, Expose: true}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
