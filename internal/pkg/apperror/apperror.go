// Package apperror defines the structured errors domain services return to the HTTP boundary.
package apperror

import (
	"errors"
	"net/http"
)

// Error is a domain failure with a stable machine-readable code and an HTTP status hint.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches on code so callers can compare against sentinel values with errors.Is,
// including copies produced by WithMessage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e carrying a different human message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: message}
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func Forbidden(code, message string) *Error {
	return New(http.StatusForbidden, code, message)
}

func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

var ErrForbidden = Forbidden("FORBIDDEN", "You are not allowed to perform this action")
