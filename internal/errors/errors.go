package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error is the application error carried from repositories and ledgers up to handlers.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Status  int
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so errors.Is(err, errors.NotFound("")) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// HTTPStatus returns the explicit status or the code's default.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Code.StatusCode()
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// InvalidOperation creates an INVALID_OPERATION error
func InvalidOperation(message string) *Error {
	return &Error{
		Code:    ErrInvalidOperation,
		Message: message,
	}
}

// NotOwner is the INVALID_OPERATION raised when a non-author mutates owned content.
func NotOwner(resource string) *Error {
	return &Error{
		Code:    ErrInvalidOperation,
		Message: fmt.Sprintf("only the owner can modify this %s", resource),
		Status:  http.StatusForbidden,
	}
}

// RemoteFailure wraps a rejected or timed out store call.
func RemoteFailure(op string, err error) *Error {
	return &Error{
		Code: ErrRemoteFailure,
		Op:   op,
		Err:  err,
	}
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *Error {
	return &Error{
		Code:    ErrBadRequest,
		Message: message,
	}
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *Error {
	return &Error{
		Code:    ErrUnauthorized,
		Message: message,
	}
}

// Conflict creates a CONFLICT error
func Conflict(message string) *Error {
	return &Error{
		Code:    ErrConflict,
		Message: message,
	}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// IsNotFound reports whether err carries NOT_FOUND.
func IsNotFound(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrNotFound
}

// IsInvalidOperation reports whether err carries INVALID_OPERATION.
func IsInvalidOperation(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrInvalidOperation
}

// IsRemoteFailure reports whether err carries REMOTE_FAILURE.
func IsRemoteFailure(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrRemoteFailure
}
