package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeUnknown        Code = "unknown"
	CodeNotFound       Code = "not_found"
	CodeInvalidRequest Code = "invalid_request"
	CodeMissingState   Code = "missing_state"
	CodeInvalidState   Code = "invalid_state"
	CodeSessionStore   Code = "session_store"
)

// Error is a service error with a stable code that is safe to expose to the client.
type Error struct {
	Err         Code
	Description string
}

var (
	ErrUnknown        = &Error{Err: CodeUnknown, Description: "unknown error"}
	ErrNotFound       = &Error{Err: CodeNotFound, Description: "not found"}
	ErrInvalidRequest = &Error{Err: CodeInvalidRequest, Description: "invalid request"}
	ErrMissingState   = &Error{Err: CodeMissingState, Description: "state parameter is missing"}
	ErrInvalidState   = &Error{Err: CodeInvalidState, Description: "state parameter is not valid base64"}
	ErrSessionStore   = &Error{Err: CodeSessionStore, Description: "session could not be stored"}
)

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}

	return string(e.Err) + ": " + e.Description
}

// HTTPStatus maps the error code to the status returned to the client.
// State decoding failures are server-side failures of the callback.
func (e *Error) HTTPStatus() int {
	switch e.Err {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// From returns the service error wrapped in err, or ErrUnknown.
func From(err error) *Error {
	var serviceErr *Error
	if !errors.As(err, &serviceErr) {
		return ErrUnknown
	}

	return serviceErr
}
