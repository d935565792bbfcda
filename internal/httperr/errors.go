// Package httperr defines the API error taxonomy and its mapping to HTTP
// status codes. Handlers return these; the transport layer serializes them.
package httperr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Code    int      `json:"code"`
	Message string   `json:"error"`
	Fields  []string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

var (
	ErrUnauthenticated = &Error{Code: http.StatusUnauthorized, Message: "invalid or missing token"}
	// Deliberately generic: does not distinguish unknown email from wrong password.
	ErrInvalidCredentials = &Error{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	ErrEmailTaken         = &Error{Code: http.StatusConflict, Message: "email already registered"}
	ErrNotFound           = &Error{Code: http.StatusNotFound, Message: "not found"}
	ErrInternal           = &Error{Code: http.StatusInternalServerError, Message: "internal error"}
)

// Validation builds a 400 listing the offending fields.
func Validation(fields ...string) *Error {
	return &Error{
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Fields:  fields,
	}
}

// BadRequest builds a 400 with a specific message.
func BadRequest(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// Status resolves the HTTP status for any error; unknown errors are 500.
func Status(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return http.StatusInternalServerError
}
