package httperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the error type returned by handlers and stores. It carries the HTTP
// status it should be rendered with and a stable dotted code for clients.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(status int, code, message string, details any) *Error {
	if err, ok := details.(error); ok {
		details = err.Error()
	}

	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func BadRequest(code, message string, details any) *Error {
	return New(http.StatusBadRequest, code, message, details)
}

func Unauthorized(code, message string, details any) *Error {
	return New(http.StatusUnauthorized, code, message, details)
}

func Forbidden(code, message string, details any) *Error {
	return New(http.StatusForbidden, code, message, details)
}

func NotFound(code, message string, details any) *Error {
	return New(http.StatusNotFound, code, message, details)
}

func Conflict(code, message string, details any) *Error {
	return New(http.StatusConflict, code, message, details)
}

func InternalServerError(code, message string, details any) *Error {
	return New(http.StatusInternalServerError, code, message, details)
}

// NoContent is a success signal, returned as an error so handlers without a
// body can short-circuit the JSON encoder.
func NoContent(code, message string, details any) *Error {
	return New(http.StatusNoContent, code, message, details)
}

// StatusOf returns the HTTP status carried by err, or 500 for foreign errors.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}

	return http.StatusInternalServerError
}

// CodeOf returns the code carried by err, or an empty string.
func CodeOf(err error) string {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return ""
}
