// Package apperr provides the error taxonomy shared by the service layer and
// the HTTP surface: validation, not-found, authorization, and store failures
// must stay distinguishable all the way to the client.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class for API responses.
type Code string

const (
	CodeUnknown    Code = "UNKNOWN"
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeForbidden  Code = "FORBIDDEN"
	CodeBadRequest Code = "BAD_REQUEST"
	CodeStore      Code = "STORE_ERROR"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// Error represents a structured application error.
type Error struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a detail key-value pair to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON returns the JSON representation of the error.
func (e *Error) ToJSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// New creates a new Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// NotFound creates a not-found error for the named resource.
func NotFound(resource string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Forbidden creates an authorization error.
func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(CodeBadRequest, message)
}

// Store wraps a store-layer failure. The core never retries these; retry
// policy belongs to the caller.
func Store(err error, message string) *Error {
	return Wrap(err, CodeStore, message)
}

// Internal creates an internal error.
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Is checks whether err is an application error with the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatus returns the HTTP status code for an error, defaulting to 500
// for anything that is not an application error.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
