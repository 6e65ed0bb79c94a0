// Package errors holds the coded error every handler renders as a
// {"code", "message", "details"} body. Feature packages wrap their sentinels
// in an AppError so errors.Is still reaches them after the HTTP mapping.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Codes shared by all features.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeInvalidInput = "INVALID_INPUT"
)

// Booking and availability codes.
const (
	CodeRulesAlreadyExist     = "RULES_ALREADY_EXIST"
	CodeSlotAlreadyBooked     = "SLOT_ALREADY_BOOKED"
	CodeAvailableSlotNotFound = "AVAILABLE_SLOT_NOT_FOUND"
	CodeInvalidStartDateTime  = "INVALID_START_DATE_TIME"
)

var statusByCode = map[string]int{
	CodeNotFound:              http.StatusNotFound,
	CodeValidation:            http.StatusUnprocessableEntity,
	CodeConflict:              http.StatusConflict,
	CodeInternal:              http.StatusInternalServerError,
	CodeTimeout:               http.StatusGatewayTimeout,
	CodeInvalidInput:          http.StatusBadRequest,
	CodeRulesAlreadyExist:     http.StatusConflict,
	CodeSlotAlreadyBooked:     http.StatusConflict,
	CodeAvailableSlotNotFound: http.StatusNotFound,
	CodeInvalidStartDateTime:  http.StatusBadRequest,
}

// AppError is the JSON error body plus the status it is served with and the
// cause it hides from clients.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Err == nil {
		return msg
	}
	return msg + " (caused by: " + e.Err.Error() + ")"
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError carrying the same code, so callers can test for a
// class of failure with errors.Is(err, &AppError{Code: CodeTimeout}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code != "" && t.Code == e.Code
}

// StatusCode falls back to the code's usual status, then 500, when no status
// was set explicitly.
func (e *AppError) StatusCode() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap keeps err reachable through errors.Is and errors.As.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

func coded(code, message string) *AppError {
	return New(code, message, statusByCode[code])
}

func NotFoundWithID(resource, id string) *AppError {
	return coded(CodeNotFound, fmt.Sprintf("%s not found with id: %s", resource, id)).
		WithDetails(map[string]any{"resource": resource, "id": id})
}

// Validation carries per-field messages in details.
func Validation(message string, details map[string]any) *AppError {
	return coded(CodeValidation, message).WithDetails(details)
}

// InvalidInput is for requests that could not be parsed at all.
func InvalidInput(message string) *AppError {
	return coded(CodeInvalidInput, message)
}

func Internal(message string, err error) *AppError {
	e := coded(CodeInternal, message)
	e.Err = err
	return e
}

// AsAppError finds an AppError anywhere in err's chain, or wraps err as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
