package common

import (
	"errors"
	"fmt"
	"net/http"

	"just-landed/tracker/internal/constants"
)

// AppError is the typed error carried across service boundaries. Status is
// the HTTP status the produced API maps the error to.
type AppError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeFlightNotFound      = "FLIGHT_NOT_FOUND"
	CodeAirportNotFound     = "AIRPORT_NOT_FOUND"
	CodeOldFlight           = "OLD_FLIGHT"
	CodeTerminalsUnknown    = "TERMINALS_UNKNOWN"
	CodeUntracked           = "UNTRACKED_FLIGHT"
	CodeUnableToSetAlert    = "UNABLE_TO_SET_ALERT"
	CodeUnableToDeleteAlert = "UNABLE_TO_DELETE_ALERT"
	CodeNoRoute             = "NO_DRIVING_ROUTE"
	CodeQuotaExceeded       = "QUOTA_EXCEEDED"
	CodeForbidden           = "FORBIDDEN"
	CodeUnavailable         = "UPSTREAM_UNAVAILABLE"
)

func ErrInvalidInput(msg string) *AppError {
	return &AppError{Code: CodeInvalidInput, Status: http.StatusBadRequest, Message: msg}
}

func ErrFlightNotFound() *AppError {
	return &AppError{Code: CodeFlightNotFound, Status: http.StatusNotFound, Message: constants.MsgFlightNotFound}
}

func ErrAirportNotFound(code string) *AppError {
	return &AppError{Code: CodeAirportNotFound, Status: http.StatusNotFound,
		Message: fmt.Sprintf("Unknown airport %q.", code)}
}

// ErrOldFlight is 410: the flight existed but is too far in the past to track.
func ErrOldFlight() *AppError {
	return &AppError{Code: CodeOldFlight, Status: http.StatusGone, Message: constants.MsgOldFlight}
}

func ErrTerminalsUnknown() *AppError {
	return &AppError{Code: CodeTerminalsUnknown, Status: http.StatusNotFound, Message: constants.MsgTerminalsUnknown}
}

func ErrUntracked() *AppError {
	return &AppError{Code: CodeUntracked, Status: http.StatusNotFound, Message: constants.MsgUntrackedFlight}
}

func ErrUnableToSetAlert(err error) *AppError {
	return &AppError{Code: CodeUnableToSetAlert, Status: http.StatusForbidden,
		Message: constants.MsgUnableToSetAlert, Err: err}
}

func ErrUnableToDeleteAlert(err error) *AppError {
	return &AppError{Code: CodeUnableToDeleteAlert, Status: http.StatusServiceUnavailable,
		Message: constants.MsgUnableToDeleteAlert, Err: err}
}

func ErrNoRoute() *AppError {
	return &AppError{Code: CodeNoRoute, Status: http.StatusNotFound, Message: constants.MsgNoDrivingRoute}
}

func ErrQuotaExceeded(provider string) *AppError {
	return &AppError{Code: CodeQuotaExceeded, Status: http.StatusForbidden,
		Message: constants.MsgDrivingQuota, Err: fmt.Errorf("provider %s over quota", provider)}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Status: http.StatusForbidden, Message: msg}
}

func ErrUnavailable(err error) *AppError {
	return &AppError{Code: CodeUnavailable, Status: http.StatusServiceUnavailable,
		Message: constants.MsgUpstreamUnavailable, Err: err}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus maps any error to the status the API should respond with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// UserMessage extracts the client-safe message from an error, hiding
// internals behind a generic line for unexpected failures.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Something went wrong. Please try again."
}
