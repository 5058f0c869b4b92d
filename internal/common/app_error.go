package common

import (
	"errors"
	"fmt"
	"net/http"

	"travel-desk/bookingcart/internal/constants"
)

var (
	ErrApplicationNotFound       = errors.New("application not found")
	ErrStorageUnavailable        = errors.New("application storage unavailable")
	ErrFlightSearchNotConfigured = errors.New("flight search not configured")
)

// AppError carries an HTTP status and machine code up to the handler layer.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    constants.ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// DuffelError is a non-2xx answer (or transport failure, Status 0) from the flight provider.
type DuffelError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *DuffelError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("duffel %s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("duffel %s returned %d: %s", e.Endpoint, e.Status, e.Message)
}
