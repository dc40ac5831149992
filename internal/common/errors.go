package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError. The serving layer maps these to HTTP
// statuses; everything else treats them as opaque labels for logs.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeNoUsableRecords   = "NO_USABLE_RECORDS"
	CodeEngineUnavailable = "ENGINE_UNAVAILABLE"
	CodeInternal          = "INTERNAL"
)

// Common application errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrNoUsefulData     = errors.New("no useful data extracted")
	ErrInternal         = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps an error to the status code the serving layer should
// respond with. Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeInvalidInput, CodeNoUsableRecords:
			return http.StatusBadRequest
		case CodeEngineUnavailable:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func InvalidInputError(message string) error {
	return NewAppError(CodeInvalidInput, message, nil)
}

func InvalidInputErrorf(format string, args ...interface{}) error {
	return InvalidInputError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return NewAppError(CodeInternal, fmt.Sprintf(format, args...), nil)
}
