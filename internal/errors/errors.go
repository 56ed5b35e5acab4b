package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeExtraction  ErrorType = "extraction"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeUpstream    ErrorType = "upstream"
	ErrorTypeParse       ErrorType = "parse"
	ErrorTypeInternal    ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Detail renders the message shown to API clients.
func (e *AppError) Detail() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates an error for malformed or missing client input
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewExtractionError creates an error for uploads that yielded no usable text
func NewExtractionError(message string, cause error) *AppError {
	return newAppError(ErrorTypeExtraction, http.StatusBadRequest, message, cause)
}

// NewUnavailableError creates an error for an AI backend that is not configured
func NewUnavailableError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusInternalServerError, message, cause)
}

// NewUpstreamError creates an error for a failed call to the AI service
func NewUpstreamError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUpstream, http.StatusInternalServerError, message, cause)
}

// NewParseError creates an error for a model response that is not the expected JSON
func NewParseError(message string, cause error) *AppError {
	return newAppError(ErrorTypeParse, http.StatusInternalServerError, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetDetail extracts the client-facing message from an error
func GetDetail(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Detail()
	}
	return err.Error()
}
