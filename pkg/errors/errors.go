package errors

import (
	"errors"
	"fmt"
	"net/http"

	"watchparty/internal/core/domain"
)

// ErrorCode represents application error codes
type ErrorCode string

const (
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeRoomExpired        ErrorCode = "ROOM_EXPIRED"
	ErrCodeNotConfigured      ErrorCode = "NOT_CONFIGURED"
	ErrCodeConnectionLost     ErrorCode = "CONNECTION_LOST"
	ErrCodeRateLimit          ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// AppError represents an application error with code and context
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Context    map[string]interface{}
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Context:    make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with application error
func WrapError(err error, code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Cause:      err,
		Context:    make(map[string]interface{}),
	}
}

// Common error constructors
func NewInvalidInputError(message string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewRateLimitError() *AppError {
	return NewAppError(ErrCodeRateLimit, "rate limit exceeded", http.StatusTooManyRequests)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

// FromDomain maps core sentinel errors onto the HTTP error taxonomy. Each
// user-visible state gets its own code: a store that was never configured is
// not "room not found", and an expired room is not a 404.
func FromDomain(err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrInvalidRoomID):
		return WrapError(err, ErrCodeInvalidInput, "invalid room id", http.StatusBadRequest)
	case errors.Is(err, domain.ErrRoomNotFound):
		return WrapError(err, ErrCodeNotFound, "room not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrMovieNotFound):
		return WrapError(err, ErrCodeNotFound, "movie not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrRoomExpired):
		return WrapError(err, ErrCodeRoomExpired, "room expired", http.StatusGone)
	case errors.Is(err, domain.ErrNotConfigured):
		return WrapError(err, ErrCodeNotConfigured, "store not configured", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrConnectionLost):
		return WrapError(err, ErrCodeConnectionLost, "store connection lost", http.StatusBadGateway)
	case errors.Is(err, domain.ErrMalformedRecord):
		return WrapError(err, ErrCodeInternal, "malformed room record", http.StatusInternalServerError)
	default:
		return WrapError(err, ErrCodeInternal, "internal error", http.StatusInternalServerError)
	}
}

// IsAppError checks if error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
