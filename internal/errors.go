package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidPin       ErrorCode = "INVALID_PIN"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidNotes     ErrorCode = "INVALID_NOTES"
	ErrCodeInvalidTime      ErrorCode = "INVALID_TIME"

	ErrCodeEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEntryNotFound    ErrorCode = "ENTRY_NOT_FOUND"

	ErrCodeAlreadyClockedIn         ErrorCode = "ALREADY_CLOCKED_IN"
	ErrCodeNoActiveClockIn          ErrorCode = "NO_ACTIVE_CLOCK_IN"
	ErrCodeEntryStillActive         ErrorCode = "ENTRY_STILL_ACTIVE"
	ErrCodeClockOutBeforeClockIn    ErrorCode = "CLOCK_OUT_BEFORE_CLOCK_IN"
	ErrCodeFutureClockOut           ErrorCode = "FUTURE_CLOCK_OUT"
	ErrCodeInvalidCorrectionRequest ErrorCode = "INVALID_CORRECTION_REQUEST"

	ErrCodeAdminPrivilegesRequired ErrorCode = "ADMIN_PRIVILEGES_REQUIRED"
	ErrCodeCannotDeleteLastAdmin   ErrorCode = "CANNOT_DELETE_LAST_ADMIN"
	ErrCodePinAlreadyExists        ErrorCode = "PIN_ALREADY_EXISTS"
	ErrCodeConcurrentModification  ErrorCode = "CONCURRENT_MODIFICATION"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Messages() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Shared domain errors. Errors owned by a single domain package live there;
// these are the ones crossing package boundaries.
var (
	ErrEmployeeNotFound        = NewNotFoundError("employee not found", ErrCodeEmployeeNotFound)
	ErrEntryNotFound           = NewNotFoundError("time entry not found", ErrCodeEntryNotFound)
	ErrAdminPrivilegesRequired = NewForbiddenError("admin privileges required", ErrCodeAdminPrivilegesRequired)
	ErrConcurrentModification  = NewConflictError("record was modified concurrently, re-fetch and retry", ErrCodeConcurrentModification)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
