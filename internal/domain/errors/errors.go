package errors

import (
	"errors"
	"fmt"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeRiskAssessment ErrorType = "risk_assessment"
	ErrorTypeLedger         ErrorType = "ledger"
	ErrorTypePolicy         ErrorType = "policy"
	ErrorTypeClaim          ErrorType = "claim"
	ErrorTypeDatabase       ErrorType = "database"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
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

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
//
// Mutation-path failures surface as 400 with the message as payload; lookups
// surface 404. Status codes here drive the HTTP boundary mapping.

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewRiskAssessmentError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRiskAssessment,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewLedgerError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeLedger,
		Code:       "LEDGER_OPERATION_FAILED",
		Message:    message,
		Retryable:  true,
		StatusCode: 400,
	}
}

func NewPolicyError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypePolicy,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewClaimError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeClaim,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewDatabaseError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Code:       "DATABASE_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 400,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		Retryable:  false,
		StatusCode: 401,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

// Predefined common errors
var (
	ErrPolicyNotFound   = NewNotFoundError("policy")
	ErrClaimNotFound    = NewNotFoundError("claim")
	ErrModelUnavailable = NewRiskAssessmentError("MODEL_UNAVAILABLE", "risk model artifact is unavailable")
	ErrInvalidInput     = NewValidationError("INVALID_INPUT", "Invalid input provided")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsNotFound reports whether err is a not-found error of any domain.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
