package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// Validation errors
var (
	ErrInvalidCategory      = NewDomainError(ErrCodeValidation, "invalid category")
	ErrInvalidEmotion       = NewDomainError(ErrCodeValidation, "invalid emotion")
	ErrInvalidRole          = NewDomainError(ErrCodeValidation, "invalid message role")
	ErrEmptyMessage         = NewDomainError(ErrCodeValidation, "message text is empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrKnowledgeNotFound = NewDomainError(ErrCodeNotFound, "knowledge item not found")
	ErrSnippetNotFound   = NewDomainError(ErrCodeNotFound, "snippet not found")
	ErrManualNotFound    = NewDomainError(ErrCodeNotFound, "manual not found")
	ErrChatLogNotFound   = NewDomainError(ErrCodeNotFound, "chat log not found")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Store errors
var (
	ErrStoreUnavailable     = NewDomainError(ErrCodeStoreUnavailable, "knowledge store unavailable")
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
