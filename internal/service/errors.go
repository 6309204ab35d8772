package service

import "fmt"

// ServiceError represents a business logic error with a stable code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInvalidAmount     = "invalid_amount"
	ErrCodeInvalidReason     = "invalid_reason"
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeAccountNotFound   = "account_not_found"
	ErrCodeRecipientNotFound = "recipient_not_found"
	ErrCodeRequestNotFound   = "request_not_found"
	ErrCodeSelfTransfer      = "self_transfer"
	ErrCodeInsufficientFunds = "insufficient_funds"
	ErrCodeAccountInactive   = "account_inactive"
	ErrCodeDuplicateRequest  = "duplicate_request"
	ErrCodeRequestNotPending = "request_not_pending"
	ErrCodeRequestExpired    = "request_expired"
	ErrCodeTokenInvalid      = "token_invalid"
	ErrCodeTokenMismatch     = "token_mismatch"
	ErrCodeAccessRevoked     = "access_revoked"
	ErrCodeInternalError     = "internal_error"
)

func internalError(format string, args ...any) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInternalError,
		Message: fmt.Sprintf(format, args...),
	}
}
