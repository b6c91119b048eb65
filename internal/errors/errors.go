package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidAmount       ErrorCode = "invalid_amount"
	InsufficientFunds   ErrorCode = "insufficient_funds"
	AccountNotFound     ErrorCode = "account_not_found"
	SameAccountTransfer ErrorCode = "same_account_transfer"
	DuplicateAccount    ErrorCode = "duplicate_account"
	InvalidInput        ErrorCode = "invalid_input"
	InternalError       ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps an error code to the status the HTTP adapter responds with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidAmount, SameAccountTransfer, InvalidInput:
		return http.StatusBadRequest
	case AccountNotFound:
		return http.StatusNotFound
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	case DuplicateAccount:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrInvalidAmount       = NewAppError(InvalidAmount, "amount must be non-negative with at most two decimal places")
	ErrInsufficientFunds   = NewAppError(InsufficientFunds, "insufficient funds")
	ErrAccountNotFound     = NewAppError(AccountNotFound, "account not found")
	ErrSameAccountTransfer = NewAppError(SameAccountTransfer, "cannot transfer to the same account")
	ErrDuplicateAccount    = NewAppError(DuplicateAccount, "account already exists")

	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin a transaction inside a transaction")
)
