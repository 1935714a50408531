package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrDuplicateIdentity = errors.New("identity field already registered")

	ErrWeakCredential = errors.New("account credential too short")

	ErrInvalidAmount = errors.New("amount must be positive")

	ErrInsufficientFunds = errors.New("amount exceeds available credit")

	ErrNotAuthorized = errors.New("invalid account ID or credential")

	ErrAccountInactive = errors.New("account is inactive")

	ErrInsufficientCollateral = errors.New("account credit below loan threshold")

	ErrLoanTooLarge = errors.New("loan value exceeds half of account credit")

	ErrInvalidInterestRate = errors.New("interest rate out of range")

	ErrInvalidExpiry = errors.New("expiry date must be in the future")

	ErrOwnerMismatch = errors.New("customer does not own account")

	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}
