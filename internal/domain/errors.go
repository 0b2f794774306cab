package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

// ErrAlreadySettled trips the idempotency guard for explicit admin calls.
// Sweeps treat the same condition as a silent no-op.
func ErrAlreadySettled(entity, id string) *AppError {
	return &AppError{Code: "ALREADY_SETTLED", Message: fmt.Sprintf("%s %s is already settled", entity, id), Status: 409}
}

// IsAlreadySettled reports whether err carries the ALREADY_SETTLED code.
// Sweeps use it to treat a lost declaration race as a no-op.
func IsAlreadySettled(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == "ALREADY_SETTLED"
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

// ErrLedgerIntegrity marks a wager whose balance mutation and ledger write
// did not both succeed. Fatal to that wager's resolution; retried next sweep.
func ErrLedgerIntegrity(msg string, cause error) *AppError {
	return &AppError{Code: "LEDGER_INTEGRITY", Message: msg, Status: 500, Cause: cause}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
