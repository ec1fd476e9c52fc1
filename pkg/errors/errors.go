package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrValidation             = errors.New("validation failed")
	ErrConfiguration          = errors.New("invalid configuration reference")
	ErrNotFound               = errors.New("not found")
	ErrStateConflict          = errors.New("state conflict")
	ErrDuplicateTransaction   = errors.New("duplicate transaction id")
	ErrReconciliationMismatch = errors.New("reconciliation amounts do not balance")
	ErrPersistence            = errors.New("persistence failure")
	ErrPartiallyApplied       = errors.New("operation partially applied")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeConfiguration          = "CONFIGURATION_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeStateConflict          = "STATE_CONFLICT"
	ErrCodeDuplicateTransaction   = "DUPLICATE_TRANSACTION"
	ErrCodeReconciliationMismatch = "RECONCILIATION_MISMATCH"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
	ErrCodePartialFailure         = "PARTIAL_FAILURE"
)

func WrapValidation(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(ErrCodeValidation, fmt.Sprintf(format, args...), ErrValidation)
}

func WrapOperationTypeNotFound(id int64) *BusinessError {
	return NewBusinessError(
		ErrCodeConfiguration,
		fmt.Sprintf("Operation type %d is not registered", id),
		ErrConfiguration,
	)
}

func WrapNotFound(entity string, id interface{}) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s %v not found", entity, id),
		ErrNotFound,
	)
}

func WrapStateConflict(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(ErrCodeStateConflict, fmt.Sprintf(format, args...), ErrStateConflict)
}

func WrapDuplicateTransaction(transactionID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateTransaction,
		fmt.Sprintf("Transaction %s was already recorded", transactionID),
		ErrDuplicateTransaction,
	)
}

func WrapReconciliationMismatch(expected, actual string) *BusinessError {
	return NewBusinessError(
		ErrCodeReconciliationMismatch,
		fmt.Sprintf("Settlement total %s does not match transaction amount %s", actual, expected),
		ErrReconciliationMismatch,
	)
}

// WrapDatabaseError marks an opaque storage failure. Nothing about the cause
// is interpreted by the caller.
func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		errors.Join(ErrPersistence, err),
	)
}

// PartialFailureError is returned by batch operations that stopped after
// some items were already written. Items in Settled stay applied.
type PartialFailureError struct {
	Settled  []int64
	FailedID int64
	Err      error
}

func (e *PartialFailureError) Error() string {
	ids := make([]string, 0, len(e.Settled))
	for _, id := range e.Settled {
		ids = append(ids, fmt.Sprint(id))
	}
	return fmt.Sprintf("%s: batch stopped at item %d after %d item(s) were already applied [%s]; do not retry the whole batch (%v)",
		ErrCodePartialFailure, e.FailedID, len(e.Settled), strings.Join(ids, ","), e.Err)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{ErrPartiallyApplied, e.Err}
}

// Code returns the business code of the underlying failure.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
