// Package errors provides standardized error types for the domain layer.
// These errors give every service a single taxonomy to signal failures
// through, and let the API layer map outcomes onto HTTP responses.
package errors

import (
	"errors"
	"fmt"
)

// Standard error categories
var (
	// ErrNotFound indicates the referenced entity is absent
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates the caller does not own the target resource
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInsufficientHoldings indicates a sell larger than the held quantity
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrConcurrencyConflict indicates a concurrent writer modified the same
	// row between read and commit; the caller should retry with fresh state
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrPersistence indicates a backend failure or timeout; the enclosing
	// transaction has been rolled back before this error surfaces
	ErrPersistence = errors.New("persistence error")

	// ErrInvariantViolation indicates internal state inconsistency that
	// should never occur; the operation is aborted, never auto-repaired
	ErrInvariantViolation = errors.New("invariant violation")
)

// DomainError carries a category error plus structured context
type DomainError struct {
	Err       error
	Code      string
	Message   string
	Details   map[string]interface{}
	Retryable bool
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap returns the underlying category error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *DomainError) Is(target error) bool {
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// NotFoundError creates a not found error for the named resource
func NotFoundError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    fmt.Sprintf("%s_NOT_FOUND", resource),
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// ValidationError creates an invalid input error for a single field
func ValidationError(field, message string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *DomainError {
	return &DomainError{
		Err:     ErrForbidden,
		Code:    "FORBIDDEN",
		Message: message,
	}
}

// InsufficientHoldingsError creates a domain rejection for a sell that would
// drive the position quantity below zero
func InsufficientHoldingsError(held, requested string) *DomainError {
	return &DomainError{
		Err:     ErrInsufficientHoldings,
		Code:    "INSUFFICIENT_HOLDINGS",
		Message: "sell quantity exceeds held quantity",
		Details: map[string]interface{}{
			"held":      held,
			"requested": requested,
		},
	}
}

// ConcurrencyConflictError creates a retryable conflict error
func ConcurrencyConflictError(resource string) *DomainError {
	return &DomainError{
		Err:       ErrConcurrencyConflict,
		Code:      "CONCURRENCY_CONFLICT",
		Message:   fmt.Sprintf("%s was modified by another writer", resource),
		Retryable: true,
	}
}

// PersistenceError wraps a backend failure
func PersistenceError(message string, err error) *DomainError {
	de := &DomainError{
		Err:     ErrPersistence,
		Code:    "PERSISTENCE_ERROR",
		Message: message,
	}
	if err != nil {
		de.Details = map[string]interface{}{
			"cause": err.Error(),
		}
	}
	return de
}

// InvariantViolationError signals a should-never-happen inconsistency
func InvariantViolationError(message string, details map[string]interface{}) *DomainError {
	return &DomainError{
		Err:     ErrInvariantViolation,
		Code:    "INVARIANT_VIOLATION",
		Message: message,
		Details: details,
	}
}

// Error helpers for common patterns

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if an error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInsufficientHoldings checks if an error is a holdings rejection
func IsInsufficientHoldings(err error) bool {
	return errors.Is(err, ErrInsufficientHoldings)
}

// IsConcurrencyConflict checks if an error is a retryable write conflict
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsPersistence checks if an error is a backend failure
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsInvariantViolation checks if an error signals internal inconsistency
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "UNKNOWN_ERROR"
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
