package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicatesMatchConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"not found", NotFoundError("portfolio"), IsNotFound},
		{"validation", ValidationError("quantity", "must be positive"), IsInvalidInput},
		{"forbidden", ForbiddenError("not your portfolio"), IsForbidden},
		{"insufficient holdings", InsufficientHoldingsError("5", "10"), IsInsufficientHoldings},
		{"concurrency conflict", ConcurrencyConflictError("position"), IsConcurrencyConflict},
		{"persistence", PersistenceError("commit failed", errors.New("boom")), IsPersistence},
		{"invariant violation", InvariantViolationError("negative holdings", nil), IsInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.predicate(tt.err))
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("creating transaction: %w", InsufficientHoldingsError("1", "2"))
	assert.True(t, IsInsufficientHoldings(err))
	assert.False(t, IsNotFound(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "PORTFOLIO_NOT_FOUND", GetErrorCode(NotFoundError("PORTFOLIO")))
	assert.Equal(t, "VALIDATION_ERROR", GetErrorCode(ValidationError("field", "msg")))
	assert.Equal(t, "UNKNOWN_ERROR", GetErrorCode(errors.New("plain")))
}

func TestDomainError_MessageAndDetails(t *testing.T) {
	err := InsufficientHoldingsError("5", "10")
	assert.Equal(t, "sell quantity exceeds held quantity", err.Error())
	assert.Equal(t, "5", err.Details["held"])
	assert.Equal(t, "10", err.Details["requested"])
}

func TestConcurrencyConflictIsRetryable(t *testing.T) {
	var domainErr *DomainError
	require.ErrorAs(t, ConcurrencyConflictError("position"), &domainErr)
	assert.True(t, domainErr.Retryable)

	require.ErrorAs(t, NotFoundError("asset"), &domainErr)
	assert.False(t, domainErr.Retryable)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	wrapped := Wrap(ErrNotFound, "loading asset")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "loading asset: resource not found", wrapped.Error())
}
