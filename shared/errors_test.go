package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("svc", "op", "code", "required"), http.StatusBadRequest},
		{NewCouponError(CodeExpiredCoupon, "expired", "svc", "op"), http.StatusUnprocessableEntity},
		{NewServiceError(ErrorCategoryPaymentVerification, "X", "bad", "svc", "op", false, nil), http.StatusPaymentRequired},
		{NewServiceError(ErrorCategoryConflict, "X", "busy", "svc", "op", false, nil), http.StatusConflict},
		{NewServiceError(ErrorCategoryNotFound, "X", "gone", "svc", "op", false, nil), http.StatusNotFound},
		{NewRemoteFetchError("svc", "op", errors.New("dial tcp")), http.StatusBadGateway},
		{NewServiceError(ErrorCategoryDatabase, "X", "db", "svc", "op", false, nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatusFor(tc.err), tc.err.Error())
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	err := NewValidationError("svc", "op", "home_state", "Home state is required")

	assert.Equal(t, "INVALID_HOME_STATE", err.Code)
	assert.Equal(t, map[string]string{"field": "home_state"}, err.Details)
	assert.False(t, err.IsRetryable())
}

func TestWrappedServiceErrorsAreFound(t *testing.T) {
	inner := NewCouponError(CodeBelowMinimumPurchase, "too small", "svc", "op")
	wrapped := fmt.Errorf("checkout: %w", inner)

	se, ok := AsServiceError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeBelowMinimumPurchase, se.Code)
	assert.True(t, IsCategory(wrapped, ErrorCategoryCoupon))
	assert.False(t, IsCategory(wrapped, ErrorCategoryValidation))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrorCategoryDatabase, "X", "svc", "op", false))

	cause := errors.New("connection reset by peer")
	wrapped := WrapError(cause, ErrorCategoryDatabase, "DB_FAILED", "svc", "op", true)
	assert.Equal(t, ErrorCategoryDatabase, wrapped.Category)
	assert.ErrorIs(t, wrapped, cause)

	// an existing ServiceError keeps its category
	existing := NewCouponError(CodeExpiredCoupon, "expired", "a", "b")
	rewrapped := WrapError(existing, ErrorCategoryDatabase, "X", "svc", "op", false)
	assert.Equal(t, ErrorCategoryCoupon, rewrapped.Category)
	assert.Equal(t, "svc", rewrapped.ServiceName)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.True(t, IsRetryableError(NewRemoteFetchError("svc", "op", nil)))
	assert.False(t, IsRetryableError(NewCouponError(CodeExpiredCoupon, "expired", "svc", "op")))
	assert.True(t, IsRetryableError(errors.New("i/o timeout")))
	assert.False(t, IsRetryableError(errors.New("bad input")))
}
