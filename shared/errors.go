package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents the kinds of failure the gateway surfaces to the UI
type ErrorCategory string

const (
	ErrorCategoryValidation          ErrorCategory = "validation"
	ErrorCategoryRemoteFetch         ErrorCategory = "remote_fetch"
	ErrorCategoryCoupon              ErrorCategory = "coupon"
	ErrorCategoryPaymentVerification ErrorCategory = "payment_verification"
	ErrorCategoryConflict            ErrorCategory = "conflict"
	ErrorCategoryNotFound            ErrorCategory = "not_found"
	ErrorCategoryConfiguration       ErrorCategory = "configuration"
	ErrorCategoryDatabase            ErrorCategory = "database"
)

// Coupon error codes
const (
	CodeExpiredCoupon        = "EXPIRED_COUPON"
	CodeBelowMinimumPurchase = "BELOW_MINIMUM_PURCHASE"
	CodeCouponNotFound       = "NOT_FOUND"
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Details     interface{}   `json:"details,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Retryable   bool          `json:"retryable"`
	Cause       error         `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Retryable:   retryable,
		Cause:       cause,
	}
}

// NewValidationError reports a client-side input problem tied to one field.
// The UI renders it inline and never forwards the request.
func NewValidationError(serviceName, operation, field, message string) *ServiceError {
	return NewServiceError(ErrorCategoryValidation, "INVALID_"+strings.ToUpper(field), message, serviceName, operation, false, nil).
		WithDetails(map[string]string{"field": field})
}

// NewCouponError reports a coupon that cannot be applied.
func NewCouponError(code, message, serviceName, operation string) *ServiceError {
	return NewServiceError(ErrorCategoryCoupon, code, message, serviceName, operation, false, nil)
}

// NewRemoteFetchError reports a network or non-2xx upstream failure.
func NewRemoteFetchError(serviceName, operation string, cause error) *ServiceError {
	msg := "upstream request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return NewServiceError(ErrorCategoryRemoteFetch, "UPSTREAM_UNAVAILABLE", msg, serviceName, operation, true, cause)
}

// WithDetails adds additional details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// IsRetryable returns whether the error is retryable
func (e *ServiceError) IsRetryable() bool {
	return e.Retryable
}

// GetCategory returns the error category
func (e *ServiceError) GetCategory() ErrorCategory {
	return e.Category
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	entry := logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"details":          e.Details,
		"underlying_error": e.Cause,
	})

	// Expected domain outcomes are not operational failures
	switch e.Category {
	case ErrorCategoryValidation, ErrorCategoryCoupon, ErrorCategoryNotFound, ErrorCategoryConflict:
		entry.Info("Request rejected")
	default:
		entry.Error("Service error occurred")
	}
}

// WrapError wraps an existing error with service error context
func WrapError(err error, category ErrorCategory, code, serviceName, operation string, retryable bool) *ServiceError {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		serviceErr.ServiceName = serviceName
		serviceErr.Operation = operation
		return serviceErr
	}

	return NewServiceError(category, code, err.Error(), serviceName, operation, retryable, err)
}

// AsServiceError extracts a ServiceError from err, if any.
func AsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}

// IsCategory reports whether err is a ServiceError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	serviceErr, ok := AsServiceError(err)
	return ok && serviceErr.Category == category
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if serviceErr, ok := AsServiceError(err); ok {
		return serviceErr.IsRetryable()
	}

	errorMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout", "connection refused", "connection reset",
		"temporary failure", "service unavailable", "too many requests",
		"network", "dns", "socket", "eof",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errorMsg, pattern) {
			return true
		}
	}

	return false
}

// HTTPStatusFor maps an error to the HTTP status returned to the UI
func HTTPStatusFor(err error) int {
	serviceErr, ok := AsServiceError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch serviceErr.Category {
	case ErrorCategoryValidation:
		return http.StatusBadRequest
	case ErrorCategoryCoupon:
		return http.StatusUnprocessableEntity
	case ErrorCategoryPaymentVerification:
		return http.StatusPaymentRequired
	case ErrorCategoryConflict:
		return http.StatusConflict
	case ErrorCategoryNotFound:
		return http.StatusNotFound
	case ErrorCategoryRemoteFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
