package shared

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorIsolationHandler keeps a failing upstream from being hammered by every
// page load. Once the failure rate over a minimum sample exceeds the threshold
// the breaker opens and calls fail fast with a retryable remote fetch error.
type ErrorIsolationHandler struct {
	mutex               sync.Mutex
	maxFailureRate      float64
	minSampleSize       int64
	coolDown            time.Duration
	serviceName         string
	circuitBreakerOpen  bool
	failureCount        int64
	successCount        int64
	openedAt            time.Time
	halfOpenAttempts    int
	maxHalfOpenAttempts int
	now                 func() time.Time
}

// NewErrorIsolationHandler creates a new error isolation handler
func NewErrorIsolationHandler(serviceName string, maxFailureRate float64) *ErrorIsolationHandler {
	return &ErrorIsolationHandler{
		maxFailureRate:      maxFailureRate,
		minSampleSize:       10,
		coolDown:            30 * time.Second,
		serviceName:         serviceName,
		maxHalfOpenAttempts: 3,
		now:                 time.Now,
	}
}

// NewErrorIsolationHandlerWithoutCircuitBreaker creates a handler that only counts
func NewErrorIsolationHandlerWithoutCircuitBreaker(serviceName string) *ErrorIsolationHandler {
	return NewErrorIsolationHandler(serviceName, -1)
}

// RecordSuccess records a successful operation
func (h *ErrorIsolationHandler) RecordSuccess() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.successCount++
	if h.maxFailureRate < 0 || !h.circuitBreakerOpen {
		return
	}

	h.halfOpenAttempts++
	if h.halfOpenAttempts >= h.maxHalfOpenAttempts {
		h.circuitBreakerOpen = false
		h.failureCount = 0
		h.successCount = 0
		h.halfOpenAttempts = 0

		logrus.WithFields(logrus.Fields{
			"service_name": h.serviceName,
			"component":    "ErrorIsolationHandler",
		}).Info("Circuit breaker closed after successful half-open attempts")
	}
}

// RecordFailure records a failed operation
func (h *ErrorIsolationHandler) RecordFailure() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.failureCount++
	if h.maxFailureRate < 0 {
		return
	}

	if h.circuitBreakerOpen {
		// a failure while half-open restarts the cool down
		h.halfOpenAttempts = 0
		h.openedAt = h.now()
		return
	}

	total := h.failureCount + h.successCount
	if total < h.minSampleSize {
		return
	}

	rate := float64(h.failureCount) / float64(total)
	if rate > h.maxFailureRate {
		h.circuitBreakerOpen = true
		h.halfOpenAttempts = 0
		h.openedAt = h.now()

		logrus.WithFields(logrus.Fields{
			"service_name":     h.serviceName,
			"component":        "ErrorIsolationHandler",
			"failure_rate":     rate,
			"max_failure_rate": h.maxFailureRate,
		}).Warn("Circuit breaker opened due to high failure rate")
	}
}

// IsCircuitBreakerOpen returns whether calls should currently fail fast
func (h *ErrorIsolationHandler) IsCircuitBreakerOpen() bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.maxFailureRate < 0 || !h.circuitBreakerOpen {
		return false
	}

	// half-open: let trial calls through once the cool down has elapsed
	if h.now().Sub(h.openedAt) > h.coolDown {
		return false
	}
	return true
}

// Execute runs fn unless the breaker is open
func (h *ErrorIsolationHandler) Execute(operation string, fn func() error) error {
	if h.IsCircuitBreakerOpen() {
		logrus.WithFields(logrus.Fields{
			"service_name": h.serviceName,
			"operation":    operation,
			"component":    "ErrorIsolationHandler",
		}).Warn("Circuit breaker is open, failing fast")

		return NewServiceError(
			ErrorCategoryRemoteFetch,
			"SERVICE_UNAVAILABLE",
			fmt.Sprintf("Service %s is temporarily unavailable for operation %s", h.serviceName, operation),
			h.serviceName,
			operation,
			true,
			nil,
		)
	}

	if err := fn(); err != nil {
		// only upstream trouble counts against the breaker, never a caller's cancellation
		if IsRetryableError(err) && !isContextError(err) {
			h.RecordFailure()
		}
		return err
	}

	h.RecordSuccess()
	return nil
}

// GetFailureRate returns the current failure rate
func (h *ErrorIsolationHandler) GetFailureRate() float64 {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	total := h.failureCount + h.successCount
	if total == 0 {
		return 0.0
	}
	return float64(h.failureCount) / float64(total)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
