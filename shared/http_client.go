package shared

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPClientFactory creates HTTP clients with standardized configuration
type HTTPClientFactory struct {
	defaultTimeout time.Duration
	mutex          sync.RWMutex
	clients        map[string]*http.Client
}

// NewHTTPClientFactory creates a new HTTP client factory
func NewHTTPClientFactory(defaultTimeout time.Duration) *HTTPClientFactory {
	return &HTTPClientFactory{
		defaultTimeout: defaultTimeout,
		clients:        make(map[string]*http.Client),
	}
}

// CreateOptimizedHTTPClient creates an HTTP client with connection pooling, cached per timeout
func (f *HTTPClientFactory) CreateOptimizedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = f.defaultTimeout
	}

	clientKey := fmt.Sprintf("timeout_%d", timeout.Milliseconds())

	f.mutex.RLock()
	if client, exists := f.clients[clientKey]; exists {
		f.mutex.RUnlock()
		return client
	}
	f.mutex.RUnlock()

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	f.mutex.Lock()
	f.clients[clientKey] = client
	f.mutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"component":  "HTTPClientFactory",
		"timeout":    timeout,
		"client_key": clientKey,
	}).Debug("Created new optimized HTTP client")

	return client
}

// HTTPResult is a fully read upstream response
type HTTPResult struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status
func (r *HTTPResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RequestSpec describes one upstream call. Body is resent on every attempt.
type RequestSpec struct {
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
}

// ExecuteHTTPRequestWithRetry executes a request with exponential backoff.
// Network errors and 5xx responses are retried; 4xx responses are returned as
// results so callers can read the upstream message.
func ExecuteHTTPRequestWithRetry(ctx context.Context, client *http.Client, spec RequestSpec, maxRetryAttempts int) (*HTTPResult, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "HTTPClientFactory",
		"method":    spec.Method,
		"url":       spec.URL,
	})

	var lastExecutionError error

	for attemptNumber := 0; attemptNumber <= maxRetryAttempts; attemptNumber++ {
		if attemptNumber > 0 {
			backoff := time.Duration(1<<uint(attemptNumber-1)) * 200 * time.Millisecond
			logger.WithFields(logrus.Fields{
				"attempt":          attemptNumber + 1,
				"backoff_duration": backoff,
			}).Debug("Retrying HTTP request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var body io.Reader
		if spec.Body != nil {
			body = bytes.NewReader(spec.Body)
		}
		request, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, body)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		request.Header.Set("Accept", "application/json")
		if spec.Body != nil {
			request.Header.Set("Content-Type", "application/json")
		}
		for k, v := range spec.Headers {
			request.Header.Set(k, v)
		}

		response, err := client.Do(request)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastExecutionError = fmt.Errorf("attempt %d failed with network error: %w", attemptNumber+1, err)
			logger.WithError(lastExecutionError).Debug("HTTP request failed with network error")
			continue
		}

		payload, readErr := io.ReadAll(response.Body)
		response.Body.Close()
		if readErr != nil {
			lastExecutionError = fmt.Errorf("attempt %d failed reading body: %w", attemptNumber+1, readErr)
			continue
		}

		if response.StatusCode >= 500 {
			lastExecutionError = fmt.Errorf("attempt %d failed with HTTP %d: %s", attemptNumber+1, response.StatusCode, http.StatusText(response.StatusCode))
			logger.WithField("status_code", response.StatusCode).Debug("HTTP request failed with server error")
			continue
		}

		logger.WithFields(logrus.Fields{
			"attempt":     attemptNumber + 1,
			"status_code": response.StatusCode,
		}).Debug("HTTP request completed")
		return &HTTPResult{StatusCode: response.StatusCode, Body: payload}, nil
	}

	totalAttempts := maxRetryAttempts + 1
	logger.WithFields(logrus.Fields{
		"total_attempts": totalAttempts,
		"final_error":    lastExecutionError,
	}).Warn("HTTP request failed after all retry attempts")

	return nil, fmt.Errorf("HTTP request failed after %d attempts: %w", totalAttempts, lastExecutionError)
}

// CleanupAllClients closes idle connections of all cached clients
func (f *HTTPClientFactory) CleanupAllClients() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for key, client := range f.clients {
		if transport, ok := client.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
		delete(f.clients, key)
	}

	logrus.WithField("component", "HTTPClientFactory").Debug("Cleaned up all cached HTTP clients")
}
