package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
)

const upstreamServiceName = "Upstream_Client"

// UpstreamClient is the typed adapter over the content, predictor, coupon,
// payment and order history API. Every failure leaves it as a ServiceError.
type UpstreamClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	breaker    *shared.ErrorIsolationHandler
	metrics    *shared.ServiceMetrics
	logger     *logrus.Entry
}

// NewUpstreamClient creates a client for cfg.BaseURL
func NewUpstreamClient(cfg shared.UpstreamConfig, factory *shared.HTTPClientFactory, metrics *shared.ServiceMetrics) *UpstreamClient {
	if metrics == nil {
		metrics = shared.NewServiceMetrics(upstreamServiceName)
	}
	return &UpstreamClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: factory.CreateOptimizedHTTPClient(cfg.HTTPRequestTimeout),
		maxRetries: cfg.MaxRetryAttempts,
		breaker:    shared.NewErrorIsolationHandler(upstreamServiceName, cfg.MaxFailureRate),
		metrics:    metrics,
		logger:     logrus.WithField("component", "UpstreamClient"),
	}
}

// upstreamMessage is the error envelope the API uses for non-2xx responses
type upstreamMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func (m upstreamMessage) text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}

func parseUpstreamMessage(body []byte) upstreamMessage {
	var msg upstreamMessage
	_ = json.Unmarshal(body, &msg)
	return msg
}

// call executes one request through the circuit breaker. A 2xx body is
// decoded into out; other statuses are returned for the caller to classify.
func (c *UpstreamClient) call(ctx context.Context, operation, method, path, token string, body interface{}, out interface{}) (*shared.HTTPResult, error) {
	start := time.Now()

	spec := shared.RequestSpec{Method: method, URL: c.baseURL + path, Headers: map[string]string{}}
	if token != "" {
		spec.Headers["Authorization"] = "Bearer " + token
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, shared.NewServiceError(shared.ErrorCategoryValidation, "INVALID_BODY", err.Error(), upstreamServiceName, operation, false, err)
		}
		spec.Body = payload
	}

	var result *shared.HTTPResult
	err := c.breaker.Execute(operation, func() error {
		var execErr error
		result, execErr = shared.ExecuteHTTPRequestWithRetry(ctx, c.httpClient, spec, c.maxRetries)
		if execErr != nil {
			// the caller gave up; says nothing about upstream health
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return shared.NewRemoteFetchError(upstreamServiceName, operation, execErr)
		}
		return nil
	})

	c.metrics.IncrementCustomCounter(operation)
	if err != nil {
		c.metrics.RecordRequest(false, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	c.metrics.RecordRequest(result.OK(), time.Since(start))
	if !result.OK() {
		c.logger.WithFields(logrus.Fields{
			"operation":   operation,
			"status_code": result.StatusCode,
		}).Debug("Upstream returned non-2xx status")
		return result, nil
	}

	if out != nil && len(result.Body) > 0 {
		if err := json.Unmarshal(result.Body, out); err != nil {
			return nil, shared.NewServiceError(shared.ErrorCategoryRemoteFetch, "INVALID_RESPONSE",
				fmt.Sprintf("could not decode %s response: %v", operation, err), upstreamServiceName, operation, false, err)
		}
	}
	return result, nil
}

// statusError converts a non-2xx result into the taxonomy
func statusError(operation string, result *shared.HTTPResult) error {
	msg := parseUpstreamMessage(result.Body).text()
	if msg == "" {
		msg = fmt.Sprintf("upstream %s failed with HTTP %d", operation, result.StatusCode)
	}
	if result.StatusCode == http.StatusNotFound {
		return shared.NewServiceError(shared.ErrorCategoryNotFound, "NOT_FOUND", msg, upstreamServiceName, operation, false, nil)
	}
	return shared.NewServiceError(shared.ErrorCategoryRemoteFetch, fmt.Sprintf("HTTP_%d", result.StatusCode), msg,
		upstreamServiceName, operation, result.StatusCode == http.StatusTooManyRequests, nil)
}

// FetchExam performs GET /exam/{id}
func (c *UpstreamClient) FetchExam(ctx context.Context, examID, token string) (*models.ExamContent, error) {
	var exam models.ExamContent
	result, err := c.call(ctx, "fetch_exam", http.MethodGet, "/exam/"+url.PathEscape(examID), token, nil, &exam)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, statusError("fetch_exam", result)
	}
	if exam.ID == "" {
		exam.ID = examID
	}
	if exam.Sections == nil {
		exam.Sections = []models.ContentSection{}
	}
	return &exam, nil
}

// SearchExams performs GET /exams?q=
func (c *UpstreamClient) SearchExams(ctx context.Context, query, token string) ([]models.ExamSummary, error) {
	var raw json.RawMessage
	result, err := c.call(ctx, "search_exams", http.MethodGet, "/exams?q="+url.QueryEscape(query), token, nil, &raw)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, statusError("search_exams", result)
	}

	exams := []models.ExamSummary{}
	if err := decodeList(raw, &exams, "exams"); err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryRemoteFetch, "INVALID_RESPONSE", err.Error(), upstreamServiceName, "search_exams", false, err)
	}
	return exams, nil
}

// Predict performs POST /predict and parses rows once at the boundary
func (c *UpstreamClient) Predict(ctx context.Context, req models.PredictionRequest, token string) (*models.PredictionResponse, error) {
	var raw models.RawPredictionResponse
	result, err := c.call(ctx, "predict", http.MethodPost, "/predict", token, req, &raw)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, statusError("predict", result)
	}
	parsed := ParsePredictionResponse(raw)
	return &parsed, nil
}

// ValidateCoupon performs POST /coupon/validate. A 4xx is a coupon error
// carrying the upstream message.
func (c *UpstreamClient) ValidateCoupon(ctx context.Context, code, productID, token string) (*models.CouponQuote, error) {
	var quote models.CouponQuote
	req := models.CouponValidateRequest{Code: code, ProductID: productID}
	result, err := c.call(ctx, "validate_coupon", http.MethodPost, "/coupon/validate", token, req, &quote)
	if err != nil {
		return nil, err
	}
	if result.StatusCode >= 400 && result.StatusCode < 500 {
		msg := parseUpstreamMessage(result.Body)
		text := msg.text()
		if text == "" {
			text = "Coupon could not be applied"
		}
		return nil, shared.NewCouponError(couponCodeFromMessage(msg.Code, text), text, upstreamServiceName, "validate_coupon")
	}
	if !result.OK() {
		return nil, statusError("validate_coupon", result)
	}
	if quote.CouponCode == "" {
		quote.CouponCode = code
	}
	return &quote, nil
}

func couponCodeFromMessage(code, text string) string {
	switch strings.ToUpper(code) {
	case shared.CodeExpiredCoupon, shared.CodeBelowMinimumPurchase, shared.CodeCouponNotFound:
		return strings.ToUpper(code)
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "expired"):
		return shared.CodeExpiredCoupon
	case strings.Contains(lower, "minimum"):
		return shared.CodeBelowMinimumPurchase
	default:
		return shared.CodeCouponNotFound
	}
}

// CreateOrder performs POST /payment/create-order
func (c *UpstreamClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest, token string) (*models.CreateOrderResponse, error) {
	var order models.CreateOrderResponse
	result, err := c.call(ctx, "create_order", http.MethodPost, "/payment/create-order", token, req, &order)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, statusError("create_order", result)
	}
	if order.ID == "" {
		return nil, shared.NewServiceError(shared.ErrorCategoryRemoteFetch, "INVALID_RESPONSE", "order id missing from create-order response", upstreamServiceName, "create_order", false, nil)
	}
	return &order, nil
}

// VerifyPayment performs POST /payment/verify. A rejected signature is a
// payment verification error, not a transport failure.
func (c *UpstreamClient) VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest, token string) (*models.VerifyPaymentResponse, error) {
	var verify models.VerifyPaymentResponse
	result, err := c.call(ctx, "verify_payment", http.MethodPost, "/payment/verify", token, req, &verify)
	if err != nil {
		return nil, err
	}
	if result.StatusCode >= 400 && result.StatusCode < 500 {
		text := parseUpstreamMessage(result.Body).text()
		if text == "" {
			text = "Payment verification failed"
		}
		return &models.VerifyPaymentResponse{Success: false, Message: text}, nil
	}
	if !result.OK() {
		return nil, statusError("verify_payment", result)
	}
	return &verify, nil
}

// ListOrders performs GET /orders
func (c *UpstreamClient) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	var raw json.RawMessage
	result, err := c.call(ctx, "list_orders", http.MethodGet, "/orders", token, nil, &raw)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, statusError("list_orders", result)
	}

	orders := []models.Order{}
	if err := decodeList(raw, &orders, "orders"); err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryRemoteFetch, "INVALID_RESPONSE", err.Error(), upstreamServiceName, "list_orders", false, err)
	}
	return orders, nil
}

// decodeList accepts a bare array or an object wrapping it under key or "data"
func decodeList(raw json.RawMessage, out interface{}, key string) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(raw, out)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	for _, k := range []string{key, "data"} {
		if inner, ok := envelope[k]; ok {
			return json.Unmarshal(inner, out)
		}
	}
	return nil
}

// IsCircuitOpen reports whether upstream calls are currently failing fast
func (c *UpstreamClient) IsCircuitOpen() bool {
	return c.breaker.IsCircuitBreakerOpen()
}
