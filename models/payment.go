package models

import (
	"time"

	"github.com/google/uuid"
)

// CreateOrderRequest is the body of POST /payment/create-order
type CreateOrderRequest struct {
	ProductID  string `json:"productId"`
	CouponCode string `json:"couponCode,omitempty"`
}

// CreateOrderResponse is the gateway order. Amount is in the smallest currency unit.
type CreateOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyPaymentRequest is the body of POST /payment/verify
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// VerifyPaymentResponse is the upstream verification outcome
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CheckoutSession is everything the external checkout widget needs to open
type CheckoutSession struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	KeyID          string    `json:"key_id"`
	OrderID        string    `json:"order_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	ProductID      string    `json:"product_id"`
	CouponCode     string    `json:"coupon_code,omitempty"`
	OriginalPrice  float64   `json:"original_price"`
	DiscountAmount float64   `json:"discount_amount"`
	FinalPrice     float64   `json:"final_price"`
}

// CheckoutOutcome is returned by checkout start and completion
type CheckoutOutcome struct {
	AlreadyUnlocked bool             `json:"already_unlocked"`
	Unlocked        bool             `json:"unlocked"`
	Session         *CheckoutSession `json:"session,omitempty"`
}

// PaymentStage names a step of the checkout transaction
type PaymentStage string

const (
	StageStarted         PaymentStage = "started"
	StageAlreadyUnlocked PaymentStage = "already_unlocked"
	StageOrderCreated    PaymentStage = "order_created"
	StageVerified        PaymentStage = "verified"
	StageVerifyFailed    PaymentStage = "verify_failed"
	StageReconciled      PaymentStage = "reconciled"
	StageCancelled       PaymentStage = "cancelled"
	StageExpired         PaymentStage = "expired"
)

// PaymentAttemptLog is an append-only audit record of one checkout stage
type PaymentAttemptLog struct {
	ID        uuid.UUID    `json:"id"`
	AttemptID uuid.UUID    `json:"attempt_id"`
	UserID    string       `json:"user_id"`
	ProductID string       `json:"product_id"`
	OrderID   string       `json:"order_id,omitempty"`
	Stage     PaymentStage `json:"stage"`
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
