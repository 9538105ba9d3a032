package models

import "time"

// DiscountType is how a coupon's DiscountValue is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Coupon is a discount descriptor. A ValidUntil in the past makes it unusable.
type Coupon struct {
	Code              string       `json:"code"`
	DiscountType      DiscountType `json:"discountType"`
	DiscountValue     float64      `json:"discountValue"`
	MaxDiscountAmount float64      `json:"maxDiscountAmount"`
	MinPurchaseAmount float64      `json:"minPurchaseAmount"`
	ValidUntil        time.Time    `json:"validUntil"`
}

// CouponValidateRequest is the body of POST /coupon/validate
type CouponValidateRequest struct {
	Code      string `json:"code"`
	ProductID string `json:"productId"`
}

// CouponQuote is a successful coupon validation
type CouponQuote struct {
	CouponCode     string  `json:"couponCode"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalPrice     float64 `json:"finalPrice"`
	OriginalPrice  float64 `json:"originalPrice,omitempty"`
}
