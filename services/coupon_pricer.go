package services

import (
	"math"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
)

// CouponErrorKind is why a coupon could not be applied; empty when it applied
type CouponErrorKind string

const (
	CouponOK                   CouponErrorKind = ""
	CouponExpired              CouponErrorKind = shared.CodeExpiredCoupon
	CouponBelowMinimumPurchase CouponErrorKind = shared.CodeBelowMinimumPurchase
	CouponNotFound             CouponErrorKind = shared.CodeCouponNotFound
)

// PriceResult is the outcome of pricing a base amount with an optional coupon.
// On error the base price is unaffected.
type PriceResult struct {
	BasePrice      float64         `json:"base_price"`
	DiscountAmount float64         `json:"discount_amount"`
	FinalPrice     float64         `json:"final_price"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Error          CouponErrorKind `json:"error,omitempty"`
}

// Applied reports whether a coupon was applied
func (r PriceResult) Applied() bool {
	return r.CouponCode != "" && r.Error == CouponOK
}

// Err converts a failed result into a coupon ServiceError
func (r PriceResult) Err(serviceName, operation string) error {
	switch r.Error {
	case CouponOK:
		return nil
	case CouponExpired:
		return shared.NewCouponError(string(r.Error), "This coupon has expired", serviceName, operation)
	case CouponBelowMinimumPurchase:
		return shared.NewCouponError(string(r.Error), "Order amount is below the coupon's minimum purchase", serviceName, operation)
	default:
		return shared.NewCouponError(string(r.Error), "Coupon not found", serviceName, operation)
	}
}

// PriceWithCoupon computes the payable price. Expiry is checked before the
// minimum purchase. The discount is capped when MaxDiscountAmount is positive
// and clamped so the final price stays within [0, base].
func PriceWithCoupon(base float64, coupon *models.Coupon, now time.Time) PriceResult {
	if coupon == nil {
		return PriceResult{BasePrice: base, FinalPrice: base}
	}

	failed := func(kind CouponErrorKind) PriceResult {
		return PriceResult{BasePrice: base, FinalPrice: base, CouponCode: coupon.Code, Error: kind}
	}

	if !coupon.ValidUntil.IsZero() && coupon.ValidUntil.Before(now) {
		return failed(CouponExpired)
	}
	if base < coupon.MinPurchaseAmount {
		return failed(CouponBelowMinimumPurchase)
	}

	var raw float64
	if coupon.DiscountType == models.DiscountPercentage {
		raw = base * coupon.DiscountValue / 100
	} else {
		raw = coupon.DiscountValue
	}

	discount := roundToPaise(raw)
	if coupon.MaxDiscountAmount > 0 {
		discount = math.Min(discount, coupon.MaxDiscountAmount)
	}
	discount = clamp(discount, 0, math.Max(base, 0))

	final := clamp(roundToPaise(base-discount), 0, math.Max(base, 0))

	return PriceResult{
		BasePrice:      base,
		DiscountAmount: discount,
		FinalPrice:     final,
		CouponCode:     coupon.Code,
	}
}

// ToPaise converts a rupee amount to the smallest currency unit
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func roundToPaise(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
