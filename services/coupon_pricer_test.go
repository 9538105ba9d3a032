package services

import (
	"testing"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pricingNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPriceWithCouponPercentageCapped(t *testing.T) {
	coupon := &models.Coupon{
		Code:              "WELCOME20",
		DiscountType:      models.DiscountPercentage,
		DiscountValue:     20,
		MaxDiscountAmount: 80,
		ValidUntil:        pricingNow.Add(24 * time.Hour),
	}

	result := PriceWithCoupon(499, coupon, pricingNow)

	assert.Equal(t, CouponOK, result.Error)
	assert.True(t, result.Applied())
	assert.Equal(t, 80.0, result.DiscountAmount)
	assert.Equal(t, 419.0, result.FinalPrice)
	assert.Equal(t, int64(41900), ToPaise(result.FinalPrice))
}

func TestPriceWithCouponFlatClampedToBase(t *testing.T) {
	coupon := &models.Coupon{Code: "BIG", DiscountType: models.DiscountFlat, DiscountValue: 1000}

	result := PriceWithCoupon(499, coupon, pricingNow)

	assert.Equal(t, 499.0, result.DiscountAmount)
	assert.Equal(t, 0.0, result.FinalPrice)
}

func TestPriceWithCouponExpiredBeforeMinimum(t *testing.T) {
	coupon := &models.Coupon{
		Code:              "OLD",
		DiscountType:      models.DiscountFlat,
		DiscountValue:     50,
		MinPurchaseAmount: 1000,
		ValidUntil:        pricingNow.Add(-time.Minute),
	}

	result := PriceWithCoupon(499, coupon, pricingNow)

	assert.Equal(t, CouponExpired, result.Error)
	assert.Equal(t, 499.0, result.FinalPrice)
	assert.Zero(t, result.DiscountAmount)
	assert.False(t, result.Applied())

	err := result.Err("test", "price")
	require.Error(t, err)
	se, ok := shared.AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, shared.ErrorCategoryCoupon, se.Category)
	assert.Equal(t, shared.CodeExpiredCoupon, se.Code)
}

func TestPriceWithCouponBelowMinimum(t *testing.T) {
	coupon := &models.Coupon{Code: "MIN", DiscountType: models.DiscountFlat, DiscountValue: 50, MinPurchaseAmount: 500}

	result := PriceWithCoupon(499, coupon, pricingNow)

	assert.Equal(t, CouponBelowMinimumPurchase, result.Error)
	assert.Equal(t, 499.0, result.FinalPrice)
}

func TestPriceWithoutCoupon(t *testing.T) {
	result := PriceWithCoupon(499, nil, pricingNow)
	assert.Equal(t, PriceResult{BasePrice: 499, FinalPrice: 499}, result)
	assert.NoError(t, result.Err("test", "price"))
}

// TestPriceWithCouponBounds checks the discount and final price bounds for
// random coupons.
func TestPriceWithCouponBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("0 <= final <= base and discount within cap", prop.ForAll(
		func(base, value, maxDiscount float64, percentage bool) bool {
			coupon := &models.Coupon{
				Code:              "P",
				DiscountType:      models.DiscountFlat,
				DiscountValue:     value,
				MaxDiscountAmount: maxDiscount,
			}
			if percentage {
				coupon.DiscountType = models.DiscountPercentage
			}

			result := PriceWithCoupon(base, coupon, pricingNow)
			if result.Error != CouponOK {
				return false
			}
			if result.FinalPrice < 0 || result.FinalPrice > base {
				return false
			}
			if result.DiscountAmount < 0 || result.DiscountAmount > base {
				return false
			}
			if maxDiscount > 0 && result.DiscountAmount > maxDiscount {
				return false
			}
			return true
		},
		gen.Float64Range(0, 10000),
		gen.Float64Range(-50, 2000),
		gen.Float64Range(0, 500),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestIsUnlocked(t *testing.T) {
	completed := models.Order{ProductID: "rank-predictor", Status: models.OrderCompleted}
	pending := models.Order{ProductID: "rank-predictor", Status: models.OrderPending}
	failed := models.Order{ProductID: "rank-predictor", Status: models.OrderFailed}
	other := models.Order{ProductID: "college-list", Status: models.OrderCompleted}

	assert.True(t, IsUnlocked("rank-predictor", nil, 0), "free products are always unlocked")
	assert.False(t, IsUnlocked("rank-predictor", nil, 499))
	assert.False(t, IsUnlocked("rank-predictor", []models.Order{pending, failed, other}, 499))
	assert.True(t, IsUnlocked("rank-predictor", []models.Order{pending, completed}, 499))
	assert.True(t, IsUnlocked("rank-predictor", []models.Order{completed, completed}, 499), "duplicates are harmless")
}

func TestVerifyPaymentSignature(t *testing.T) {
	sig := SignPayment("secret", "order_1", "pay_1")

	assert.True(t, VerifyPaymentSignature("secret", "order_1", "pay_1", sig))
	assert.False(t, VerifyPaymentSignature("secret", "order_1", "pay_2", sig))
	assert.False(t, VerifyPaymentSignature("other", "order_1", "pay_1", sig))
	assert.False(t, VerifyPaymentSignature("", "order_1", "pay_1", sig))
}
