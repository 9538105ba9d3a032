package services

import (
	"context"
	"strings"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
)

const couponServiceName = "Coupon_Service"

// RemoteCouponValidator is the upstream coupon endpoint
type RemoteCouponValidator interface {
	ValidateCoupon(ctx context.Context, code, productID, token string) (*models.CouponQuote, error)
}

// CouponService validates coupon codes. With a coupon catalog it prices
// locally; otherwise it delegates to the upstream endpoint.
type CouponService struct {
	coupons  CouponCatalog
	products ProductCatalog
	remote   RemoteCouponValidator
	metrics  *shared.ServiceMetrics
	now      func() time.Time
	logger   *logrus.Entry
}

// NewCouponService creates a coupon service. coupons may be nil.
func NewCouponService(coupons CouponCatalog, products ProductCatalog, remote RemoteCouponValidator, metrics *shared.ServiceMetrics) *CouponService {
	if metrics == nil {
		metrics = shared.NewServiceMetrics(couponServiceName)
	}
	return &CouponService{
		coupons:  coupons,
		products: products,
		remote:   remote,
		metrics:  metrics,
		now:      time.Now,
		logger:   logrus.WithField("component", "CouponService"),
	}
}

// NormalizeCouponCode trims and upper-cases a code
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate returns the quote for applying code to productID, or a coupon error
func (s *CouponService) Validate(ctx context.Context, code, productID, token string) (*models.CouponQuote, error) {
	start := time.Now()
	code = NormalizeCouponCode(code)

	if code == "" {
		return nil, shared.NewValidationError(couponServiceName, "validate", "code", "Coupon code is required")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, shared.NewValidationError(couponServiceName, "validate", "product_id", "Product is required")
	}

	var (
		quote *models.CouponQuote
		err   error
	)
	if s.coupons != nil {
		quote, err = s.validateLocally(ctx, code, productID)
	} else {
		quote, err = s.remote.ValidateCoupon(ctx, code, productID, token)
	}

	s.metrics.RecordRequest(err == nil, time.Since(start))
	if err != nil {
		if se, ok := shared.AsServiceError(err); ok && se.Category == shared.ErrorCategoryCoupon {
			s.metrics.IncrementCustomCounter("coupon_" + strings.ToLower(se.Code))
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"coupon_code": quote.CouponCode,
		"product_id":  productID,
		"discount":    quote.DiscountAmount,
		"final_price": quote.FinalPrice,
	}).Debug("Coupon validated")
	return quote, nil
}

func (s *CouponService) validateLocally(ctx context.Context, code, productID string) (*models.CouponQuote, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.coupons.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "COUPON_LOOKUP_FAILED", couponServiceName, "validate", true)
	}
	if coupon == nil {
		return nil, shared.NewCouponError(shared.CodeCouponNotFound, "Coupon not found", couponServiceName, "validate")
	}

	result := PriceWithCoupon(product.Price, coupon, s.now())
	if err := result.Err(couponServiceName, "validate"); err != nil {
		return nil, err
	}
	return &models.CouponQuote{
		CouponCode:     coupon.Code,
		DiscountAmount: result.DiscountAmount,
		FinalPrice:     result.FinalPrice,
		OriginalPrice:  product.Price,
	}, nil
}

// Quote prices product with an optional code. An empty code yields the base price.
func (s *CouponService) Quote(ctx context.Context, code string, product models.Product, token string) (PriceResult, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return PriceWithCoupon(product.Price, nil, s.now()), nil
	}

	quote, err := s.Validate(ctx, code, product.ID, token)
	if err != nil {
		return PriceResult{BasePrice: product.Price, FinalPrice: product.Price, CouponCode: code}, err
	}
	return PriceResult{
		BasePrice:      product.Price,
		DiscountAmount: quote.DiscountAmount,
		FinalPrice:     clamp(quote.FinalPrice, 0, product.Price),
		CouponCode:     quote.CouponCode,
	}, nil
}
