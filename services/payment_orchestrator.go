package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const paymentServiceName = "Payment_Service"

// PaymentGateway is the upstream side of the checkout transaction
type PaymentGateway interface {
	OrderHistorySource
	CreateOrder(ctx context.Context, req models.CreateOrderRequest, token string) (*models.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req models.VerifyPaymentRequest, token string) (*models.VerifyPaymentResponse, error)
}

type checkoutAttempt struct {
	id        uuid.UUID
	userID    string
	productID string
	orderID   string
	price     PriceResult
	startedAt time.Time
}

func attemptKey(userID, productID string) string {
	return userID + "|" + productID
}

// PaymentService sequences create order, external checkout, verification and
// reconciliation. At most one attempt per (user, product) is in progress.
type PaymentService struct {
	gateway  PaymentGateway
	catalog  ProductCatalog
	coupons  *CouponService
	accounts *AccountStore
	audit    *PaymentAuditLogger
	cfg      shared.PaymentConfig
	metrics  *shared.ServiceMetrics
	logger   *logrus.Entry
	now      func() time.Time

	mutex      sync.Mutex
	attempts   map[uuid.UUID]*checkoutAttempt
	inProgress map[string]uuid.UUID
}

// NewPaymentService creates a payment service
func NewPaymentService(gateway PaymentGateway, catalog ProductCatalog, coupons *CouponService, accounts *AccountStore, audit *PaymentAuditLogger, cfg shared.PaymentConfig, metrics *shared.ServiceMetrics) *PaymentService {
	if metrics == nil {
		metrics = shared.NewServiceMetrics(paymentServiceName)
	}
	if audit == nil {
		audit = NewPaymentAuditLogger(nil)
	}
	return &PaymentService{
		gateway:    gateway,
		catalog:    catalog,
		coupons:    coupons,
		accounts:   accounts,
		audit:      audit,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logrus.WithField("component", "PaymentService"),
		now:        time.Now,
		attempts:   make(map[uuid.UUID]*checkoutAttempt),
		inProgress: make(map[string]uuid.UUID),
	}
}

// StartCheckout opens a checkout for productID. An already unlocked product
// returns AlreadyUnlocked without creating an order.
func (s *PaymentService) StartCheckout(ctx context.Context, userID, token, productID, couponCode string) (*models.CheckoutOutcome, error) {
	start := time.Now()
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, shared.NewValidationError(paymentServiceName, "start_checkout", "product_id", "Product is required")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.Price > 0 {
		if _, err := s.accounts.Refresh(ctx, userID, token, s.gateway); err != nil {
			return nil, err
		}
	}
	if s.accounts.IsUnlocked(userID, product.ID, product.Price) {
		s.audit.Record(ctx, uuid.Nil, userID, product.ID, "", models.StageAlreadyUnlocked, true, "")
		s.metrics.IncrementCustomCounter("already_unlocked")
		return &models.CheckoutOutcome{AlreadyUnlocked: true, Unlocked: true}, nil
	}

	price, err := s.coupons.Quote(ctx, couponCode, *product, token)
	if err != nil {
		return nil, err
	}

	attempt, err := s.begin(userID, product.ID, price)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, attempt.id, userID, product.ID, "", models.StageStarted, true, "")

	order, err := s.gateway.CreateOrder(ctx, models.CreateOrderRequest{ProductID: product.ID, CouponCode: price.CouponCode}, token)
	if err != nil {
		s.release(attempt.id)
		s.audit.Record(ctx, attempt.id, userID, product.ID, "", models.StageOrderCreated, false, err.Error())
		s.metrics.RecordRequest(false, time.Since(start))
		return nil, err
	}

	s.mutex.Lock()
	attempt.orderID = order.ID
	s.mutex.Unlock()

	createdAt := s.now()
	s.accounts.OrderAdded(userID, models.Order{
		ID:             order.ID,
		ProductID:      product.ID,
		Amount:         price.FinalPrice,
		Status:         models.OrderPending,
		CouponCode:     price.CouponCode,
		OriginalAmount: product.Price,
		CreatedAt:      &createdAt,
	})
	s.audit.Record(ctx, attempt.id, userID, product.ID, order.ID, models.StageOrderCreated, true, "")

	currency := order.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}
	amount := order.Amount
	if amount == 0 {
		amount = ToPaise(price.FinalPrice)
	}

	s.metrics.RecordRequest(true, time.Since(start))
	return &models.CheckoutOutcome{
		Session: &models.CheckoutSession{
			AttemptID:      attempt.id,
			KeyID:          s.cfg.KeyID,
			OrderID:        order.ID,
			Amount:         amount,
			Currency:       currency,
			ProductID:      product.ID,
			CouponCode:     price.CouponCode,
			OriginalPrice:  price.BasePrice,
			DiscountAmount: price.DiscountAmount,
			FinalPrice:     price.FinalPrice,
		},
	}, nil
}

// CompleteCheckout handles the widget's success callback. The signature is
// checked locally (when a secret is configured) and remotely; only then is the
// order history re-fetched and the unlock state reported.
func (s *PaymentService) CompleteCheckout(ctx context.Context, userID, token string, attemptID uuid.UUID, paymentID, signature string) (*models.CheckoutOutcome, error) {
	attempt, err := s.lookup(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(paymentID) == "" {
		return nil, shared.NewValidationError(paymentServiceName, "complete_checkout", "payment_id", "Payment id is required")
	}
	if strings.TrimSpace(signature) == "" {
		return nil, shared.NewValidationError(paymentServiceName, "complete_checkout", "signature", "Signature is required")
	}

	fail := func(message string) (*models.CheckoutOutcome, error) {
		s.release(attempt.id)
		s.audit.Record(ctx, attempt.id, userID, attempt.productID, attempt.orderID, models.StageVerifyFailed, false, message)
		s.metrics.IncrementCustomCounter("verify_failed")
		return nil, shared.NewServiceError(shared.ErrorCategoryPaymentVerification, "PAYMENT_VERIFICATION_FAILED",
			message, paymentServiceName, "complete_checkout", false, nil)
	}

	if s.cfg.KeySecret != "" && !VerifyPaymentSignature(s.cfg.KeySecret, attempt.orderID, paymentID, signature) {
		return fail("Payment signature does not match")
	}

	verify, err := s.gateway.VerifyPayment(ctx, models.VerifyPaymentRequest{
		OrderID:   attempt.orderID,
		PaymentID: paymentID,
		Signature: signature,
	}, token)
	if err != nil {
		s.release(attempt.id)
		s.audit.Record(ctx, attempt.id, userID, attempt.productID, attempt.orderID, models.StageVerifyFailed, false, err.Error())
		return nil, err
	}
	if !verify.Success {
		message := verify.Message
		if message == "" {
			message = "Payment verification failed"
		}
		return fail(message)
	}
	s.audit.Record(ctx, attempt.id, userID, attempt.productID, attempt.orderID, models.StageVerified, true, "")

	// never trust local state after a payment; re-read the history first
	orders, err := s.accounts.Refresh(ctx, userID, token, s.gateway)
	s.release(attempt.id)
	if err != nil {
		s.audit.Record(ctx, attempt.id, userID, attempt.productID, attempt.orderID, models.StageReconciled, false, err.Error())
		return nil, err
	}

	unlocked := IsUnlocked(attempt.productID, orders, attempt.price.BasePrice)
	s.audit.Record(ctx, attempt.id, userID, attempt.productID, attempt.orderID, models.StageReconciled, unlocked, "")
	s.metrics.IncrementCustomCounter("verified")
	return &models.CheckoutOutcome{Unlocked: unlocked}, nil
}

// CancelCheckout handles widget dismissal. Unknown or finished attempts are a no-op.
func (s *PaymentService) CancelCheckout(ctx context.Context, userID string, attemptID uuid.UUID) error {
	attempt, err := s.lookup(userID, attemptID)
	if err != nil {
		if shared.IsCategory(err, shared.ErrorCategoryNotFound) {
			return nil
		}
		return err
	}
	s.release(attempt.id)
	s.audit.Record(ctx, attempt.id, userID, attempt.productID, attempt.orderID, models.StageCancelled, true, "")
	s.metrics.IncrementCustomCounter("cancelled")
	return nil
}

// InProgress reports whether a checkout for (user, product) is open
func (s *PaymentService) InProgress(userID, productID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.inProgress[attemptKey(userID, productID)]
	return ok
}

// ReleaseStale drops attempts started before now minus the checkout timeout
func (s *PaymentService) ReleaseStale(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.CheckoutTimeout)

	s.mutex.Lock()
	var stale []*checkoutAttempt
	for id, attempt := range s.attempts {
		if attempt.startedAt.Before(cutoff) {
			stale = append(stale, attempt)
			delete(s.attempts, id)
			delete(s.inProgress, attemptKey(attempt.userID, attempt.productID))
		}
	}
	s.mutex.Unlock()

	for _, attempt := range stale {
		s.audit.Record(ctx, attempt.id, attempt.userID, attempt.productID, attempt.orderID, models.StageExpired, false, "checkout timed out")
	}
	return len(stale)
}

// History returns the user's payment audit trail
func (s *PaymentService) History(ctx context.Context, userID string, limit int) ([]models.PaymentAttemptLog, error) {
	return s.audit.History(ctx, userID, limit)
}

func (s *PaymentService) begin(userID, productID string, price PriceResult) (*checkoutAttempt, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := attemptKey(userID, productID)
	if existing, ok := s.inProgress[key]; ok {
		return nil, shared.NewServiceError(shared.ErrorCategoryConflict, "CHECKOUT_IN_PROGRESS",
			"A checkout for this product is already in progress", paymentServiceName, "start_checkout", false, nil).
			WithDetails(map[string]string{"attempt_id": existing.String()})
	}

	attempt := &checkoutAttempt{
		id:        uuid.New(),
		userID:    userID,
		productID: productID,
		price:     price,
		startedAt: s.now(),
	}
	s.attempts[attempt.id] = attempt
	s.inProgress[key] = attempt.id
	return attempt, nil
}

func (s *PaymentService) lookup(userID string, attemptID uuid.UUID) (*checkoutAttempt, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.userID != userID {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "ATTEMPT_NOT_FOUND",
			"Checkout attempt not found or already finished", paymentServiceName, "lookup_attempt", false, nil)
	}
	copied := *attempt
	return &copied, nil
}

func (s *PaymentService) release(attemptID uuid.UUID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	attempt, ok := s.attempts[attemptID]
	if !ok {
		return
	}
	delete(s.attempts, attemptID)
	if current, ok := s.inProgress[attemptKey(attempt.userID, attempt.productID)]; ok && current == attemptID {
		delete(s.inProgress, attemptKey(attempt.userID, attempt.productID))
	}
}
