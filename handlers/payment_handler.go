package handlers

import (
	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	Payments *services.PaymentService
	Coupons  *services.CouponService
}

func NewPaymentHandler(payments *services.PaymentService, coupons *services.CouponService) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Coupons: coupons}
}

type couponRequest struct {
	Code      string `json:"code"`
	ProductID string `json:"product_id"`
}

func (h *PaymentHandler) ValidateCoupon(c *fiber.Ctx) error {
	if _, ok := userID(c); !ok {
		return nil
	}
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	quote, err := h.Coupons.Validate(c.UserContext(), req.Code, req.ProductID, bearerToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, quote)
}

type checkoutRequest struct {
	ProductID  string `json:"product_id"`
	CouponCode string `json:"coupon_code"`
}

func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	outcome, err := h.Payments.StartCheckout(c.UserContext(), user, bearerToken(c), req.ProductID, req.CouponCode)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, outcome)
}

type verifyRequest struct {
	AttemptID string `json:"attempt_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

func parseAttemptID(c *fiber.Ctx, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.NewValidationError("Gateway", c.Route().Path, "attempt_id", "Invalid checkout attempt id")
	}
	return id, nil
}

func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	attemptID, err := parseAttemptID(c, req.AttemptID)
	if err != nil {
		return respondError(c, err)
	}
	outcome, err := h.Payments.CompleteCheckout(c.UserContext(), user, bearerToken(c), attemptID, req.PaymentID, req.Signature)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, outcome)
}

type cancelRequest struct {
	AttemptID string `json:"attempt_id"`
}

func (h *PaymentHandler) Cancel(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req cancelRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	attemptID, err := parseAttemptID(c, req.AttemptID)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Payments.CancelCheckout(c.UserContext(), user, attemptID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Checkout cancelled",
	})
}

func (h *PaymentHandler) History(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	entries, err := h.Payments.History(c.UserContext(), user, c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, shared.WrapError(err, shared.ErrorCategoryDatabase, "HISTORY_FAILED", "Gateway", "payment_history", true))
	}
	return respondData(c, entries)
}
