package handlers

import (
	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/gofiber/fiber/v2"
)

type PredictionHandler struct {
	Service *services.PredictionService
}

func NewPredictionHandler(service *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{Service: service}
}

type predictRequest struct {
	models.PredictionRequest
	ProductID    string `json:"product_id"`
	GenderFilter string `json:"gender_filter"`
}

func (h *PredictionHandler) Predict(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req predictRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.Service.Predict(c.UserContext(), services.PredictRequest{
		UserID:       user,
		Token:        bearerToken(c),
		ProductID:    req.ProductID,
		GenderFilter: req.GenderFilter,
		Input:        req.PredictionRequest,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, view)
}

type filterRequest struct {
	GenderFilter string `json:"gender_filter"`
}

func (h *PredictionHandler) Refilter(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req filterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.Service.Refilter(c.UserContext(), user, bearerToken(c), req.GenderFilter)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, view)
}

type tierRequest struct {
	Tier string `json:"tier"`
	List string `json:"list"`
}

func (h *PredictionHandler) SelectTier(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req tierRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.Service.SelectTier(c.UserContext(), user, bearerToken(c), req.List, req.Tier)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, view)
}
