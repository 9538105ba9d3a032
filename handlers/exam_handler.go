package handlers

import (
	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/gofiber/fiber/v2"
)

type ExamHandler struct {
	Service *services.ExamService
	Search  *services.SearchCoordinator
}

func NewExamHandler(service *services.ExamService, search *services.SearchCoordinator) *ExamHandler {
	return &ExamHandler{Service: service, Search: search}
}

func (h *ExamHandler) GetExam(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	view, err := h.Service.GetExamView(c.UserContext(), services.ExamViewRequest{
		UserID:    user,
		Token:     bearerToken(c),
		ExamID:    c.Params("id"),
		ProductID: c.Query("product_id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, view)
}

type selectTabRequest struct {
	Tab       string `json:"tab"`
	ProductID string `json:"product_id"`
}

func (h *ExamHandler) SelectTab(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req selectTabRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	view, err := h.Service.SelectTab(c.UserContext(), services.ExamViewRequest{
		UserID:    user,
		Token:     bearerToken(c),
		ExamID:    c.Params("id"),
		ProductID: req.ProductID,
	}, req.Tab)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, view)
}

func (h *ExamHandler) SearchExams(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	session := c.Query("session", user)
	result, err := h.Search.Search(c.UserContext(), user+"|"+session, c.Query("q"), bearerToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, result)
}
