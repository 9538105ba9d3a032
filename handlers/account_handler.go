package handlers

import (
	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/services"
	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	Accounts     *services.AccountStore
	Entitlements *services.EntitlementService
	History      services.OrderHistorySource
}

func NewAccountHandler(accounts *services.AccountStore, entitlements *services.EntitlementService, history services.OrderHistorySource) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Entitlements: entitlements, History: history}
}

type loginRequest struct {
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	HomeState string `json:"home_state"`
}

func (h *AccountHandler) Login(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	account := h.Accounts.Login(models.Account{
		ID:        user,
		Name:      req.Name,
		Gender:    req.Gender,
		HomeState: req.HomeState,
	})
	return respondData(c, fiber.Map{
		"account":               account,
		"gender_filter_visible": services.GenderFilterVisible(account.Gender),
	})
}

// Orders always re-reads the authoritative history
func (h *AccountHandler) Orders(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	orders, err := h.Accounts.Refresh(c.UserContext(), user, bearerToken(c), h.History)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, orders)
}

func (h *AccountHandler) Unlock(c *fiber.Ctx) error {
	user, ok := userID(c)
	if !ok {
		return nil
	}
	unlock, err := h.Entitlements.Check(c.UserContext(), user, bearerToken(c), c.Params("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, unlock)
}
