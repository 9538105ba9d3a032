package services

import (
	"context"

	"github.com/fenilmodi00/counsel-backend/models"
)

// EntitlementService answers whether a user may see a product's content
type EntitlementService struct {
	catalog  ProductCatalog
	accounts *AccountStore
	history  OrderHistorySource
}

// NewEntitlementService creates an entitlement service
func NewEntitlementService(catalog ProductCatalog, accounts *AccountStore, history OrderHistorySource) *EntitlementService {
	return &EntitlementService{catalog: catalog, accounts: accounts, history: history}
}

// Unlock is the derived unlock state of one product
type Unlock struct {
	Product  models.Product `json:"product"`
	Unlocked bool           `json:"unlocked"`
}

// Check resolves the product and applies reconciliation to the user's history.
// Free products never need the history.
func (s *EntitlementService) Check(ctx context.Context, userID, token, productID string) (*Unlock, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Price == 0 {
		return &Unlock{Product: *product, Unlocked: true}, nil
	}

	orders, err := s.accounts.EnsureOrders(ctx, userID, token, s.history)
	if err != nil {
		return nil, err
	}
	return &Unlock{Product: *product, Unlocked: IsUnlocked(product.ID, orders, product.Price)}, nil
}
