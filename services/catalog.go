package services

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/fenilmodi00/counsel-backend/models"
	"github.com/fenilmodi00/counsel-backend/shared"
	"github.com/sirupsen/logrus"
)

// ProductCatalog resolves a product's base price
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// CouponCatalog resolves coupons by code. A nil coupon with nil error means unknown.
type CouponCatalog interface {
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// StaticCatalog is an in-memory product catalog used when no database is configured
type StaticCatalog struct {
	mutex    sync.RWMutex
	products map[string]models.Product
}

// NewStaticCatalog creates a catalog from products
func NewStaticCatalog(products []models.Product) *StaticCatalog {
	c := &StaticCatalog{products: make(map[string]models.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// ParseProductCatalog parses "id:name:price" entries separated by ";". Malformed
// entries are skipped with a warning.
func ParseProductCatalog(raw string) []models.Product {
	products := []models.Product{}
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) != 3 {
			logrus.WithField("entry", item).Warn("Skipping malformed product catalog entry")
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil || price < 0 {
			logrus.WithField("entry", item).Warn("Skipping product catalog entry with invalid price")
			continue
		}
		products = append(products, models.Product{
			ID:    strings.TrimSpace(parts[0]),
			Name:  strings.TrimSpace(parts[1]),
			Price: price,
		})
	}
	return products
}

// GetProduct implements ProductCatalog
func (c *StaticCatalog) GetProduct(_ context.Context, productID string) (*models.Product, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	p, ok := c.products[productID]
	if !ok {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "PRODUCT_NOT_FOUND",
			"product "+productID+" not found", "Product_Catalog", "get_product", false, nil)
	}
	return &p, nil
}

// Put adds or replaces a product
func (c *StaticCatalog) Put(p models.Product) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.products[p.ID] = p
}
