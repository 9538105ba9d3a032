package services

import "github.com/fenilmodi00/counsel-backend/models"

// IsUnlocked reports whether productID is accessible: free products always
// are, paid ones need a completed order. Pending and failed orders never count.
func IsUnlocked(productID string, orders []models.Order, basePrice float64) bool {
	if basePrice == 0 {
		return true
	}
	for _, order := range orders {
		if order.ProductID == productID && order.Status == models.OrderCompleted {
			return true
		}
	}
	return false
}
