package models

import "time"

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
)

// Order is one entry of a user's order history. Orders are never deleted.
type Order struct {
	ID             string      `json:"id,omitempty"`
	ProductID      string      `json:"productId"`
	Amount         float64     `json:"amount"`
	Status         OrderStatus `json:"status"`
	CouponCode     string      `json:"couponCode,omitempty"`
	OriginalAmount float64     `json:"originalAmount,omitempty"`
	CreatedAt      *time.Time  `json:"createdAt,omitempty"`
}

// Product is a purchasable feature. A zero price means it is free.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Account is the signed-in user as known to the gateway
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	HomeState string    `json:"home_state,omitempty"`
	LoggedIn  time.Time `json:"logged_in"`
}
