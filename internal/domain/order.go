package domain

import "time"

type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderVerified OrderStatus = "verified"
	OrderFailed   OrderStatus = "failed"
)

// Order tracks one checkout attempt against the payment provider. Amount is
// always the server-computed catalog total in minor currency units.
type Order struct {
	ID              string      `json:"-"`
	ProviderOrderID string      `json:"orderId"`
	ProductID       string      `json:"productId"`
	Email           string      `json:"-"`
	AmountCents     int64       `json:"amount"`
	Currency        string      `json:"currency"`
	Receipt         string      `json:"receipt"`
	IdempotencyKey  *string     `json:"-"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"-"`
}
