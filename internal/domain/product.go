package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	CoverURL    string    `json:"cover,omitempty"`
	FileKey     string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}
