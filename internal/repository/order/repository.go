package order

import (
	"context"

	"notes-store/internal/domain"
)

type Repository interface {
	// Create inserts a pending order. A duplicate idempotency key maps to
	// domain.ErrAlreadyExists so callers can return the original order.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	// MarkVerified transitions an order to verified unless it already is.
	// Returns domain.ErrNotFound when no row transitioned, which for an
	// existing order means the verification was already consumed.
	MarkVerified(ctx context.Context, providerOrderID string) (*domain.Order, error)
	// MarkFailed records a failed verification attempt; it never downgrades
	// a verified order.
	MarkFailed(ctx context.Context, providerOrderID string) error
}
