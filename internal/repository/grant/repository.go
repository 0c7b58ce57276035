package grant

import (
	"context"

	"notes-store/internal/domain"
)

type Repository interface {
	// Create inserts a grant. One grant per order is enforced by the store;
	// a second grant for the same order maps to domain.ErrAlreadyExists.
	Create(ctx context.Context, g domain.DownloadGrant) error
	// Consume marks an unused, unexpired grant as used and returns it.
	// Anything else (unknown token, already used, expired) is
	// domain.ErrNotFound: callers must not learn which.
	Consume(ctx context.Context, token string) (*domain.DownloadGrant, error)
}
