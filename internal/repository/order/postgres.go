package order

import (
	"context"
	"errors"
	"io"
	"log"

	"notes-store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, provider_order_id, product_id, email, amount_cents, currency, receipt, idempotency_key, status, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
INSERT INTO orders (id, provider_order_id, product_id, email, amount_cents, currency, receipt, idempotency_key, status)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, 'pending')
RETURNING ` + orderColumns
	row := r.pool.QueryRow(ctx, q,
		o.ID,
		o.ProviderOrderID,
		o.ProductID,
		o.Email,
		o.AmountCents,
		o.Currency,
		o.Receipt,
		o.IdempotencyKey,
	)
	created, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: create provider_order_id=%s error=%v", o.ProviderOrderID, err)
		return nil, err
	}
	r.logger.Printf("order repo: created provider_order_id=%s product_id=%s amount=%d", created.ProviderOrderID, created.ProductID, created.AmountCents)
	return created, nil
}

func (r *postgresRepo) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE provider_order_id = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, providerOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get provider_order_id=%s error=%v", providerOrderID, err)
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get idempotency_key=%s error=%v", key, err)
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) MarkVerified(ctx context.Context, providerOrderID string) (*domain.Order, error) {
	// Single conditional statement: two concurrent verify calls cannot both
	// observe a transition.
	const q = `
UPDATE orders
SET status = 'verified', updated_at = now()
WHERE provider_order_id = $1 AND status <> 'verified'
RETURNING ` + orderColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q, providerOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: mark verified provider_order_id=%s error=%v", providerOrderID, err)
		return nil, err
	}
	r.logger.Printf("order repo: verified provider_order_id=%s", providerOrderID)
	return o, nil
}

func (r *postgresRepo) MarkFailed(ctx context.Context, providerOrderID string) error {
	const q = `
UPDATE orders
SET status = 'failed', updated_at = now()
WHERE provider_order_id = $1 AND status = 'pending'
`
	if _, err := r.pool.Exec(ctx, q, providerOrderID); err != nil {
		r.logger.Printf("order repo: mark failed provider_order_id=%s error=%v", providerOrderID, err)
		return err
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.ProviderOrderID,
		&o.ProductID,
		&o.Email,
		&o.AmountCents,
		&o.Currency,
		&o.Receipt,
		&o.IdempotencyKey,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
