package product

import (
	"context"
	"errors"
	"io"
	"log"

	"notes-store/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id, title, COALESCE(description, ''), price_cents, currency, COALESCE(cover_url, ''), COALESCE(file_key, ''), created_at
FROM products
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.Currency, &p.CoverURL, &p.FileKey, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id, title, COALESCE(description, ''), price_cents, currency, COALESCE(cover_url, ''), COALESCE(file_key, ''), created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.Currency, &p.CoverURL, &p.FileKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, title, description, price_cents, currency, cover_url, file_key)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''))
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    cover_url = EXCLUDED.cover_url,
    file_key = EXCLUDED.file_key
RETURNING created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Title,
		product.Description,
		product.PriceCents,
		product.Currency,
		product.CoverURL,
		product.FileKey,
	).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert id=%s error=%v", product.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s title=%q", res.ID, res.Title)
	return &res, nil
}
