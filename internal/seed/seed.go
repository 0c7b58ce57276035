package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	ID          string
	Title       string
	Description string
	PriceCents  int64
	Currency    string
	CoverURL    string
	FileKey     string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			ID:          "p1",
			Title:       "Operating Systems Notes",
			Description: "Complete OS semester notes, handwritten and scanned",
			PriceCents:  19900,
			Currency:    "INR",
			FileKey:     "os-notes.pdf",
		},
		{
			ID:          "p2",
			Title:       "DBMS Notes",
			Description: "Database systems notes with solved previous-year questions",
			PriceCents:  14900,
			Currency:    "INR",
			FileKey:     "dbms-notes.pdf",
		},
		{
			ID:          "p3",
			Title:       "Computer Networks Notes",
			Description: "Networks quick-revision notes",
			PriceCents:  9900,
			Currency:    "INR",
			FileKey:     "cn-notes.pdf",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, title, description, price_cents, currency, cover_url, file_key)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    cover_url = EXCLUDED.cover_url,
    file_key = EXCLUDED.file_key
`
	_, err := pool.Exec(ctx, q, p.ID, p.Title, p.Description, p.PriceCents, p.Currency, p.CoverURL, p.FileKey)
	return err
}
