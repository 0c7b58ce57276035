package grant

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

func (r *postgresRepo) Create(ctx context.Context, g domain.DownloadGrant) error {
	const q = `
INSERT INTO download_grants (token, order_id, file_key, expires_at)
VALUES ($1, $2::uuid, $3, $4)
`
	_, err := r.pool.Exec(ctx, q, g.Token, g.OrderID, g.FileKey, g.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("grant repo: create order_id=%s error=%v", g.OrderID, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Consume(ctx context.Context, token string) (*domain.DownloadGrant, error) {
	const q = `
UPDATE download_grants
SET used_at = now()
WHERE token = $1 AND used_at IS NULL AND expires_at > now()
RETURNING token, order_id::text, file_key, expires_at, used_at, created_at
`
	var g domain.DownloadGrant
	err := r.pool.QueryRow(ctx, q, token).Scan(&g.Token, &g.OrderID, &g.FileKey, &g.ExpiresAt, &g.UsedAt, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("grant repo: consume error=%v", err)
		return nil, err
	}
	r.logger.Printf("grant repo: consumed order_id=%s", g.OrderID)
	return &g, nil
}
