package giftcard

import (
	"context"
	"errors"
	"io"
	"log"

	"giftcard-store/internal/domain"
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

func (r *postgresRepo) List(ctx context.Context) ([]domain.GiftCard, error) {
	const q = `
SELECT id, name, value_cents, currency, COALESCE(description, ''), created_at
FROM gift_cards
ORDER BY value_cents ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("giftcard repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.GiftCard
	for rows.Next() {
		var c domain.GiftCard
		if err := rows.Scan(&c.ID, &c.Name, &c.ValueCents, &c.Currency, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("giftcard repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.GiftCard, error) {
	const q = `
SELECT id, name, value_cents, currency, COALESCE(description, ''), created_at
FROM gift_cards
WHERE id = $1
`
	var c domain.GiftCard
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.ValueCents, &c.Currency, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("giftcard repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("giftcard repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, card domain.GiftCard) (*domain.GiftCard, error) {
	const q = `
INSERT INTO gift_cards (id, name, value_cents, currency, description)
VALUES ($1, $2, $3, $4, NULLIF($5, ''))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    value_cents = EXCLUDED.value_cents,
    currency = EXCLUDED.currency,
    description = EXCLUDED.description
RETURNING created_at
`
	res := card
	err := r.pool.QueryRow(ctx, q, card.ID, card.Name, card.ValueCents, card.Currency, card.Description).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Printf("giftcard repo: upsert id=%s error=%v", card.ID, err)
		return nil, err
	}
	r.logger.Printf("giftcard repo: upserted id=%s value_cents=%d", res.ID, res.ValueCents)
	return &res, nil
}
