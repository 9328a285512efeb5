package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type cardSeed struct {
	ID          string
	Name        string
	ValueCents  int64
	Currency    string
	Description string
}

// Apply inserts the stock gift-card denominations. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	cards := []cardSeed{
		{
			ID:          "gift-card-15",
			Name:        "$15 Gift Card",
			ValueCents:  1500,
			Currency:    "USD",
			Description: "Perfect for small treats and essentials",
		},
		{
			ID:          "gift-card-50",
			Name:        "$50 Gift Card",
			ValueCents:  5000,
			Currency:    "USD",
			Description: "Great for special occasions and gifts",
		},
		{
			ID:          "gift-card-100",
			Name:        "$100 Gift Card",
			ValueCents:  10000,
			Currency:    "USD",
			Description: "Premium gift card for luxury purchases",
		},
	}

	for _, c := range cards {
		if err := upsertCard(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert gift card %s: %w", c.ID, err)
		}
	}

	return nil
}

func upsertCard(ctx context.Context, pool *pgxpool.Pool, c cardSeed) error {
	const q = `
INSERT INTO gift_cards (id, name, value_cents, currency, description)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    value_cents = EXCLUDED.value_cents,
    currency = EXCLUDED.currency,
    description = EXCLUDED.description
`
	_, err := pool.Exec(ctx, q, c.ID, c.Name, c.ValueCents, c.Currency, c.Description)
	return err
}
