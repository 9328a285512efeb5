// Package cartsession holds per-session carts in process memory. Carts are
// volatile on purpose: a cart lives exactly as long as the browsing session
// and is never written to durable storage.
package cartsession

import (
	"context"

	"giftcard-store/internal/domain"
)

type Repository interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
