package giftcard

import (
	"context"

	"giftcard-store/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.GiftCard, error)
	GetByID(ctx context.Context, id string) (*domain.GiftCard, error)
	Upsert(ctx context.Context, card domain.GiftCard) (*domain.GiftCard, error)
}

// Writer is the subset the importer needs.
type Writer interface {
	Upsert(ctx context.Context, card domain.GiftCard) (*domain.GiftCard, error)
}
