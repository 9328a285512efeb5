package catalog

import (
	"context"
	"fmt"

	"giftcard-store/internal/domain"
	"giftcard-store/internal/money"
)

// Custom gift-card amount bounds.
const (
	MinCustomCents = 500
	MaxCustomCents = 50000
)

type Service struct {
	repo     cardRepo
	currency string
}

type cardRepo interface {
	List(ctx context.Context) ([]domain.GiftCard, error)
	GetByID(ctx context.Context, id string) (*domain.GiftCard, error)
}

func New(repo cardRepo, currency string) *Service {
	if currency == "" {
		currency = "USD"
	}
	return &Service{repo: repo, currency: currency}
}

func (s *Service) List(ctx context.Context) ([]domain.GiftCard, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.GiftCard, error) {
	return s.repo.GetByID(ctx, id)
}

// Custom synthesizes a gift card for an arbitrary amount. The id is derived
// from the amount, so equal amounts collapse into one cart line while
// different amounts stay distinct.
func (s *Service) Custom(amountCents int64) (*domain.GiftCard, error) {
	if amountCents < MinCustomCents || amountCents > MaxCustomCents {
		return nil, fmt.Errorf("%w: amount must be between %s and %s",
			domain.ErrValidation, money.FormatCompact(MinCustomCents), money.FormatCompact(MaxCustomCents))
	}
	return &domain.GiftCard{
		ID:          fmt.Sprintf("custom-%d", amountCents),
		Name:        fmt.Sprintf("Custom Gift Card (%s)", money.FormatCompact(amountCents)),
		ValueCents:  amountCents,
		Currency:    s.currency,
		Description: "A custom gift card amount of your choice",
		Custom:      true,
	}, nil
}
