package cart

import (
	"context"
	"fmt"
	"strings"

	"giftcard-store/internal/domain"
	"github.com/google/uuid"
)

type Service struct {
	repo sessionRepo
}

type sessionRepo interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

func New(repo sessionRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, sessionID)
}

// Add puts quantity units of a gift card into the session's cart. Lines are
// deduplicated by gift-card id: adding an id already in the cart sums the
// quantities, capped at the per-line maximum.
func (s *Service) Add(ctx context.Context, sessionID string, card domain.GiftCard, quantity int) (*domain.Cart, error) {
	if strings.TrimSpace(card.ID) == "" {
		return nil, fmt.Errorf("%w: gift card id required", domain.ErrValidation)
	}
	if card.ValueCents <= 0 {
		return nil, fmt.Errorf("%w: gift card value must be positive", domain.ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].GiftCard.ID == card.ID {
			cart.Items[i].Quantity = clampQuantity(cart.Items[i].Quantity + quantity)
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{
			LineID:   uuid.NewString(),
			GiftCard: card,
			Quantity: clampQuantity(quantity),
		})
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ChangeQuantity sets a line's quantity, clamped to [MinQuantity, MaxQuantity]
// regardless of the requested value.
func (s *Service) ChangeQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*domain.Cart, error) {
	if strings.TrimSpace(lineID) == "" {
		return nil, fmt.Errorf("%w: line id required", domain.ErrValidation)
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].LineID == lineID {
			cart.Items[i].Quantity = clampQuantity(quantity)
			if err := s.repo.Save(ctx, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Remove drops a line from the cart entirely.
func (s *Service) Remove(ctx context.Context, sessionID, lineID string) (*domain.Cart, error) {
	if strings.TrimSpace(lineID) == "" {
		return nil, fmt.Errorf("%w: line id required", domain.ErrValidation)
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].LineID == lineID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			if err := s.repo.Save(ctx, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Clear empties the session's cart. Called exactly once per checkout, on
// successful capture.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

func clampQuantity(q int) int {
	if q < domain.MinQuantity {
		return domain.MinQuantity
	}
	if q > domain.MaxQuantity {
		return domain.MaxQuantity
	}
	return q
}
