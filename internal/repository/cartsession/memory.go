package cartsession

import (
	"context"
	"sync"
	"time"

	"giftcard-store/internal/domain"
)

type memoryStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemory() Repository {
	return &memoryStore{carts: make(map[string]*domain.Cart)}
}

// Get returns the session's cart, creating an empty one on first use.
func (s *memoryStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, domain.ErrValidation
	}

	s.mu.RLock()
	cart, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if ok {
		return copyCart(cart), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.carts[sessionID]; ok {
		return copyCart(cart), nil
	}
	cart = &domain.Cart{SessionID: sessionID, CreatedAt: time.Now().UTC()}
	s.carts[sessionID] = cart
	return copyCart(cart), nil
}

func (s *memoryStore) Save(_ context.Context, cart *domain.Cart) error {
	if cart == nil || cart.SessionID == "" {
		return domain.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.SessionID] = copyCart(cart)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

// copyCart keeps callers from mutating stored state without Save.
func copyCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = make([]domain.CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
