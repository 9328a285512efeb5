package checkout

import (
	"sync"

	"giftcard-store/internal/domain"
)

// Manager tracks at most one active flow per session. Re-entrant begin while
// an attempt is live is rejected; a closed or finished flow is replaced.
type Manager struct {
	gateway Gateway

	mu    sync.Mutex
	flows map[string]*Flow
}

func NewManager(gateway Gateway) *Manager {
	return &Manager{gateway: gateway, flows: make(map[string]*Flow)}
}

// Begin opens a checkout attempt for the session over the given snapshot.
func (m *Manager) Begin(sessionID string, items []domain.CartItem) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.flows[sessionID]; ok {
		switch f.State() {
		case StateSucceeded, StateFailed:
			// Finished attempts are replaced.
		default:
			return nil, ErrInvalidState
		}
	}

	f := NewFlow(m.gateway)
	if err := f.Begin(items); err != nil {
		return nil, err
	}
	m.flows[sessionID] = f
	return f, nil
}

func (m *Manager) Get(sessionID string) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[sessionID]
	return f, ok
}

// Rebind refreshes the active flow's snapshot after a cart mutation, if a
// flow is mounted. An emptied cart tears the attempt down instead: an empty
// cart cannot enter checkout, so nothing of the old snapshot may remain
// submittable. Flows in terminal states are left alone.
func (m *Manager) Rebind(sessionID string, items []domain.CartItem) {
	if len(items) == 0 {
		m.Close(sessionID)
		return
	}
	m.mu.Lock()
	f, ok := m.flows[sessionID]
	m.mu.Unlock()
	if !ok {
		return
	}
	// Best effort: terminal or not-yet-ready states reject the update.
	_ = f.UpdateSnapshot(items)
}

// Close abandons the session's attempt, if any.
func (m *Manager) Close(sessionID string) {
	m.mu.Lock()
	f, ok := m.flows[sessionID]
	if ok {
		delete(m.flows, sessionID)
	}
	m.mu.Unlock()
	if ok {
		f.Close()
	}
}
