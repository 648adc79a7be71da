package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"storefront/internal/models"
)

// MemoryStore is an in-process Store for tests and local development. It
// round-trips values through JSON so it exercises the same serialization the
// Redis store does.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	locks map[string]bool
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		locks: make(map[string]bool),
	}
}

func (s *MemoryStore) set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return nil
}

func (s *MemoryStore) get(key string, out interface{}) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *MemoryStore) del(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *MemoryStore) GetCart(_ context.Context, sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	found, err := s.get(cartKey(sessionID), &items)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.CartItem{}, nil
	}
	return items, nil
}

func (s *MemoryStore) SaveCart(_ context.Context, sessionID string, items []models.CartItem) error {
	return s.set(cartKey(sessionID), items)
}

func (s *MemoryStore) DeleteCart(_ context.Context, sessionID string) error {
	s.del(cartKey(sessionID))
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, sessionID string) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	found, err := s.get(profileKey(sessionID), &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, sessionID string, profile *models.CustomerProfile) error {
	return s.set(profileKey(sessionID), profile)
}

func (s *MemoryStore) GetPendingOrder(_ context.Context, sessionID string) (*models.PendingOrder, error) {
	var pending models.PendingOrder
	found, err := s.get(pendingKey(sessionID), &pending)
	if err != nil || !found {
		return nil, err
	}
	return &pending, nil
}

func (s *MemoryStore) SavePendingOrder(_ context.Context, sessionID string, order *models.PendingOrder) error {
	return s.set(pendingKey(sessionID), order)
}

func (s *MemoryStore) DeletePendingOrder(_ context.Context, sessionID string) error {
	s.del(pendingKey(sessionID))
	return nil
}

func (s *MemoryStore) GetEMISelection(_ context.Context, sessionID string) (*models.EMISelection, error) {
	var sel models.EMISelection
	found, err := s.get(emiKey(sessionID), &sel)
	if err != nil || !found {
		return nil, err
	}
	return &sel, nil
}

func (s *MemoryStore) SaveEMISelection(_ context.Context, sessionID string, sel *models.EMISelection) error {
	return s.set(emiKey(sessionID), sel)
}

func (s *MemoryStore) AcquireCheckoutLock(_ context.Context, sessionID string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[sessionID] {
		return false, nil
	}
	s.locks[sessionID] = true
	return true, nil
}

func (s *MemoryStore) ReleaseCheckoutLock(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sessionID)
	return nil
}
