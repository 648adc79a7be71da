package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps session state in Redis. Every value is a JSON blob under a
// session-prefixed key with a rolling TTL, written through on each mutation.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func cartKey(sessionID string) string    { return fmt.Sprintf("session:%s:cart", sessionID) }
func profileKey(sessionID string) string { return fmt.Sprintf("session:%s:profile", sessionID) }
func pendingKey(sessionID string) string { return fmt.Sprintf("session:%s:pending_order", sessionID) }
func emiKey(sessionID string) string     { return fmt.Sprintf("session:%s:emi_selection", sessionID) }
func lockKey(sessionID string) string    { return fmt.Sprintf("lock:checkout:%s", sessionID) }

// GetCart returns the persisted cart, or an empty collection when none exists.
func (s *RedisStore) GetCart(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return items, nil
}

// SaveCart persists the full cart collection (write-through).
func (s *RedisStore) SaveCart(ctx context.Context, sessionID string, items []models.CartItem) error {
	return s.setJSON(ctx, cartKey(sessionID), items)
}

// DeleteCart removes the cart for a session
func (s *RedisStore) DeleteCart(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

// GetProfile returns the customer profile, or nil when none was captured.
func (s *RedisStore) GetProfile(ctx context.Context, sessionID string) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	found, err := s.getJSON(ctx, profileKey(sessionID), &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile persists the customer profile
func (s *RedisStore) SaveProfile(ctx context.Context, sessionID string, profile *models.CustomerProfile) error {
	return s.setJSON(ctx, profileKey(sessionID), profile)
}

// GetPendingOrder returns the checkout handoff, or nil when none exists.
func (s *RedisStore) GetPendingOrder(ctx context.Context, sessionID string) (*models.PendingOrder, error) {
	var pending models.PendingOrder
	found, err := s.getJSON(ctx, pendingKey(sessionID), &pending)
	if err != nil || !found {
		return nil, err
	}
	return &pending, nil
}

// SavePendingOrder persists the checkout handoff
func (s *RedisStore) SavePendingOrder(ctx context.Context, sessionID string, order *models.PendingOrder) error {
	return s.setJSON(ctx, pendingKey(sessionID), order)
}

// DeletePendingOrder removes the checkout handoff
func (s *RedisStore) DeletePendingOrder(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, pendingKey(sessionID)).Err()
}

// GetEMISelection returns the installment metadata, or nil when none exists.
func (s *RedisStore) GetEMISelection(ctx context.Context, sessionID string) (*models.EMISelection, error) {
	var sel models.EMISelection
	found, err := s.getJSON(ctx, emiKey(sessionID), &sel)
	if err != nil || !found {
		return nil, err
	}
	return &sel, nil
}

// SaveEMISelection persists the installment metadata
func (s *RedisStore) SaveEMISelection(ctx context.Context, sessionID string, sel *models.EMISelection) error {
	return s.setJSON(ctx, emiKey(sessionID), sel)
}

// AcquireCheckoutLock takes the per-session checkout lock via SETNX.
func (s *RedisStore) AcquireCheckoutLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(sessionID), "1", ttl).Result()
}

// ReleaseCheckoutLock releases the per-session checkout lock.
func (s *RedisStore) ReleaseCheckoutLock(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, lockKey(sessionID)).Err()
}

func (s *RedisStore) setJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) getJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
