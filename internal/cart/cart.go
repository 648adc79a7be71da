package cart

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier receives cart mutation events. Notification is presentation, not
// core logic: failures are logged and never fail the mutation.
type Notifier interface {
	PublishCartEvent(ctx context.Context, event *models.CartEvent) error
}

// Store owns the session cart collection. Every mutation is a read-modify-
// write over the latest persisted state followed by an immediate write-through
// save, so a navigation or reload never observes a stale cart.
type Store struct {
	sessions session.Store
	notifier Notifier
	logger   *zap.Logger
}

// NewStore creates a cart store backed by session storage.
func NewStore(sessions session.Store, notifier Notifier) *Store {
	return &Store{
		sessions: sessions,
		notifier: notifier,
		logger:   util.GetLogger(),
	}
}

// Items returns the current cart contents.
func (s *Store) Items(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return s.sessions.GetCart(ctx, sessionID)
}

// AddItem adds one unit of a product, incrementing the quantity if the
// product is already in the cart.
func (s *Store) AddItem(ctx context.Context, sessionID string, product *models.Product) ([]models.CartItem, error) {
	items, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == product.ID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.UnitPrice,
			Quantity:  1,
		})
	}

	if err := s.sessions.SaveCart(ctx, sessionID, items); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.notify(ctx, sessionID, models.EventTypeCartItemAdded, product.ID, product.Name, 1)
	return items, nil
}

// RemoveItem deletes a product line from the cart.
func (s *Store) RemoveItem(ctx context.Context, sessionID string, productID int64) ([]models.CartItem, error) {
	items, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var removedName string
	kept := items[:0]
	for _, item := range items {
		if item.ProductID == productID {
			removedName = item.Name
			continue
		}
		kept = append(kept, item)
	}

	if err := s.sessions.SaveCart(ctx, sessionID, kept); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	if removedName != "" {
		util.CartMutationsTotal.WithLabelValues("remove").Inc()
		s.notify(ctx, sessionID, models.EventTypeCartItemRemoved, productID, removedName, 0)
	}
	return kept, nil
}

// SetQuantity sets the quantity of a product line. A quantity of zero or
// less removes the line instead of storing it.
func (s *Store) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	items, err := s.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			break
		}
	}

	if err := s.sessions.SaveCart(ctx, sessionID, items); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	util.CartMutationsTotal.WithLabelValues("set_quantity").Inc()
	return items, nil
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.sessions.SaveCart(ctx, sessionID, []models.CartItem{}); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	s.notify(ctx, sessionID, models.EventTypeCartCleared, 0, "", 0)
	return nil
}

func (s *Store) notify(ctx context.Context, sessionID, eventType string, productID int64, productName string, quantity int) {
	if s.notifier == nil {
		return
	}

	event := &models.CartEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		SessionID:   sessionID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
	}

	if err := s.notifier.PublishCartEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish cart event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
