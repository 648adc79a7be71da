package session

import (
	"context"
	"time"

	"storefront/internal/models"
)

// Store is the session-scoped key-value storage shared by the cart, the
// checkout handoff and the return resolver. Everything in it lives and dies
// with one shopping session.
type Store interface {
	GetCart(ctx context.Context, sessionID string) ([]models.CartItem, error)
	SaveCart(ctx context.Context, sessionID string, items []models.CartItem) error
	DeleteCart(ctx context.Context, sessionID string) error

	GetProfile(ctx context.Context, sessionID string) (*models.CustomerProfile, error)
	SaveProfile(ctx context.Context, sessionID string, profile *models.CustomerProfile) error

	// GetPendingOrder returns nil when no checkout handoff exists for the
	// session. SavePendingOrder must be durable before the gateway redirect
	// is rendered; the resolver depends on that ordering.
	GetPendingOrder(ctx context.Context, sessionID string) (*models.PendingOrder, error)
	SavePendingOrder(ctx context.Context, sessionID string, order *models.PendingOrder) error
	DeletePendingOrder(ctx context.Context, sessionID string) error

	GetEMISelection(ctx context.Context, sessionID string) (*models.EMISelection, error)
	SaveEMISelection(ctx context.Context, sessionID string, sel *models.EMISelection) error

	// AcquireCheckoutLock guards against double-submit: it succeeds at most
	// once per session until released or expired.
	AcquireCheckoutLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, sessionID string) error
}
