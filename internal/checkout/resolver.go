package checkout

import (
	"context"
	"net/url"
	"time"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutcomeKind is the resolver's verdict on a post-payment page load.
type OutcomeKind string

const (
	// OutcomeSuccess: the order is confirmed; the cart has been cleared.
	OutcomeSuccess OutcomeKind = "SUCCESS"
	// OutcomeFailed: the gateway declined; the cart is preserved for retry.
	OutcomeFailed OutcomeKind = "FAILED"
	// OutcomeAwaiting: a checkout is in flight but the gateway has not
	// signalled yet; keep waiting.
	OutcomeAwaiting OutcomeKind = "AWAITING_SIGNAL"
	// OutcomeAbandoned: no checkout context exists; route the visitor back
	// to the shopping flow.
	OutcomeAbandoned OutcomeKind = "ABANDONED"
)

// Outcome is the resolved order state for a return-page load.
type Outcome struct {
	Kind        OutcomeKind
	OrderID     string
	CompletedAt time.Time
}

// Resolver reconciles the gateway's redirect-back (or a bare navigation to
// the return route) into a definitive order outcome. The return URL is
// gateway-authoritative and wins over session state; session state recovers
// in-flight orders when the URL carries nothing.
type Resolver struct {
	sessions sessionReader
	cart     *cart.Store
	orders   OrderRecorder
	pub      EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// sessionReader is the slice of session storage the resolver touches.
type sessionReader interface {
	GetCart(ctx context.Context, sessionID string) ([]models.CartItem, error)
	GetProfile(ctx context.Context, sessionID string) (*models.CustomerProfile, error)
	GetPendingOrder(ctx context.Context, sessionID string) (*models.PendingOrder, error)
	SavePendingOrder(ctx context.Context, sessionID string, order *models.PendingOrder) error
	ReleaseCheckoutLock(ctx context.Context, sessionID string) error
}

// NewResolver creates a redirect resolver.
func NewResolver(sessions sessionReader, cartStore *cart.Store, orders OrderRecorder, pub EventPublisher) *Resolver {
	return &Resolver{
		sessions: sessions,
		cart:     cartStore,
		orders:   orders,
		pub:      pub,
		logger:   util.GetLogger(),
		now:      time.Now,
	}
}

// Resolve applies the transition rules in priority order:
//  1. an explicit URL status signal decides immediately;
//  2. otherwise a persisted order handoff resumes an in-flight or completed
//     checkout;
//  3. otherwise the visit has no checkout context and is abandoned.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, query url.Values) (Outcome, error) {
	ctx, span := util.StartSpan(ctx, "Resolver.Resolve")
	defer span.End()

	signal := ParseReturnSignal(query.Get("status"))
	urlOrderID := query.Get("orderId")

	switch signal {
	case SignalSuccess:
		return r.resolveSuccess(ctx, sessionID, urlOrderID)
	case SignalFailed:
		return r.resolveFailed(ctx, sessionID)
	}

	pending, err := r.sessions.GetPendingOrder(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	if pending == nil {
		util.RedirectOutcomesTotal.WithLabelValues("abandoned").Inc()
		return Outcome{Kind: OutcomeAbandoned}, nil
	}
	if pending.Completed {
		util.RedirectOutcomesTotal.WithLabelValues("success").Inc()
		return Outcome{Kind: OutcomeSuccess, OrderID: pending.OrderID, CompletedAt: pending.CreatedAt}, nil
	}

	util.RedirectOutcomesTotal.WithLabelValues("awaiting").Inc()
	return Outcome{Kind: OutcomeAwaiting, OrderID: pending.OrderID}, nil
}

// resolveSuccess confirms the order. The URL-carried order id wins over the
// session's because the gateway put it there; the session value covers the
// case of a success round-trip that dropped its query parameters.
func (r *Resolver) resolveSuccess(ctx context.Context, sessionID, urlOrderID string) (Outcome, error) {
	pending, err := r.sessions.GetPendingOrder(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	orderID := urlOrderID
	if orderID == "" && pending != nil {
		orderID = pending.OrderID
	}
	if orderID == "" {
		// A success signal with no recoverable order id is a lost-context
		// arrival, not a confirmable order.
		util.RedirectOutcomesTotal.WithLabelValues("abandoned").Inc()
		return Outcome{Kind: OutcomeAbandoned}, nil
	}

	if pending != nil && pending.Completed && pending.OrderID == orderID {
		// Reload of an already-finalized return page: report the same
		// outcome without repeating the side effects.
		util.RedirectOutcomesTotal.WithLabelValues("success").Inc()
		return Outcome{Kind: OutcomeSuccess, OrderID: orderID, CompletedAt: pending.CreatedAt}, nil
	}

	completedAt := r.now()
	outcome := Outcome{Kind: OutcomeSuccess, OrderID: orderID, CompletedAt: completedAt}

	r.recordOrder(ctx, sessionID, orderID, completedAt)

	updated := &models.PendingOrder{OrderID: orderID, CreatedAt: completedAt, Completed: true}
	if pending != nil && !pending.CreatedAt.IsZero() {
		updated.CreatedAt = pending.CreatedAt
	}
	if err := r.sessions.SavePendingOrder(ctx, sessionID, updated); err != nil {
		r.logger.Error("Failed to mark order completed in session", zap.Error(err))
	}

	// The order is done; the cart collection dies with it.
	if err := r.cart.Clear(ctx, sessionID); err != nil {
		r.logger.Error("Failed to clear cart after completion", zap.Error(err))
	}
	if err := r.sessions.ReleaseCheckoutLock(ctx, sessionID); err != nil {
		r.logger.Warn("Failed to release checkout lock", zap.Error(err))
	}

	util.RedirectOutcomesTotal.WithLabelValues("success").Inc()
	util.OrdersCompletedTotal.Inc()
	r.logger.Info("Order resolved as completed", zap.String("order_id", orderID))

	return outcome, nil
}

// resolveFailed surfaces a retryable failure. The cart is deliberately left
// intact.
func (r *Resolver) resolveFailed(ctx context.Context, sessionID string) (Outcome, error) {
	pending, err := r.sessions.GetPendingOrder(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	orderID := ""
	if pending != nil {
		orderID = pending.OrderID
	}
	if err := r.sessions.ReleaseCheckoutLock(ctx, sessionID); err != nil {
		r.logger.Warn("Failed to release checkout lock", zap.Error(err))
	}

	util.RedirectOutcomesTotal.WithLabelValues("failed").Inc()
	util.OrdersFailedTotal.WithLabelValues("gateway_declined").Inc()
	r.logger.Warn("Order resolved as failed", zap.String("order_id", orderID))

	event := &models.OrderFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderFailed,
			Timestamp: r.now(),
		},
		OrderID:   orderID,
		SessionID: sessionID,
		Reason:    "gateway_declined",
	}
	if err := r.pub.PublishOrderFailed(ctx, event); err != nil {
		r.logger.Warn("Failed to publish OrderFailed event", zap.Error(err))
	}

	return Outcome{Kind: OutcomeFailed, OrderID: orderID}, nil
}

// recordOrder writes the confirmed order to durable storage and announces
// it. Both effects are secondary to resolving the buyer's outcome: failures
// are logged, never surfaced.
func (r *Resolver) recordOrder(ctx context.Context, sessionID, orderID string, completedAt time.Time) {
	items, err := r.sessions.GetCart(ctx, sessionID)
	if err != nil {
		r.logger.Error("Failed to read cart for order record", zap.Error(err))
		items = nil
	}
	totals := cart.Totals(items)

	var name, email string
	if profile, err := r.sessions.GetProfile(ctx, sessionID); err == nil && profile != nil {
		name, email = profile.Name, profile.Email
	}

	order := &models.Order{
		OrderRef:       orderID,
		SessionID:      sessionID,
		CustomerName:   name,
		CustomerEmail:  email,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		ShippingAmount: totals.ShippingAmount,
		GrandTotal:     totals.GrandTotal,
		Status:         models.OrderStatusCompleted,
		CompletedAt:    &completedAt,
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	if err := r.orders.RecordOrder(ctx, order, orderItems); err != nil {
		r.logger.Error("Failed to record completed order",
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	event := &models.OrderCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCompleted,
			Timestamp: r.now(),
		},
		OrderID:       orderID,
		SessionID:     sessionID,
		CustomerEmail: email,
		GrandTotal:    totals.GrandTotal,
		CompletedAt:   completedAt,
	}
	if err := r.pub.PublishOrderCompleted(ctx, event); err != nil {
		r.logger.Warn("Failed to publish OrderCompleted event", zap.Error(err))
	}
}
