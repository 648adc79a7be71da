package checkout

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/gateway"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher publishes checkout lifecycle events.
type EventPublisher interface {
	PublishCheckoutInitiated(ctx context.Context, event *models.CheckoutInitiatedEvent) error
	PublishOrderCompleted(ctx context.Context, event *models.OrderCompletedEvent) error
	PublishOrderFailed(ctx context.Context, event *models.OrderFailedEvent) error
}

// OrderRecorder persists resolved order outcomes.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
}

// Service orchestrates checkout: it turns the current cart into a payment
// intent, has the gateway builder sign it, and persists the order handoff to
// the session before the redirect form is ever rendered.
type Service struct {
	sessions  session.Store
	cart      *cart.Store
	builder   *gateway.Builder
	orders    OrderRecorder
	publisher EventPublisher
	logger    *zap.Logger
	lockTTL   time.Duration
	currency  currencyCodes
	now       func() time.Time
}

type currencyCodes struct {
	numeric string
	alpha   string
}

// NewService creates a checkout service.
func NewService(
	sessions session.Store,
	cartStore *cart.Store,
	builder *gateway.Builder,
	orders OrderRecorder,
	publisher EventPublisher,
	currencyNumeric, currencyAlpha string,
	lockTTL time.Duration,
) *Service {
	return &Service{
		sessions:  sessions,
		cart:      cartStore,
		builder:   builder,
		orders:    orders,
		publisher: publisher,
		logger:    util.GetLogger(),
		lockTTL:   lockTTL,
		currency:  currencyCodes{numeric: currencyNumeric, alpha: currencyAlpha},
		now:       time.Now,
	}
}

// InitiateResult is a successful checkout initiation: the signed request and
// the auto-submit form that carries the buyer to the gateway.
type InitiateResult struct {
	OrderID string
	Request *gateway.SignedRequest
	Form    []byte
}

// Initiate runs steps one through seven of the checkout protocol. On any
// error the cart and session are left untouched so the buyer can retry;
// the order handoff is written to the session strictly before the form is
// returned.
func (s *Service) Initiate(ctx context.Context, sessionID string) (*InitiateResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Initiate")
	defer span.End()

	acquired, err := s.sessions.AcquireCheckoutLock(ctx, sessionID, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !acquired {
		util.CheckoutFailedTotal.WithLabelValues("in_flight").Inc()
		return nil, ErrCheckoutInFlight
	}
	defer func() {
		if err := s.sessions.ReleaseCheckoutLock(ctx, sessionID); err != nil {
			s.logger.Warn("Failed to release checkout lock", zap.Error(err))
		}
	}()

	profile, err := s.sessions.GetProfile(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read customer profile: %w", err)
	}
	if profile == nil || profile.Name == "" || profile.Email == "" {
		util.CheckoutFailedTotal.WithLabelValues("profile_incomplete").Inc()
		return nil, ErrProfileIncomplete
	}

	items, err := s.cart.Items(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(items) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	totals := cart.Totals(items)

	// The principal is the full grand total. The buyer's installment
	// selection stays in the session as display metadata and never reaches
	// the intent.
	intent := &models.PaymentIntent{
		OrderID:         gateway.NewOrderRef(),
		PrincipalAmount: totals.GrandTotal,
		CurrencyNumeric: s.currency.numeric,
		CurrencyAlpha:   s.currency.alpha,
		CustomerEmail:   profile.Email,
		CustomerName:    profile.Name,
		CreatedAt:       s.now(),
	}

	signed, err := s.builder.Build(intent)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("assembly").Inc()
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}

	// The handoff write must land before the form is returned: once the
	// browser submits it, no further code runs in that page, and the return
	// resolver has only this record to recognize the order by.
	pending := &models.PendingOrder{
		OrderID:   intent.OrderID,
		CreatedAt: intent.CreatedAt,
	}
	if err := s.sessions.SavePendingOrder(ctx, sessionID, pending); err != nil {
		util.CheckoutFailedTotal.WithLabelValues("session_write").Inc()
		return nil, fmt.Errorf("failed to persist order handoff: %w", err)
	}

	form, err := gateway.RenderForm(signed)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("render").Inc()
		return nil, err
	}

	util.CheckoutInitiatedTotal.Inc()
	util.GatewayRequestsSignedTotal.Inc()
	s.logger.Info("Checkout initiated",
		zap.String("order_id", intent.OrderID),
		zap.String("charge_total", totals.GrandTotal.StringFixed(2)))

	event := &models.CheckoutInitiatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutInitiated,
			Timestamp: s.now(),
		},
		OrderID:    intent.OrderID,
		SessionID:  sessionID,
		GrandTotal: totals.GrandTotal,
	}
	if err := s.publisher.PublishCheckoutInitiated(ctx, event); err != nil {
		s.logger.Warn("Failed to publish CheckoutInitiated event", zap.Error(err))
	}

	return &InitiateResult{
		OrderID: intent.OrderID,
		Request: signed,
		Form:    form,
	}, nil
}

// SaveProfile stores the buyer's checkout details for the session.
func (s *Service) SaveProfile(ctx context.Context, sessionID string, profile *models.CustomerProfile) error {
	if profile.Name == "" || profile.Email == "" {
		return ErrProfileIncomplete
	}
	return s.sessions.SaveProfile(ctx, sessionID, profile)
}

// SaveEMISelection stores the buyer's installment choice. Informational
// only: nothing in the charge path ever reads it back.
func (s *Service) SaveEMISelection(ctx context.Context, sessionID string, sel *models.EMISelection) error {
	return s.sessions.SaveEMISelection(ctx, sessionID, sel)
}
