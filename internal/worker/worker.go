package worker

import (
	"context"
	"fmt"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes storefront events and dispatches user-facing
// notifications. Delivery here is logging; a mail or push sender would hang
// off the same handlers. Order events are deduplicated through the
// processed-events table so a redelivered message never notifies twice.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	logger       *zap.Logger
}

// NewNotificationWorker creates a notification worker.
func NewNotificationWorker(consumer *broker.Consumer, st *store.Store) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		store:    st,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnCartEvent(w.handleCartEvent)
	eventHandler.OnOrderCompleted(w.handleOrderCompleted)
	eventHandler.OnOrderFailed(w.handleOrderFailed)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

// handleCartEvent surfaces cart mutations. These are fire-and-forget toasts;
// no idempotency needed beyond at-least-once delivery.
func (w *NotificationWorker) handleCartEvent(_ context.Context, event *models.CartEvent) error {
	util.NotificationsProcessedTotal.WithLabelValues(event.EventType).Inc()

	switch event.EventType {
	case models.EventTypeCartItemAdded:
		w.logger.Info("Notify: item added to cart",
			zap.String("session_id", event.SessionID),
			zap.String("product", event.ProductName))
	case models.EventTypeCartItemRemoved:
		w.logger.Info("Notify: item removed from cart",
			zap.String("session_id", event.SessionID),
			zap.String("product", event.ProductName))
	case models.EventTypeCartCleared:
		w.logger.Info("Notify: cart cleared",
			zap.String("session_id", event.SessionID))
	}
	return nil
}

func (w *NotificationWorker) handleOrderCompleted(ctx context.Context, event *models.OrderCompletedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	util.NotificationsProcessedTotal.WithLabelValues(event.EventType).Inc()
	w.logger.Info("Notify: order confirmed",
		zap.String("order_id", event.OrderID),
		zap.String("customer_email", event.CustomerEmail),
		zap.String("grand_total", event.GrandTotal.StringFixed(2)))

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}

func (w *NotificationWorker) handleOrderFailed(ctx context.Context, event *models.OrderFailedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	util.NotificationsProcessedTotal.WithLabelValues(event.EventType).Inc()
	w.logger.Warn("Notify: payment failed, cart preserved for retry",
		zap.String("order_id", event.OrderID),
		zap.String("session_id", event.SessionID),
		zap.String("reason", event.Reason))

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}
