package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCartItemAdded     = "CART_ITEM_ADDED"
	EventTypeCartItemRemoved   = "CART_ITEM_REMOVED"
	EventTypeCartCleared       = "CART_CLEARED"
	EventTypeCheckoutInitiated = "CHECKOUT_INITIATED"
	EventTypeOrderCompleted    = "ORDER_COMPLETED"
	EventTypeOrderFailed       = "ORDER_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CartEvent is published on every cart mutation; consumed fire-and-forget by
// the notification worker.
type CartEvent struct {
	BaseEvent
	SessionID   string `json:"session_id"`
	ProductID   int64  `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
}

// CheckoutInitiatedEvent published when a signed gateway request is produced
type CheckoutInitiatedEvent struct {
	BaseEvent
	OrderID    string          `json:"order_id"`
	SessionID  string          `json:"session_id"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// OrderCompletedEvent published when the return resolver confirms an order
type OrderCompletedEvent struct {
	BaseEvent
	OrderID       string          `json:"order_id"`
	SessionID     string          `json:"session_id"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// OrderFailedEvent published when the gateway reports a failed payment
type OrderFailedEvent struct {
	BaseEvent
	OrderID   string `json:"order_id,omitempty"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}
