package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/models"
)

// RecordOrder persists a resolved order and its lines in one transaction.
// The order reference is unique, so re-recording the same outcome (a reload
// of the return page racing the session write) is a no-op.
func (s *Store) RecordOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (order_ref, session_id, customer_name, customer_email,
			subtotal, tax_amount, shipping_amount, grand_total, status, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_ref) DO NOTHING
		RETURNING id, created_at`

	err = tx.GetContext(ctx, order, query,
		order.OrderRef, order.SessionID, order.CustomerName, order.CustomerEmail,
		order.Subtotal, order.TaxAmount, order.ShippingAmount, order.GrandTotal,
		order.Status, order.CompletedAt)
	if err == sql.ErrNoRows {
		// Conflict: the order was already recorded.
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			items[i].OrderID, items[i].ProductID, items[i].Name, items[i].UnitPrice, items[i].Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByRef retrieves an order by its order reference
func (s *Store) GetOrderByRef(ctx context.Context, orderRef string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_ref = $1", orderRef)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %s", orderRef)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves all lines of a recorded order
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// IsEventProcessed checks if a notification event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks a notification event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
