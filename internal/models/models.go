package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product
type Product struct {
	ID          int64           `db:"id" json:"id"`
	SKU         string          `db:"sku" json:"sku"`
	Name        string          `db:"name" json:"name"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	ImageURL    string          `db:"image_url" json:"image_url,omitempty"`
	Description string          `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// CartItem is one line of a session cart. Quantity is always >= 1; dropping
// to zero removes the line instead of storing it.
type CartItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// OrderTotals is derived from cart contents and never stored independently.
// GrandTotal = Subtotal + TaxAmount + ShippingAmount to the cent.
type OrderTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// EMIPlan is one installment option for a principal. All figures are
// informational for display; none of them is ever the charged amount.
type EMIPlan struct {
	TenureMonths      int             `json:"tenure_months"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	MonthlyAmount     decimal.Decimal `json:"monthly_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	CashbackAmount    decimal.Decimal `json:"cashback_amount"`
}

// EMISelection is the buyer's chosen installment metadata, persisted to the
// session for later bank-side conversion. It must never be read back as the
// charge amount.
type EMISelection struct {
	TenureMonths  int             `json:"tenure_months"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	Hybrid        bool            `json:"hybrid"`
	UpfrontAmount decimal.Decimal `json:"upfront_amount"`
}

// CustomerProfile holds checkout contact details captured before payment.
type CustomerProfile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// PaymentIntent is the immutable charge description handed to the gateway
// request builder. PrincipalAmount is always the full order grand total,
// never an installment or upfront figure.
type PaymentIntent struct {
	OrderID         string          `json:"order_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	CurrencyNumeric string          `json:"currency_numeric"`
	CurrencyAlpha   string          `json:"currency_alpha"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerName    string          `json:"customer_name"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PendingOrder is the order-id handoff persisted to the session before the
// gateway redirect, so the return resolver can recognize the order even if
// the gateway drops query parameters.
type PendingOrder struct {
	OrderID   string    `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
	Completed bool      `json:"completed"`
}

// Order is a recorded order outcome
type Order struct {
	ID             int64           `db:"id" json:"id"`
	OrderRef       string          `db:"order_ref" json:"order_ref"`
	SessionID      string          `db:"session_id" json:"session_id"`
	CustomerName   string          `db:"customer_name" json:"customer_name"`
	CustomerEmail  string          `db:"customer_email" json:"customer_email"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	ShippingAmount decimal.Decimal `db:"shipping_amount" json:"shipping_amount"`
	GrandTotal     decimal.Decimal `db:"grand_total" json:"grand_total"`
	Status         string          `db:"status" json:"status"`
	CompletedAt    *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// OrderItem is one line of a recorded order
type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity  int             `db:"quantity" json:"quantity"`
}

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusFailed    = "FAILED"
)

// ProcessedEvent for notification idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
