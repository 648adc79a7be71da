package cart

import (
	"storefront/internal/models"
	"storefront/internal/money"

	"github.com/shopspring/decimal"
)

// Subtotal sums unitPrice * quantity over the cart, rounded to the cent.
func Subtotal(items []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return money.Round(subtotal)
}

// Totals derives the authoritative order totals from cart contents. It is a
// pure function of the items: callers must not cache the result across cart
// mutations.
func Totals(items []models.CartItem) models.OrderTotals {
	subtotal := Subtotal(items)
	tax := money.Tax(subtotal)
	shipping := money.Shipping(subtotal)

	return models.OrderTotals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingAmount: shipping,
		GrandTotal:     subtotal.Add(tax).Add(shipping),
	}
}
