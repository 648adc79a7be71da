package money

import "github.com/shopspring/decimal"

// Fixed storefront pricing rules. Amounts are decimals end to end; binary
// floats never touch a currency value.
var (
	// TaxRate is the GST rate applied to every order subtotal.
	TaxRate = decimal.NewFromFloat(0.18)

	// ShippingThreshold is the subtotal above which shipping is free.
	// The boundary is strict: a subtotal exactly at the threshold still pays.
	ShippingThreshold = decimal.NewFromInt(5000)

	// FlatShippingFee is charged whenever the threshold is not exceeded.
	FlatShippingFee = decimal.NewFromInt(499)
)

const centPlaces = 2

// Round rounds an amount to the currency minor unit, half up.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(centPlaces)
}

// Tax returns the tax owed on a subtotal, rounded to the cent.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return Round(subtotal.Mul(TaxRate))
}

// Shipping returns the shipping charge for a subtotal. Free shipping requires
// the subtotal to be strictly greater than the threshold.
func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(ShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

// EMIMonthlyPayment computes the equated monthly installment for a principal
// amortized over tenureMonths at the given annual rate:
//
//	r = annualRatePercent / 12 / 100
//	emi = principal * r * (1+r)^n / ((1+r)^n - 1)
//
// rounded half up to the cent. A zero rate degenerates to principal/tenure.
func EMIMonthlyPayment(principal decimal.Decimal, annualRatePercent decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 {
		return decimal.Zero
	}

	tenure := decimal.NewFromInt(int64(tenureMonths))
	monthlyRate := annualRatePercent.Div(decimal.NewFromInt(1200))
	if monthlyRate.IsZero() {
		return Round(principal.Div(tenure))
	}

	compounded := powInt(decimal.NewFromInt(1).Add(monthlyRate), tenureMonths)
	numerator := principal.Mul(monthlyRate).Mul(compounded)
	denominator := compounded.Sub(decimal.NewFromInt(1))

	return Round(numerator.Div(denominator))
}

// TotalPayment returns the amount repaid over the full tenure. The monthly
// figure is already rounded; the product is rounded once more at the cent and
// never re-derived from the unrounded installment.
func TotalPayment(emi decimal.Decimal, tenureMonths int) decimal.Decimal {
	return Round(emi.Mul(decimal.NewFromInt(int64(tenureMonths))))
}

// TotalInterest returns the cost of the plan above the principal.
func TotalInterest(principal, totalPayment decimal.Decimal) decimal.Decimal {
	return Round(totalPayment.Sub(principal))
}

// RemainingPrincipal returns the principal left to finance after an upfront
// payment, floored at zero. Display-only: the charged amount is always the
// full order total.
func RemainingPrincipal(total, upfront decimal.Decimal) decimal.Decimal {
	remaining := total.Sub(upfront)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// powInt raises base to a non-negative integer power by repeated
// multiplication, keeping the computation exact for the small tenures in use.
func powInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for i := 0; i < exp; i++ {
		result = result.Mul(base)
	}
	return result
}
