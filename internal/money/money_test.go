package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTax(t *testing.T) {
	assert.Equal(t, "720.00", Tax(amt("4000")).StringFixed(2))
	assert.Equal(t, "1080.00", Tax(amt("6000")).StringFixed(2))
	assert.Equal(t, "0.00", Tax(decimal.Zero).StringFixed(2))

	// Half-up at the cent: 33.33 * 0.18 = 5.9994 -> 6.00
	assert.Equal(t, "6.00", Tax(amt("33.33")).StringFixed(2))
}

func TestShippingBoundary(t *testing.T) {
	// Free shipping requires strictly greater than the threshold.
	assert.Equal(t, "499.00", Shipping(amt("4999.99")).StringFixed(2))
	assert.Equal(t, "499.00", Shipping(amt("5000")).StringFixed(2))
	assert.Equal(t, "0.00", Shipping(amt("5000.01")).StringFixed(2))
	assert.Equal(t, "0.00", Shipping(amt("6000")).StringFixed(2))
}

func TestEMIMonthlyPayment(t *testing.T) {
	// 10000 at 12% over 3 months, amortized.
	emi := EMIMonthlyPayment(amt("10000"), amt("12"), 3)
	assert.Equal(t, "3400.22", emi.StringFixed(2))

	total := TotalPayment(emi, 3)
	assert.Equal(t, "10200.66", total.StringFixed(2))
	assert.Equal(t, "200.66", TotalInterest(amt("10000"), total).StringFixed(2))
}

func TestEMIZeroRate(t *testing.T) {
	// Zero rate must not divide by zero: plain principal / tenure.
	emi := EMIMonthlyPayment(amt("12000"), decimal.Zero, 6)
	assert.Equal(t, "2000.00", emi.StringFixed(2))

	total := TotalPayment(emi, 6)
	assert.Equal(t, "12000.00", total.StringFixed(2))
	assert.Equal(t, "0.00", TotalInterest(amt("12000"), total).StringFixed(2))
}

func TestEMIZeroTenure(t *testing.T) {
	assert.True(t, EMIMonthlyPayment(amt("10000"), amt("12"), 0).IsZero())
}

func TestEMITotalNeverBelowPrincipal(t *testing.T) {
	principal := amt("9999.99")
	for _, tenure := range []int{3, 6, 9, 12} {
		emi := EMIMonthlyPayment(principal, amt("14"), tenure)
		total := TotalPayment(emi, tenure)
		assert.True(t, total.GreaterThanOrEqual(principal),
			"tenure %d: total %s below principal", tenure, total)
	}
}

func TestRemainingPrincipal(t *testing.T) {
	assert.Equal(t, "7000.00", RemainingPrincipal(amt("10000"), amt("3000")).StringFixed(2))
	assert.Equal(t, "0.00", RemainingPrincipal(amt("3000"), amt("10000")).StringFixed(2))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, "1.01", Round(amt("1.005")).StringFixed(2))
	assert.Equal(t, "1.00", Round(amt("1.004")).StringFixed(2))
}
