package emi

import (
	"storefront/internal/models"
	"storefront/internal/money"

	"github.com/shopspring/decimal"
)

// planTerms is the fixed installment menu: tenure, annual rate, cashback.
// Longer tenures carry higher rates and sweeten the deal with cashback.
var planTerms = []struct {
	tenureMonths int
	ratePercent  int64
	cashback     int64
}{
	{3, 12, 0},
	{6, 14, 0},
	{9, 15, 1000},
	{12, 16, 2500},
}

// Plans computes the installment menu for a principal. The returned figures
// are display metadata only; the gateway is always charged the full
// principal. A non-positive principal yields an empty menu.
func Plans(principal decimal.Decimal) []models.EMIPlan {
	if !principal.IsPositive() {
		return []models.EMIPlan{}
	}

	plans := make([]models.EMIPlan, 0, len(planTerms))
	for _, term := range planTerms {
		rate := decimal.NewFromInt(term.ratePercent)
		monthly := money.EMIMonthlyPayment(principal, rate, term.tenureMonths)
		total := money.TotalPayment(monthly, term.tenureMonths)

		plans = append(plans, models.EMIPlan{
			TenureMonths:      term.tenureMonths,
			AnnualRatePercent: rate,
			MonthlyAmount:     monthly,
			TotalAmount:       total,
			TotalInterest:     money.TotalInterest(principal, total),
			CashbackAmount:    decimal.NewFromInt(term.cashback),
		})
	}
	return plans
}

// Tenures returns the supported tenures in menu order.
func Tenures() []int {
	tenures := make([]int, len(planTerms))
	for i, term := range planTerms {
		tenures[i] = term.tenureMonths
	}
	return tenures
}
