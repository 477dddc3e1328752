// Package interest computes the interest accrued on staged construction-time
// payments before an apartment's completion.
package interest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/mathutil"
)

// CapRate limits the construction-loan interest rate to the regulatory
// maximum of six percent.
func CapRate(rate decimal.Decimal) decimal.Decimal {
	maximum := decimal.NewFromInt(constants.MaximumInterestRatePercent)
	if rate.GreaterThan(maximum) {
		return maximum
	}
	return rate
}

// Calculate returns the total construction-time interest for an apartment.
// Each staged payment accrues interest from its date to the completion date
// using 30-day months; the per-payment amounts are rounded to cents before
// summing. Payments dated at or after completion accrue nothing.
func Calculate(rate decimal.Decimal, completionDate time.Time, transferPrice, loansDuringConstruction decimal.Decimal, payments []hitas.ConstructionPayment) decimal.Decimal {
	cappedRate := CapRate(rate)
	base := transferPrice.Sub(loansDuringConstruction)
	hundred := decimal.NewFromInt(constants.PercentageMultiplier)

	total := decimal.Zero
	for _, payment := range payments {
		days := datetime.InterestDays(payment.Date, completionDate)
		if days <= 0 {
			continue
		}
		amount := decimal.NewFromInt(int64(days)).
			Mul(payment.Percentage).Div(hundred).
			Mul(base).
			Mul(cappedRate).Div(hundred).
			Div(decimal.NewFromInt(constants.DaysPerInterestYear))
		total = total.Add(mathutil.RoundCents(amount))
	}
	return total
}
