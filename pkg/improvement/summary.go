package improvement

import (
	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/mathutil"
)

// ExcessSummary reports the deduction metadata used across a batch of
// improvements: the rate, the surface area it multiplied, and the total
// amount removed.
type ExcessSummary struct {
	RatePerSquareMeter decimal.Decimal
	SurfaceArea        decimal.Decimal
	Total              decimal.Decimal
}

// Summary is the element-wise sum of a batch of improvement results. The
// nullable fields stay nil when no improvement in the batch used that step;
// report consumers read the absence as "category not used", which is distinct
// from a zero.
type Summary struct {
	Items []Result

	Value      decimal.Decimal
	ValueAdded decimal.Decimal

	// Excess is nil when no improvement had an excess removed.
	Excess *ExcessSummary

	// Depreciation is nil when no improvement was depreciated.
	Depreciation *decimal.Decimal

	ValueForHousingCompany decimal.Decimal
	ValueForApartment      decimal.Decimal
}

// CalculateMultiple folds CalculateSingle over the improvements and produces
// a summary with the same shape as the per-item fields, sum-aggregated. An
// empty input yields a summary whose nullable fields are all nil rather than
// no summary at all.
func CalculateMultiple(params Params, improvements []hitas.ImprovementData) (Summary, error) {
	summary := Summary{}

	var depreciation mathutil.NullableSum
	var excessTotal mathutil.NullableSum
	for _, imp := range improvements {
		result, err := CalculateSingle(params, imp)
		if err != nil {
			return Summary{}, err
		}
		summary.Items = append(summary.Items, result)

		summary.Value = summary.Value.Add(result.Value)
		summary.ValueAdded = summary.ValueAdded.Add(result.ValueAdded)
		summary.ValueForHousingCompany = summary.ValueForHousingCompany.Add(result.ValueForHousingCompany)
		summary.ValueForApartment = summary.ValueForApartment.Add(result.ValueForApartment)

		excessTotal.AddOptional(result.Excess)
		if result.Excess != nil && summary.Excess == nil {
			summary.Excess = &ExcessSummary{
				RatePerSquareMeter: ExcessRate(params.Owner, imp.CompletionDate),
				SurfaceArea:        excessBasisArea(params),
			}
		}
		if result.Depreciation != nil {
			depreciation.Add(result.Depreciation.Amount)
		}
	}

	if summary.Excess != nil {
		summary.Excess.Total = excessTotal.ValueOrZero()
	}
	summary.Depreciation = depreciation.Value()
	return summary, nil
}
