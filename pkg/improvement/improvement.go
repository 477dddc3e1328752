// Package improvement computes the accepted, index-adjusted value of capital
// improvements under the historical Hitas rule variants.
//
// The variants form a closed set. Each one differs in its excess rate,
// depreciation formula, and in the ORDER of index adjustment versus
// depreciation. The order is a genuine difference between the legal rule-sets
// and must not be unified even where the formulas look alike.
package improvement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/indexes"
	"github.com/City-of-Helsinki/hitas-calc/pkg/mathutil"
)

// Variant selects one of the historical calculation rule-sets.
type Variant int

const (
	// HousingCompany2011Onwards covers housing-company improvements under the
	// 2011 rules: excess removal, index adjustment, apportionment by surface
	// area. No depreciation.
	HousingCompany2011Onwards Variant = iota

	// ConstructionPricePre2011 covers pre-2011 construction-price-index
	// improvements for either owner: excess removal, index adjustment, then
	// percentage depreciation on the index-adjusted value when a rate was
	// supplied.
	ConstructionPricePre2011

	// ApartmentMarketPricePre2011 covers pre-2011 market-price-index
	// apartment improvements: excess removal, straight-line depreciation over
	// 120 months, then index adjustment.
	ApartmentMarketPricePre2011

	// HousingCompanyMarketPricePre2011 covers pre-2011 market-price-index
	// housing-company improvements: excess removal, straight-line
	// depreciation over 180 months, index adjustment, apportionment by area.
	HousingCompanyMarketPricePre2011
)

type depreciationMode int

const (
	depreciationNone depreciationMode = iota
	depreciationStraightLine
	depreciationPercentage
)

// coefficients are the variant-specific knobs fed to the one shared
// calculation routine.
type coefficients struct {
	useExcess    bool
	depreciation depreciationMode
	windowMonths int

	// depreciateBeforeIndex is the formula order: true depreciates the value
	// added and index-adjusts the remainder, false index-adjusts first and
	// depreciates the adjusted value.
	depreciateBeforeIndex bool
}

func (v Variant) coefficients() coefficients {
	switch v {
	case ConstructionPricePre2011:
		return coefficients{useExcess: true, depreciation: depreciationPercentage}
	case ApartmentMarketPricePre2011:
		return coefficients{
			useExcess:             true,
			depreciation:          depreciationStraightLine,
			windowMonths:          constants.DepreciationMonthsApartmentMPI,
			depreciateBeforeIndex: true,
		}
	case HousingCompanyMarketPricePre2011:
		return coefficients{
			useExcess:             true,
			depreciation:          depreciationStraightLine,
			windowMonths:          constants.DepreciationMonthsHousingCompanyMPI,
			depreciateBeforeIndex: true,
		}
	default: // HousingCompany2011Onwards
		return coefficients{useExcess: true}
	}
}

// ExcessRate returns the per-square-meter deduction for an improvement.
// Selection depends solely on the improvement's completion date and on
// whether it belongs to the apartment or the housing company.
func ExcessRate(owner hitas.ImprovementOwner, completionDate time.Time) decimal.Decimal {
	if owner == hitas.OwnerHousingCompany {
		if completionDate.Year() > 2010 {
			return decimal.NewFromInt(constants.ExcessAfter2010HousingCompany)
		}
		return decimal.NewFromInt(constants.ExcessBefore2010HousingCompany)
	}
	return decimal.NewFromInt(constants.ExcessBefore2010Apartment)
}

// Params carries everything a calculation needs besides the improvement
// itself. All inputs are explicit; the package holds no state.
type Params struct {
	Variant         Variant
	Owner           hitas.ImprovementOwner
	CalculationDate time.Time

	// Index is the source for both the completion-month and the
	// calculation-month index values; Kind selects the series.
	Index indexes.Source
	Kind  indexes.Kind

	ApartmentSurfaceArea decimal.Decimal
	TotalSurfaceArea     decimal.Decimal

	// Share counts back the no-deductions apportionment.
	ApartmentShareCount int
	TotalShareCount     int
}

// Depreciation is the depreciation portion of a single improvement result.
type Depreciation struct {
	ElapsedMonths int
	Amount        decimal.Decimal

	// Percentage is the annual rate when the percentage formula was used.
	Percentage *decimal.Decimal
}

// Years returns the elapsed time as whole years plus remainder months.
func (d Depreciation) Years() (int, int) {
	return datetime.YearsAndMonths(d.ElapsedMonths)
}

// Result is the outcome of calculating one improvement.
type Result struct {
	Name           string
	Value          decimal.Decimal
	CompletionDate time.Time

	// Excess is the removed per-square-meter deductible, nil when the excess
	// step did not apply to this improvement.
	Excess *decimal.Decimal

	// ValueAdded is the value after excess removal, floored at zero.
	ValueAdded decimal.Decimal

	// Depreciation is nil for improvements the variant does not depreciate.
	Depreciation *Depreciation

	// Accepted is the final index-adjusted, depreciated value.
	Accepted decimal.Decimal

	// ValueForHousingCompany is the company-level accepted value; zero for
	// apartment-owned improvements.
	ValueForHousingCompany decimal.Decimal

	// ValueForApartment is the share attributed to the specific apartment.
	ValueForApartment decimal.Decimal
}

// CalculateSingle computes the accepted value of one improvement under the
// variant in params.
func CalculateSingle(params Params, imp hitas.ImprovementData) (Result, error) {
	result := Result{
		Name:           imp.Name,
		Value:          imp.Value,
		CompletionDate: imp.CompletionDate,
	}

	completionIndex, err := completionDateIndex(params, imp)
	if err != nil {
		return Result{}, err
	}
	calculationIndex, err := indexes.Require(params.Index, params.Kind, params.CalculationDate)
	if err != nil {
		return Result{}, err
	}
	ratio := calculationIndex.Div(completionIndex)

	// Additional work during construction skips excess and depreciation and
	// is only index-adjusted.
	if imp.AdditionalWork {
		result.ValueAdded = imp.Value
		return apportion(params, result, imp, imp.Value.Mul(ratio))
	}

	co := params.Variant.coefficients()

	value := imp.Value
	if co.useExcess && !imp.NoDeductions {
		rate := ExcessRate(params.Owner, imp.CompletionDate)
		excess := rate.Mul(excessBasisArea(params))
		result.Excess = mathutil.Ptr(mathutil.RoundCents(excess))
		value = mathutil.ClampNonNegative(value.Sub(excess))
	}
	result.ValueAdded = value

	elapsed := datetime.MonthsBetween(imp.CompletionDate, params.CalculationDate)

	accepted := value
	if co.depreciateBeforeIndex && co.depreciation == depreciationStraightLine {
		dep := straightLine(value, co.windowMonths, elapsed)
		result.Depreciation = &dep
		accepted = value.Sub(dep.Amount)
	}

	accepted = accepted.Mul(ratio)

	if !co.depreciateBeforeIndex && co.depreciation == depreciationPercentage && imp.DepreciationPercentage != nil {
		dep := percentage(accepted, *imp.DepreciationPercentage, elapsed)
		result.Depreciation = &dep
		accepted = accepted.Sub(dep.Amount)
	}

	return apportion(params, result, imp, accepted)
}

// completionDateIndex prefers the index value recorded on the improvement
// itself, falling back to a source lookup for the completion month.
func completionDateIndex(params Params, imp hitas.ImprovementData) (decimal.Decimal, error) {
	if imp.CompletionDateIndex != nil {
		return *imp.CompletionDateIndex, nil
	}
	return indexes.Require(params.Index, params.Kind, imp.CompletionDate)
}

// excessBasisArea is the surface area the excess rate multiplies: the whole
// company's for company improvements, the apartment's own for apartment
// improvements.
func excessBasisArea(params Params) decimal.Decimal {
	if params.Owner == hitas.OwnerHousingCompany {
		return params.TotalSurfaceArea
	}
	return params.ApartmentSurfaceArea
}

// straightLine depreciates the value added linearly over the window. Elapsed
// time at or past the window depreciates the entire value.
func straightLine(valueAdded decimal.Decimal, windowMonths, elapsedMonths int) Depreciation {
	dep := Depreciation{ElapsedMonths: elapsedMonths}
	if elapsedMonths >= windowMonths {
		dep.Amount = valueAdded
		return dep
	}
	dep.Amount = mathutil.RoundCents(valueAdded.
		Div(decimal.NewFromInt(int64(windowMonths))).
		Mul(decimal.NewFromInt(int64(elapsedMonths))))
	return dep
}

// percentage depreciates the accepted value by a supplied annual rate,
// accrued monthly and capped so depreciation never exceeds the value it
// depreciates.
func percentage(accepted, annualRate decimal.Decimal, elapsedMonths int) Depreciation {
	monthlyRate := annualRate.
		Div(decimal.NewFromInt(constants.PercentageMultiplier)).
		Div(decimal.NewFromInt(constants.MonthsPerYear))
	amount := accepted.Mul(monthlyRate).Mul(decimal.NewFromInt(int64(elapsedMonths)))
	if amount.GreaterThan(accepted) {
		amount = accepted
	}
	return Depreciation{
		ElapsedMonths: elapsedMonths,
		Amount:        mathutil.RoundCents(amount),
		Percentage:    mathutil.Ptr(annualRate),
	}
}

// apportion splits the accepted value between the housing company and the
// specific apartment and applies the final cent rounding.
func apportion(params Params, result Result, imp hitas.ImprovementData, accepted decimal.Decimal) (Result, error) {
	if params.Owner != hitas.OwnerHousingCompany {
		result.Accepted = mathutil.RoundCents(accepted)
		result.ValueForApartment = result.Accepted
		return result, nil
	}

	result.Accepted = mathutil.RoundCents(accepted)
	result.ValueForHousingCompany = result.Accepted

	if imp.NoDeductions && !imp.AdditionalWork {
		if params.TotalShareCount == 0 || params.ApartmentShareCount == 0 {
			return Result{}, &hitas.InvalidCalculationResultError{ErrorCode: "missing_share_count"}
		}
		result.ValueForApartment = mathutil.RoundCents(accepted.
			Div(decimal.NewFromInt(int64(params.TotalShareCount))).
			Mul(decimal.NewFromInt(int64(params.ApartmentShareCount))))
		return result, nil
	}

	result.ValueForApartment = mathutil.RoundCents(accepted.
		Div(params.TotalSurfaceArea).
		Mul(params.ApartmentSurfaceArea))
	return result, nil
}
