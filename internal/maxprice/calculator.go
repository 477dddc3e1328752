// Package maxprice computes the regulatory maximum resale price of a Hitas
// apartment under the three parallel calculation methods and selects the
// highest.
package maxprice

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/improvement"
	"github.com/City-of-Helsinki/hitas-calc/pkg/indexes"
	"github.com/City-of-Helsinki/hitas-calc/pkg/interest"
	"github.com/City-of-Helsinki/hitas-calc/pkg/mathutil"
)

// Method names one of the three parallel calculation methods.
type Method string

const (
	// MethodConstructionPriceIndex adjusts the basic price by the
	// construction-price index.
	MethodConstructionPriceIndex Method = "construction-price-index"

	// MethodMarketPriceIndex adjusts the basic price by the market-price
	// index.
	MethodMarketPriceIndex Method = "market-price-index"

	// MethodSurfaceAreaPriceCeiling caps the price at the quarterly
	// per-square-meter ceiling.
	MethodSurfaceAreaPriceCeiling Method = "surface-area-price-ceiling"
)

// ImprovementTotals groups the housing-company-level and apartment-level
// improvement summaries used by one index method.
type ImprovementTotals struct {
	HousingCompany improvement.Summary
	Apartment      improvement.Summary
}

// Total is the combined improvement value attributed to the apartment.
func (t ImprovementTotals) Total() decimal.Decimal {
	return t.HousingCompany.ValueForApartment.Add(t.Apartment.ValueForApartment)
}

// CalculationVariables is the full breakdown behind one method's result.
type CalculationVariables struct {
	AcquisitionPrice                 decimal.Decimal
	InterestDuringConstruction       decimal.Decimal
	AdditionalWorkDuringConstruction decimal.Decimal
	BasicPrice                       decimal.Decimal
	IndexAdjustment                  decimal.Decimal
	Improvements                     ImprovementTotals
	DebtFreePrice                    decimal.Decimal
	DebtFreePricePerSquareMeter      decimal.Decimal
	ApartmentShareOfLoans            decimal.Decimal
	CompletionDate                   time.Time
	CalculationDate                  time.Time
	CompletionDateIndex              decimal.Decimal
	CalculationDateIndex             decimal.Decimal
}

// IndexCalculation is the result of one calculation method.
type IndexCalculation struct {
	Method       Method
	MaximumPrice decimal.Decimal
	ValidUntil   time.Time

	// Maximum flags the winning method only.
	Maximum bool

	Variables CalculationVariables
}

// Calculation is the complete maximum-price calculation snapshot. It is
// computed on demand and persisted immutably by an external collaborator once
// a user confirms it; only the confirmation timestamp is managed afterwards,
// and by that collaborator.
type Calculation struct {
	ID              uuid.UUID
	ApartmentID     uuid.UUID
	CalculationDate time.Time

	ConstructionPriceIndex  IndexCalculation
	MarketPriceIndex        IndexCalculation
	SurfaceAreaPriceCeiling IndexCalculation

	// MaximumPrice is the winning method's price; Method names the winner.
	MaximumPrice decimal.Decimal
	Method       Method
	ValidUntil   time.Time

	ConfirmedAt *time.Time
}

// Methods returns the three per-method results in reporting order.
func (c *Calculation) Methods() []IndexCalculation {
	return []IndexCalculation{c.ConstructionPriceIndex, c.MarketPriceIndex, c.SurfaceAreaPriceCeiling}
}

// Calculator computes maximum-price calculations against a materialized index
// source. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
	index  indexes.Source
}

// NewCalculator creates a Calculator.
func NewCalculator(logger *zap.Logger, index indexes.Source) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, index: index}
}

// Calculate produces the maximum-price calculation for an apartment. A zero
// calculationDate defaults to today.
func (c *Calculator) Calculate(apartment hitas.Apartment, company hitas.HousingCompany, apartmentShareOfLoans decimal.Decimal, calculationDate time.Time) (*Calculation, error) {
	if calculationDate.IsZero() {
		calculationDate = time.Now().UTC()
	}

	interestDuringConstruction := interest.Calculate(
		apartment.ConstructionLoanRate,
		apartment.CompletionDate,
		apartment.AcquisitionPrice,
		apartment.LoansDuringConstruction,
		apartment.ConstructionPayments,
	)

	cpi, err := c.indexMethod(methodInput{
		method:                MethodConstructionPriceIndex,
		kind:                  indexes.ConstructionPriceIndexFor(company.RuleSet),
		apartment:             apartment,
		company:               company,
		apartmentShareOfLoans: apartmentShareOfLoans,
		calculationDate:       calculationDate,
		interest:              interestDuringConstruction,
		companyImprovements:   company.ConstructionPriceImprovements,
		apartmentImprovements: apartment.ConstructionPriceImprovements,
	})
	if err != nil {
		return nil, err
	}

	mpi, err := c.indexMethod(methodInput{
		method:                MethodMarketPriceIndex,
		kind:                  indexes.MarketPriceIndexFor(company.RuleSet),
		apartment:             apartment,
		company:               company,
		apartmentShareOfLoans: apartmentShareOfLoans,
		calculationDate:       calculationDate,
		interest:              interestDuringConstruction,
		companyImprovements:   company.MarketPriceImprovements,
		apartmentImprovements: apartment.MarketPriceImprovements,
	})
	if err != nil {
		return nil, err
	}

	sapc, err := c.surfaceAreaPriceCeiling(apartment, apartmentShareOfLoans, calculationDate)
	if err != nil {
		return nil, err
	}

	calculation := &Calculation{
		ID:                      uuid.New(),
		ApartmentID:             apartment.ID,
		CalculationDate:         calculationDate,
		ConstructionPriceIndex:  cpi,
		MarketPriceIndex:        mpi,
		SurfaceAreaPriceCeiling: sapc,
	}

	winner := &calculation.ConstructionPriceIndex
	if calculation.MarketPriceIndex.MaximumPrice.GreaterThan(winner.MaximumPrice) {
		winner = &calculation.MarketPriceIndex
	}
	if calculation.SurfaceAreaPriceCeiling.MaximumPrice.GreaterThan(winner.MaximumPrice) {
		winner = &calculation.SurfaceAreaPriceCeiling
	}
	winner.Maximum = true
	calculation.MaximumPrice = winner.MaximumPrice
	calculation.Method = winner.Method
	calculation.ValidUntil = winner.ValidUntil

	if !calculation.MaximumPrice.IsPositive() {
		return nil, &hitas.InvalidCalculationResultError{ErrorCode: "max_price_lte_zero"}
	}

	c.logger.Debug(fmt.Sprintf("maximum price %s for apartment %s via %s", calculation.MaximumPrice, apartment.Address, winner.Method),
		zap.String("op", "maxprice.Calculate"),
	)
	return calculation, nil
}

type methodInput struct {
	method                Method
	kind                  indexes.Kind
	apartment             hitas.Apartment
	company               hitas.HousingCompany
	apartmentShareOfLoans decimal.Decimal
	calculationDate       time.Time
	interest              decimal.Decimal
	companyImprovements   []hitas.ImprovementData
	apartmentImprovements []hitas.ImprovementData
}

// indexMethod runs one of the two index-adjusted methods.
func (c *Calculator) indexMethod(in methodInput) (IndexCalculation, error) {
	completionIndex, err := indexes.Require(c.index, in.kind, in.apartment.CompletionDate)
	if err != nil {
		return IndexCalculation{}, err
	}
	calculationIndex, err := indexes.Require(c.index, in.kind, in.calculationDate)
	if err != nil {
		return IndexCalculation{}, err
	}

	basicPrice := in.apartment.AcquisitionPrice.
		Add(in.interest).
		Add(in.apartment.AdditionalWorkDuringConstruction)
	indexAdjustment := calculationIndex.Div(completionIndex).Mul(basicPrice).Sub(basicPrice)

	companyParams := improvement.Params{
		Variant:              companyVariant(in.company.RuleSet, in.method),
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      in.calculationDate,
		Index:                c.index,
		Kind:                 in.kind,
		ApartmentSurfaceArea: in.apartment.SurfaceArea,
		TotalSurfaceArea:     in.company.TotalSurfaceArea,
		ApartmentShareCount:  in.apartment.ShareCount(),
		TotalShareCount:      in.company.TotalShareCount(),
	}
	companySummary, err := improvement.CalculateMultiple(companyParams, in.companyImprovements)
	if err != nil {
		return IndexCalculation{}, err
	}

	apartmentParams := companyParams
	apartmentParams.Variant = apartmentVariant(in.company.RuleSet, in.method)
	apartmentParams.Owner = hitas.OwnerApartment
	apartmentSummary, err := improvement.CalculateMultiple(apartmentParams, in.apartmentImprovements)
	if err != nil {
		return IndexCalculation{}, err
	}

	improvements := ImprovementTotals{HousingCompany: companySummary, Apartment: apartmentSummary}
	debtFreePrice := basicPrice.Add(indexAdjustment).Add(improvements.Total())
	maximumPrice := mathutil.RoundEuros(debtFreePrice.Sub(in.apartmentShareOfLoans))

	return IndexCalculation{
		Method:       in.method,
		MaximumPrice: maximumPrice,
		ValidUntil:   in.calculationDate.AddDate(0, constants.CalculationValidityMonths, 0),
		Variables: CalculationVariables{
			AcquisitionPrice:                 in.apartment.AcquisitionPrice,
			InterestDuringConstruction:       in.interest,
			AdditionalWorkDuringConstruction: in.apartment.AdditionalWorkDuringConstruction,
			BasicPrice:                       basicPrice,
			IndexAdjustment:                  mathutil.RoundCents(indexAdjustment),
			Improvements:                     improvements,
			DebtFreePrice:                    mathutil.RoundCents(debtFreePrice),
			DebtFreePricePerSquareMeter:      mathutil.RoundPerSquareMeter(debtFreePrice.Div(in.apartment.SurfaceArea)),
			ApartmentShareOfLoans:            in.apartmentShareOfLoans,
			CompletionDate:                   in.apartment.CompletionDate,
			CalculationDate:                  in.calculationDate,
			CompletionDateIndex:              completionIndex,
			CalculationDateIndex:             calculationIndex,
		},
	}, nil
}

// surfaceAreaPriceCeiling runs the ceiling method: no improvements apply and
// validity follows the quarterly rollover table.
func (c *Calculator) surfaceAreaPriceCeiling(apartment hitas.Apartment, apartmentShareOfLoans decimal.Decimal, calculationDate time.Time) (IndexCalculation, error) {
	ceiling, err := indexes.Require(c.index, indexes.SurfaceAreaPriceCeiling, calculationDate)
	if err != nil {
		return IndexCalculation{}, err
	}

	debtFreePrice := mathutil.RoundEuros(apartment.SurfaceArea.Mul(ceiling))
	maximumPrice := debtFreePrice.Sub(apartmentShareOfLoans)

	return IndexCalculation{
		Method:       MethodSurfaceAreaPriceCeiling,
		MaximumPrice: mathutil.RoundEuros(maximumPrice),
		ValidUntil:   datetime.SurfaceAreaCeilingValidUntil(calculationDate),
		Variables: CalculationVariables{
			BasicPrice:                  debtFreePrice,
			DebtFreePrice:               debtFreePrice,
			DebtFreePricePerSquareMeter: mathutil.RoundPerSquareMeter(ceiling),
			ApartmentShareOfLoans:       apartmentShareOfLoans,
			CompletionDate:              apartment.CompletionDate,
			CalculationDate:             calculationDate,
			CalculationDateIndex:        ceiling,
		},
	}, nil
}

// companyVariant maps a rule-set and method to the housing-company
// improvement variant.
func companyVariant(ruleSet hitas.RuleSet, method Method) improvement.Variant {
	if ruleSet == hitas.RuleSet2011Onwards {
		return improvement.HousingCompany2011Onwards
	}
	if method == MethodMarketPriceIndex {
		return improvement.HousingCompanyMarketPricePre2011
	}
	return improvement.ConstructionPricePre2011
}

// apartmentVariant maps a rule-set and method to the apartment improvement
// variant.
func apartmentVariant(ruleSet hitas.RuleSet, method Method) improvement.Variant {
	if ruleSet == hitas.RuleSet2011Onwards {
		return improvement.HousingCompany2011Onwards
	}
	if method == MethodMarketPriceIndex {
		return improvement.ApartmentMarketPricePre2011
	}
	return improvement.ConstructionPricePre2011
}
