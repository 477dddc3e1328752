// Package regulation implements the thirty-year price-regulation release
// decisions for Hitas housing companies.
package regulation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/indexes"
	"github.com/City-of-Helsinki/hitas-calc/pkg/mathutil"
)

// ComparisonData identifies one housing company in the regulation results
// together with its computed comparison price.
type ComparisonData struct {
	ID              uuid.UUID
	DisplayName     string
	PostalCode      string
	ComparisonValue decimal.Decimal
	RuleSet         hitas.RuleSet
}

// Results partitions the processed housing companies into the four disjoint
// outcomes, plus the owners whose identifying data must be obfuscated as a
// side effect of the releases.
type Results struct {
	AutomaticallyReleased  []ComparisonData
	ReleasedFromRegulation []ComparisonData
	StaysRegulated         []ComparisonData
	Skipped                []ComparisonData

	ObfuscatedOwners []hitas.Owner
}

// Input is the materialized snapshot one regulation run operates on. The
// engine never re-fetches: the persistence collaborator assembles a
// consistent snapshot before the run starts.
type Input struct {
	CalculationMonth time.Time

	// Companies are all Hitas housing companies; the engine selects the
	// eligible ones itself and uses the rest for sales statistics.
	Companies []hitas.HousingCompany

	// ExternalSales is the authoritative quarterly statistics dataset.
	ExternalSales []ExternalSaleData

	// ReplacementPostalCodes substitutes alternate codes for postal codes
	// with no combined sales data. Optional, supplied per run.
	ReplacementPostalCodes map[string][]string

	// Owners are consulted for the obfuscation side effect.
	Owners []hitas.Owner
}

// Engine runs thirty-year regulation decisions. It holds no mutable state.
type Engine struct {
	logger *zap.Logger
	index  indexes.Source
}

// NewEngine creates an Engine.
func NewEngine(logger *zap.Logger, index indexes.Source) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, index: index}
}

// Run executes one regulation batch. Index or ceiling data missing for the
// calculation month aborts the whole run, because a partial run could apply
// inconsistent adjustment factors across companies. Missing postal-code sales
// data is not an error: the affected companies come back in Skipped and the
// run is a no-op for them.
func (e *Engine) Run(input Input) (*Results, error) {
	calculationMonth := datetime.MonthOf(input.CalculationMonth)

	ceiling, err := indexes.Require(e.index, indexes.SurfaceAreaPriceCeiling, calculationMonth)
	if err != nil {
		return nil, err
	}

	results := &Results{}
	cutoff := calculationMonth.AddDate(-constants.RegulationAgeYears, 0, 0)

	var pending []hitas.HousingCompany
	for _, company := range input.Companies {
		if !eligible(company, cutoff) {
			continue
		}
		if company.RuleSet == hitas.RuleSet2011Onwards {
			// New-rules companies are released without price comparison.
			results.AutomaticallyReleased = append(results.AutomaticallyReleased, ComparisonData{
				ID:          company.ID,
				DisplayName: company.DisplayName,
				PostalCode:  company.PostalCode,
				RuleSet:     company.RuleSet,
			})
			continue
		}
		pending = append(pending, company)
	}

	comparisons, err := e.comparisonValues(pending, ceiling, calculationMonth)
	if err != nil {
		return nil, err
	}

	buckets := aggregateSales(input.Companies, input.ExternalSales, calculationMonth)

	released := make(map[uuid.UUID]bool)
	for _, company := range results.AutomaticallyReleased {
		released[company.ID] = true
	}

	for _, comparison := range comparisons {
		average, ok := resolveAreaAverage(buckets, comparison.PostalCode, input.ReplacementPostalCodes)
		if !ok {
			e.logger.Debug(fmt.Sprintf("no sales data for postal code %s, skipping %s", comparison.PostalCode, comparison.DisplayName),
				zap.String("op", "regulation.Run"),
			)
			results.Skipped = append(results.Skipped, comparison)
			continue
		}

		// A tie releases the company: the comparison is deliberately
		// inclusive in the owner's favor.
		if comparison.ComparisonValue.LessThanOrEqual(average) {
			results.ReleasedFromRegulation = append(results.ReleasedFromRegulation, comparison)
			released[comparison.ID] = true
		} else {
			results.StaysRegulated = append(results.StaysRegulated, comparison)
		}
	}

	results.ObfuscatedOwners = obfuscatableOwners(input.Owners, released, calculationMonth)

	e.logger.Debug(fmt.Sprintf("regulation run for %s: %d automatic, %d released, %d stay regulated, %d skipped",
		calculationMonth.Format(datetime.DateTimeLayout),
		len(results.AutomaticallyReleased), len(results.ReleasedFromRegulation),
		len(results.StaysRegulated), len(results.Skipped)),
		zap.String("op", "regulation.Run"),
	)
	return results, nil
}

// eligible reports whether a company enters this regulation run: completed at
// or before the thirty-year cutoff and still in a regulated state.
func eligible(company hitas.HousingCompany, cutoff time.Time) bool {
	if company.RegulationStatus.Released() {
		return false
	}
	return !company.CompletionDate.After(cutoff)
}

// comparisonValues computes each pending company's comparison price: the
// maximum of its index-adjusted average price per square meter and the
// surface-area price ceiling. Companies whose average price cannot be
// determined are collected into one MissingValuesError so operators see every
// required fix at once.
func (e *Engine) comparisonValues(companies []hitas.HousingCompany, ceiling decimal.Decimal, calculationMonth time.Time) ([]ComparisonData, error) {
	var comparisons []ComparisonData
	var missing []string

	for _, company := range companies {
		if company.AvgPricePerSquareMeter == nil || company.AvgPricePerSquareMeter.IsZero() {
			missing = append(missing, company.DisplayName)
			continue
		}

		kind := indexes.MarketPriceIndexFor(company.RuleSet)
		completionIndex, err := indexes.Require(e.index, kind, company.CompletionDate)
		if err != nil {
			return nil, err
		}
		calculationIndex, err := indexes.Require(e.index, kind, calculationMonth)
		if err != nil {
			return nil, err
		}

		adjusted := company.AvgPricePerSquareMeter.Mul(calculationIndex).Div(completionIndex)
		comparison := adjusted
		if ceiling.GreaterThan(comparison) {
			comparison = ceiling
		}

		comparisons = append(comparisons, ComparisonData{
			ID:              company.ID,
			DisplayName:     company.DisplayName,
			PostalCode:      company.PostalCode,
			ComparisonValue: mathutil.RoundPerSquareMeter(comparison),
			RuleSet:         company.RuleSet,
		})
	}

	if len(missing) > 0 {
		return nil, &hitas.MissingValuesError{
			Reason: "average price per square meter missing",
			Names:  missing,
		}
	}
	return comparisons, nil
}
