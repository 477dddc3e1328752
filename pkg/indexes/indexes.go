// Package indexes provides lookup of the price indices and the surface-area
// price ceiling used by the hitas calculation engines.
package indexes

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
)

// Kind identifies one of the monthly index series.
type Kind int

const (
	// ConstructionPriceIndexPre2011 is the construction-price index series
	// used by pre-2011 rule-set companies.
	ConstructionPriceIndexPre2011 Kind = iota

	// ConstructionPriceIndex2011Onwards is the construction-price index
	// series used by 2011-onwards companies.
	ConstructionPriceIndex2011Onwards

	// MarketPriceIndexPre2011 is the market-price index series used by
	// pre-2011 companies.
	MarketPriceIndexPre2011

	// MarketPriceIndex2011Onwards is the market-price index series used by
	// 2011-onwards companies.
	MarketPriceIndex2011Onwards

	// SurfaceAreaPriceCeiling is the quarterly per-square-meter resale cap.
	SurfaceAreaPriceCeiling
)

// String returns the series name used in logs and config files.
func (k Kind) String() string {
	switch k {
	case ConstructionPriceIndexPre2011:
		return "construction-price-index-pre-2011"
	case ConstructionPriceIndex2011Onwards:
		return "construction-price-index-2011-onwards"
	case MarketPriceIndexPre2011:
		return "market-price-index-pre-2011"
	case MarketPriceIndex2011Onwards:
		return "market-price-index-2011-onwards"
	case SurfaceAreaPriceCeiling:
		return "surface-area-price-ceiling"
	}
	return "unknown"
}

// ErrorCode returns the diagnostic code carried by IndexMissingError when a
// value for this series is absent.
func (k Kind) ErrorCode() string {
	switch k {
	case ConstructionPriceIndexPre2011, ConstructionPriceIndex2011Onwards:
		return "construction_price_index_missing"
	case MarketPriceIndexPre2011, MarketPriceIndex2011Onwards:
		return "market_price_index_missing"
	case SurfaceAreaPriceCeiling:
		return "surface_area_price_ceiling_missing"
	}
	return "index_missing"
}

// ConstructionPriceIndexFor returns the construction-price series matching a
// rule-set.
func ConstructionPriceIndexFor(ruleSet hitas.RuleSet) Kind {
	if ruleSet == hitas.RuleSet2011Onwards {
		return ConstructionPriceIndex2011Onwards
	}
	return ConstructionPriceIndexPre2011
}

// MarketPriceIndexFor returns the market-price series matching a rule-set.
func MarketPriceIndexFor(ruleSet hitas.RuleSet) Kind {
	if ruleSet == hitas.RuleSet2011Onwards {
		return MarketPriceIndex2011Onwards
	}
	return MarketPriceIndexPre2011
}

// Source supplies index values keyed by series and month. Implementations are
// materialized by the persistence collaborator before a calculation starts.
type Source interface {
	// Value returns the index value for the month containing date, and
	// whether one exists.
	Value(kind Kind, date time.Time) (decimal.Decimal, bool)
}

// Require looks up an index value and fails with IndexMissingError when it is
// absent. Absence is a hard failure, never a defaulted-to-zero.
func Require(source Source, kind Kind, date time.Time) (decimal.Decimal, error) {
	value, ok := source.Value(kind, date)
	if !ok {
		return decimal.Decimal{}, &hitas.IndexMissingError{ErrorCode: kind.ErrorCode(), Date: datetime.MonthOf(date)}
	}
	return value, nil
}

// Table is an in-memory Source backed by per-series month maps.
type Table struct {
	values map[Kind]map[time.Time]decimal.Decimal
}

// NewTable creates an empty index table.
func NewTable() *Table {
	return &Table{values: make(map[Kind]map[time.Time]decimal.Decimal)}
}

// Set records the index value for the month containing date.
func (t *Table) Set(kind Kind, date time.Time, value decimal.Decimal) {
	series, ok := t.values[kind]
	if !ok {
		series = make(map[time.Time]decimal.Decimal)
		t.values[kind] = series
	}
	series[datetime.MonthOf(date)] = value
}

// Value implements Source.
func (t *Table) Value(kind Kind, date time.Time) (decimal.Decimal, bool) {
	value, ok := t.values[kind][datetime.MonthOf(date)]
	return value, ok
}
