// Package hitas defines the domain value objects shared by the hitas-calc
// calculation engines.
package hitas

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleSet identifies which historical Hitas rule-set a housing company falls
// under, resolved from its financing-method classification.
type RuleSet int

const (
	// RuleSetPre2011 covers companies governed by the rules in force before
	// 2011.
	RuleSetPre2011 RuleSet = iota

	// RuleSet2011Onwards covers companies governed by the 2011 free-financing
	// rules.
	RuleSet2011Onwards
)

// String returns the rule-set name used in logs and reports.
func (r RuleSet) String() string {
	if r == RuleSet2011Onwards {
		return "2011-onwards"
	}
	return "pre-2011"
}

// RegulationStatus is the persisted price-regulation state of a housing
// company.
type RegulationStatus int

const (
	// StatusRegulated means the company is under price regulation and less
	// than thirty years old.
	StatusRegulated RegulationStatus = iota

	// StatusPendingStatistics means the company is old enough but a previous
	// regulation run could not resolve comparison statistics for it.
	StatusPendingStatistics

	// StatusReleased means price regulation on the company has lapsed.
	StatusReleased

	// StatusReleasedByPlotDepartment means the company was released outside
	// the thirty-year process.
	StatusReleasedByPlotDepartment
)

// Released reports whether the status is any of the released states.
func (s RegulationStatus) Released() bool {
	return s == StatusReleased || s == StatusReleasedByPlotDepartment
}

// ImprovementOwner tells whether an improvement was recorded against the
// apartment or the whole housing company.
type ImprovementOwner int

const (
	// OwnerApartment marks an improvement recorded on a single apartment.
	OwnerApartment ImprovementOwner = iota

	// OwnerHousingCompany marks an improvement shared by the whole company.
	OwnerHousingCompany
)

// ImprovementData is one capital improvement entry as recorded by staff.
type ImprovementData struct {
	Name           string
	Value          decimal.Decimal
	CompletionDate time.Time

	// CompletionDateIndex overrides the index value looked up for the
	// completion month when staff recorded one explicitly.
	CompletionDateIndex *decimal.Decimal

	// DepreciationPercentage is an annual rate; when present the percentage
	// depreciation formula replaces the straight-line window.
	DepreciationPercentage *decimal.Decimal

	// NoDeductions skips excess removal and apportions by share count.
	NoDeductions bool

	// AdditionalWork marks additional work during construction, which is only
	// index-adjusted.
	AdditionalWork bool
}

// Sale is one realized apartment sale.
type Sale struct {
	PurchaseDate                        time.Time
	PurchasePrice                       decimal.Decimal
	ApartmentShareOfHousingCompanyLoans decimal.Decimal
	ExcludeFromStatistics               bool
}

// TotalPrice returns the debt-free sale price: purchase price plus the
// apartment's share of company loans.
func (s Sale) TotalPrice() decimal.Decimal {
	return s.PurchasePrice.Add(s.ApartmentShareOfHousingCompanyLoans)
}

// ConstructionPayment is one staged payment made before completion, as a
// percentage of the apartment price.
type ConstructionPayment struct {
	Date       time.Time
	Percentage decimal.Decimal
}

// Apartment is the per-apartment input record for a maximum-price
// calculation, materialized by the persistence collaborator.
type Apartment struct {
	ID                               uuid.UUID
	Address                          string
	SurfaceArea                      decimal.Decimal
	CompletionDate                   time.Time
	AcquisitionPrice                 decimal.Decimal
	AdditionalWorkDuringConstruction decimal.Decimal
	ShareNumberStart                 int
	ShareNumberEnd                   int

	// Construction-time financing inputs for the interest calculator.
	ConstructionLoanRate    decimal.Decimal
	LoansDuringConstruction decimal.Decimal
	ConstructionPayments    []ConstructionPayment

	// Improvements recorded on this apartment, split by index kind.
	ConstructionPriceImprovements []ImprovementData
	MarketPriceImprovements       []ImprovementData

	Sales []Sale
}

// ShareCount returns the number of housing-company shares tied to the
// apartment, or zero when share numbers were never recorded.
func (a Apartment) ShareCount() int {
	if a.ShareNumberEnd < a.ShareNumberStart {
		return 0
	}
	if a.ShareNumberStart == 0 && a.ShareNumberEnd == 0 {
		return 0
	}
	return a.ShareNumberEnd - a.ShareNumberStart + 1
}

// HousingCompany is the per-company input record.
type HousingCompany struct {
	ID               uuid.UUID
	DisplayName      string
	PostalCode       string
	RuleSet          RuleSet
	HalfHitas        bool
	RegulationStatus RegulationStatus

	// CompletionDate is derived as the latest apartment completion date.
	CompletionDate time.Time

	TotalSurfaceArea decimal.Decimal

	// ApartmentCount backs share-count apportionment for no-deductions
	// improvements recorded before share numbers existed.
	ApartmentCount int

	// AvgPricePerSquareMeter is the realized acquisition price per square
	// meter, derived from first-sale prices or the sales catalogue. Nil when
	// neither exists, which the regulation engine reports as a validation
	// failure.
	AvgPricePerSquareMeter *decimal.Decimal

	// Improvements recorded on the whole company, split by index kind.
	ConstructionPriceImprovements []ImprovementData
	MarketPriceImprovements       []ImprovementData

	Apartments []Apartment
}

// TotalShareCount sums the share counts of every apartment in the company.
func (hc HousingCompany) TotalShareCount() int {
	total := 0
	for _, apartment := range hc.Apartments {
		total += apartment.ShareCount()
	}
	return total
}

// Ownership links an owner to one apartment.
type Ownership struct {
	ApartmentID      uuid.UUID
	HousingCompanyID uuid.UUID
	HalfHitas        bool

	// Regulated is the company's regulation state after the current run's
	// decisions are applied.
	Regulated bool

	// LatestSaleDate is the purchase date of the apartment's most recent
	// sale, nil when the apartment has never been sold.
	LatestSaleDate *time.Time
}

// Owner is a person or entity holding apartment ownerships.
type Owner struct {
	ID         uuid.UUID
	Name       string
	Identifier string
	Ownerships []Ownership
}
