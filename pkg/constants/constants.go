// Package constants provides shared constants for the hitas-calc application.
package constants

// DateTimeLayout is the month format expected in config files and is also the
// output date format.
const DateTimeLayout = "2006-01"

// DateLayout is the full-date format used for completion and purchase dates.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerInterestMonth is the banking day-count convention: every month
	// counts as exactly 30 days when accruing construction-time interest.
	DaysPerInterestMonth = 30

	// DaysPerInterestYear is the 30/360 day-count year length.
	DaysPerInterestYear = 360

	// MaximumInterestRatePercent caps the construction-loan interest rate.
	MaximumInterestRatePercent = 6

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100
)

// Excess rates in euros per square meter, selected by the improvement's
// completion date and by whether the improvement belongs to the apartment or
// to the housing company.
const (
	// ExcessAfter2010HousingCompany applies to housing-company improvements
	// completed 2011-01-01 or later.
	ExcessAfter2010HousingCompany = 30

	// ExcessBefore2010HousingCompany applies to housing-company improvements
	// completed before 2011.
	ExcessBefore2010HousingCompany = 150

	// ExcessBefore2010Apartment applies to apartment improvements completed
	// before 2011.
	ExcessBefore2010Apartment = 100
)

// Depreciation windows in total months for the straight-line variants.
const (
	// DepreciationMonthsApartmentMPI is the pre-2011 apartment market-price
	// index window (10 years).
	DepreciationMonthsApartmentMPI = 120

	// DepreciationMonthsHousingCompanyMPI is the pre-2011 housing-company
	// market-price index window (15 years).
	DepreciationMonthsHousingCompanyMPI = 180
)

// Regulation constants
const (
	// RegulationAgeYears is how old a housing company must be before its
	// price regulation can lapse.
	RegulationAgeYears = 30

	// SalesWindowQuarters is how many trailing quarters of sales feed the
	// postal-code price statistics.
	SalesWindowQuarters = 4

	// ObfuscationGraceYears is how long a half-Hitas sale keeps its owner
	// exempt from obfuscation.
	ObfuscationGraceYears = 2
)

// CalculationValidityMonths is how long a confirmed maximum-price calculation
// stays valid (index methods only; the surface-area ceiling follows the
// quarterly table).
const CalculationValidityMonths = 3

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)
