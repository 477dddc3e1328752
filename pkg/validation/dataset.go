package validation

import (
	"fmt"
	"time"

	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
)

// companyEpoch is the start of the Hitas system; completion dates before it
// are recording mistakes.
var companyEpoch = time.Date(1978, time.January, 1, 0, 0, 0, 0, time.UTC)

// ValidateHousingCompany returns warnings for recorded data that is legal to
// run against but usually indicates a bookkeeping mistake. Hard decoding
// failures are reported by the config loader instead.
func ValidateHousingCompany(company hitas.HousingCompany) []string {
	var warnings []string

	if !company.TotalSurfaceArea.IsPositive() {
		warnings = append(warnings, fmt.Sprintf("Housing company '%s' has no total surface area - improvement apportionment will fail",
			company.DisplayName))
	}
	if company.RuleSet == hitas.RuleSet2011Onwards && company.CompletionDate.Year() < 2011 {
		warnings = append(warnings, fmt.Sprintf("Housing company '%s' completed %d but uses the 2011-onwards rule set",
			company.DisplayName, company.CompletionDate.Year()))
	}

	for _, apartment := range company.Apartments {
		warnings = append(warnings, validateApartment(company.DisplayName, apartment)...)
	}
	return warnings
}

func validateApartment(companyName string, apartment hitas.Apartment) []string {
	var warnings []string

	if !apartment.SurfaceArea.IsPositive() {
		warnings = append(warnings, fmt.Sprintf("Apartment '%s' of '%s' has no surface area - it will be excluded from sales statistics",
			apartment.Address, companyName))
	}
	if apartment.ShareNumberEnd < apartment.ShareNumberStart {
		warnings = append(warnings, fmt.Sprintf("Apartment '%s' of '%s' has inverted share numbers (%d-%d)",
			apartment.Address, companyName, apartment.ShareNumberStart, apartment.ShareNumberEnd))
	}
	if apartment.CompletionDate.Before(companyEpoch) {
		warnings = append(warnings, fmt.Sprintf("Apartment '%s' of '%s' has completion date %s before any Hitas construction",
			apartment.Address, companyName, apartment.CompletionDate.Format("2006-01-02")))
	}

	for _, improvement := range allImprovements(apartment) {
		if improvement.Value.IsNegative() {
			warnings = append(warnings, fmt.Sprintf("Improvement '%s' on apartment '%s' of '%s' has a negative value",
				improvement.Name, apartment.Address, companyName))
		}
		if improvement.CompletionDate.Before(apartment.CompletionDate) {
			warnings = append(warnings, fmt.Sprintf("Improvement '%s' on apartment '%s' of '%s' completed before the apartment",
				improvement.Name, apartment.Address, companyName))
		}
	}
	return warnings
}

func allImprovements(apartment hitas.Apartment) []hitas.ImprovementData {
	improvements := make([]hitas.ImprovementData, 0, len(apartment.ConstructionPriceImprovements)+len(apartment.MarketPriceImprovements))
	improvements = append(improvements, apartment.ConstructionPriceImprovements...)
	return append(improvements, apartment.MarketPriceImprovements...)
}
