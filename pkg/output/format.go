// Package output provides utilities for formatting and displaying calculation
// results.
package output

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/City-of-Helsinki/hitas-calc/internal/maxprice"
	"github.com/City-of-Helsinki/hitas-calc/internal/regulation"
	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/format"
)

// PrettyFormat outputs a human-readable rather than machine-readable report of
// a maximum-price calculation.
func PrettyFormat(calculation *maxprice.Calculation) {
	p := message.NewPrinter(language.English)
	_, _ = p.Printf("--- Maximum price calculation %s ---\n", calculation.CalculationDate.Format(datetime.DateLayout))
	fmt.Printf("Method                     | Maximum price | Valid until\n")
	fmt.Printf("______                     | _____________ | ___________\n")
	for _, method := range calculation.Methods() {
		marker := " "
		if method.Maximum {
			marker = "*"
		}
		_, _ = p.Printf("%s %-26s | %12.2f € | %s\n",
			marker, method.Method, method.MaximumPrice.InexactFloat64(),
			method.ValidUntil.Format(datetime.DateLayout))
	}
	fmt.Printf("\nMaximum price %s via %s, valid until %s\n",
		format.Euro(calculation.MaximumPrice), calculation.Method,
		calculation.ValidUntil.Format(datetime.DateLayout))
}

// CsvFormat outputs a maximum-price calculation in comma-separated value
// format, one row per method.
func CsvFormat(calculation *maxprice.Calculation) {
	fmt.Printf(`"method","maximum price","valid until","maximum"`)
	fmt.Printf("\n")
	for _, method := range calculation.Methods() {
		fmt.Printf(`"%s","%s","%s","%t"`,
			method.Method, method.MaximumPrice, method.ValidUntil.Format(datetime.DateLayout), method.Maximum)
		fmt.Printf("\n")
	}
}

// PrettyFormatRegulation outputs a human-readable report of one regulation
// run.
func PrettyFormatRegulation(results *regulation.Results) {
	fmt.Printf("--- Thirty-year regulation results ---\n")
	printSection("Automatically released", results.AutomaticallyReleased)
	printSection("Released from regulation", results.ReleasedFromRegulation)
	printSection("Stays regulated", results.StaysRegulated)
	printSection("Skipped (no sales data)", results.Skipped)
	if len(results.ObfuscatedOwners) > 0 {
		fmt.Printf("\nObfuscated owners:\n")
		for _, owner := range results.ObfuscatedOwners {
			fmt.Printf("  %s (%s)\n", owner.Name, owner.Identifier)
		}
	}
}

func printSection(title string, companies []regulation.ComparisonData) {
	if len(companies) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, company := range companies {
		if company.ComparisonValue.IsZero() {
			fmt.Printf("  %s (%s)\n", company.DisplayName, company.PostalCode)
			continue
		}
		fmt.Printf("  %s (%s), comparison value %s/m²\n",
			company.DisplayName, company.PostalCode, format.Euro(company.ComparisonValue))
	}
}

// CsvFormatRegulation outputs a regulation run in comma-separated value
// format, one row per company.
func CsvFormatRegulation(results *regulation.Results) {
	fmt.Printf(`"housing company","postal code","comparison value","outcome"`)
	fmt.Printf("\n")
	printCsvRows(results.AutomaticallyReleased, "automatically released")
	printCsvRows(results.ReleasedFromRegulation, "released")
	printCsvRows(results.StaysRegulated, "stays regulated")
	printCsvRows(results.Skipped, "skipped")
}

func printCsvRows(companies []regulation.ComparisonData, outcome string) {
	for _, company := range companies {
		fmt.Printf(`"%s","%s","%s","%s"`,
			company.DisplayName, company.PostalCode, company.ComparisonValue, outcome)
		fmt.Printf("\n")
	}
}
