package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/internal/maxprice"
	"github.com/City-of-Helsinki/hitas-calc/internal/regulation"
)

// TestDatasetThroughEngines decodes a dataset and runs both engines on it,
// checking the numbers survive the YAML round trip exactly.
func TestDatasetThroughEngines(t *testing.T) {
	dataset := &Dataset{
		Indexes: []IndexSeries{
			{
				Kind: "construction-price-index-pre-2011",
				Values: map[string]string{
					"2020-01": "100",
					"2023-01": "120",
				},
			},
			{
				Kind: "market-price-index-pre-2011",
				Values: map[string]string{
					"1990-01": "50",
					"2020-01": "100",
					"2023-01": "110",
					"2023-06": "100",
				},
			},
			{
				Kind: "surface-area-price-ceiling",
				Values: map[string]string{
					"2023-01": "4000",
					"2023-06": "3500",
				},
			},
		},
		HousingCompanies: []HousingCompanyEntry{
			{
				DisplayName:      "As Oy Laskettava",
				PostalCode:       "00100",
				RuleSet:          "pre-2011",
				CompletionDate:   "2020-01-15",
				TotalSurfaceArea: "1000",
				Apartments: []ApartmentEntry{
					{
						Address:          "Laskukatu 1 A 1",
						SurfaceArea:      "50",
						CompletionDate:   "2020-01-15",
						AcquisitionPrice: "200000",
					},
				},
			},
			{
				DisplayName:            "As Oy Kolmekymppinen",
				PostalCode:             "00100",
				RuleSet:                "pre-2011",
				CompletionDate:         "1990-01-15",
				TotalSurfaceArea:       "1000",
				AvgPricePerSquareMeter: "2000",
			},
		},
		ExternalSales: []ExternalSaleEntry{
			{PostalCode: "00100", Quarter: "2022-07-01", SaleCount: 1, Price: "4000"},
		},
	}

	data, err := dataset.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	company, ok := data.CompanyByName("As Oy Laskettava")
	if !ok {
		t.Fatal("CompanyByName() did not find As Oy Laskettava")
	}

	calculator := maxprice.NewCalculator(nil, data.Indexes)
	calculation, err := calculator.Calculate(company.Apartments[0], company, decimal.Zero,
		time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if calculation.Method != maxprice.MethodConstructionPriceIndex {
		t.Errorf("winning method = %s, want construction-price-index", calculation.Method)
	}
	if !calculation.MaximumPrice.Equal(decimal.RequireFromString("240000")) {
		t.Errorf("maximum price = %s, want 240000", calculation.MaximumPrice)
	}

	engine := regulation.NewEngine(nil, data.Indexes)
	results, err := engine.Run(regulation.Input{
		CalculationMonth:       time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Companies:              data.Companies,
		ExternalSales:          data.ExternalSales,
		ReplacementPostalCodes: data.ReplacementPostalCodes,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 2000 €/m² adjusted by 100/50 = 4000, equal to the area average, so the
	// thirty-year-old company is released.
	if len(results.ReleasedFromRegulation) != 1 {
		t.Fatalf("released %d companies, want 1: %+v", len(results.ReleasedFromRegulation), results)
	}
	if results.ReleasedFromRegulation[0].DisplayName != "As Oy Kolmekymppinen" {
		t.Errorf("released company = %s", results.ReleasedFromRegulation[0].DisplayName)
	}
}
