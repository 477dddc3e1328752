package improvement

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/indexes"
	"github.com/City-of-Helsinki/hitas-calc/pkg/mathutil"
)

func date(s string) time.Time {
	return datetime.MustParseTime(datetime.DateLayout, s)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTable(kind indexes.Kind, month string, value string) *indexes.Table {
	table := indexes.NewTable()
	table.Set(kind, date(month), dec(value))
	return table
}

func TestHousingCompany2011Onwards(t *testing.T) {
	// Worked scenario: 150 000 improvement on a 4332 m2 company, indices
	// 129.2 -> 146.4, apportioned to a 30 m2 apartment.
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Facade renovation",
		Value:               dec("150000"),
		CompletionDate:      date("2020-06-01"),
		CompletionDateIndex: mathutil.Ptr(dec("129.2")),
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}

	if result.Excess == nil || !result.Excess.Equal(dec("129960")) {
		t.Errorf("Excess = %v, expected 129960", result.Excess)
	}
	if !result.ValueAdded.Equal(dec("20040")) {
		t.Errorf("ValueAdded = %s, expected 20040", result.ValueAdded)
	}
	if result.Depreciation != nil {
		t.Errorf("Depreciation = %v, expected nil", result.Depreciation)
	}
	if !result.ValueForHousingCompany.Equal(dec("22707.86")) {
		t.Errorf("ValueForHousingCompany = %s, expected 22707.86", result.ValueForHousingCompany)
	}
	if !result.ValueForApartment.Equal(dec("157.26")) {
		t.Errorf("ValueForApartment = %s, expected 157.26", result.ValueForApartment)
	}
}

func TestApartmentMarketPricePre2011FullDepreciation(t *testing.T) {
	// Worked scenario: 13 elapsed years exceed the 120 month window so the
	// whole value added depreciates and the accepted value is zero.
	params := Params{
		Variant:              ApartmentMarketPricePre2011,
		Owner:                hitas.OwnerApartment,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.MarketPriceIndexPre2011, "2022-05-01", "100.0"),
		Kind:                 indexes.MarketPriceIndexPre2011,
		ApartmentSurfaceArea: dec("20"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Kitchen renovation",
		Value:               dec("150000"),
		CompletionDate:      date("2009-05-01"),
		CompletionDateIndex: mathutil.Ptr(dec("129.2")),
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}

	if !result.ValueAdded.Equal(dec("148000")) {
		t.Errorf("ValueAdded = %s, expected 148000", result.ValueAdded)
	}
	if result.Depreciation == nil {
		t.Fatal("expected depreciation")
	}
	years, months := result.Depreciation.Years()
	if years != 13 || months != 0 {
		t.Errorf("elapsed = %d years %d months, expected 13 years 0 months", years, months)
	}
	if !result.Depreciation.Amount.Equal(dec("148000")) {
		t.Errorf("Depreciation.Amount = %s, expected 148000", result.Depreciation.Amount)
	}
	if !result.Accepted.IsZero() {
		t.Errorf("Accepted = %s, expected 0", result.Accepted)
	}
	if !result.ValueForApartment.IsZero() {
		t.Errorf("ValueForApartment = %s, expected 0", result.ValueForApartment)
	}
}

func TestApartmentMarketPricePre2011PartialDepreciation(t *testing.T) {
	params := Params{
		Variant:              ApartmentMarketPricePre2011,
		Owner:                hitas.OwnerApartment,
		CalculationDate:      date("2014-05-01"),
		Index:                newTable(indexes.MarketPriceIndexPre2011, "2014-05-01", "129.2"),
		Kind:                 indexes.MarketPriceIndexPre2011,
		ApartmentSurfaceArea: dec("20"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Bathroom renovation",
		Value:               dec("14000"),
		CompletionDate:      date("2009-05-01"),
		CompletionDateIndex: mathutil.Ptr(dec("129.2")),
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}

	// 14000 - 2000 excess = 12000; 60 of 120 months elapsed = 6000
	// depreciated; identical indices leave the remainder unchanged.
	if !result.ValueAdded.Equal(dec("12000")) {
		t.Errorf("ValueAdded = %s, expected 12000", result.ValueAdded)
	}
	if result.Depreciation == nil || !result.Depreciation.Amount.Equal(dec("6000")) {
		t.Errorf("Depreciation = %v, expected amount 6000", result.Depreciation)
	}
	if !result.Accepted.Equal(dec("6000")) {
		t.Errorf("Accepted = %s, expected 6000", result.Accepted)
	}
}

func TestValueAddedNeverNegative(t *testing.T) {
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("4332"),
	}
	// Value far below the 129 960 excess.
	imp := hitas.ImprovementData{
		Name:                "Door replacement",
		Value:               dec("5000"),
		CompletionDate:      date("2020-06-01"),
		CompletionDateIndex: mathutil.Ptr(dec("129.2")),
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}
	if !result.ValueAdded.IsZero() {
		t.Errorf("ValueAdded = %s, expected 0", result.ValueAdded)
	}
	if result.Accepted.IsNegative() {
		t.Errorf("Accepted = %s, expected non-negative", result.Accepted)
	}
}

func TestConstructionPricePre2011PercentageDepreciation(t *testing.T) {
	params := Params{
		Variant:              ConstructionPricePre2011,
		Owner:                hitas.OwnerApartment,
		CalculationDate:      date("2011-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndexPre2011, "2011-05-01", "150.0"),
		Kind:                 indexes.ConstructionPriceIndexPre2011,
		ApartmentSurfaceArea: dec("50"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                   "Sauna",
		Value:                  dec("17000"),
		CompletionDate:         date("2009-05-01"),
		CompletionDateIndex:    mathutil.Ptr(dec("100.0")),
		DepreciationPercentage: mathutil.Ptr(dec("10")),
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}

	// 17000 - 5000 excess = 12000, index-adjusted to 18000, then 10 % per
	// year over 24 months depreciates 3600.
	if !result.ValueAdded.Equal(dec("12000")) {
		t.Errorf("ValueAdded = %s, expected 12000", result.ValueAdded)
	}
	if result.Depreciation == nil || !result.Depreciation.Amount.Equal(dec("3600")) {
		t.Errorf("Depreciation = %v, expected amount 3600", result.Depreciation)
	}
	if result.Depreciation != nil && result.Depreciation.Percentage == nil {
		t.Error("expected the percentage rate to be recorded")
	}
	if !result.Accepted.Equal(dec("14400")) {
		t.Errorf("Accepted = %s, expected 14400", result.Accepted)
	}
}

func TestConstructionPricePre2011WithoutPercentageSkipsDepreciation(t *testing.T) {
	params := Params{
		Variant:              ConstructionPricePre2011,
		Owner:                hitas.OwnerApartment,
		CalculationDate:      date("2011-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndexPre2011, "2011-05-01", "150.0"),
		Kind:                 indexes.ConstructionPriceIndexPre2011,
		ApartmentSurfaceArea: dec("50"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Sauna",
		Value:               dec("17000"),
		CompletionDate:      date("2009-05-01"),
		CompletionDateIndex: mathutil.Ptr(dec("100.0")),
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}
	if result.Depreciation != nil {
		t.Errorf("Depreciation = %v, expected nil without a supplied rate", result.Depreciation)
	}
	if !result.Accepted.Equal(dec("18000")) {
		t.Errorf("Accepted = %s, expected 18000", result.Accepted)
	}
}

func TestIdenticalIndicesLeaveValueUnchanged(t *testing.T) {
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("100"),
	}
	imp := hitas.ImprovementData{
		Name:                "Elevator",
		Value:               dec("10000"),
		CompletionDate:      date("2021-01-01"),
		CompletionDateIndex: mathutil.Ptr(dec("146.4")),
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}
	// Excess 30 * 100 = 3000; identical indices adjust by exactly zero.
	if !result.ValueForHousingCompany.Equal(dec("7000")) {
		t.Errorf("ValueForHousingCompany = %s, expected 7000", result.ValueForHousingCompany)
	}
}

func TestAdditionalWorkOnlyIndexAdjusts(t *testing.T) {
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerApartment,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Parquet upgrade",
		Value:               dec("6460"),
		CompletionDate:      date("2020-06-01"),
		CompletionDateIndex: mathutil.Ptr(dec("129.2")),
		AdditionalWork:      true,
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}
	if result.Excess != nil {
		t.Errorf("Excess = %v, expected nil for additional work", result.Excess)
	}
	if result.Depreciation != nil {
		t.Errorf("Depreciation = %v, expected nil for additional work", result.Depreciation)
	}
	// 6460 * 146.4 / 129.2 = 7320
	if !result.ValueForApartment.Equal(dec("7320")) {
		t.Errorf("ValueForApartment = %s, expected 7320", result.ValueForApartment)
	}
}

func TestNoDeductionsApportionsByShareCount(t *testing.T) {
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("4332"),
		ApartmentShareCount:  25,
		TotalShareCount:      1000,
	}
	imp := hitas.ImprovementData{
		Name:                "Plot redemption",
		Value:               dec("100000"),
		CompletionDate:      date("2021-01-01"),
		CompletionDateIndex: mathutil.Ptr(dec("146.4")),
		NoDeductions:        true,
	}

	result, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}
	if result.Excess != nil {
		t.Errorf("Excess = %v, expected nil with no deductions", result.Excess)
	}
	if !result.ValueForApartment.Equal(dec("2500")) {
		t.Errorf("ValueForApartment = %s, expected 2500", result.ValueForApartment)
	}
}

func TestNoDeductionsWithoutShareCountFails(t *testing.T) {
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Plot redemption",
		Value:               dec("100000"),
		CompletionDate:      date("2021-01-01"),
		CompletionDateIndex: mathutil.Ptr(dec("146.4")),
		NoDeductions:        true,
	}

	_, err := CalculateSingle(params, imp)
	var invalid *hitas.InvalidCalculationResultError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCalculationResultError, got %v", err)
	}
	if invalid.ErrorCode != "missing_share_count" {
		t.Errorf("ErrorCode = %s, expected missing_share_count", invalid.ErrorCode)
	}
}

func TestMissingCalculationIndexFails(t *testing.T) {
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      date("2022-05-01"),
		Index:                indexes.NewTable(),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Facade renovation",
		Value:               dec("150000"),
		CompletionDate:      date("2020-06-01"),
		CompletionDateIndex: mathutil.Ptr(dec("129.2")),
	}

	_, err := CalculateSingle(params, imp)
	var missing *hitas.IndexMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected IndexMissingError, got %v", err)
	}
}

func TestCalculateMultipleAdditivity(t *testing.T) {
	params := Params{
		Variant:              HousingCompany2011Onwards,
		Owner:                hitas.OwnerHousingCompany,
		CalculationDate:      date("2022-05-01"),
		Index:                newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:                 indexes.ConstructionPriceIndex2011Onwards,
		ApartmentSurfaceArea: dec("30"),
		TotalSurfaceArea:     dec("4332"),
	}
	imp := hitas.ImprovementData{
		Name:                "Facade renovation",
		Value:               dec("150000"),
		CompletionDate:      date("2020-06-01"),
		CompletionDateIndex: mathutil.Ptr(dec("129.2")),
	}

	single, err := CalculateSingle(params, imp)
	if err != nil {
		t.Fatalf("CalculateSingle returned error: %v", err)
	}

	const n = 3
	summary, err := CalculateMultiple(params, []hitas.ImprovementData{imp, imp, imp})
	if err != nil {
		t.Fatalf("CalculateMultiple returned error: %v", err)
	}

	if len(summary.Items) != n {
		t.Fatalf("len(Items) = %d, expected %d", len(summary.Items), n)
	}
	three := decimal.NewFromInt(n)
	if !summary.Value.Equal(single.Value.Mul(three)) {
		t.Errorf("Value = %s, expected %s", summary.Value, single.Value.Mul(three))
	}
	if !summary.ValueAdded.Equal(single.ValueAdded.Mul(three)) {
		t.Errorf("ValueAdded = %s, expected %s", summary.ValueAdded, single.ValueAdded.Mul(three))
	}
	if !summary.ValueForHousingCompany.Equal(single.ValueForHousingCompany.Mul(three)) {
		t.Errorf("ValueForHousingCompany = %s, expected %s",
			summary.ValueForHousingCompany, single.ValueForHousingCompany.Mul(three))
	}
	if !summary.ValueForApartment.Equal(single.ValueForApartment.Mul(three)) {
		t.Errorf("ValueForApartment = %s, expected %s",
			summary.ValueForApartment, single.ValueForApartment.Mul(three))
	}
	if summary.Excess == nil {
		t.Fatal("expected an excess summary")
	}
	if !summary.Excess.Total.Equal(single.Excess.Mul(three)) {
		t.Errorf("Excess.Total = %s, expected %s", summary.Excess.Total, single.Excess.Mul(three))
	}
	if !summary.Excess.RatePerSquareMeter.Equal(dec("30")) {
		t.Errorf("Excess.RatePerSquareMeter = %s, expected 30", summary.Excess.RatePerSquareMeter)
	}
}

func TestCalculateMultipleEmptyKeepsNullableFieldsNil(t *testing.T) {
	params := Params{
		Variant:         HousingCompany2011Onwards,
		Owner:           hitas.OwnerHousingCompany,
		CalculationDate: date("2022-05-01"),
		Index:           newTable(indexes.ConstructionPriceIndex2011Onwards, "2022-05-01", "146.4"),
		Kind:            indexes.ConstructionPriceIndex2011Onwards,
	}

	summary, err := CalculateMultiple(params, nil)
	if err != nil {
		t.Fatalf("CalculateMultiple returned error: %v", err)
	}
	if summary.Excess != nil {
		t.Errorf("Excess = %v, expected nil", summary.Excess)
	}
	if summary.Depreciation != nil {
		t.Errorf("Depreciation = %v, expected nil", summary.Depreciation)
	}
	if !summary.Value.IsZero() || !summary.ValueForApartment.IsZero() {
		t.Error("expected zero totals for an empty batch")
	}
}

func TestExcessRateSelection(t *testing.T) {
	tests := []struct {
		name       string
		owner      hitas.ImprovementOwner
		completion string
		expected   string
	}{
		{"Company after 2010", hitas.OwnerHousingCompany, "2011-01-01", "30"},
		{"Company before 2011", hitas.OwnerHousingCompany, "2010-12-31", "150"},
		{"Apartment before 2011", hitas.OwnerApartment, "2009-05-01", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := ExcessRate(tt.owner, date(tt.completion))
			if !rate.Equal(dec(tt.expected)) {
				t.Errorf("ExcessRate = %s, expected %s", rate, tt.expected)
			}
		})
	}
}
