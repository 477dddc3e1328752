package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/internal/regulation"
	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
	"github.com/City-of-Helsinki/hitas-calc/pkg/indexes"
	"github.com/City-of-Helsinki/hitas-calc/pkg/mathutil"
)

// Dataset is the YAML-described snapshot of index tables, housing companies,
// sales, and owners that a run operates on. Monetary values are strings so
// they parse into exact decimals instead of binary floats.
type Dataset struct {
	Indexes                []IndexSeries         `yaml:"indexes,omitempty"`
	HousingCompanies       []HousingCompanyEntry `yaml:"housingCompanies,omitempty"`
	ExternalSales          []ExternalSaleEntry   `yaml:"externalSales,omitempty"`
	ReplacementPostalCodes map[string][]string   `yaml:"replacementPostalCodes,omitempty"`
	Owners                 []OwnerEntry          `yaml:"owners,omitempty"`
}

// IndexSeries is one index kind with its monthly values.
type IndexSeries struct {
	Kind   string            `yaml:"kind"`
	Values map[string]string `yaml:"values"`
}

// HousingCompanyEntry describes one housing company.
type HousingCompanyEntry struct {
	DisplayName                   string             `yaml:"displayName"`
	PostalCode                    string             `yaml:"postalCode"`
	RuleSet                       string             `yaml:"ruleSet"` // pre-2011, 2011-onwards
	HalfHitas                     bool               `yaml:"halfHitas,omitempty"`
	RegulationStatus              string             `yaml:"regulationStatus,omitempty"` // regulated, pending-statistics, released, released-by-plot-department
	CompletionDate                string             `yaml:"completionDate"`
	TotalSurfaceArea              string             `yaml:"totalSurfaceArea"`
	AvgPricePerSquareMeter        string             `yaml:"avgPricePerSquareMeter,omitempty"`
	ConstructionPriceImprovements []ImprovementEntry `yaml:"constructionPriceImprovements,omitempty"`
	MarketPriceImprovements       []ImprovementEntry `yaml:"marketPriceImprovements,omitempty"`
	Apartments                    []ApartmentEntry   `yaml:"apartments,omitempty"`
}

// ApartmentEntry describes one apartment of a housing company.
type ApartmentEntry struct {
	Address                          string             `yaml:"address"`
	SurfaceArea                      string             `yaml:"surfaceArea"`
	CompletionDate                   string             `yaml:"completionDate"`
	AcquisitionPrice                 string             `yaml:"acquisitionPrice,omitempty"`
	AdditionalWorkDuringConstruction string             `yaml:"additionalWorkDuringConstruction,omitempty"`
	ShareNumberStart                 int                `yaml:"shareNumberStart,omitempty"`
	ShareNumberEnd                   int                `yaml:"shareNumberEnd,omitempty"`
	ConstructionLoanRate             string             `yaml:"constructionLoanRate,omitempty"`
	LoansDuringConstruction          string             `yaml:"loansDuringConstruction,omitempty"`
	ConstructionPayments             []PaymentEntry     `yaml:"constructionPayments,omitempty"`
	ConstructionPriceImprovements    []ImprovementEntry `yaml:"constructionPriceImprovements,omitempty"`
	MarketPriceImprovements          []ImprovementEntry `yaml:"marketPriceImprovements,omitempty"`
	Sales                            []SaleEntry        `yaml:"sales,omitempty"`
}

// ImprovementEntry describes one capital improvement.
type ImprovementEntry struct {
	Name                   string `yaml:"name"`
	Value                  string `yaml:"value"`
	CompletionDate         string `yaml:"completionDate"`
	CompletionDateIndex    string `yaml:"completionDateIndex,omitempty"`
	DepreciationPercentage string `yaml:"depreciationPercentage,omitempty"`
	NoDeductions           bool   `yaml:"noDeductions,omitempty"`
	AdditionalWork         bool   `yaml:"additionalWork,omitempty"`
}

// SaleEntry describes one realized sale.
type SaleEntry struct {
	PurchaseDate          string `yaml:"purchaseDate"`
	PurchasePrice         string `yaml:"purchasePrice"`
	ShareOfLoans          string `yaml:"shareOfLoans,omitempty"`
	ExcludeFromStatistics bool   `yaml:"excludeFromStatistics,omitempty"`
}

// PaymentEntry describes one staged construction-time payment.
type PaymentEntry struct {
	Date       string `yaml:"date"`
	Percentage string `yaml:"percentage"`
}

// ExternalSaleEntry is one quarter of external postal-code statistics.
type ExternalSaleEntry struct {
	PostalCode string `yaml:"postalCode"`
	Quarter    string `yaml:"quarter"`
	SaleCount  int    `yaml:"saleCount"`
	Price      string `yaml:"price"`
}

// OwnerEntry describes one owner and their holdings. Ownerships reference
// housing companies by display name.
type OwnerEntry struct {
	Name       string           `yaml:"name"`
	Identifier string           `yaml:"identifier,omitempty"`
	Ownerships []OwnershipEntry `yaml:"ownerships,omitempty"`
}

// OwnershipEntry links an owner to an apartment in a housing company.
type OwnershipEntry struct {
	HousingCompany string `yaml:"housingCompany"`
	HalfHitas      bool   `yaml:"halfHitas,omitempty"`
	Regulated      bool   `yaml:"regulated,omitempty"`
	LatestSaleDate string `yaml:"latestSaleDate,omitempty"`
}

// Data is the fully decoded dataset ready for the calculation engines.
type Data struct {
	Indexes                *indexes.Table
	Companies              []hitas.HousingCompany
	ExternalSales          []regulation.ExternalSaleData
	ReplacementPostalCodes map[string][]string
	Owners                 []hitas.Owner
}

// CompanyByName returns the decoded housing company with the given display
// name.
func (d *Data) CompanyByName(name string) (hitas.HousingCompany, bool) {
	for _, company := range d.Companies {
		if company.DisplayName == name {
			return company, true
		}
	}
	return hitas.HousingCompany{}, false
}

// Build decodes the dataset into domain structs. Every decoding problem is
// collected before failing so one pass over the config file surfaces all of
// them.
func (ds *Dataset) Build() (*Data, error) {
	b := &builder{companyIDs: make(map[string]uuid.UUID)}

	data := &Data{
		Indexes:                indexes.NewTable(),
		ReplacementPostalCodes: ds.ReplacementPostalCodes,
	}

	for _, series := range ds.Indexes {
		kind, ok := indexKind(series.Kind)
		if !ok {
			b.problemf("indexes: unknown kind %q", series.Kind)
			continue
		}
		for month, value := range series.Values {
			data.Indexes.Set(kind,
				b.month(fmt.Sprintf("indexes[%s].%s", series.Kind, month), month),
				b.decimal(fmt.Sprintf("indexes[%s].%s", series.Kind, month), value))
		}
	}

	for _, entry := range ds.HousingCompanies {
		data.Companies = append(data.Companies, b.company(entry))
	}
	for _, entry := range ds.ExternalSales {
		scope := fmt.Sprintf("externalSales[%s %s]", entry.PostalCode, entry.Quarter)
		data.ExternalSales = append(data.ExternalSales, regulation.ExternalSaleData{
			PostalCode: entry.PostalCode,
			Quarter:    b.date(scope+".quarter", entry.Quarter),
			SaleCount:  entry.SaleCount,
			Price:      b.decimal(scope+".price", entry.Price),
		})
	}
	for _, entry := range ds.Owners {
		data.Owners = append(data.Owners, b.owner(entry))
	}

	if len(b.problems) > 0 {
		return nil, fmt.Errorf("invalid dataset: %s", strings.Join(b.problems, "; "))
	}
	return data, nil
}

// builder accumulates decoding problems instead of failing on the first one.
type builder struct {
	problems   []string
	companyIDs map[string]uuid.UUID
}

func (b *builder) problemf(format string, args ...interface{}) {
	b.problems = append(b.problems, fmt.Sprintf(format, args...))
}

func (b *builder) decimal(scope, value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		b.problemf("%s: invalid decimal %q", scope, value)
		return decimal.Zero
	}
	return parsed
}

func (b *builder) optionalDecimal(scope, value string) *decimal.Decimal {
	if value == "" {
		return nil
	}
	return mathutil.Ptr(b.decimal(scope, value))
}

func (b *builder) date(scope, value string) time.Time {
	parsed, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		b.problemf("%s: invalid date %q", scope, value)
		return time.Time{}
	}
	return parsed
}

func (b *builder) month(scope, value string) time.Time {
	parsed, err := time.Parse(constants.DateTimeLayout, value)
	if err != nil {
		b.problemf("%s: invalid month %q", scope, value)
		return time.Time{}
	}
	return parsed
}

func (b *builder) companyID(name string) uuid.UUID {
	id, ok := b.companyIDs[name]
	if !ok {
		id = uuid.New()
		b.companyIDs[name] = id
	}
	return id
}

func (b *builder) company(entry HousingCompanyEntry) hitas.HousingCompany {
	scope := fmt.Sprintf("housingCompanies[%s]", entry.DisplayName)
	company := hitas.HousingCompany{
		ID:                     b.companyID(entry.DisplayName),
		DisplayName:            entry.DisplayName,
		PostalCode:             entry.PostalCode,
		HalfHitas:              entry.HalfHitas,
		CompletionDate:         b.date(scope+".completionDate", entry.CompletionDate),
		TotalSurfaceArea:       b.decimal(scope+".totalSurfaceArea", entry.TotalSurfaceArea),
		AvgPricePerSquareMeter: b.optionalDecimal(scope+".avgPricePerSquareMeter", entry.AvgPricePerSquareMeter),
	}

	switch entry.RuleSet {
	case "pre-2011", "":
		company.RuleSet = hitas.RuleSetPre2011
	case "2011-onwards":
		company.RuleSet = hitas.RuleSet2011Onwards
	default:
		b.problemf("%s: unknown ruleSet %q", scope, entry.RuleSet)
	}

	switch entry.RegulationStatus {
	case "regulated", "":
		company.RegulationStatus = hitas.StatusRegulated
	case "pending-statistics":
		company.RegulationStatus = hitas.StatusPendingStatistics
	case "released":
		company.RegulationStatus = hitas.StatusReleased
	case "released-by-plot-department":
		company.RegulationStatus = hitas.StatusReleasedByPlotDepartment
	default:
		b.problemf("%s: unknown regulationStatus %q", scope, entry.RegulationStatus)
	}

	company.ConstructionPriceImprovements = b.improvements(scope, entry.ConstructionPriceImprovements)
	company.MarketPriceImprovements = b.improvements(scope, entry.MarketPriceImprovements)
	for _, apartmentEntry := range entry.Apartments {
		company.Apartments = append(company.Apartments, b.apartment(scope, apartmentEntry))
	}
	company.ApartmentCount = len(company.Apartments)
	return company
}

func (b *builder) apartment(companyScope string, entry ApartmentEntry) hitas.Apartment {
	scope := fmt.Sprintf("%s.apartments[%s]", companyScope, entry.Address)
	apartment := hitas.Apartment{
		ID:                               uuid.New(),
		Address:                          entry.Address,
		SurfaceArea:                      b.decimal(scope+".surfaceArea", entry.SurfaceArea),
		CompletionDate:                   b.date(scope+".completionDate", entry.CompletionDate),
		AcquisitionPrice:                 b.decimal(scope+".acquisitionPrice", entry.AcquisitionPrice),
		AdditionalWorkDuringConstruction: b.decimal(scope+".additionalWorkDuringConstruction", entry.AdditionalWorkDuringConstruction),
		ShareNumberStart:                 entry.ShareNumberStart,
		ShareNumberEnd:                   entry.ShareNumberEnd,
		ConstructionLoanRate:             b.decimal(scope+".constructionLoanRate", entry.ConstructionLoanRate),
		LoansDuringConstruction:          b.decimal(scope+".loansDuringConstruction", entry.LoansDuringConstruction),
	}
	for _, payment := range entry.ConstructionPayments {
		apartment.ConstructionPayments = append(apartment.ConstructionPayments, hitas.ConstructionPayment{
			Date:       b.date(scope+".constructionPayments.date", payment.Date),
			Percentage: b.decimal(scope+".constructionPayments.percentage", payment.Percentage),
		})
	}
	apartment.ConstructionPriceImprovements = b.improvements(scope, entry.ConstructionPriceImprovements)
	apartment.MarketPriceImprovements = b.improvements(scope, entry.MarketPriceImprovements)
	for _, sale := range entry.Sales {
		apartment.Sales = append(apartment.Sales, hitas.Sale{
			PurchaseDate:                        b.date(scope+".sales.purchaseDate", sale.PurchaseDate),
			PurchasePrice:                       b.decimal(scope+".sales.purchasePrice", sale.PurchasePrice),
			ApartmentShareOfHousingCompanyLoans: b.decimal(scope+".sales.shareOfLoans", sale.ShareOfLoans),
			ExcludeFromStatistics:               sale.ExcludeFromStatistics,
		})
	}
	return apartment
}

func (b *builder) improvements(scope string, entries []ImprovementEntry) []hitas.ImprovementData {
	var improvements []hitas.ImprovementData
	for _, entry := range entries {
		entryScope := fmt.Sprintf("%s.improvements[%s]", scope, entry.Name)
		improvements = append(improvements, hitas.ImprovementData{
			Name:                   entry.Name,
			Value:                  b.decimal(entryScope+".value", entry.Value),
			CompletionDate:         b.date(entryScope+".completionDate", entry.CompletionDate),
			CompletionDateIndex:    b.optionalDecimal(entryScope+".completionDateIndex", entry.CompletionDateIndex),
			DepreciationPercentage: b.optionalDecimal(entryScope+".depreciationPercentage", entry.DepreciationPercentage),
			NoDeductions:           entry.NoDeductions,
			AdditionalWork:         entry.AdditionalWork,
		})
	}
	return improvements
}

func (b *builder) owner(entry OwnerEntry) hitas.Owner {
	scope := fmt.Sprintf("owners[%s]", entry.Name)
	owner := hitas.Owner{
		ID:         uuid.New(),
		Name:       entry.Name,
		Identifier: entry.Identifier,
	}
	for _, ownership := range entry.Ownerships {
		converted := hitas.Ownership{
			HousingCompanyID: b.companyID(ownership.HousingCompany),
			HalfHitas:        ownership.HalfHitas,
			Regulated:        ownership.Regulated,
		}
		if ownership.LatestSaleDate != "" {
			date := b.date(scope+".latestSaleDate", ownership.LatestSaleDate)
			converted.LatestSaleDate = &date
		}
		owner.Ownerships = append(owner.Ownerships, converted)
	}
	return owner
}

// indexKind maps a config series name to the index kind.
func indexKind(name string) (indexes.Kind, bool) {
	switch name {
	case "construction-price-index-pre-2011":
		return indexes.ConstructionPriceIndexPre2011, true
	case "construction-price-index-2011-onwards":
		return indexes.ConstructionPriceIndex2011Onwards, true
	case "market-price-index-pre-2011":
		return indexes.MarketPriceIndexPre2011, true
	case "market-price-index-2011-onwards":
		return indexes.MarketPriceIndex2011Onwards, true
	case "surface-area-price-ceiling":
		return indexes.SurfaceAreaPriceCeiling, true
	}
	return 0, false
}
