package regulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/datetime"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
)

// SaleData is the sale count and aggregate per-square-meter price for one
// postal-code bucket. Internal (Hitas) and external sales are structurally
// identical and are summed together.
type SaleData struct {
	SaleCount int
	Price     decimal.Decimal
}

// Add folds another bucket into this one.
func (s *SaleData) Add(other SaleData) {
	s.SaleCount += other.SaleCount
	s.Price = s.Price.Add(other.Price)
}

// Average returns the combined average price per square meter, and false when
// the bucket holds no sales.
func (s SaleData) Average() (decimal.Decimal, bool) {
	if s.SaleCount == 0 {
		return decimal.Decimal{}, false
	}
	return s.Price.Div(decimal.NewFromInt(int64(s.SaleCount))), true
}

// ExternalSaleData is one quarter of the externally supplied postal-code
// sales statistics.
type ExternalSaleData struct {
	PostalCode string
	Quarter    time.Time
	SaleCount  int
	Price      decimal.Decimal
}

// salesWindow is the trailing statistics window: the four full calendar
// quarters before the quarter containing the calculation month.
func salesWindow(calculationMonth time.Time) (time.Time, time.Time) {
	end := datetime.QuarterOf(calculationMonth)
	start := end.AddDate(0, -constants.SalesWindowQuarters*3, 0)
	return start, end
}

// aggregateSales builds per-postal-code sale buckets from the Hitas companies
// and the external statistics dataset. Each apartment's very first sale and
// sales flagged to be excluded never count; qualifying sale prices enter the
// bucket as debt-free price per square meter.
func aggregateSales(companies []hitas.HousingCompany, external []ExternalSaleData, calculationMonth time.Time) map[string]SaleData {
	start, end := salesWindow(calculationMonth)
	buckets := make(map[string]SaleData)

	for _, company := range companies {
		for _, apartment := range company.Apartments {
			first := firstSaleDate(apartment.Sales)
			for _, sale := range apartment.Sales {
				if sale.ExcludeFromStatistics {
					continue
				}
				if first != nil && sale.PurchaseDate.Equal(*first) {
					continue
				}
				if sale.PurchaseDate.Before(start) || !sale.PurchaseDate.Before(end) {
					continue
				}
				if apartment.SurfaceArea.IsZero() {
					continue
				}
				bucket := buckets[company.PostalCode]
				bucket.Add(SaleData{
					SaleCount: 1,
					Price:     sale.TotalPrice().Div(apartment.SurfaceArea),
				})
				buckets[company.PostalCode] = bucket
			}
		}
	}

	for _, row := range external {
		quarter := datetime.QuarterOf(row.Quarter)
		if quarter.Before(start) || !quarter.Before(end) {
			continue
		}
		bucket := buckets[row.PostalCode]
		bucket.Add(SaleData{SaleCount: row.SaleCount, Price: row.Price})
		buckets[row.PostalCode] = bucket
	}

	return buckets
}

// firstSaleDate returns the purchase date of the apartment's earliest sale,
// nil when the apartment has never been sold.
func firstSaleDate(sales []hitas.Sale) *time.Time {
	var first *time.Time
	for i := range sales {
		if first == nil || sales[i].PurchaseDate.Before(*first) {
			first = &sales[i].PurchaseDate
		}
	}
	return first
}

// resolveAreaAverage returns the average price per square meter for a postal
// code, consulting the replacement-code mapping when the code itself has no
// combined data. The second return is false when nothing resolves, which
// degrades the code's companies to SKIPPED rather than failing the run.
func resolveAreaAverage(buckets map[string]SaleData, postalCode string, replacements map[string][]string) (decimal.Decimal, bool) {
	if average, ok := buckets[postalCode].Average(); ok {
		return average, true
	}

	substitutes := replacements[postalCode]
	var total decimal.Decimal
	resolved := 0
	for _, substitute := range substitutes {
		if average, ok := buckets[substitute].Average(); ok {
			total = total.Add(average)
			resolved++
		}
	}
	if resolved == 0 {
		return decimal.Decimal{}, false
	}
	return total.Div(decimal.NewFromInt(int64(resolved))), true
}
