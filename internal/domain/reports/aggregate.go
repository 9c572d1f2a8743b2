package reports

import (
	"fmt"
	"sort"

	"salesboard/internal/core/types"
	"salesboard/internal/domain/records"
)

// GroupMonthly aggregates the sales of one calendar year into exactly 12
// buckets in month order. Months without sales stay zero-filled; totals
// are rounded to 2 decimal places.
func GroupMonthly(sales []records.Sale, year int) []MonthlyBucket {
	var totals [12]types.Money
	var quantities [12]int64

	for _, sale := range sales {
		if sale.SaleDate.Year() != year {
			continue
		}
		m := int(sale.SaleDate.Month()) - 1
		totals[m] = totals[m].Add(sale.TotalPrice)
		quantities[m] += sale.Quantity
	}

	buckets := make([]MonthlyBucket, 12)
	for i := range buckets {
		buckets[i] = MonthlyBucket{
			Month:    i + 1,
			Total:    types.Round2(totals[i]),
			Quantity: quantities[i],
		}
	}
	return buckets
}

// monthMatches reports whether a sale's two-digit month matches the
// selected month ("all" matches every month).
func monthMatches(selected string, saleMonth int) bool {
	if selected == AllMonths || selected == "" {
		return true
	}
	return selected == fmt.Sprintf("%02d", saleMonth)
}

// GroupByLocation aggregates the selected year/month's sales per location
// display name. Only names actually observed get a bucket (no zero-fill);
// unresolved location ids group under records.UnknownKey. Bucket order is
// first-seen order of the name.
func GroupByLocation(sales []records.Sale, index records.LocationIndex, year int, month string) []LocationBucket {
	totals := make(map[string]types.Money)
	quantities := make(map[string]int64)
	var order []string

	for _, sale := range sales {
		if sale.SaleDate.Year() != year || !monthMatches(month, int(sale.SaleDate.Month())) {
			continue
		}
		name := index.Name(sale.LocationID)
		if _, seen := quantities[name]; !seen {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(sale.TotalPrice)
		quantities[name] += sale.Quantity
	}

	buckets := make([]LocationBucket, 0, len(order))
	for _, name := range order {
		buckets = append(buckets, LocationBucket{
			Location: name,
			Total:    types.Round2(totals[name]),
			Quantity: quantities[name],
		})
	}
	return buckets
}

// GroupByProduct aggregates the selected year/month's sales per product
// id. Sales without a product id group under records.UnknownKey.
func GroupByProduct(sales []records.Sale, year int, month string) []ProductBucket {
	totals := make(map[string]types.Money)
	quantities := make(map[string]int64)
	var order []string

	for _, sale := range sales {
		if sale.SaleDate.Year() != year || !monthMatches(month, int(sale.SaleDate.Month())) {
			continue
		}
		productID := sale.ProductID
		if productID == "" {
			productID = records.UnknownKey
		}
		if _, seen := quantities[productID]; !seen {
			order = append(order, productID)
		}
		totals[productID] = totals[productID].Add(sale.TotalPrice)
		quantities[productID] += sale.Quantity
	}

	buckets := make([]ProductBucket, 0, len(order))
	for _, productID := range order {
		buckets = append(buckets, ProductBucket{
			ProductID: productID,
			Total:     types.Round2(totals[productID]),
			Quantity:  quantities[productID],
		})
	}
	return buckets
}

// PercentageOf returns value as a percentage of total, rounded to 1
// decimal place. A zero total yields 0 rather than dividing by zero. The
// caller picks which metric (total sales or quantity) supplies both
// numerator and denominator, independent of the metric on display.
func PercentageOf(value, total types.Money) types.Money {
	if total.IsZero() {
		return types.Zero()
	}
	return types.Round1(value.Div(total).Mul(types.NewMoney(100)))
}

// Years returns the distinct calendar years present in the sales set, in
// ascending order.
func Years(sales []records.Sale) []int {
	seen := make(map[int]struct{})
	for _, sale := range sales {
		seen[sale.SaleDate.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Months returns the distinct two-digit months present in the sales set,
// in ascending order.
func Months(sales []records.Sale) []string {
	seen := make(map[string]struct{})
	for _, sale := range sales {
		seen[fmt.Sprintf("%02d", int(sale.SaleDate.Month()))] = struct{}{}
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// ValidMonth reports whether the month selector value is "all" or a
// two-digit month 01..12.
func ValidMonth(month string) bool {
	if month == AllMonths || month == "" {
		return true
	}
	if len(month) != 2 {
		return false
	}
	for m := 1; m <= 12; m++ {
		if month == fmt.Sprintf("%02d", m) {
			return true
		}
	}
	return false
}
