// Package dto defines the wire shapes of the v1 API.
package dto

import (
	"salesboard/internal/core/types"
	"salesboard/internal/domain/reports"
)

// Metric selects which figure drives percentage shares.
const (
	MetricTotal    = "total"
	MetricQuantity = "quantity"
)

// noImportDate is rendered when a pair has sales but no import history.
const noImportDate = "N/A"

const dateLayout = "2006-01-02"

// --- Monthly sales ---

// MonthlySalesRequest selects the year for the monthly view.
type MonthlySalesRequest struct {
	Year int `form:"year" binding:"required"`
}

// MonthlyBucketResponse is one month of the selected year. Months
// without sales are present with zero values.
type MonthlyBucketResponse struct {
	Month    int    `json:"month"`
	Total    string `json:"total"`
	Quantity int64  `json:"quantity"`
}

// MonthlySalesResponse is the monthly sales report.
type MonthlySalesResponse struct {
	Year   int                     `json:"year"`
	Months []MonthlyBucketResponse `json:"months"`
}

// FromMonthlyBuckets converts domain buckets to the response DTO.
func FromMonthlyBuckets(year int, buckets []reports.MonthlyBucket) *MonthlySalesResponse {
	resp := &MonthlySalesResponse{
		Year:   year,
		Months: make([]MonthlyBucketResponse, len(buckets)),
	}
	for i, b := range buckets {
		resp.Months[i] = MonthlyBucketResponse{
			Month:    b.Month,
			Total:    b.Total.StringFixed(2),
			Quantity: b.Quantity,
		}
	}
	return resp
}

// --- Sales breakdowns ---

// BreakdownRequest selects the period and percentage base for the
// by-location and by-product views.
type BreakdownRequest struct {
	Year  int    `form:"year" binding:"required"`
	Month string `form:"month"`

	// Metric picks whether percentage shares derive from sales totals or
	// quantities. Defaults to total.
	Metric string `form:"metric"`
}

// BreakdownItemResponse is one bucket of a breakdown with its share of
// the grand total.
type BreakdownItemResponse struct {
	Key        string `json:"key"`
	Total      string `json:"total"`
	Quantity   int64  `json:"quantity"`
	Percentage string `json:"percentage"`
}

// BreakdownResponse is a by-location or by-product report.
type BreakdownResponse struct {
	Year   int                     `json:"year"`
	Month  string                  `json:"month"`
	Metric string                  `json:"metric"`
	Items  []BreakdownItemResponse `json:"items"`
}

// NormalizedMetric defaults an empty metric to total.
func NormalizedMetric(metric string) (string, bool) {
	switch metric {
	case "":
		return MetricTotal, true
	case MetricTotal, MetricQuantity:
		return metric, true
	default:
		return "", false
	}
}

// NormalizedMonth defaults an empty month selector to all months.
func NormalizedMonth(month string) string {
	if month == "" {
		return reports.AllMonths
	}
	return month
}

type breakdownEntry struct {
	key      string
	total    types.Money
	quantity int64
}

func breakdownItems(entries []breakdownEntry, metric string) []BreakdownItemResponse {
	grand := types.Zero()
	for _, e := range entries {
		grand = grand.Add(metricValue(e, metric))
	}

	items := make([]BreakdownItemResponse, len(entries))
	for i, e := range entries {
		items[i] = BreakdownItemResponse{
			Key:        e.key,
			Total:      e.total.StringFixed(2),
			Quantity:   e.quantity,
			Percentage: reports.PercentageOf(metricValue(e, metric), grand).StringFixed(1),
		}
	}
	return items
}

func metricValue(e breakdownEntry, metric string) types.Money {
	if metric == MetricQuantity {
		return types.NewMoney(float64(e.quantity))
	}
	return e.total
}

// FromLocationBuckets converts per-location buckets to the response DTO.
func FromLocationBuckets(year int, month, metric string, buckets []reports.LocationBucket) *BreakdownResponse {
	entries := make([]breakdownEntry, len(buckets))
	for i, b := range buckets {
		entries[i] = breakdownEntry{key: b.Location, total: b.Total, quantity: b.Quantity}
	}
	return &BreakdownResponse{
		Year:   year,
		Month:  month,
		Metric: metric,
		Items:  breakdownItems(entries, metric),
	}
}

// FromProductBuckets converts per-product buckets to the response DTO.
func FromProductBuckets(year int, month, metric string, buckets []reports.ProductBucket) *BreakdownResponse {
	entries := make([]breakdownEntry, len(buckets))
	for i, b := range buckets {
		entries[i] = breakdownEntry{key: b.ProductID, total: b.Total, quantity: b.Quantity}
	}
	return &BreakdownResponse{
		Year:   year,
		Month:  month,
		Metric: metric,
		Items:  breakdownItems(entries, metric),
	}
}

// --- Stock ---

// StockRequest filters and orders the stock view.
type StockRequest struct {
	LocationID   string `form:"locationId"`
	LocationName string `form:"locationName"`
	ProductID    string `form:"productId"`
	SortBy       string `form:"sortBy"`
	SortDesc     bool   `form:"sortDesc"`
}

// StockItemResponse is one reconciled (location, product) position.
type StockItemResponse struct {
	LocationID          string `json:"locationId"`
	LocationName        string `json:"locationName"`
	ProductID           string `json:"productId"`
	Imported            int64  `json:"imported"`
	Sold                int64  `json:"sold"`
	Remaining           int64  `json:"remaining"`
	LastImportDate      string `json:"lastImportDate"`
	StockAtLastImport   int64  `json:"stockAtLastImport"`
	SoldAfterLastImport int64  `json:"soldAfterLastImport"`
	Status              string `json:"status"`
}

// StockResponse is the stock reconciliation report.
type StockResponse struct {
	Items      []StockItemResponse `json:"items"`
	TotalItems int                 `json:"totalItems"`
}

// FromStockRecords converts domain stock records to the response DTO.
func FromStockRecords(recs []reports.StockRecord) *StockResponse {
	items := make([]StockItemResponse, len(recs))
	for i, rec := range recs {
		lastImport := noImportDate
		if rec.LastImportDate != nil {
			lastImport = rec.LastImportDate.Format(dateLayout)
		}
		items[i] = StockItemResponse{
			LocationID:          rec.LocationID,
			LocationName:        rec.LocationName,
			ProductID:           rec.ProductID,
			Imported:            rec.Imported,
			Sold:                rec.Sold,
			Remaining:           rec.Remaining,
			LastImportDate:      lastImport,
			StockAtLastImport:   rec.StockAtLastImport,
			SoldAfterLastImport: rec.SoldAfterLastImport,
			Status:              string(rec.Status),
		}
	}
	return &StockResponse{Items: items, TotalItems: len(items)}
}

// --- Filter options ---

// LocationOptionResponse is one entry of the location selector.
type LocationOptionResponse struct {
	LocationID string `json:"locationId"`
	Name       string `json:"name"`
}

// FilterOptionsResponse lists the selector values for the dashboard
// controls.
type FilterOptionsResponse struct {
	Years     []int                    `json:"years"`
	Months    []string                 `json:"months"`
	Locations []LocationOptionResponse `json:"locations"`
}

// FromFilterOptions converts domain filter options to the response DTO.
func FromFilterOptions(opts *reports.FilterOptions) *FilterOptionsResponse {
	resp := &FilterOptionsResponse{
		Years:     opts.Years,
		Months:    opts.Months,
		Locations: make([]LocationOptionResponse, len(opts.Locations)),
	}
	if resp.Years == nil {
		resp.Years = []int{}
	}
	if resp.Months == nil {
		resp.Months = []string{}
	}
	for i, loc := range opts.Locations {
		resp.Locations[i] = LocationOptionResponse{
			LocationID: loc.LocationID,
			Name:       loc.Name,
		}
	}
	return resp
}
