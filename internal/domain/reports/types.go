// Package reports implements the aggregation engine: it turns the raw
// sale/location/import records into the derived reporting views (monthly
// sales, sales by location, sales by product, stock reconciliation).
// All aggregation functions are pure with respect to their inputs and
// produce fresh derived slices on every invocation.
package reports

import (
	"time"

	"salesboard/internal/core/types"
)

// AllMonths selects every month of the chosen year.
const AllMonths = "all"

// MonthlyBucket is one calendar month of a selected year.
type MonthlyBucket struct {
	Month    int // 1..12
	Total    types.Money
	Quantity int64
}

// LocationBucket aggregates sales under one location display name.
type LocationBucket struct {
	Location string
	Total    types.Money
	Quantity int64
}

// ProductBucket aggregates sales under one product id.
type ProductBucket struct {
	ProductID string
	Total     types.Money
	Quantity  int64
}

// StockKey identifies one (location, product) pair. A structural key is
// used instead of concatenated ids so id contents can never collide.
type StockKey struct {
	LocationID string
	ProductID  string
}

// StockStatus classifies remaining stock against the location's
// maximum-stock threshold.
type StockStatus string

const (
	StockNormal   StockStatus = "normal"
	StockWarning  StockStatus = "warning"
	StockCritical StockStatus = "critical"
)

// StockRecord is the reconciled stock position of one (location, product)
// pair across all imports and sales.
//
// Remaining is never clamped: it goes negative when sales exceed logged
// imports. For pairs with sales but no import history StockAtLastImport
// stays equal to Imported (zero) and SoldAfterLastImport stays zero; this
// degradation matches the upstream dashboard and is deliberate.
type StockRecord struct {
	LocationID          string
	LocationName        string
	ProductID           string
	Imported            int64
	Sold                int64
	Remaining           int64
	LastImportDate      *time.Time
	StockAtLastImport   int64
	SoldAfterLastImport int64
	Status              StockStatus
}

// StockQuery filters and orders the stock view.
type StockQuery struct {
	// LocationID filters to one location exactly; empty selects all.
	LocationID string

	// LocationName and ProductID are case-insensitive substring filters.
	LocationName string
	ProductID    string

	// SortBy names a StockRecord field (locationName, productId, imported,
	// sold, remaining, lastImportDate, stockAtLastImport,
	// soldAfterLastImport, status). Empty keeps input order.
	SortBy   string
	SortDesc bool
}

// FilterOptions lists the selector values the dashboard offers: the
// distinct years and months present in the sales set plus every known
// location.
type FilterOptions struct {
	Years     []int
	Months    []string
	Locations []LocationOption
}

// LocationOption is one entry of the location selector.
type LocationOption struct {
	LocationID string
	Name       string
}
