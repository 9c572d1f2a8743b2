package reports

import (
	"sort"
	"strings"
	"time"

	"salesboard/internal/domain/records"
)

// Maximum-stock thresholds for status classification. Larger branches
// (matched by name substring) stock up to 15 units per product, the rest
// up to 10.
const (
	maxStockLarge   = 15
	maxStockDefault = 10
)

// largeLocationMarkers are the name substrings that select the larger
// threshold.
var largeLocationMarkers = []string{"supermarket", "flagship"}

// stockAcc accumulates one (location, product) pair during the fold.
type stockAcc struct {
	imported  int64
	sold      int64
	soldAfter int64

	lastImport time.Time
	hasImport  bool
}

// ComputeStock reconciles imports against sales into one StockRecord per
// (location, product) pair observed in either table. The year/month
// selectors do not apply here: stock positions span all history.
//
// Imports are folded before any sale is evaluated, so SoldAfterLastImport
// counts sales dated on or after the chronologically final import of the
// pair, not whichever import happened to precede each sale. That matches
// the dashboard this service replaces and is kept deliberately.
func ComputeStock(imports []records.Import, sales []records.Sale, index records.LocationIndex) []StockRecord {
	accs := make(map[StockKey]*stockAcc)
	var order []StockKey

	get := func(key StockKey) *stockAcc {
		acc, ok := accs[key]
		if !ok {
			acc = &stockAcc{}
			accs[key] = acc
			order = append(order, key)
		}
		return acc
	}

	for _, imp := range imports {
		acc := get(StockKey{LocationID: imp.LocationID, ProductID: imp.ProductID})
		acc.imported += imp.Quantity
		if !acc.hasImport || imp.ImportDate.After(acc.lastImport) {
			acc.lastImport = imp.ImportDate
			acc.hasImport = true
		}
	}

	salesByKey := make(map[StockKey][]records.Sale)
	for _, sale := range sales {
		key := StockKey{LocationID: sale.LocationID, ProductID: sale.ProductID}
		acc := get(key)
		acc.sold += sale.Quantity
		if acc.hasImport && !sale.SaleDate.Before(acc.lastImport) {
			acc.soldAfter += sale.Quantity
		}
		salesByKey[key] = append(salesByKey[key], sale)
	}

	out := make([]StockRecord, 0, len(order))
	for _, key := range order {
		acc := accs[key]

		// Stock at the last import: everything ever imported minus what had
		// been sold by the end of the day before that import. Pairs without
		// an import keep the raw imported figure (zero), uncorrected.
		stockAtLast := acc.imported
		var lastImportDate *time.Time
		if acc.hasImport {
			d := acc.lastImport
			lastImportDate = &d
			dayBefore := d.AddDate(0, 0, -1)
			var soldBefore int64
			for _, sale := range salesByKey[key] {
				if !sale.SaleDate.After(dayBefore) {
					soldBefore += sale.Quantity
				}
			}
			stockAtLast = acc.imported - soldBefore
		}

		name := index.Name(key.LocationID)
		remaining := acc.imported - acc.sold
		out = append(out, StockRecord{
			LocationID:          key.LocationID,
			LocationName:        name,
			ProductID:           key.ProductID,
			Imported:            acc.imported,
			Sold:                acc.sold,
			Remaining:           remaining,
			LastImportDate:      lastImportDate,
			StockAtLastImport:   stockAtLast,
			SoldAfterLastImport: acc.soldAfter,
			Status:              ClassifyStock(name, remaining),
		})
	}
	return out
}

// MaxStockFor returns the maximum-stock threshold for a location name.
func MaxStockFor(locationName string) int64 {
	lower := strings.ToLower(locationName)
	for _, marker := range largeLocationMarkers {
		if strings.Contains(lower, marker) {
			return maxStockLarge
		}
	}
	return maxStockDefault
}

// ClassifyStock rates remaining stock against the location's threshold:
// at or below 20% of it is critical, at or below 50% a warning, above
// that normal.
func ClassifyStock(locationName string, remaining int64) StockStatus {
	threshold := MaxStockFor(locationName)
	pct := float64(remaining) / float64(threshold) * 100
	switch {
	case pct <= 20:
		return StockCritical
	case pct <= 50:
		return StockWarning
	default:
		return StockNormal
	}
}

// FilterStock applies the query's location and free-text filters. Name
// and product filters are case-insensitive substring matches; empty
// filters match everything.
func FilterStock(recs []StockRecord, q StockQuery) []StockRecord {
	nameFilter := strings.ToLower(q.LocationName)
	productFilter := strings.ToLower(q.ProductID)

	out := make([]StockRecord, 0, len(recs))
	for _, rec := range recs {
		if q.LocationID != "" && rec.LocationID != q.LocationID {
			continue
		}
		if !strings.Contains(strings.ToLower(rec.LocationName), nameFilter) {
			continue
		}
		if !strings.Contains(strings.ToLower(rec.ProductID), productFilter) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// stockSortKeys maps sort field names to comparison functions returning
// true when a sorts before b ascending.
var stockSortKeys = map[string]func(a, b StockRecord) bool{
	"locationName": func(a, b StockRecord) bool { return a.LocationName < b.LocationName },
	"productId":    func(a, b StockRecord) bool { return a.ProductID < b.ProductID },
	"imported":     func(a, b StockRecord) bool { return a.Imported < b.Imported },
	"sold":         func(a, b StockRecord) bool { return a.Sold < b.Sold },
	"remaining":    func(a, b StockRecord) bool { return a.Remaining < b.Remaining },
	"lastImportDate": func(a, b StockRecord) bool {
		switch {
		case a.LastImportDate == nil:
			return b.LastImportDate != nil
		case b.LastImportDate == nil:
			return false
		default:
			return a.LastImportDate.Before(*b.LastImportDate)
		}
	},
	"stockAtLastImport":   func(a, b StockRecord) bool { return a.StockAtLastImport < b.StockAtLastImport },
	"soldAfterLastImport": func(a, b StockRecord) bool { return a.SoldAfterLastImport < b.SoldAfterLastImport },
	"status":              func(a, b StockRecord) bool { return a.Status < b.Status },
}

// ValidStockSortKey reports whether the field name is sortable.
func ValidStockSortKey(field string) bool {
	_, ok := stockSortKeys[field]
	return ok
}

// SortStock orders records by the named field. Unknown or empty fields
// keep the input order. The sort is stable so toggling direction is
// predictable for equal keys.
func SortStock(recs []StockRecord, field string, desc bool) {
	less, ok := stockSortKeys[field]
	if !ok {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if desc {
			return less(recs[j], recs[i])
		}
		return less(recs[i], recs[j])
	})
}
