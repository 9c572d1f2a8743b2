package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/domain/records"
)

func imported(date, locationID, productID string, qty int64) records.Import {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return records.Import{
		LocationID: locationID,
		ProductID:  productID,
		Quantity:   qty,
		ImportDate: d,
	}
}

func TestComputeStock_Reconciles(t *testing.T) {
	imports := []records.Import{imported("2024-01-01", "loc-a", "X", 20)}
	sales := []records.Sale{sale("2024-01-10", "loc-a", "X", 5, "50.00")}
	index := records.NewLocationIndex([]records.Location{{LocationID: "loc-a", Name: "Main Street"}})

	recs := ComputeStock(imports, sales, index)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "Main Street", rec.LocationName)
	assert.Equal(t, int64(20), rec.Imported)
	assert.Equal(t, int64(5), rec.Sold)
	assert.Equal(t, int64(15), rec.Remaining)
	require.NotNil(t, rec.LastImportDate)
	assert.Equal(t, "2024-01-01", rec.LastImportDate.Format("2006-01-02"))
	// no sales by the day before the import, so the import stands whole
	assert.Equal(t, int64(20), rec.StockAtLastImport)
	assert.Equal(t, int64(5), rec.SoldAfterLastImport)
}

func TestComputeStock_SalesBeforeFinalImport(t *testing.T) {
	imports := []records.Import{
		imported("2024-01-01", "loc-a", "X", 10),
		imported("2024-02-01", "loc-a", "X", 10),
	}
	sales := []records.Sale{
		sale("2024-01-10", "loc-a", "X", 3, "30.00"),
		sale("2024-02-01", "loc-a", "X", 2, "20.00"),
	}

	recs := ComputeStock(imports, sales, records.NewLocationIndex(nil))
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, int64(20), rec.Imported)
	assert.Equal(t, int64(5), rec.Sold)
	assert.Equal(t, int64(15), rec.Remaining)
	// the January sale is settled by the day before the final import
	assert.Equal(t, int64(17), rec.StockAtLastImport)
	// the February sale lands on the final import date itself
	assert.Equal(t, int64(2), rec.SoldAfterLastImport)
}

func TestComputeStock_SaleWithoutImport(t *testing.T) {
	sales := []records.Sale{sale("2024-03-01", "loc-b", "Y", 4, "40.00")}

	recs := ComputeStock(nil, sales, records.NewLocationIndex(nil))
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, int64(0), rec.Imported)
	assert.Equal(t, int64(4), rec.Sold)
	assert.Equal(t, int64(-4), rec.Remaining)
	assert.Nil(t, rec.LastImportDate)
	assert.Equal(t, int64(0), rec.StockAtLastImport)
	assert.Equal(t, int64(0), rec.SoldAfterLastImport)
}

func TestComputeStock_SeparatesPairs(t *testing.T) {
	imports := []records.Import{
		imported("2024-01-01", "loc-a", "X", 10),
		imported("2024-01-01", "loc-b", "X", 7),
	}
	sales := []records.Sale{sale("2024-01-05", "loc-a", "Y", 1, "10.00")}

	recs := ComputeStock(imports, sales, records.NewLocationIndex(nil))
	require.Len(t, recs, 3)
	// first-seen order: imports first, then the sale-only pair
	assert.Equal(t, "loc-a", recs[0].LocationID)
	assert.Equal(t, "X", recs[0].ProductID)
	assert.Equal(t, "loc-b", recs[1].LocationID)
	assert.Equal(t, "Y", recs[2].ProductID)
}

func TestMaxStockFor(t *testing.T) {
	assert.Equal(t, int64(15), MaxStockFor("City Supermarket"))
	assert.Equal(t, int64(15), MaxStockFor("FLAGSHIP Store"))
	assert.Equal(t, int64(10), MaxStockFor("Corner Shop"))
	assert.Equal(t, int64(10), MaxStockFor(""))
}

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name      string
		location  string
		remaining int64
		expected  StockStatus
	}{
		{"supermarket at 20 percent", "City Supermarket", 3, StockCritical},
		{"supermarket above half", "City Supermarket", 8, StockWarning},
		{"supermarket full", "City Supermarket", 15, StockNormal},
		{"default critical", "Corner Shop", 2, StockCritical},
		{"default warning", "Corner Shop", 5, StockWarning},
		{"default normal", "Corner Shop", 8, StockNormal},
		{"negative remaining", "Corner Shop", -1, StockCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyStock(tt.location, tt.remaining))
		})
	}
}

func stockFixture() []StockRecord {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return []StockRecord{
		{LocationID: "loc-a", LocationName: "Main Street", ProductID: "X", Remaining: 5, LastImportDate: &d2},
		{LocationID: "loc-b", LocationName: "City Supermarket", ProductID: "Y", Remaining: 12, LastImportDate: &d1},
		{LocationID: "loc-c", LocationName: "Harbor Kiosk", ProductID: "XL", Remaining: 2},
	}
}

func TestFilterStock(t *testing.T) {
	recs := stockFixture()

	byID := FilterStock(recs, StockQuery{LocationID: "loc-b"})
	require.Len(t, byID, 1)
	assert.Equal(t, "City Supermarket", byID[0].LocationName)

	byName := FilterStock(recs, StockQuery{LocationName: "super"})
	require.Len(t, byName, 1)
	assert.Equal(t, "loc-b", byName[0].LocationID)

	byProduct := FilterStock(recs, StockQuery{ProductID: "x"})
	require.Len(t, byProduct, 2)

	assert.Len(t, FilterStock(recs, StockQuery{}), 3)
}

func TestSortStock(t *testing.T) {
	recs := stockFixture()
	SortStock(recs, "remaining", false)
	assert.Equal(t, []int64{2, 5, 12}, []int64{recs[0].Remaining, recs[1].Remaining, recs[2].Remaining})

	SortStock(recs, "remaining", true)
	assert.Equal(t, int64(12), recs[0].Remaining)

	// missing import dates sort first ascending
	recs = stockFixture()
	SortStock(recs, "lastImportDate", false)
	assert.Nil(t, recs[0].LastImportDate)
	assert.Equal(t, "loc-b", recs[1].LocationID)
	assert.Equal(t, "loc-a", recs[2].LocationID)

	// unknown field keeps input order
	recs = stockFixture()
	SortStock(recs, "bogus", false)
	assert.Equal(t, "loc-a", recs[0].LocationID)
}

func TestValidStockSortKey(t *testing.T) {
	for _, key := range []string{
		"locationName", "productId", "imported", "sold", "remaining",
		"lastImportDate", "stockAtLastImport", "soldAfterLastImport", "status",
	} {
		assert.True(t, ValidStockSortKey(key), key)
	}
	assert.False(t, ValidStockSortKey("bogus"))
}
