package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ID is a source-table identifier. The backend returns ids as either JSON
// strings or numbers depending on the column type, so it unmarshals both.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(string(data))
	return nil
}

// dateLayouts are the formats the source tables use for date columns.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// RawSale is the wire shape of a Sale row.
type RawSale struct {
	SaleDate   string      `json:"sale_date"`
	LocationID ID          `json:"location_id"`
	ProductID  ID          `json:"product_id"`
	Quantity   json.Number `json:"quantity"`
	TotalPrice json.Number `json:"total_price"`
}

// RawLocation is the wire shape of a Location row.
type RawLocation struct {
	LocationID ID     `json:"location_id"`
	Name       string `json:"location"`
}

// RawImport is the wire shape of an Import row. The table carries the
// import date in either import_date or created_at.
type RawImport struct {
	LocationID ID          `json:"location_id"`
	ProductID  ID          `json:"product_id"`
	Quantity   json.Number `json:"quantity"`
	ImportDate string      `json:"import_date"`
	CreatedAt  string      `json:"created_at"`
}

// ParseSale validates a raw sale row. A missing product id buckets under
// UnknownKey rather than failing; an unparsable date or quantity rejects
// the row.
func ParseSale(raw RawSale) (Sale, error) {
	date, err := parseDate(raw.SaleDate)
	if err != nil {
		return Sale{}, fmt.Errorf("sale_date: %w", err)
	}
	qty, err := raw.Quantity.Int64()
	if err != nil {
		return Sale{}, fmt.Errorf("quantity: %w", err)
	}
	total, err := decimal.NewFromString(raw.TotalPrice.String())
	if err != nil {
		return Sale{}, fmt.Errorf("total_price: %w", err)
	}
	productID := string(raw.ProductID)
	if productID == "" {
		productID = UnknownKey
	}
	return Sale{
		SaleDate:   date,
		LocationID: string(raw.LocationID),
		ProductID:  productID,
		Quantity:   qty,
		TotalPrice: total,
	}, nil
}

// ParseLocation validates a raw location row.
func ParseLocation(raw RawLocation) (Location, error) {
	if raw.LocationID == "" {
		return Location{}, fmt.Errorf("location_id is required")
	}
	return Location{
		LocationID: string(raw.LocationID),
		Name:       raw.Name,
	}, nil
}

// ParseImport validates a raw import row, preferring import_date over
// created_at for the event date.
func ParseImport(raw RawImport) (Import, error) {
	dateStr := raw.ImportDate
	if strings.TrimSpace(dateStr) == "" {
		dateStr = raw.CreatedAt
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return Import{}, fmt.Errorf("import date: %w", err)
	}
	qty, err := raw.Quantity.Int64()
	if err != nil {
		return Import{}, fmt.Errorf("quantity: %w", err)
	}
	productID := string(raw.ProductID)
	if productID == "" {
		productID = UnknownKey
	}
	return Import{
		LocationID: string(raw.LocationID),
		ProductID:  productID,
		Quantity:   qty,
		ImportDate: date,
	}, nil
}

// ParseSales validates a batch of raw sale rows, returning the valid
// records and the number of rejected rows.
func ParseSales(raws []RawSale) ([]Sale, int) {
	sales := make([]Sale, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		sale, err := ParseSale(raw)
		if err != nil {
			dropped++
			continue
		}
		sales = append(sales, sale)
	}
	return sales, dropped
}

// ParseLocations validates a batch of raw location rows.
func ParseLocations(raws []RawLocation) ([]Location, int) {
	locations := make([]Location, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		loc, err := ParseLocation(raw)
		if err != nil {
			dropped++
			continue
		}
		locations = append(locations, loc)
	}
	return locations, dropped
}

// ParseImports validates a batch of raw import rows.
func ParseImports(raws []RawImport) ([]Import, int) {
	imports := make([]Import, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		imp, err := ParseImport(raw)
		if err != nil {
			dropped++
			continue
		}
		imports = append(imports, imp)
	}
	return imports, dropped
}
