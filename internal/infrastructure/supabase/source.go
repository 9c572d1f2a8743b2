package supabase

import (
	"context"

	"salesboard/internal/domain/records"
)

// Source table names.
const (
	tableSale     = "Sale"
	tableLocation = "Location"
	tableImport   = "Import"
)

// FetchSales reads the Sale table and validates the rows.
func (c *Client) FetchSales(ctx context.Context) ([]records.Sale, int, error) {
	var raws []records.RawSale
	if err := c.fetchTable(ctx, tableSale, &raws); err != nil {
		return nil, 0, err
	}
	sales, dropped := records.ParseSales(raws)
	return sales, dropped, nil
}

// FetchLocations reads the Location table and validates the rows.
func (c *Client) FetchLocations(ctx context.Context) ([]records.Location, int, error) {
	var raws []records.RawLocation
	if err := c.fetchTable(ctx, tableLocation, &raws); err != nil {
		return nil, 0, err
	}
	locations, dropped := records.ParseLocations(raws)
	return locations, dropped, nil
}

// FetchImports reads the Import table and validates the rows.
func (c *Client) FetchImports(ctx context.Context) ([]records.Import, int, error) {
	var raws []records.RawImport
	if err := c.fetchTable(ctx, tableImport, &raws); err != nil {
		return nil, 0, err
	}
	imports, dropped := records.ParseImports(raws)
	return imports, dropped, nil
}
