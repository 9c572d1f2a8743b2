// Package records defines the typed record schemas for the three source
// tables (Sale, Location, Import) and validates raw rows at the fetch
// boundary. Rows missing required fields are rejected and counted instead
// of propagating garbage into the aggregates.
package records

import (
	"time"

	"salesboard/internal/core/types"
)

// UnknownKey is the sentinel bucket for records without a product id and
// for location ids that resolve to no known location.
const UnknownKey = "Unknown"

// Sale is a single sales transaction.
type Sale struct {
	SaleDate   time.Time
	LocationID string
	ProductID  string
	Quantity   int64
	TotalPrice types.Money
}

// Location maps a location id to its display name.
type Location struct {
	LocationID string
	Name       string
}

// Import is a single inventory import event.
type Import struct {
	LocationID string
	ProductID  string
	Quantity   int64
	ImportDate time.Time
}

// Bundle is the unit the cache stores: one full snapshot of the three
// tables, plus the count of rows the boundary rejected.
type Bundle struct {
	Sales     []Sale     `json:"sales"`
	Locations []Location `json:"locations"`
	Imports   []Import   `json:"imports"`

	// Dropped counts raw rows rejected during validation.
	Dropped int `json:"dropped,omitempty"`
}

// LocationIndex resolves location ids to display names.
type LocationIndex map[string]string

// NewLocationIndex builds an index over the given locations.
func NewLocationIndex(locations []Location) LocationIndex {
	ix := make(LocationIndex, len(locations))
	for _, loc := range locations {
		ix[loc.LocationID] = loc.Name
	}
	return ix
}

// Name returns the display name for a location id, or UnknownKey when the
// id is not present in the index.
func (ix LocationIndex) Name(locationID string) string {
	if name, ok := ix[locationID]; ok && name != "" {
		return name
	}
	return UnknownKey
}
