package reports

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"salesboard/internal/core/apperror"
	"salesboard/internal/domain/records"
	"salesboard/pkg/logger"
)

var tracer = otel.Tracer("salesboard/reports")

// Source fetches the raw record tables from the backing data service.
// Implementations return the parsed records plus the count of rows the
// validation boundary rejected.
type Source interface {
	FetchSales(ctx context.Context) ([]records.Sale, int, error)
	FetchLocations(ctx context.Context) ([]records.Location, int, error)
	FetchImports(ctx context.Context) ([]records.Import, int, error)
}

// Cache stores the last fetched bundle for the TTL window.
type Cache interface {
	Get() (*records.Bundle, bool)
	Set(*records.Bundle) error
}

// Service orchestrates the report views: cache check, concurrent fetch on
// miss, then aggregation over the bundle.
type Service struct {
	source Source
	cache  Cache
}

// NewService creates a new reports service.
func NewService(source Source, cache Cache) *Service {
	return &Service{source: source, cache: cache}
}

// Bundle returns the current raw bundle, from cache when fresh. On a miss
// the three tables are fetched concurrently; aggregation never starts on
// a partial bundle.
func (s *Service) Bundle(ctx context.Context) (*records.Bundle, error) {
	if bundle, ok := s.cache.Get(); ok {
		return bundle, nil
	}

	ctx, span := tracer.Start(ctx, "reports.fetch_bundle")
	defer span.End()

	bundle := &records.Bundle{}
	g, gctx := errgroup.WithContext(ctx)

	var salesDropped, locationsDropped, importsDropped int
	g.Go(func() error {
		sales, dropped, err := s.source.FetchSales(gctx)
		if err != nil {
			return fmt.Errorf("fetch sales: %w", err)
		}
		bundle.Sales, salesDropped = sales, dropped
		return nil
	})
	g.Go(func() error {
		locations, dropped, err := s.source.FetchLocations(gctx)
		if err != nil {
			return fmt.Errorf("fetch locations: %w", err)
		}
		bundle.Locations, locationsDropped = locations, dropped
		return nil
	})
	g.Go(func() error {
		imports, dropped, err := s.source.FetchImports(gctx)
		if err != nil {
			return fmt.Errorf("fetch imports: %w", err)
		}
		bundle.Imports, importsDropped = imports, dropped
		return nil
	})
	if err := g.Wait(); err != nil {
		if _, ok := apperror.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperror.NewUpstream(err)
	}

	bundle.Dropped = salesDropped + locationsDropped + importsDropped
	if bundle.Dropped > 0 {
		logger.Warn(ctx, "rejected malformed source rows",
			"sales", salesDropped,
			"locations", locationsDropped,
			"imports", importsDropped,
		)
	}
	span.SetAttributes(
		attribute.Int("sales", len(bundle.Sales)),
		attribute.Int("locations", len(bundle.Locations)),
		attribute.Int("imports", len(bundle.Imports)),
		attribute.Int("dropped", bundle.Dropped),
	)

	if err := s.cache.Set(bundle); err != nil {
		logger.Warn(ctx, "failed to cache bundle", "error", err)
	}
	return bundle, nil
}

// MonthlySales returns the 12 monthly buckets of the given year.
func (s *Service) MonthlySales(ctx context.Context, year int) ([]MonthlyBucket, error) {
	if year <= 0 {
		return nil, apperror.NewValidation("year is required")
	}
	bundle, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	return GroupMonthly(bundle.Sales, year), nil
}

// SalesByLocation returns per-location buckets for the year/month filter.
func (s *Service) SalesByLocation(ctx context.Context, year int, month string) ([]LocationBucket, error) {
	if year <= 0 {
		return nil, apperror.NewValidation("year is required")
	}
	if !ValidMonth(month) {
		return nil, apperror.NewValidation("month must be \"all\" or 01..12")
	}
	bundle, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	index := records.NewLocationIndex(bundle.Locations)
	return GroupByLocation(bundle.Sales, index, year, month), nil
}

// SalesByProduct returns per-product buckets for the year/month filter.
func (s *Service) SalesByProduct(ctx context.Context, year int, month string) ([]ProductBucket, error) {
	if year <= 0 {
		return nil, apperror.NewValidation("year is required")
	}
	if !ValidMonth(month) {
		return nil, apperror.NewValidation("month must be \"all\" or 01..12")
	}
	bundle, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByProduct(bundle.Sales, year, month), nil
}

// Stock returns the reconciled stock view, filtered and sorted per query.
func (s *Service) Stock(ctx context.Context, q StockQuery) ([]StockRecord, error) {
	if q.SortBy != "" && !ValidStockSortKey(q.SortBy) {
		return nil, apperror.NewValidation("unknown sort field").WithDetail("sortBy", q.SortBy)
	}
	bundle, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}

	_, span := tracer.Start(ctx, "reports.compute_stock")
	index := records.NewLocationIndex(bundle.Locations)
	recs := ComputeStock(bundle.Imports, bundle.Sales, index)
	span.End()

	recs = FilterStock(recs, q)
	SortStock(recs, q.SortBy, q.SortDesc)
	return recs, nil
}

// FilterOptions returns the selector values for the dashboard controls.
func (s *Service) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	bundle, err := s.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	opts := &FilterOptions{
		Years:  Years(bundle.Sales),
		Months: Months(bundle.Sales),
	}
	for _, loc := range bundle.Locations {
		opts.Locations = append(opts.Locations, LocationOption{
			LocationID: loc.LocationID,
			Name:       loc.Name,
		})
	}
	return opts, nil
}
