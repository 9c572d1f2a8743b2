package reports

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/core/apperror"
	"salesboard/internal/domain/records"
)

type fakeSource struct {
	calls int32

	sales     []records.Sale
	locations []records.Location
	imports   []records.Import

	salesErr error
}

func (f *fakeSource) FetchSales(ctx context.Context) ([]records.Sale, int, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.salesErr != nil {
		return nil, 0, f.salesErr
	}
	return f.sales, 0, nil
}

func (f *fakeSource) FetchLocations(ctx context.Context) ([]records.Location, int, error) {
	return f.locations, 0, nil
}

func (f *fakeSource) FetchImports(ctx context.Context) ([]records.Import, int, error) {
	return f.imports, 0, nil
}

type fakeCache struct {
	bundle *records.Bundle
}

func (f *fakeCache) Get() (*records.Bundle, bool) {
	if f.bundle == nil {
		return nil, false
	}
	return f.bundle, true
}

func (f *fakeCache) Set(b *records.Bundle) error {
	f.bundle = b
	return nil
}

func TestService_BundleUsesCache(t *testing.T) {
	source := &fakeSource{
		sales: []records.Sale{sale("2024-01-10", "loc-1", "p1", 2, "20.00")},
	}
	svc := NewService(source, &fakeCache{})
	ctx := context.Background()

	first, err := svc.Bundle(ctx)
	require.NoError(t, err)
	require.Len(t, first.Sales, 1)

	second, err := svc.Bundle(ctx)
	require.NoError(t, err)
	require.Len(t, second.Sales, 1)

	assert.Equal(t, int32(1), atomic.LoadInt32(&source.calls))
}

func TestService_BundleWrapsFetchErrors(t *testing.T) {
	source := &fakeSource{salesErr: errors.New("connection reset")}
	svc := NewService(source, &fakeCache{})

	_, err := svc.Bundle(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsUpstream(err))
}

func TestService_BundlePreservesAppErrors(t *testing.T) {
	source := &fakeSource{salesErr: apperror.NewUnauthorized("sign-in failed")}
	svc := NewService(source, &fakeCache{})

	_, err := svc.Bundle(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestService_ValidatesInput(t *testing.T) {
	svc := NewService(&fakeSource{}, &fakeCache{})
	ctx := context.Background()

	_, err := svc.MonthlySales(ctx, 0)
	assert.True(t, errorCodeIs(err, apperror.CodeValidation))

	_, err = svc.SalesByLocation(ctx, 2024, "13")
	assert.True(t, errorCodeIs(err, apperror.CodeValidation))

	_, err = svc.SalesByProduct(ctx, 0, "01")
	assert.True(t, errorCodeIs(err, apperror.CodeValidation))

	_, err = svc.Stock(ctx, StockQuery{SortBy: "bogus"})
	assert.True(t, errorCodeIs(err, apperror.CodeValidation))
}

func TestService_StockFiltersAndSorts(t *testing.T) {
	source := &fakeSource{
		sales: []records.Sale{
			sale("2024-01-10", "loc-1", "X", 2, "20.00"),
			sale("2024-01-11", "loc-2", "Y", 9, "90.00"),
		},
		imports: []records.Import{
			imported("2024-01-01", "loc-1", "X", 10),
			imported("2024-01-01", "loc-2", "Y", 10),
		},
		locations: []records.Location{
			{LocationID: "loc-1", Name: "Main Street"},
			{LocationID: "loc-2", Name: "City Supermarket"},
		},
	}
	svc := NewService(source, &fakeCache{})

	recs, err := svc.Stock(context.Background(), StockQuery{SortBy: "remaining", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(8), recs[0].Remaining)
	assert.Equal(t, int64(1), recs[1].Remaining)

	recs, err = svc.Stock(context.Background(), StockQuery{LocationName: "market"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "City Supermarket", recs[0].LocationName)
}

func TestService_FilterOptions(t *testing.T) {
	source := &fakeSource{
		sales: []records.Sale{
			sale("2023-06-10", "loc-1", "p1", 1, "1"),
			sale("2024-01-11", "loc-1", "p1", 1, "1"),
		},
		locations: []records.Location{{LocationID: "loc-1", Name: "Main Street"}},
	}
	svc := NewService(source, &fakeCache{})

	opts, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, opts.Years)
	assert.Equal(t, []string{"01", "06"}, opts.Months)
	require.Len(t, opts.Locations, 1)
	assert.Equal(t, "Main Street", opts.Locations[0].Name)
}

func errorCodeIs(err error, code string) bool {
	appErr, ok := apperror.AsAppError(err)
	return ok && appErr.Code == code
}
