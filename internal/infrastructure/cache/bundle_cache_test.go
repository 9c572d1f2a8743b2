package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/core/types"
	"salesboard/internal/domain/records"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func testBundle() *records.Bundle {
	return &records.Bundle{
		Sales: []records.Sale{{
			SaleDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			LocationID: "loc-1",
			ProductID:  "p1",
			Quantity:   3,
			TotalPrice: types.MustMoney("29.97"),
		}},
		Locations: []records.Location{{LocationID: "loc-1", Name: "Main Street"}},
		Imports: []records.Import{{
			LocationID: "loc-1",
			ProductID:  "p1",
			Quantity:   20,
			ImportDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
		Dropped: 2,
	}
}

func TestBundleCache_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, err := New(DefaultTTL, WithClock(clock.Now))
	require.NoError(t, err)

	_, ok := c.Get()
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Set(testBundle()))

	got, ok := c.Get()
	require.True(t, ok)
	require.Len(t, got.Sales, 1)
	assert.Equal(t, "loc-1", got.Sales[0].LocationID)
	assert.True(t, got.Sales[0].SaleDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, got.Sales[0].TotalPrice.Equal(types.MustMoney("29.97")))
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Main Street", got.Locations[0].Name)
	require.Len(t, got.Imports, 1)
	assert.Equal(t, int64(20), got.Imports[0].Quantity)
	assert.Equal(t, 2, got.Dropped)
}

func TestBundleCache_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, err := New(30*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)

	require.NoError(t, c.Set(testBundle()))

	clock.Advance(29 * time.Minute)
	_, ok := c.Get()
	assert.True(t, ok, "bundle inside the window must hit")

	clock.Advance(time.Minute)
	_, ok = c.Get()
	assert.False(t, ok, "bundle at the TTL boundary must miss")
}

func TestBundleCache_SetOverwrites(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	c, err := New(30*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)

	require.NoError(t, c.Set(testBundle()))

	clock.Advance(29 * time.Minute)
	fresh := testBundle()
	fresh.Dropped = 7
	require.NoError(t, c.Set(fresh))

	clock.Advance(29 * time.Minute)
	got, ok := c.Get()
	require.True(t, ok, "overwrite must restart the TTL window")
	assert.Equal(t, 7, got.Dropped)
}

func TestBundleCache_Clear(t *testing.T) {
	c, err := New(DefaultTTL)
	require.NoError(t, err)

	require.NoError(t, c.Set(testBundle()))
	c.Clear()

	_, ok := c.Get()
	assert.False(t, ok)
}
