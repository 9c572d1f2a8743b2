package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/core/apperror"
)

func newTestServer(t *testing.T, authCalls *int32, rows map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(authCalls, 1)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "test-token", "token_type": "bearer", "expires_in": 3600}`))
	})

	for table, body := range rows {
		payload := body
		mux.HandleFunc("/rest/v1/"+table, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payload))
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := New(Config{
		URL:      url,
		APIKey:   "anon-key",
		Email:    "reporting@example.com",
		Password: "test-password",
	})
	require.NoError(t, err)
	return client
}

func TestClient_FetchSales(t *testing.T) {
	var authCalls int32
	server := newTestServer(t, &authCalls, map[string]string{
		tableSale: `[
			{"sale_date": "2024-03-15", "location_id": 1, "product_id": "P1", "quantity": 3, "total_price": 29.97},
			{"sale_date": "bogus", "location_id": 1, "product_id": "P1", "quantity": 1, "total_price": 5}
		]`,
	})
	client := newTestClient(t, server.URL)

	sales, dropped, err := client.FetchSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "1", sales[0].LocationID)
	assert.Equal(t, "P1", sales[0].ProductID)
	assert.Equal(t, int64(3), sales[0].Quantity)
	assert.Equal(t, "29.97", sales[0].TotalPrice.StringFixed(2))
}

func TestClient_ReusesToken(t *testing.T) {
	var authCalls int32
	server := newTestServer(t, &authCalls, map[string]string{
		tableLocation: `[{"location_id": "loc-1", "location": "Main Street"}]`,
		tableImport:   `[{"location_id": "loc-1", "product_id": "P1", "quantity": 20, "import_date": "2024-03-01"}]`,
	})
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	locations, dropped, err := client.FetchLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, "Main Street", locations[0].Name)

	imports, _, err := client.FetchImports(ctx)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, int64(20), imports[0].Quantity)

	assert.Equal(t, int32(1), atomic.LoadInt32(&authCalls), "token must be reused across fetches")
}

func TestClient_SignInFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	_, _, err := client.FetchSales(context.Background())
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestClient_UpstreamFailure(t *testing.T) {
	var authCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&authCalls, 1)
		_, _ = w.Write([]byte(`{"access_token": "test-token", "expires_in": 3600}`))
	})
	mux.HandleFunc("/rest/v1/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	_, _, err := client.FetchSales(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsUpstream(err))
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(Config{URL: "https://example.supabase.co"})
	assert.Error(t, err)

	_, err = New(Config{URL: "https://example.supabase.co", APIKey: "k"})
	assert.Error(t, err)
}
