package supplier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/buildmat/internal/config"
)

func TestFetchQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":[{"material_id":"mat-1","unit_cost":"2065.35"},{"name":"Metal Roofing Sheets","supplier":"RoofPro","unit_cost":79.9}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.SupplierConfig{FeedURL: srv.URL + "/", Token: "secret"})
	quotes, err := client.FetchQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "mat-1", quotes[0].MaterialID)
	assert.Equal(t, "2065.35", quotes[0].UnitCost.String())
	assert.Equal(t, "Metal Roofing Sheets", quotes[1].Name)
	assert.Equal(t, "79.9", quotes[1].UnitCost.String())
}

func TestFetchQuotesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"maintenance","code":5031}}`))
	}))
	defer srv.Close()

	_, err := NewClient(config.SupplierConfig{FeedURL: srv.URL}).FetchQuotes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=5031")
	assert.Contains(t, err.Error(), "maintenance")
}
