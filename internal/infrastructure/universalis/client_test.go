package universalis_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/glamweave/dyebudget/configs"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
	"github.com/glamweave/dyebudget/internal/infrastructure/universalis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*universalis.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := universalis.NewClient(&config.UniversalisConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
		MaxBatchSize:   100,
	}, nil)
	return c, srv
}

func aggregatedPayload() string {
	return `{
		"results": {
			"5729": {
				"nq": {
					"minPrice": 100,
					"maxPrice": 500,
					"listings": [
						{"pricePerUnit": 100, "quantity": 3},
						{"pricePerUnit": 200, "quantity": 1}
					]
				},
				"lastUploadTime": 1700000000000
			},
			"5731": {
				"nq": {"minPrice": 0, "maxPrice": 0, "listings": []},
				"lastUploadTime": 1700000000000
			}
		}
	}`
}

func TestFetchPrices_ParsesAndAggregates(t *testing.T) {
	var gotPath atomic.Value
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, aggregatedPayload())
	}))

	prices, err := c.FetchPrices(context.Background(), "Crystal", []int{5729, 5731})
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/aggregated/Crystal/5729,5731", gotPath.Load())

	require.Contains(t, prices, 5729)
	snap := prices[5729]
	assert.Equal(t, 100, snap.MinPrice)
	assert.Equal(t, 500, snap.MaxPrice)
	// quantity-weighted mean: (100*3 + 200*1) / 4 = 125
	assert.Equal(t, 125, snap.AveragePrice)
	assert.Equal(t, 2, snap.ListingCount)
	assert.Equal(t, "Crystal", snap.World)
	assert.False(t, snap.FetchedAt.IsZero())

	// no active listings: omitted, not a zero-price entry
	assert.NotContains(t, prices, 5731)
}

func TestFetchPrices_AverageFallsBackToMinPrice(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":{"5729":{"nq":{"minPrice":300,"maxPrice":300,"listings":[{"pricePerUnit":300,"quantity":0}]},"lastUploadTime":0}}}`)
	}))

	prices, err := c.FetchPrices(context.Background(), "Crystal", []int{5729})
	require.NoError(t, err)
	assert.Equal(t, 300, prices[5729].AveragePrice, "zero total quantity falls back to min price")
}

func TestFetchPrices_TooManyItemsNeverHitsNetwork(t *testing.T) {
	var requests atomic.Int64
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))

	ids := make([]int, 150)
	for i := range ids {
		ids[i] = 1000 + i
	}
	_, err := c.FetchPrices(context.Background(), "Crystal", ids)
	require.ErrorIs(t, err, market.ErrTooManyItems)
	assert.Zero(t, requests.Load(), "validation error must not reach the network")
}

func TestFetchPrices_RemoteErrorCarriesStatusAndMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"world not found"}`)
	}))

	_, err := c.FetchPrices(context.Background(), "Nowhere", []int{5729})
	require.Error(t, err)
	var apiErr *market.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "world not found")
}

func TestFetchPrices_TimeoutIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := universalis.NewClient(&config.UniversalisConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 50 * time.Millisecond,
		MaxBatchSize:   100,
	}, nil)

	_, err := c.FetchPrices(context.Background(), "Crystal", []int{5729})
	require.Error(t, err)
	assert.True(t, market.IsTimeout(err), "expected timeout-typed error, got %v", err)
}

func TestFetchPrices_NoTransportFailsImmediately(t *testing.T) {
	c := universalis.NewClientWithOptions(universalis.Options{}, nil)

	_, err := c.FetchPrices(context.Background(), "Crystal", []int{5729})
	require.ErrorIs(t, err, market.ErrNoTransport)
}

// roundTripperFunc adapts a function to http.RoundTripper for the
// in-process dispatch path.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetchPrices_InProcessTransport(t *testing.T) {
	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		fmt.Fprint(rec, aggregatedPayload())
		resp := rec.Result()
		resp.Header.Set("Content-Type", "application/json")
		resp.Request = r
		return resp, nil
	})

	c := universalis.NewClientWithOptions(universalis.Options{Transport: rt}, nil)
	prices, err := c.FetchPrices(context.Background(), "Crystal", []int{5729})
	require.NoError(t, err)
	assert.Contains(t, prices, 5729)
}

func TestFetchPricesBatched_ChunksAndMerges(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		parts := strings.Split(r.URL.Path, "/")
		ids := strings.Split(parts[len(parts)-1], ",")
		results := map[string]any{}
		for _, id := range ids {
			results[id] = map[string]any{
				"nq": map[string]any{
					"minPrice": 100, "maxPrice": 200,
					"listings": []map[string]int{{"pricePerUnit": 100, "quantity": 1}},
				},
				"lastUploadTime": 0,
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	t.Cleanup(srv.Close)

	c := universalis.NewClient(&config.UniversalisConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
		MaxBatchSize:   10,
	}, nil)

	ids := make([]int, 25)
	for i := range ids {
		ids[i] = 1000 + i
	}
	prices, err := c.FetchPricesBatched(context.Background(), "Crystal", ids)
	require.NoError(t, err)
	assert.Len(t, prices, 25)
	assert.EqualValues(t, 3, requests.Load(), "25 ids with a ceiling of 10 means 3 chunks")
}

func TestValidateWorld_CaseInsensitive(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/worlds", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":34,"name":"Brynhildr"},{"id":35,"name":"Famfrit"}]`)
	}))
	ctx := context.Background()

	canonical, ok, err := c.ValidateWorld(ctx, "brynhildr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Brynhildr", canonical)

	_, ok, err = c.ValidateWorld(ctx, "Atlantis")
	require.NoError(t, err, "unknown world is not an error")
	assert.False(t, ok)
}

func TestFetchDataCenters(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/data-centers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"name":"Crystal","region":"North-America","worlds":[34,35]}]`)
	}))

	dcs, err := c.FetchDataCenters(context.Background())
	require.NoError(t, err)
	require.Len(t, dcs, 1)
	assert.Equal(t, "Crystal", dcs[0].Name)
	assert.Equal(t, []int{34, 35}, dcs[0].Worlds)
}
