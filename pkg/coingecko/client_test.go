package coingecko

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMockCoinGeckoServer(t *testing.T, calls *atomic.Int64) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/simple/price", func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if r.Header.Get(apiKeyHeader) != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		payload := map[string]map[string]float64{
			"bitcoin":  {"brl": 100.0, "usd": 50.0, "eur": 40.0},
			"ethereum": {"brl": 10.0, "usd": 5.0, "eur": 4.0},
		}
		_ = json.NewEncoder(w).Encode(payload)
	})
	mux.HandleFunc("/coins/bitcoin/market_chart", func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		require.Equal(t, "7", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`{"prices":[[1700000000000,42000.5],[1700003600000,42100.25]]}`))
	})
	mux.HandleFunc("/coins/unknown/market_chart", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"market_caps":[]}`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.Equal(t, "bit", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"coins":[{"id":"bitcoin","name":"Bitcoin","symbol":"btc","thumb":"https://img/btc.png"}]}`))
	})
	server := httptest.NewServer(mux)
	client := NewClient(WithBaseURL(server.URL), WithAPIKey("test-key"), WithMaxRetries(0))
	return server, client
}

func TestSimplePrices(t *testing.T) {
	server, client := newMockCoinGeckoServer(t, nil)
	defer server.Close()

	prices, err := client.SimplePrices(context.Background(), []string{"bitcoin", "ethereum"}, []string{"brl", "usd", "eur"})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	require.InDelta(t, 50.0, prices["bitcoin"]["usd"], 1e-9)
	require.InDelta(t, 4.0, prices["ethereum"]["eur"], 1e-9)
}

func TestSimplePricesEmptyIDs(t *testing.T) {
	var calls atomic.Int64
	server, client := newMockCoinGeckoServer(t, &calls)
	defer server.Close()

	prices, err := client.SimplePrices(context.Background(), nil, []string{"usd"})
	require.NoError(t, err)
	require.Empty(t, prices)
	require.Zero(t, calls.Load())
}

func TestMarketChart(t *testing.T) {
	server, client := newMockCoinGeckoServer(t, nil)
	defer server.Close()

	points, err := client.MarketChart(context.Background(), "bitcoin", "USD", "7")
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, int64(1700000000000), points[0].Timestamp)
	require.InDelta(t, 42000.5, points[0].Price, 1e-9)
	require.True(t, points[0].Timestamp < points[1].Timestamp)
}

func TestMarketChartMissingPricesField(t *testing.T) {
	server, client := newMockCoinGeckoServer(t, nil)
	defer server.Close()

	_, err := client.MarketChart(context.Background(), "unknown", "usd", "7")
	require.ErrorIs(t, err, ErrMissingSeries)
}

func TestSearch(t *testing.T) {
	server, client := newMockCoinGeckoServer(t, nil)
	defer server.Close()

	coins, err := client.Search(context.Background(), " bit ")
	require.NoError(t, err)
	require.Len(t, coins, 1)
	require.Equal(t, "bitcoin", coins[0].ID)
	require.Equal(t, "https://img/btc.png", coins[0].Thumb)
}

func TestSearchEmptyQuerySkipsUpstream(t *testing.T) {
	var calls atomic.Int64
	server, client := newMockCoinGeckoServer(t, &calls)
	defer server.Close()

	coins, err := client.Search(context.Background(), "   ")
	require.NoError(t, err)
	require.Empty(t, coins)
	require.Zero(t, calls.Load())
}

func TestRetryOnServerError(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":50.0}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(3))
	prices, err := client.SimplePrices(context.Background(), []string{"bitcoin"}, []string{"usd"})
	require.NoError(t, err)
	require.InDelta(t, 50.0, prices["bitcoin"]["usd"], 1e-9)
	require.EqualValues(t, 3, hits.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(3))
	_, err := client.MarketChart(context.Background(), "nope", "usd", "7")
	require.Error(t, err)
	require.EqualValues(t, 1, hits.Load())
}

func TestPricePointRoundTrip(t *testing.T) {
	point := PricePoint{Timestamp: 1700000000000, Price: 42000.5}
	raw, err := json.Marshal(point)
	require.NoError(t, err)
	require.JSONEq(t, `[1700000000000,42000.5]`, string(raw))

	var decoded PricePoint
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, point, decoded)
}
